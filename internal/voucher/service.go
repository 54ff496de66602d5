package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noval-eka/storefront/internal/repo"
)

var validate = validator.New()

// ErrInvalidInput wraps validation failures on admin writes.
var ErrInvalidInput = errors.New("invalid voucher input")

// ErrUnknownCode is returned when a shopper submits a code that does not
// resolve to an active voucher.
var ErrUnknownCode = errors.New("unknown or inactive voucher code")

// Invalidator drops a cached rule after an admin write.
type Invalidator interface {
	Invalidate(ctx context.Context, code string) error
}

// Input carries the writable voucher fields for admin create and update.
type Input struct {
	Code           string     `json:"code" validate:"required,min=3,max=64"`
	Name           string     `json:"name" validate:"required,max=120"`
	Kind           string     `json:"kind" validate:"required,oneof=value shipping product category"`
	DiscountType   string     `json:"discountType" validate:"required,oneof=fixed percent"`
	Value          int64      `json:"value" validate:"min=0"`
	PercentBps     *int32     `json:"percentBps" validate:"omitempty,gt=0,lte=10000"`
	ApplyToCountry *string    `json:"applyToCountry" validate:"omitempty,iso3166_1_alpha2"`
	ProductID      *uuid.UUID `json:"productId"`
	CategoryID     *uuid.UUID `json:"categoryId"`
	MinSpend       int64      `json:"minSpend" validate:"min=0"`
	UsageLimit     *int32     `json:"usageLimit" validate:"omitempty,gt=0"`
	ValidFrom      *time.Time `json:"validFrom"`
	ValidTo        *time.Time `json:"validTo"`
}

// Service manages voucher rules and dry-run evaluation.
type Service struct {
	Store    *repo.Store
	Cache    Invalidator
	Resolver Resolver
	Now      func() time.Time
}

// Create validates and inserts a new voucher rule.
func (s *Service) Create(ctx context.Context, in Input) (repo.Voucher, error) {
	if s == nil || s.Store == nil {
		return repo.Voucher{}, errors.New("voucher service not configured")
	}
	if err := checkInput(in); err != nil {
		return repo.Voucher{}, err
	}
	code := NormalizeCode(in.Code)
	v, err := s.Store.Vouchers.Create(ctx, toParams(code, in))
	if err != nil {
		return repo.Voucher{}, err
	}
	s.invalidate(ctx, code)
	return v, nil
}

// Update validates and replaces the rule identified by code.
func (s *Service) Update(ctx context.Context, code string, in Input) (repo.Voucher, error) {
	if s == nil || s.Store == nil {
		return repo.Voucher{}, errors.New("voucher service not configured")
	}
	code = NormalizeCode(code)
	in.Code = code
	if err := checkInput(in); err != nil {
		return repo.Voucher{}, err
	}
	v, err := s.Store.Vouchers.Update(ctx, code, toParams(code, in))
	if err != nil {
		return repo.Voucher{}, err
	}
	s.invalidate(ctx, code)
	return v, nil
}

// Delete removes the rule identified by code.
func (s *Service) Delete(ctx context.Context, code string) error {
	if s == nil || s.Store == nil {
		return errors.New("voucher service not configured")
	}
	code = NormalizeCode(code)
	n, err := s.Store.Vouchers.Delete(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	s.invalidate(ctx, code)
	return nil
}

// Get returns the stored voucher row by code.
func (s *Service) Get(ctx context.Context, code string) (repo.Voucher, error) {
	if s == nil || s.Store == nil {
		return repo.Voucher{}, errors.New("voucher service not configured")
	}
	return s.Store.Vouchers.GetByCode(ctx, NormalizeCode(code))
}

// List returns a page of vouchers plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]repo.Voucher, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("voucher service not configured")
	}
	items, err := s.Store.Vouchers.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Vouchers.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Preview performs a dry-run evaluation of a submitted code against a cart
// snapshot without mutating any state. Unknown and inactive codes return
// ErrUnknownCode; known codes that fail their conditions return an error
// wrapping ErrNotApplicable.
func (s *Service) Preview(ctx context.Context, code string, info CheckoutInfo) (Discount, error) {
	if s == nil {
		return Discount{}, errors.New("voucher service not configured")
	}
	rule, err := s.Resolver.Resolve(ctx, &code)
	if err != nil {
		return Discount{}, err
	}
	if rule == nil {
		return Discount{}, ErrUnknownCode
	}
	return Compute(*rule, info)
}

func (s *Service) invalidate(ctx context.Context, code string) {
	if s.Cache != nil {
		_ = s.Cache.Invalidate(ctx, code)
	}
}

func checkInput(in Input) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	switch DiscountType(in.DiscountType) {
	case DiscountPercent:
		if in.PercentBps == nil {
			return fmt.Errorf("%w: percentBps is required for percent discounts", ErrInvalidInput)
		}
	case DiscountFixed:
		if in.Value <= 0 {
			return fmt.Errorf("%w: value must be positive for fixed discounts", ErrInvalidInput)
		}
	}
	switch Kind(in.Kind) {
	case KindProduct:
		if in.ProductID == nil {
			return fmt.Errorf("%w: productId is required for product vouchers", ErrInvalidInput)
		}
	case KindCategory:
		if in.CategoryID == nil {
			return fmt.Errorf("%w: categoryId is required for category vouchers", ErrInvalidInput)
		}
	}
	if in.ValidFrom != nil && in.ValidTo != nil && in.ValidTo.Before(*in.ValidFrom) {
		return fmt.Errorf("%w: validTo precedes validFrom", ErrInvalidInput)
	}
	return nil
}

func toParams(code string, in Input) repo.VoucherParams {
	return repo.VoucherParams{
		Code:           code,
		Name:           in.Name,
		Kind:           in.Kind,
		DiscountType:   in.DiscountType,
		Value:          in.Value,
		PercentBps:     in.PercentBps,
		ApplyToCountry: in.ApplyToCountry,
		ProductID:      in.ProductID,
		CategoryID:     in.CategoryID,
		MinSpend:       in.MinSpend,
		UsageLimit:     in.UsageLimit,
		ValidFrom:      in.ValidFrom,
		ValidTo:        in.ValidTo,
	}
}
