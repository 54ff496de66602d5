package voucher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noval-eka/storefront/internal/repo"
)

// Source loads voucher rules by code. Implementations return (nil, nil) for
// unknown codes rather than an error.
type Source interface {
	RuleByCode(ctx context.Context, code string) (*Rule, error)
}

// Resolver turns a stored voucher code into an active Rule. Unknown codes and
// codes outside their validity window resolve to nil without error, so a cart
// holding a dead code degrades to no discount instead of failing.
type Resolver struct {
	Source Source
	Now    func() time.Time
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve returns the active rule for code, or nil when no discount applies.
func (r Resolver) Resolve(ctx context.Context, code *string) (*Rule, error) {
	if r.Source == nil {
		return nil, errors.New("voucher: resolver not configured")
	}
	if code == nil {
		return nil, nil
	}
	normalized := NormalizeCode(*code)
	if normalized == "" {
		return nil, nil
	}
	rule, err := r.Source.RuleByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if rule == nil || !rule.ActiveAt(r.now()) {
		return nil, nil
	}
	return rule, nil
}

// NormalizeCode canonicalizes a voucher code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StoreSource resolves rules straight from Postgres.
type StoreSource struct {
	Vouchers repo.VoucherRepo
}

// RuleByCode implements Source.
func (s StoreSource) RuleByCode(ctx context.Context, code string) (*Rule, error) {
	v, err := s.Vouchers.GetByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rule := RuleFromModel(v)
	return &rule, nil
}
