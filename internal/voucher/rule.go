package voucher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noval-eka/storefront/internal/pricing"
	"github.com/noval-eka/storefront/internal/repo"
)

// Kind selects which part of the checkout a voucher discounts.
type Kind string

const (
	KindValue    Kind = "value"
	KindShipping Kind = "shipping"
	KindProduct  Kind = "product"
	KindCategory Kind = "category"
)

// DiscountType selects how the discount amount is computed.
type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// ErrNotApplicable signals that a known voucher cannot discount this
// checkout right now. Callers treat it as a normal outcome: the code stays
// attached (or is rejected at apply time) and no discount is granted.
var ErrNotApplicable = errors.New("voucher not applicable")

// Reasons wrap ErrNotApplicable so callers can match either the category or
// the specific cause with errors.Is.
var (
	ErrMinSpendNotMet       = fmt.Errorf("%w: minimum spend not met", ErrNotApplicable)
	ErrUsageLimitReached    = fmt.Errorf("%w: usage limit reached", ErrNotApplicable)
	ErrShippingNotRequired  = fmt.Errorf("%w: no items require shipping", ErrNotApplicable)
	ErrNoShippingMethod     = fmt.Errorf("%w: no shipping method selected", ErrNotApplicable)
	ErrWrongShippingCountry = fmt.Errorf("%w: shipping country not covered", ErrNotApplicable)
	ErrNoMatchingItems      = fmt.Errorf("%w: no matching items in cart", ErrNotApplicable)
)

// UnknownKindError reports a voucher row whose kind the engine cannot
// dispatch. It deliberately does not match ErrNotApplicable: a kind that the
// code has never heard of is a data or deployment bug, not a shopper-facing
// condition, so it propagates as a server error instead of silently clearing
// the discount.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown voucher kind %q", string(e.Kind))
}

// Rule is the in-memory form of a voucher used by the discount engine.
type Rule struct {
	ID           uuid.UUID
	Code         string
	Name         string
	Kind         Kind
	DiscountType DiscountType

	// Value is the fixed discount in minor units; PercentBps is the percent
	// discount in basis points. Only the one matching DiscountType is used.
	Value      pricing.Money
	PercentBps int32

	// ApplyToCountry restricts shipping vouchers to one destination country.
	// Empty means any country.
	ApplyToCountry string

	ProductID  *uuid.UUID
	CategoryID *uuid.UUID

	MinSpend   pricing.Money
	UsageLimit int32 // 0 means unlimited
	UsedCount  int32

	ValidFrom *time.Time
	ValidTo   *time.Time
}

// RuleFromModel converts a persisted voucher row into an engine rule.
func RuleFromModel(v repo.Voucher) Rule {
	r := Rule{
		ID:           v.ID,
		Code:         v.Code,
		Name:         v.Name,
		Kind:         Kind(v.Kind),
		DiscountType: DiscountType(v.DiscountType),
		Value:        v.Value,
		ProductID:    v.ProductID,
		CategoryID:   v.CategoryID,
		MinSpend:     v.MinSpend,
		UsedCount:    v.UsedCount,
		ValidFrom:    v.ValidFrom,
		ValidTo:      v.ValidTo,
	}
	if v.PercentBps != nil {
		r.PercentBps = *v.PercentBps
	}
	if v.ApplyToCountry != nil {
		r.ApplyToCountry = *v.ApplyToCountry
	}
	if v.UsageLimit != nil {
		r.UsageLimit = *v.UsageLimit
	}
	return r
}

// ActiveAt reports whether the rule's validity window covers the given time.
// A nil boundary is open-ended.
func (r Rule) ActiveAt(now time.Time) bool {
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return false
	}
	return true
}

// Exhausted reports whether the usage limit has been reached.
func (r Rule) Exhausted() bool {
	return r.UsageLimit > 0 && r.UsedCount >= r.UsageLimit
}
