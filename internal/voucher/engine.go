package voucher

import (
	"github.com/google/uuid"

	"github.com/noval-eka/storefront/internal/pricing"
)

// Line is one cart position as the discount engine sees it.
type Line struct {
	ProductID        uuid.UUID
	CategoryID       *uuid.UUID
	Qty              int
	UnitPrice        pricing.Money
	RequiresShipping bool
}

// Subtotal returns the line total.
func (l Line) Subtotal() pricing.Money {
	if l.Qty <= 0 {
		return 0
	}
	return pricing.Money(l.Qty) * l.UnitPrice
}

// ShippingInfo is the selected delivery option, if any.
type ShippingInfo struct {
	MethodID    uuid.UUID
	CountryCode string
	Price       pricing.Money
}

// CheckoutInfo is the snapshot of a cart the engine evaluates a rule against.
type CheckoutInfo struct {
	Lines    []Line
	Shipping *ShippingInfo
}

// Subtotal sums all line totals.
func (c CheckoutInfo) Subtotal() pricing.Money {
	var sum pricing.Money
	for _, l := range c.Lines {
		sum += l.Subtotal()
	}
	return sum
}

// RequiresShipping reports whether any line needs physical delivery.
func (c CheckoutInfo) RequiresShipping() bool {
	for _, l := range c.Lines {
		if l.RequiresShipping {
			return true
		}
	}
	return false
}

// Discount is the result of applying a rule to a checkout.
type Discount struct {
	Amount pricing.Money
	Name   string
}

// Compute evaluates a rule against a checkout snapshot. It returns an error
// wrapping ErrNotApplicable when the rule's conditions are not met, and an
// UnknownKindError when the rule carries a kind the engine does not dispatch.
func Compute(r Rule, info CheckoutInfo) (Discount, error) {
	if r.Exhausted() {
		return Discount{}, ErrUsageLimitReached
	}
	if info.Subtotal() < r.MinSpend {
		return Discount{}, ErrMinSpendNotMet
	}

	var (
		amount pricing.Money
		err    error
	)
	switch r.Kind {
	case KindValue:
		amount = valueDiscount(r, info)
	case KindShipping:
		amount, err = shippingDiscount(r, info)
	case KindProduct, KindCategory:
		amount, err = lineDiscount(r, info)
	default:
		return Discount{}, &UnknownKindError{Kind: r.Kind}
	}
	if err != nil {
		return Discount{}, err
	}
	return Discount{Amount: amount, Name: r.Name}, nil
}

func valueDiscount(r Rule, info CheckoutInfo) pricing.Money {
	sub := info.Subtotal()
	if r.DiscountType == DiscountPercent {
		return percentOf(sub, r.PercentBps)
	}
	return min64(r.Value, sub)
}

func shippingDiscount(r Rule, info CheckoutInfo) (pricing.Money, error) {
	if !info.RequiresShipping() {
		return 0, ErrShippingNotRequired
	}
	if info.Shipping == nil {
		return 0, ErrNoShippingMethod
	}
	if r.ApplyToCountry != "" && r.ApplyToCountry != info.Shipping.CountryCode {
		return 0, ErrWrongShippingCountry
	}
	if r.DiscountType == DiscountPercent {
		return percentOf(info.Shipping.Price, r.PercentBps), nil
	}
	return min64(r.Value, info.Shipping.Price), nil
}

func lineDiscount(r Rule, info CheckoutInfo) (pricing.Money, error) {
	var matched []Line
	for _, l := range info.Lines {
		if r.matchesLine(l) {
			matched = append(matched, l)
		}
	}
	if len(matched) == 0 {
		return 0, ErrNoMatchingItems
	}
	if r.DiscountType == DiscountPercent {
		var sub pricing.Money
		for _, l := range matched {
			sub += l.Subtotal()
		}
		return percentOf(sub, r.PercentBps), nil
	}
	// Fixed amounts apply per unit, capped at the unit price so a line never
	// goes negative.
	var amount pricing.Money
	for _, l := range matched {
		amount += min64(r.Value, l.UnitPrice) * pricing.Money(l.Qty)
	}
	return amount, nil
}

func (r Rule) matchesLine(l Line) bool {
	switch r.Kind {
	case KindProduct:
		return r.ProductID != nil && l.ProductID == *r.ProductID
	case KindCategory:
		return r.CategoryID != nil && l.CategoryID != nil && *l.CategoryID == *r.CategoryID
	}
	return false
}

func percentOf(amount pricing.Money, bps int32) pricing.Money {
	if bps <= 0 {
		return 0
	}
	return amount * pricing.Money(bps) / 10000
}

func min64(a, b pricing.Money) pricing.Money {
	if a < b {
		return a
	}
	return b
}
