package voucher

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestComputeValuePercent(t *testing.T) {
	rule := Rule{Kind: KindValue, DiscountType: DiscountPercent, PercentBps: 2000, Name: "20% off"}
	info := CheckoutInfo{Lines: []Line{{Qty: 2, UnitPrice: 50_000}}}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 20_000 {
		t.Fatalf("expected 20000 discount, got %d", d.Amount)
	}
	if d.Name != "20% off" {
		t.Fatalf("expected rule name carried through, got %q", d.Name)
	}
}

func TestComputeValueFixedCappedAtSubtotal(t *testing.T) {
	rule := Rule{Kind: KindValue, DiscountType: DiscountFixed, Value: 150_000}
	info := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 100_000}}}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 100_000 {
		t.Fatalf("expected discount capped at subtotal, got %d", d.Amount)
	}
}

func TestComputeMinSpendUnmet(t *testing.T) {
	rule := Rule{Kind: KindValue, DiscountType: DiscountFixed, Value: 1_000, MinSpend: 50_000}
	info := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 10_000}}}
	_, err := Compute(rule, info)
	if !errors.Is(err, ErrMinSpendNotMet) {
		t.Fatalf("expected ErrMinSpendNotMet, got %v", err)
	}
	if !errors.Is(err, ErrNotApplicable) {
		t.Fatal("min spend failure should be a not-applicable outcome")
	}
}

func TestComputeUsageLimitReached(t *testing.T) {
	rule := Rule{Kind: KindValue, DiscountType: DiscountFixed, Value: 1_000, UsageLimit: 5, UsedCount: 5}
	info := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 10_000}}}
	_, err := Compute(rule, info)
	if !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("expected ErrUsageLimitReached, got %v", err)
	}
}

func TestComputeShippingPercent(t *testing.T) {
	rule := Rule{Kind: KindShipping, DiscountType: DiscountPercent, PercentBps: 5000}
	info := CheckoutInfo{
		Lines:    []Line{{Qty: 1, UnitPrice: 40_000, RequiresShipping: true}},
		Shipping: &ShippingInfo{CountryCode: "ID", Price: 12_000},
	}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 6_000 {
		t.Fatalf("expected half the shipping price, got %d", d.Amount)
	}
}

func TestComputeShippingFixedCappedAtShippingPrice(t *testing.T) {
	rule := Rule{Kind: KindShipping, DiscountType: DiscountFixed, Value: 20_000}
	info := CheckoutInfo{
		Lines:    []Line{{Qty: 1, UnitPrice: 40_000, RequiresShipping: true}},
		Shipping: &ShippingInfo{CountryCode: "ID", Price: 12_000},
	}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 12_000 {
		t.Fatalf("expected discount capped at shipping price, got %d", d.Amount)
	}
}

func TestComputeShippingGuards(t *testing.T) {
	digital := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 40_000}}}
	rule := Rule{Kind: KindShipping, DiscountType: DiscountFixed, Value: 5_000}
	if _, err := Compute(rule, digital); !errors.Is(err, ErrShippingNotRequired) {
		t.Fatalf("expected ErrShippingNotRequired, got %v", err)
	}

	noMethod := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 40_000, RequiresShipping: true}}}
	if _, err := Compute(rule, noMethod); !errors.Is(err, ErrNoShippingMethod) {
		t.Fatalf("expected ErrNoShippingMethod, got %v", err)
	}

	rule.ApplyToCountry = "DE"
	abroad := CheckoutInfo{
		Lines:    []Line{{Qty: 1, UnitPrice: 40_000, RequiresShipping: true}},
		Shipping: &ShippingInfo{CountryCode: "ID", Price: 12_000},
	}
	if _, err := Compute(rule, abroad); !errors.Is(err, ErrWrongShippingCountry) {
		t.Fatalf("expected ErrWrongShippingCountry, got %v", err)
	}
}

func TestComputeShippingAnyCountry(t *testing.T) {
	rule := Rule{Kind: KindShipping, DiscountType: DiscountFixed, Value: 5_000}
	info := CheckoutInfo{
		Lines:    []Line{{Qty: 1, UnitPrice: 40_000, RequiresShipping: true}},
		Shipping: &ShippingInfo{CountryCode: "PL", Price: 12_000},
	}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 5_000 {
		t.Fatalf("expected 5000, got %d", d.Amount)
	}
}

func TestComputeProductFixedPerUnit(t *testing.T) {
	prodID := uuidMust("11111111-1111-1111-1111-111111111111")
	otherID := uuidMust("22222222-2222-2222-2222-222222222222")
	rule := Rule{Kind: KindProduct, DiscountType: DiscountFixed, Value: 3_000, ProductID: &prodID}
	info := CheckoutInfo{Lines: []Line{
		{ProductID: prodID, Qty: 2, UnitPrice: 10_000},
		{ProductID: otherID, Qty: 5, UnitPrice: 10_000},
	}}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 6_000 {
		t.Fatalf("expected per-unit discount on matched line only, got %d", d.Amount)
	}
}

func TestComputeProductFixedCappedAtUnitPrice(t *testing.T) {
	prodID := uuidMust("11111111-1111-1111-1111-111111111111")
	rule := Rule{Kind: KindProduct, DiscountType: DiscountFixed, Value: 50_000, ProductID: &prodID}
	info := CheckoutInfo{Lines: []Line{{ProductID: prodID, Qty: 3, UnitPrice: 8_000}}}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 24_000 {
		t.Fatalf("expected discount capped at unit price per unit, got %d", d.Amount)
	}
}

func TestComputeCategoryPercent(t *testing.T) {
	catID := uuidMust("33333333-3333-3333-3333-333333333333")
	otherCat := uuidMust("44444444-4444-4444-4444-444444444444")
	rule := Rule{Kind: KindCategory, DiscountType: DiscountPercent, PercentBps: 1000, CategoryID: &catID}
	info := CheckoutInfo{Lines: []Line{
		{ProductID: uuid.New(), CategoryID: &catID, Qty: 1, UnitPrice: 30_000},
		{ProductID: uuid.New(), CategoryID: &otherCat, Qty: 1, UnitPrice: 70_000},
	}}
	d, err := Compute(rule, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 3_000 {
		t.Fatalf("expected 10%% of matched subtotal, got %d", d.Amount)
	}
}

func TestComputeNoMatchingItems(t *testing.T) {
	prodID := uuidMust("11111111-1111-1111-1111-111111111111")
	rule := Rule{Kind: KindProduct, DiscountType: DiscountFixed, Value: 1_000, ProductID: &prodID}
	info := CheckoutInfo{Lines: []Line{{ProductID: uuid.New(), Qty: 1, UnitPrice: 10_000}}}
	_, err := Compute(rule, info)
	if !errors.Is(err, ErrNoMatchingItems) {
		t.Fatalf("expected ErrNoMatchingItems, got %v", err)
	}
}

func TestComputeUnknownKindIsFatal(t *testing.T) {
	rule := Rule{Kind: Kind("mystery"), DiscountType: DiscountFixed, Value: 1_000}
	info := CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 10_000}}}
	_, err := Compute(rule, info)
	var unknown *UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownKindError, got %v", err)
	}
	if unknown.Kind != "mystery" {
		t.Fatalf("expected kind carried in error, got %q", unknown.Kind)
	}
	if errors.Is(err, ErrNotApplicable) {
		t.Fatal("unknown kind must not degrade to a not-applicable outcome")
	}
}

func uuidMust(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		panic(err)
	}
	return id
}
