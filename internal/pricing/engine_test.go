package pricing

import "testing"

func TestComputeCapsDiscountAtSubtotal(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 1_000}}
	summary := Compute(items, 5_000, 0, 0)
	if summary.Discount != 2_000 {
		t.Fatalf("expected discount capped at 2000, got %d", summary.Discount)
	}
	if summary.Total != 0 {
		t.Fatalf("expected zero total, got %d", summary.Total)
	}
}

func TestComputeTaxAppliesAfterDiscount(t *testing.T) {
	items := []Item{{Qty: 1, UnitPrice: 10_000}}
	summary := Compute(items, 2_000, 1000, 1_500)
	if summary.Tax != 800 {
		t.Fatalf("expected tax 800, got %d", summary.Tax)
	}
	if summary.Total != 8_000+800+1_500 {
		t.Fatalf("unexpected total %d", summary.Total)
	}
}
