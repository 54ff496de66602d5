package voucher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckInputPercentRequiresBps(t *testing.T) {
	in := validInput()
	in.DiscountType = "percent"
	in.PercentBps = nil
	if err := checkInput(in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckInputProductRequiresProductID(t *testing.T) {
	in := validInput()
	in.Kind = "product"
	in.ProductID = nil
	if err := checkInput(in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckInputRejectsUnknownKind(t *testing.T) {
	in := validInput()
	in.Kind = "mystery"
	if err := checkInput(in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func TestCheckInputWindowOrdering(t *testing.T) {
	in := validInput()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	in.ValidFrom = &from
	in.ValidTo = &to
	if err := checkInput(in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted window, got %v", err)
	}
}

func TestCheckInputAccepts(t *testing.T) {
	if err := checkInput(validInput()); err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}
}

func TestPreviewUnknownCode(t *testing.T) {
	svc := &Service{Resolver: Resolver{Source: &stubSource{rules: map[string]*Rule{}}}}
	_, err := svc.Preview(context.Background(), "NOPE", CheckoutInfo{})
	if !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode, got %v", err)
	}
}

func TestPreviewComputes(t *testing.T) {
	svc := &Service{Resolver: Resolver{Source: &stubSource{rules: map[string]*Rule{
		"TEN": {Code: "TEN", Name: "Ten percent", Kind: KindValue, DiscountType: DiscountPercent, PercentBps: 1000},
	}}}}
	d, err := svc.Preview(context.Background(), "ten", CheckoutInfo{Lines: []Line{{Qty: 1, UnitPrice: 50_000}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 5_000 {
		t.Fatalf("expected 5000 discount, got %d", d.Amount)
	}
}

func validInput() Input {
	return Input{
		Code:         "SUMMER25",
		Name:         "Summer sale",
		Kind:         "value",
		DiscountType: "fixed",
		Value:        10_000,
	}
}
