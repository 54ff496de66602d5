package shipping

import (
	"context"
	"testing"

	"github.com/noval-eka/storefront/internal/repo"
)

type stubMethods struct {
	lastCountry string
	methods     []repo.ShippingMethod
}

func (s *stubMethods) ListByCountry(_ context.Context, countryCode string) ([]repo.ShippingMethod, error) {
	s.lastCountry = countryCode
	return s.methods, nil
}

func TestListForCountryNormalizes(t *testing.T) {
	store := &stubMethods{methods: []repo.ShippingMethod{{Name: "Standard"}}}
	svc := &Service{Methods: store}
	methods, err := svc.ListForCountry(context.Background(), "  de ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastCountry != "DE" {
		t.Fatalf("expected normalized country DE, got %q", store.lastCountry)
	}
	if len(methods) != 1 {
		t.Fatalf("expected one method, got %d", len(methods))
	}
}

func TestListForCountryRequiresCountry(t *testing.T) {
	svc := &Service{Methods: &stubMethods{}}
	if _, err := svc.ListForCountry(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank country")
	}
}
