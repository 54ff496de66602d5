package shipping

import (
	"context"
	"errors"
	"strings"

	"github.com/noval-eka/storefront/internal/repo"
)

// MethodStore loads shipping methods from persistence.
type MethodStore interface {
	ListByCountry(ctx context.Context, countryCode string) ([]repo.ShippingMethod, error)
}

// Service lists the delivery options available for a destination country.
type Service struct {
	Methods MethodStore
}

// ListForCountry returns methods deliverable to the given country, cheapest
// first. The country code is normalized to upper case before lookup.
func (s *Service) ListForCountry(ctx context.Context, country string) ([]repo.ShippingMethod, error) {
	if s == nil || s.Methods == nil {
		return nil, errors.New("shipping service not configured")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return nil, errors.New("country is required")
	}
	return s.Methods.ListByCountry(ctx, country)
}
