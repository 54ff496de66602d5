package address

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Address is a postal address as submitted by the shopper.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Country    string `json:"country"`
	Area       string `json:"area"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
}

// FieldErrors maps a field name to a human-readable validation message.
type FieldErrors map[Field]string

// Error implements the error interface.
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "address is invalid"
	}
	parts := make([]string, 0, len(e))
	for f, msg := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Validate checks an address against the rules for its country. It returns a
// FieldErrors when any field fails, nil otherwise.
func (r *Registry) Validate(a Address) error {
	errs := FieldErrors{}

	country := strings.ToUpper(strings.TrimSpace(a.Country))
	if country == "" {
		errs[FieldCountry] = "country is required"
		return errs
	}
	if err := validate.Var(country, "iso3166_1_alpha2"); err != nil {
		errs[FieldCountry] = "not a valid ISO 3166-1 country code"
		return errs
	}

	rules := r.ForCountry(country)
	for _, f := range rules.Required {
		if strings.TrimSpace(a.field(f)) == "" {
			errs[f] = fmt.Sprintf("%s is required", rules.Label(f))
		}
	}
	if len(rules.Areas) > 0 && strings.TrimSpace(a.Area) != "" {
		if !containsFold(rules.Areas, a.Area) {
			errs[FieldArea] = fmt.Sprintf("%s must be one of the listed values", rules.Label(FieldArea))
		}
	}
	if rules.PostalCode != nil && strings.TrimSpace(a.PostalCode) != "" {
		if !rules.PostalCode.MatchString(strings.TrimSpace(a.PostalCode)) {
			errs[FieldPostalCode] = fmt.Sprintf("%s has an invalid format", rules.Label(FieldPostalCode))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (a Address) field(f Field) string {
	switch f {
	case FieldName:
		return a.Name
	case FieldPhone:
		return a.Phone
	case FieldCountry:
		return a.Country
	case FieldArea:
		return a.Area
	case FieldCity:
		return a.City
	case FieldPostalCode:
		return a.PostalCode
	case FieldLine1:
		return a.Line1
	}
	return ""
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
