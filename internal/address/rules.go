package address

import "regexp"

// Field names an address form field.
type Field string

const (
	FieldName       Field = "name"
	FieldPhone      Field = "phone"
	FieldCountry    Field = "country"
	FieldArea       Field = "area"
	FieldCity       Field = "city"
	FieldPostalCode Field = "postalCode"
	FieldLine1      Field = "line1"
)

// Rules describes how addresses are shaped and validated for one country.
// Values are immutable after construction: the registry hands out copies of
// shared slices only for reading.
type Rules struct {
	// Required lists the fields that must be non-empty.
	Required []Field
	// Labels overrides the display label for a field, e.g. "ZIP code" vs
	// "Postcode". Missing entries fall back to the field name.
	Labels map[Field]string
	// Areas restricts the area field to a fixed set of values. Empty means
	// free-form.
	Areas []string
	// PostalCode validates the postal code format when set.
	PostalCode *regexp.Regexp
}

// Label returns the display label for a field.
func (r Rules) Label(f Field) string {
	if l, ok := r.Labels[f]; ok {
		return l
	}
	return string(f)
}

var baseRequired = []Field{FieldName, FieldCountry, FieldCity, FieldLine1}

// countryRules is the built-in per-country table. It is package data, never
// mutated at runtime; unlisted countries use fallbackRules.
var countryRules = map[string]Rules{
	"ID": {
		Required:   append(append([]Field{}, baseRequired...), FieldArea, FieldPostalCode, FieldPhone),
		Labels:     map[Field]string{FieldArea: "Province", FieldPostalCode: "Kode pos"},
		PostalCode: regexp.MustCompile(`^\d{5}$`),
	},
	"DE": {
		Required:   append(append([]Field{}, baseRequired...), FieldPostalCode),
		Labels:     map[Field]string{FieldPostalCode: "PLZ"},
		PostalCode: regexp.MustCompile(`^\d{5}$`),
	},
	"PL": {
		Required:   append(append([]Field{}, baseRequired...), FieldPostalCode),
		Labels:     map[Field]string{FieldPostalCode: "Kod pocztowy"},
		PostalCode: regexp.MustCompile(`^\d{2}-\d{3}$`),
	},
	"US": {
		Required: append(append([]Field{}, baseRequired...), FieldArea, FieldPostalCode),
		Labels:   map[Field]string{FieldArea: "State", FieldPostalCode: "ZIP code"},
		Areas: []string{
			"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
			"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
			"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
			"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
			"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "DC",
		},
		PostalCode: regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	},
	"GB": {
		Required:   append(append([]Field{}, baseRequired...), FieldPostalCode),
		Labels:     map[Field]string{FieldPostalCode: "Postcode"},
		PostalCode: regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}$`),
	},
	"SG": {
		Required:   append(append([]Field{}, baseRequired...), FieldPostalCode),
		PostalCode: regexp.MustCompile(`^\d{6}$`),
	},
}

var fallbackRules = Rules{
	Required: baseRequired,
}

// Registry resolves per-country address rules from the built-in table.
type Registry struct {
	rules    map[string]Rules
	fallback Rules
}

// NewRegistry returns a registry backed by the built-in country table.
func NewRegistry() *Registry {
	return &Registry{rules: countryRules, fallback: fallbackRules}
}

// ForCountry returns the rules for an ISO 3166-1 alpha-2 country code.
func (r *Registry) ForCountry(code string) Rules {
	if rules, ok := r.rules[code]; ok {
		return rules
	}
	return r.fallback
}
