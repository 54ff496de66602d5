package address

import "testing"

func validGermanAddress() Address {
	return Address{
		Name:       "Max Mustermann",
		Country:    "DE",
		City:       "Berlin",
		PostalCode: "10115",
		Line1:      "Unter den Linden 1",
	}
}

func TestValidateAccepts(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Validate(validGermanAddress()); err != nil {
		t.Fatalf("expected valid address, got %v", err)
	}
}

func TestValidateRequiresCountry(t *testing.T) {
	reg := NewRegistry()
	a := validGermanAddress()
	a.Country = ""
	err := reg.Validate(a)
	fieldErrs, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs[FieldCountry]; !ok {
		t.Fatalf("expected country error, got %v", fieldErrs)
	}
}

func TestValidateRejectsUnknownCountryCode(t *testing.T) {
	reg := NewRegistry()
	a := validGermanAddress()
	a.Country = "ZZ"
	if err := reg.Validate(a); err == nil {
		t.Fatal("expected error for unknown country code")
	}
}

func TestValidatePostalFormatPerCountry(t *testing.T) {
	reg := NewRegistry()

	de := validGermanAddress()
	de.PostalCode = "101"
	if err := reg.Validate(de); err == nil {
		t.Fatal("expected short German PLZ to fail")
	}

	pl := validGermanAddress()
	pl.Country = "PL"
	pl.City = "Warszawa"
	pl.PostalCode = "00-950"
	if err := reg.Validate(pl); err != nil {
		t.Fatalf("expected Polish postal format to pass, got %v", err)
	}
	pl.PostalCode = "00950"
	if err := reg.Validate(pl); err == nil {
		t.Fatal("expected unhyphenated Polish code to fail")
	}
}

func TestValidateUSRequiresKnownState(t *testing.T) {
	reg := NewRegistry()
	a := Address{
		Name:       "Jordan Smith",
		Country:    "US",
		Area:       "XX",
		City:       "Springfield",
		PostalCode: "62704",
		Line1:      "742 Evergreen Terrace",
	}
	err := reg.Validate(a)
	fieldErrs, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs[FieldArea]; !ok {
		t.Fatalf("expected state error, got %v", fieldErrs)
	}

	a.Area = "il"
	if err := reg.Validate(a); err != nil {
		t.Fatalf("state comparison should be case-insensitive, got %v", err)
	}
}

func TestValidateFallbackForUnlistedCountry(t *testing.T) {
	reg := NewRegistry()
	a := Address{
		Name:    "Ana Souza",
		Country: "BR",
		City:    "São Paulo",
		Line1:   "Avenida Paulista 1000",
	}
	if err := reg.Validate(a); err != nil {
		t.Fatalf("expected fallback rules to accept, got %v", err)
	}
}

func TestRulesLabelFallback(t *testing.T) {
	r := NewRegistry().ForCountry("US")
	if r.Label(FieldPostalCode) != "ZIP code" {
		t.Fatalf("expected US label, got %q", r.Label(FieldPostalCode))
	}
	if r.Label(FieldCity) != "city" {
		t.Fatalf("expected fallback label, got %q", r.Label(FieldCity))
	}
}
