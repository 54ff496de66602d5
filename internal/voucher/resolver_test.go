package voucher

import (
	"context"
	"testing"
	"time"
)

type stubSource struct {
	rules map[string]*Rule
	err   error
}

func (s *stubSource) RuleByCode(ctx context.Context, code string) (*Rule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rules[code], nil
}

func TestResolveNilAndEmptyCode(t *testing.T) {
	r := Resolver{Source: &stubSource{}}
	rule, err := r.Resolve(context.Background(), nil)
	if err != nil || rule != nil {
		t.Fatalf("expected nil rule without error, got %v %v", rule, err)
	}
	empty := "   "
	rule, err = r.Resolve(context.Background(), &empty)
	if err != nil || rule != nil {
		t.Fatalf("expected blank code to resolve to nil, got %v %v", rule, err)
	}
}

func TestResolveUnknownCodeIsSilent(t *testing.T) {
	r := Resolver{Source: &stubSource{rules: map[string]*Rule{}}}
	code := "GONE"
	rule, err := r.Resolve(context.Background(), &code)
	if err != nil {
		t.Fatalf("unknown code must not error: %v", err)
	}
	if rule != nil {
		t.Fatalf("expected nil rule for unknown code, got %+v", rule)
	}
}

func TestResolveNormalizesCode(t *testing.T) {
	r := Resolver{Source: &stubSource{rules: map[string]*Rule{
		"SUMMER": {Code: "SUMMER", Kind: KindValue},
	}}}
	code := "  summer "
	rule, err := r.Resolve(context.Background(), &code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule == nil || rule.Code != "SUMMER" {
		t.Fatalf("expected normalized lookup to hit, got %+v", rule)
	}
}

func TestResolveOutsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	r := Resolver{
		Source: &stubSource{rules: map[string]*Rule{
			"EXPIRED": {Code: "EXPIRED", Kind: KindValue, ValidTo: &past},
		}},
		Now: func() time.Time { return now },
	}
	code := "EXPIRED"
	rule, err := r.Resolve(context.Background(), &code)
	if err != nil {
		t.Fatalf("expired code must not error: %v", err)
	}
	if rule != nil {
		t.Fatalf("expected nil rule for expired code, got %+v", rule)
	}
}

func TestActiveAtOpenEnded(t *testing.T) {
	now := time.Now()
	r := Rule{}
	if !r.ActiveAt(now) {
		t.Fatal("rule without boundaries should always be active")
	}
	from := now.Add(time.Hour)
	r.ValidFrom = &from
	if r.ActiveAt(now) {
		t.Fatal("rule should be inactive before validFrom")
	}
}
