package cart

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/noval-eka/storefront/internal/voucher"
)

func TestWriteErrorMapping(t *testing.T) {
	h := &Handler{}
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", fmt.Errorf("qty must be positive: %w", ErrInvalidInput), 400, "BAD_REQUEST"},
		{"unknown code", voucher.ErrUnknownCode, 400, "INVALID_CODE"},
		{"not applicable", voucher.ErrMinSpendNotMet, 400, "NOT_APPLICABLE"},
		{"not found", ErrNotFound, 404, "NOT_FOUND"},
		{"unknown kind", &voucher.UnknownKindError{Kind: "mystery"}, 500, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeError(rec, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Error.Code)
			}
		})
	}
}
