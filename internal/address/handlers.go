package address

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noval-eka/storefront/internal/common"
)

// Handler exposes address validation over HTTP.
type Handler struct {
	Registry *Registry
}

type validateRequest struct {
	Address Address `json:"address"`
}

// Validate checks a submitted address and returns the per-field failures.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if h.Registry == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "address registry not configured", nil)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Registry.Validate(req.Address); err != nil {
		var fieldErrs FieldErrors
		if errors.As(err, &fieldErrs) {
			common.JSONError(w, http.StatusBadRequest, "INVALID_ADDRESS", "address validation failed", fieldErrs)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to validate address", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"valid": true})
}
