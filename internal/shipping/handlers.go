package shipping

import (
	"net/http"

	"github.com/noval-eka/storefront/internal/common"
	"github.com/noval-eka/storefront/internal/repo"
)

// Handler exposes shipping method listings.
type Handler struct {
	Svc *Service
}

// List returns the methods deliverable to the requested country.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping service not configured", nil)
		return
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "country query parameter is required", nil)
		return
	}
	methods, err := h.Svc.ListForCountry(r.Context(), country)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list shipping methods", nil)
		return
	}
	if methods == nil {
		methods = []repo.ShippingMethod{}
	}
	common.JSONData(w, http.StatusOK, methods)
}
