package voucher

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noval-eka/storefront/internal/common"
	"github.com/noval-eka/storefront/internal/pricing"
	"github.com/noval-eka/storefront/internal/repo"
)

// Handler exposes administrative voucher management endpoints.
type Handler struct {
	Svc *Service
}

// Routes mounts the admin voucher endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/preview", h.Preview)
	r.Get("/{code}", h.Get)
	r.Put("/{code}", h.Update)
	r.Delete("/{code}", h.Delete)
}

// Create inserts a new voucher rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	v, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "failed to create voucher")
		return
	}
	common.JSONData(w, http.StatusCreated, v)
}

// Update replaces the rule identified by code.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	v, err := h.Svc.Update(r.Context(), code, in)
	if err != nil {
		h.writeError(w, err, "failed to update voucher")
		return
	}
	common.JSONData(w, http.StatusOK, v)
}

// Delete removes the rule identified by code.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if err := h.Svc.Delete(r.Context(), code); err != nil {
		h.writeError(w, err, "failed to delete voucher")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get returns a single voucher rule.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	v, err := h.Svc.Get(r.Context(), code)
	if err != nil {
		h.writeError(w, err, "failed to load voucher")
		return
	}
	common.JSONData(w, http.StatusOK, v)
}

// List returns a page of vouchers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	items, total, err := h.Svc.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		h.writeError(w, err, "failed to list vouchers")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

type previewRequest struct {
	Code     string           `json:"code"`
	Items    []previewItem    `json:"items"`
	Shipping *previewShipping `json:"shipping"`
}

type previewItem struct {
	ProductID        uuid.UUID  `json:"productId"`
	CategoryID       *uuid.UUID `json:"categoryId"`
	Qty              int        `json:"qty"`
	UnitPrice        int64      `json:"unitPrice"`
	RequiresShipping bool       `json:"requiresShipping"`
}

type previewShipping struct {
	MethodID    uuid.UUID `json:"methodId"`
	CountryCode string    `json:"countryCode"`
	Price       int64     `json:"price"`
}

// Preview evaluates a code against a submitted cart snapshot without
// persisting anything.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if len(req.Items) == 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "items are required for preview", nil)
		return
	}
	info := CheckoutInfo{Lines: make([]Line, 0, len(req.Items))}
	for _, it := range req.Items {
		info.Lines = append(info.Lines, Line{
			ProductID:        it.ProductID,
			CategoryID:       it.CategoryID,
			Qty:              it.Qty,
			UnitPrice:        pricing.Money(it.UnitPrice),
			RequiresShipping: it.RequiresShipping,
		})
	}
	if req.Shipping != nil {
		info.Shipping = &ShippingInfo{
			MethodID:    req.Shipping.MethodID,
			CountryCode: req.Shipping.CountryCode,
			Price:       pricing.Money(req.Shipping.Price),
		}
	}
	d, err := h.Svc.Preview(r.Context(), req.Code, info)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) || errors.Is(err, ErrNotApplicable) {
			common.JSONError(w, http.StatusBadRequest, "NOT_APPLICABLE", err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to evaluate voucher", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"discount": d.Amount, "name": d.Name, "code": NormalizeCode(req.Code)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case repo.IsUniqueViolation(err):
		common.JSONError(w, http.StatusConflict, "CONFLICT", "voucher code already exists", nil)
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, repo.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "voucher not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
