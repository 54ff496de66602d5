package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noval-eka/storefront/internal/address"
	"github.com/noval-eka/storefront/internal/common"
	"github.com/noval-eka/storefront/internal/voucher"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc      *Service
	Currency string
}

// Create creates or returns a guest cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	anonID := strings.TrimSpace(payload.AnonID)
	if anonID == "" {
		anonID = uuid.NewString()
	}
	var userID *uuid.UUID
	if sub, ok := common.UserID(r.Context()); ok {
		if uid, err := uuid.Parse(sub); err == nil {
			userID = &uid
		}
	}
	cart, err := h.Svc.EnsureCart(r.Context(), userID, &anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{
		"cartId": cart.ID,
		"anonId": anonID,
	})
}

// Get returns cart contents and the pricing preview.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":     view,
		"currency": h.Currency,
	})
}

// AddItem inserts or increments a cart item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		ProductID uuid.UUID  `json:"productId"`
		VariantID *uuid.UUID `json:"variantId"`
		Qty       int        `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.AddItem(r.Context(), cartID, payload.ProductID, payload.VariantID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// UpdateQty changes the quantity of an existing item.
func (h *Handler) UpdateQty(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.UpdateQty(r.Context(), cartID, itemID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// RemoveItem deletes a cart item.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), cartID, itemID); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// ApplyVoucher attaches a voucher code when it grants a discount.
func (h *Handler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	d, err := h.Svc.ApplyVoucher(r.Context(), cartID, payload.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"code":     voucher.NormalizeCode(payload.Code),
		"discount": d.Amount,
		"name":     d.Name,
	})
}

// RemoveVoucher detaches the attached voucher.
func (h *Handler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.RemoveVoucher(r.Context(), cartID); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// SetShippingMethod selects or clears the delivery option.
func (h *Handler) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		MethodID *uuid.UUID `json:"methodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.SetShippingMethod(r.Context(), cartID, payload.MethodID); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// SetAddresses stores validated shipping and billing addresses.
func (h *Handler) SetAddresses(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Shipping address.Address `json:"shipping"`
		Billing  address.Address `json:"billing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.SetAddresses(r.Context(), cartID, payload.Shipping, payload.Billing); err != nil {
		var fieldErrs address.FieldErrors
		if errors.As(err, &fieldErrs) {
			common.JSONError(w, http.StatusBadRequest, "INVALID_ADDRESS", "address validation failed", fieldErrs)
			return
		}
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, cartID, http.StatusOK)
}

// Merge moves the guest cart's items into the authenticated user's cart.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	sub, authed := common.UserID(r.Context())
	if !authed {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user identity", nil)
		return
	}
	merged, err := h.Svc.Merge(r.Context(), cartID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondView(w, r, merged.ID, http.StatusOK)
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, cartID uuid.UUID, status int) {
	view, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, status, view)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var unknown *voucher.UnknownKindError
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, voucher.ErrUnknownCode):
		common.JSONError(w, http.StatusBadRequest, "INVALID_CODE", "unknown or inactive voucher code", nil)
	case errors.Is(err, voucher.ErrNotApplicable):
		common.JSONError(w, http.StatusBadRequest, "NOT_APPLICABLE", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.As(err, &unknown):
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher configuration error", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
	}
}
