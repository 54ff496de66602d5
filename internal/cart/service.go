package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noval-eka/storefront/internal/address"
	"github.com/noval-eka/storefront/internal/checkout"
	"github.com/noval-eka/storefront/internal/events"
	"github.com/noval-eka/storefront/internal/pricing"
	"github.com/noval-eka/storefront/internal/repo"
	"github.com/noval-eka/storefront/internal/voucher"
)

// ErrNotFound indicates the requested cart or item could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// View is the cart as returned to clients: the row, its items, and the
// computed totals.
type View struct {
	Cart    repo.Cart       `json:"cart"`
	Items   []repo.CartItem `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// Service encapsulates cart domain operations. Every mutation that can change
// the discount outcome finishes with a recalculation pass.
type Service struct {
	Store    *repo.Store
	Checkout *checkout.Service
	Rules    *address.Registry
	Events   *events.Bus
	TTL      time.Duration
	TaxBps   int
	Now      func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EnsureCart loads or creates the active cart for the provided identifiers.
func (s *Service) EnsureCart(ctx context.Context, userID *uuid.UUID, anonID *string) (repo.Cart, error) {
	if s == nil || s.Store == nil {
		return repo.Cart{}, errors.New("cart service not configured")
	}
	expires := s.now().Add(s.ttl())

	if userID != nil {
		cart, err := s.Store.Carts.GetActiveByUser(ctx, *userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return s.create(ctx, userID, nil, expires)
		}
		if err != nil {
			return repo.Cart{}, err
		}
		_ = s.Store.Carts.Touch(ctx, cart.ID, expires)
		return cart, nil
	}

	if anonID != nil && *anonID != "" {
		cart, err := s.Store.Carts.GetActiveByAnon(ctx, *anonID)
		if errors.Is(err, pgx.ErrNoRows) {
			return s.create(ctx, nil, anonID, expires)
		}
		if err != nil {
			return repo.Cart{}, err
		}
		_ = s.Store.Carts.Touch(ctx, cart.ID, expires)
		return cart, nil
	}

	return repo.Cart{}, fmt.Errorf("user or anonymous id required: %w", ErrInvalidInput)
}

func (s *Service) create(ctx context.Context, userID *uuid.UUID, anonID *string, expires time.Time) (repo.Cart, error) {
	cart, err := s.Store.Carts.Create(ctx, userID, anonID, expires)
	if err != nil {
		return repo.Cart{}, err
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicCartCreated, cart.ID, map[string]any{})
	}
	return cart, nil
}

// Get returns the cart with its items and computed totals.
func (s *Service) Get(ctx context.Context, cartID uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	cart, err := s.Store.Carts.GetByID(ctx, cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}
	items, err := s.Store.Carts.ListItems(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	var shippingPrice pricing.Money
	if cart.ShippingMethodID != nil {
		method, err := s.Store.Shipping.GetByID(ctx, *cart.ShippingMethodID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return View{}, err
		}
		shippingPrice = pricing.Money(method.Price)
	}
	pricingItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		pricingItems = append(pricingItems, pricing.Item{Qty: int(it.Qty), UnitPrice: pricing.Money(it.UnitPrice)})
	}
	summary := pricing.Compute(pricingItems, pricing.Money(cart.DiscountAmount), s.TaxBps, shippingPrice)
	return View{Cart: cart, Items: items, Summary: summary}, nil
}

// AddItem inserts or increments a cart item, then recalculates the discount.
func (s *Service) AddItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}

	item, err := s.Store.Carts.FindItem(ctx, cartID, productID, variantID)
	if err == nil {
		newQty := item.Qty + int32(qty)
		if _, err := s.Store.Carts.UpdateItemQty(ctx, item.ID, newQty, int64(newQty)*item.UnitPrice); err != nil {
			return err
		}
		return s.finish(ctx, cartID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	product, err := s.Store.Catalog.GetProductForCart(ctx, productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product not found: %w", ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	unitPrice := product.Price
	if variantID != nil {
		variant, err := s.Store.Catalog.GetVariantForCart(ctx, *variantID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("variant not found: %w", ErrInvalidInput)
		}
		if err != nil {
			return err
		}
		if variant.ProductID != productID {
			return fmt.Errorf("variant does not belong to product: %w", ErrInvalidInput)
		}
		if variant.Stock <= 0 {
			return fmt.Errorf("variant out of stock: %w", ErrInvalidInput)
		}
		unitPrice = variant.Price
	}
	if unitPrice < 0 {
		unitPrice = 0
	}
	if _, err := s.Store.Carts.CreateItem(ctx, repo.CartItem{
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Title:     product.Title,
		Qty:       int32(qty),
		UnitPrice: unitPrice,
		Subtotal:  int64(qty) * unitPrice,
	}); err != nil {
		return err
	}
	return s.finish(ctx, cartID)
}

// UpdateQty updates the quantity for a cart item, then recalculates.
func (s *Service) UpdateQty(ctx context.Context, cartID, itemID uuid.UUID, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	item, err := s.Store.Carts.GetItemByID(ctx, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if item.CartID != cartID {
		return ErrNotFound
	}
	if _, err := s.Store.Carts.UpdateItemQty(ctx, item.ID, int32(qty), int64(qty)*item.UnitPrice); err != nil {
		return err
	}
	return s.finish(ctx, cartID)
}

// RemoveItem deletes a cart item, then recalculates.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.Carts.DeleteItem(ctx, cartID, itemID); err != nil {
		return err
	}
	return s.finish(ctx, cartID)
}

// ApplyVoucher evaluates a submitted code against the current cart and only
// attaches it when a discount would actually be granted. Rejected codes leave
// the cart untouched.
func (s *Service) ApplyVoucher(ctx context.Context, cartID uuid.UUID, code string) (voucher.Discount, error) {
	if s == nil || s.Store == nil || s.Checkout == nil {
		return voucher.Discount{}, errors.New("cart service not configured")
	}
	normalized := voucher.NormalizeCode(code)
	if normalized == "" {
		return voucher.Discount{}, fmt.Errorf("voucher code required: %w", ErrInvalidInput)
	}
	if _, err := s.Store.Carts.GetByID(ctx, cartID); errors.Is(err, pgx.ErrNoRows) {
		return voucher.Discount{}, ErrNotFound
	} else if err != nil {
		return voucher.Discount{}, err
	}

	d, err := s.Checkout.Evaluate(ctx, cartID, normalized)
	if err != nil {
		return voucher.Discount{}, err
	}
	if err := s.Store.Carts.SetVoucherCode(ctx, cartID, &normalized); err != nil {
		return voucher.Discount{}, err
	}
	if _, err := s.Checkout.Recalculate(ctx, cartID); err != nil {
		return voucher.Discount{}, err
	}
	_ = s.Store.Carts.Touch(ctx, cartID, s.now().Add(s.ttl()))
	return d, nil
}

// RemoveVoucher detaches the voucher and clears its discount.
func (s *Service) RemoveVoucher(ctx context.Context, cartID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.Carts.SetVoucherCode(ctx, cartID, nil); err != nil {
		return err
	}
	return s.finish(ctx, cartID)
}

// SetShippingMethod selects a delivery option, then recalculates since
// shipping vouchers depend on the chosen method and country.
func (s *Service) SetShippingMethod(ctx context.Context, cartID uuid.UUID, methodID *uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if methodID != nil {
		if _, err := s.Store.Shipping.GetByID(ctx, *methodID); errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("shipping method not found: %w", ErrInvalidInput)
		} else if err != nil {
			return err
		}
	}
	if err := s.Store.Carts.SetShippingMethod(ctx, cartID, methodID); err != nil {
		return err
	}
	if s.Events != nil {
		payload := map[string]any{}
		if methodID != nil {
			payload["methodId"] = methodID.String()
		}
		_, _ = s.Events.Emit(ctx, events.TopicShippingChanged, cartID, payload)
	}
	return s.finish(ctx, cartID)
}

// SetAddresses validates and stores the shipping and billing addresses.
func (s *Service) SetAddresses(ctx context.Context, cartID uuid.UUID, shipping, billing address.Address) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if s.Rules != nil {
		if err := s.Rules.Validate(shipping); err != nil {
			return err
		}
		if err := s.Rules.Validate(billing); err != nil {
			return err
		}
	}
	shippingJSON, err := json.Marshal(shipping)
	if err != nil {
		return err
	}
	billingJSON, err := json.Marshal(billing)
	if err != nil {
		return err
	}
	if err := s.Store.Carts.SetAddresses(ctx, cartID, shippingJSON, billingJSON); err != nil {
		return err
	}
	_ = s.Store.Carts.Touch(ctx, cartID, s.now().Add(s.ttl()))
	return nil
}

// Merge moves guest cart items into the user's active cart and removes the
// guest cart's item rows. It returns the resulting cart.
func (s *Service) Merge(ctx context.Context, guestCartID, userID uuid.UUID) (repo.Cart, error) {
	if s == nil || s.Store == nil {
		return repo.Cart{}, errors.New("cart service not configured")
	}
	if _, err := s.Store.Carts.GetByID(ctx, guestCartID); errors.Is(err, pgx.ErrNoRows) {
		return repo.Cart{}, ErrNotFound
	} else if err != nil {
		return repo.Cart{}, err
	}
	userCart, err := s.EnsureCart(ctx, &userID, nil)
	if err != nil {
		return repo.Cart{}, err
	}
	if userCart.ID == guestCartID {
		return userCart, nil
	}
	guestItems, err := s.Store.Carts.ListItems(ctx, guestCartID)
	if err != nil {
		return repo.Cart{}, err
	}
	for _, it := range guestItems {
		guestItemID := it.ID
		existing, err := s.Store.Carts.FindItem(ctx, userCart.ID, it.ProductID, it.VariantID)
		if err == nil {
			newQty := existing.Qty + it.Qty
			if _, err := s.Store.Carts.UpdateItemQty(ctx, existing.ID, newQty, int64(newQty)*existing.UnitPrice); err != nil {
				return repo.Cart{}, err
			}
		} else if errors.Is(err, pgx.ErrNoRows) {
			moved := it
			moved.ID = uuid.Nil
			moved.CartID = userCart.ID
			if _, err := s.Store.Carts.CreateItem(ctx, moved); err != nil {
				return repo.Cart{}, err
			}
		} else {
			return repo.Cart{}, err
		}
		if err := s.Store.Carts.DeleteItem(ctx, guestCartID, guestItemID); err != nil {
			return repo.Cart{}, err
		}
	}
	if err := s.finish(ctx, userCart.ID); err != nil {
		return repo.Cart{}, err
	}
	return s.Store.Carts.GetByID(ctx, userCart.ID)
}

// finish extends the cart lifetime and re-runs the discount recalculation.
func (s *Service) finish(ctx context.Context, cartID uuid.UUID) error {
	_ = s.Store.Carts.Touch(ctx, cartID, s.now().Add(s.ttl()))
	if s.Checkout == nil {
		return nil
	}
	_, err := s.Checkout.Recalculate(ctx, cartID)
	return err
}
