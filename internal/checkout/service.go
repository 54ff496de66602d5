package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noval-eka/storefront/internal/events"
	"github.com/noval-eka/storefront/internal/obs"
	"github.com/noval-eka/storefront/internal/pricing"
	"github.com/noval-eka/storefront/internal/repo"
	"github.com/noval-eka/storefront/internal/voucher"
)

// CartStore captures the cart persistence methods the recalculation needs.
type CartStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repo.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]repo.CartItem, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, amount int64, name string) (repo.Cart, error)
	ClearDiscount(ctx context.Context, id uuid.UUID) (repo.Cart, error)
}

// CatalogStore loads the product fields needed to scope discounts.
type CatalogStore interface {
	GetProductForCart(ctx context.Context, id uuid.UUID) (repo.Product, error)
}

// ShippingStore loads the selected delivery option.
type ShippingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repo.ShippingMethod, error)
}

// Service recomputes the discount stored on a cart whenever its contents,
// shipping selection, or attached voucher change.
type Service struct {
	Carts    CartStore
	Catalog  CatalogStore
	Shipping ShippingStore
	Resolver voucher.Resolver
	Events   *events.Bus
	Log      zerolog.Logger
	Now      func() time.Time
}

// Snapshot builds the engine's view of a cart from persisted rows.
func (s *Service) Snapshot(ctx context.Context, cart repo.Cart, items []repo.CartItem) (voucher.CheckoutInfo, error) {
	info := voucher.CheckoutInfo{Lines: make([]voucher.Line, 0, len(items))}
	products := make(map[uuid.UUID]repo.Product, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			var err error
			p, err = s.Catalog.GetProductForCart(ctx, it.ProductID)
			if err != nil {
				return voucher.CheckoutInfo{}, err
			}
			products[it.ProductID] = p
		}
		info.Lines = append(info.Lines, voucher.Line{
			ProductID:        it.ProductID,
			CategoryID:       p.CategoryID,
			Qty:              int(it.Qty),
			UnitPrice:        pricing.Money(it.UnitPrice),
			RequiresShipping: p.RequiresShipping,
		})
	}
	if cart.ShippingMethodID != nil {
		m, err := s.Shipping.GetByID(ctx, *cart.ShippingMethodID)
		if err != nil {
			return voucher.CheckoutInfo{}, err
		}
		info.Shipping = &voucher.ShippingInfo{
			MethodID:    m.ID,
			CountryCode: m.CountryCode,
			Price:       pricing.Money(m.Price),
		}
	}
	return info, nil
}

// Recalculate re-evaluates the cart's attached voucher and persists the
// resulting discount. A code that no longer resolves, or a rule whose
// conditions are no longer met, clears the stored discount; any other engine
// failure (including an unrecognised voucher kind) aborts and propagates.
// The cart row is only written when the stored discount actually changes.
func (s *Service) Recalculate(ctx context.Context, cartID uuid.UUID) (repo.Cart, error) {
	if s == nil || s.Carts == nil {
		return repo.Cart{}, errors.New("checkout service not configured")
	}
	cart, err := s.Carts.GetByID(ctx, cartID)
	if err != nil {
		return repo.Cart{}, err
	}
	if cart.VoucherCode == nil && cart.DiscountAmount == 0 && cart.DiscountName == "" {
		return cart, nil
	}
	items, err := s.Carts.ListItems(ctx, cartID)
	if err != nil {
		return repo.Cart{}, err
	}
	info, err := s.Snapshot(ctx, cart, items)
	if err != nil {
		return repo.Cart{}, err
	}

	rule, err := s.Resolver.Resolve(ctx, cart.VoucherCode)
	if err != nil {
		return repo.Cart{}, err
	}
	if rule == nil {
		return s.clear(ctx, cart, "stale_code")
	}

	d, err := voucher.Compute(*rule, info)
	if errors.Is(err, voucher.ErrNotApplicable) {
		return s.clear(ctx, cart, "not_applicable")
	}
	if err != nil {
		return repo.Cart{}, err
	}

	if d.Amount == cart.DiscountAmount && d.Name == cart.DiscountName {
		return cart, nil
	}
	updated, err := s.Carts.UpdateDiscount(ctx, cart.ID, d.Amount, d.Name)
	if err != nil {
		return repo.Cart{}, err
	}
	if obs.VoucherAppliedTotal != nil {
		obs.VoucherAppliedTotal.WithLabelValues(string(rule.Kind)).Inc()
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicVoucherApplied, cart.ID, map[string]any{
			"code":   rule.Code,
			"kind":   string(rule.Kind),
			"amount": d.Amount,
		})
	}
	return updated, nil
}

// Evaluate resolves and computes a submitted code against the current cart
// without persisting anything. Unknown and inactive codes return
// voucher.ErrUnknownCode so apply-time callers can reject them up front.
func (s *Service) Evaluate(ctx context.Context, cartID uuid.UUID, code string) (voucher.Discount, error) {
	if s == nil || s.Carts == nil {
		return voucher.Discount{}, errors.New("checkout service not configured")
	}
	cart, err := s.Carts.GetByID(ctx, cartID)
	if err != nil {
		return voucher.Discount{}, err
	}
	items, err := s.Carts.ListItems(ctx, cartID)
	if err != nil {
		return voucher.Discount{}, err
	}
	info, err := s.Snapshot(ctx, cart, items)
	if err != nil {
		return voucher.Discount{}, err
	}
	rule, err := s.Resolver.Resolve(ctx, &code)
	if err != nil {
		return voucher.Discount{}, err
	}
	if rule == nil {
		return voucher.Discount{}, voucher.ErrUnknownCode
	}
	return voucher.Compute(*rule, info)
}

func (s *Service) clear(ctx context.Context, cart repo.Cart, reason string) (repo.Cart, error) {
	if cart.VoucherCode == nil && cart.DiscountAmount == 0 && cart.DiscountName == "" {
		return cart, nil
	}
	code := ""
	if cart.VoucherCode != nil {
		code = *cart.VoucherCode
	}
	updated, err := s.Carts.ClearDiscount(ctx, cart.ID)
	if err != nil {
		return repo.Cart{}, err
	}
	if obs.VoucherClearedTotal != nil {
		obs.VoucherClearedTotal.WithLabelValues(reason).Inc()
	}
	s.Log.Info().
		Str("cart_id", cart.ID.String()).
		Str("code", code).
		Str("reason", reason).
		Msg("cart discount cleared")
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicVoucherCleared, cart.ID, map[string]any{
			"code":   code,
			"reason": reason,
		})
	}
	return updated, nil
}
