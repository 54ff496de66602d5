package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/noval-eka/storefront/internal/repo"
	"github.com/noval-eka/storefront/internal/voucher"
)

type stubCarts struct {
	cart  repo.Cart
	items []repo.CartItem

	updateCalls int
	lastAmount  int64
	lastName    string
	clearCalls  int
}

func (s *stubCarts) GetByID(_ context.Context, id uuid.UUID) (repo.Cart, error) {
	return s.cart, nil
}

func (s *stubCarts) ListItems(_ context.Context, _ uuid.UUID) ([]repo.CartItem, error) {
	return s.items, nil
}

func (s *stubCarts) UpdateDiscount(_ context.Context, id uuid.UUID, amount int64, name string) (repo.Cart, error) {
	s.updateCalls++
	s.lastAmount = amount
	s.lastName = name
	c := s.cart
	c.DiscountAmount = amount
	c.DiscountName = name
	return c, nil
}

func (s *stubCarts) ClearDiscount(_ context.Context, id uuid.UUID) (repo.Cart, error) {
	s.clearCalls++
	c := s.cart
	c.DiscountAmount = 0
	c.DiscountName = ""
	c.VoucherCode = nil
	return c, nil
}

type stubCatalog struct {
	products map[uuid.UUID]repo.Product
}

func (s *stubCatalog) GetProductForCart(_ context.Context, id uuid.UUID) (repo.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return repo.Product{}, errors.New("product not found")
	}
	return p, nil
}

type stubShipping struct {
	method repo.ShippingMethod
}

func (s *stubShipping) GetByID(_ context.Context, _ uuid.UUID) (repo.ShippingMethod, error) {
	return s.method, nil
}

type stubRules struct {
	rules map[string]*voucher.Rule
}

func (s *stubRules) RuleByCode(_ context.Context, code string) (*voucher.Rule, error) {
	return s.rules[code], nil
}

func newService(carts *stubCarts, rules map[string]*voucher.Rule, products map[uuid.UUID]repo.Product) *Service {
	return &Service{
		Carts:    carts,
		Catalog:  &stubCatalog{products: products},
		Shipping: &stubShipping{},
		Resolver: voucher.Resolver{Source: &stubRules{rules: rules}},
	}
}

func fixtureCart(code string) (repo.Cart, []repo.CartItem, map[uuid.UUID]repo.Product) {
	cartID := uuid.New()
	productID := uuid.New()
	cart := repo.Cart{ID: cartID}
	if code != "" {
		cart.VoucherCode = &code
	}
	items := []repo.CartItem{{ID: uuid.New(), CartID: cartID, ProductID: productID, Qty: 2, UnitPrice: 50_000, Subtotal: 100_000}}
	products := map[uuid.UUID]repo.Product{productID: {ID: productID, RequiresShipping: true}}
	return cart, items, products
}

func TestRecalculateAppliesDiscount(t *testing.T) {
	cart, items, products := fixtureCart("TEN")
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"TEN": {Code: "TEN", Name: "Ten percent", Kind: voucher.KindValue, DiscountType: voucher.DiscountPercent, PercentBps: 1000},
	}, products)

	updated, err := svc.Recalculate(context.Background(), cart.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carts.updateCalls != 1 || carts.lastAmount != 10_000 {
		t.Fatalf("expected one update of 10000, got %d calls amount %d", carts.updateCalls, carts.lastAmount)
	}
	if updated.DiscountName != "Ten percent" {
		t.Fatalf("expected rule name persisted, got %q", updated.DiscountName)
	}
}

func TestRecalculateClearsStaleCode(t *testing.T) {
	cart, items, products := fixtureCart("GONE")
	cart.DiscountAmount = 10_000
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{}, products)

	updated, err := svc.Recalculate(context.Background(), cart.ID)
	if err != nil {
		t.Fatalf("stale code must clear silently: %v", err)
	}
	if carts.clearCalls != 1 {
		t.Fatalf("expected one clear, got %d", carts.clearCalls)
	}
	if updated.DiscountAmount != 0 || updated.VoucherCode != nil {
		t.Fatalf("expected cleared cart, got %+v", updated)
	}
}

func TestRecalculateClearsWhenNotApplicable(t *testing.T) {
	cart, items, products := fixtureCart("BIG")
	cart.DiscountAmount = 5_000
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"BIG": {Code: "BIG", Kind: voucher.KindValue, DiscountType: voucher.DiscountFixed, Value: 5_000, MinSpend: 500_000},
	}, products)

	if _, err := svc.Recalculate(context.Background(), cart.ID); err != nil {
		t.Fatalf("not-applicable must clear, not fail: %v", err)
	}
	if carts.clearCalls != 1 {
		t.Fatalf("expected one clear, got %d", carts.clearCalls)
	}
}

func TestRecalculateUnknownKindPropagates(t *testing.T) {
	cart, items, products := fixtureCart("ODD")
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"ODD": {Code: "ODD", Kind: voucher.Kind("mystery"), DiscountType: voucher.DiscountFixed, Value: 1_000},
	}, products)

	_, err := svc.Recalculate(context.Background(), cart.ID)
	var unknown *voucher.UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownKindError to propagate, got %v", err)
	}
	if carts.clearCalls != 0 || carts.updateCalls != 0 {
		t.Fatal("unknown kind must not mutate the cart")
	}
}

func TestRecalculateSkipsWriteWhenUnchanged(t *testing.T) {
	cart, items, products := fixtureCart("TEN")
	cart.DiscountAmount = 10_000
	cart.DiscountName = "Ten percent"
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"TEN": {Code: "TEN", Name: "Ten percent", Kind: voucher.KindValue, DiscountType: voucher.DiscountPercent, PercentBps: 1000},
	}, products)

	if _, err := svc.Recalculate(context.Background(), cart.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carts.updateCalls != 0 || carts.clearCalls != 0 {
		t.Fatal("unchanged discount must not be rewritten")
	}
}

func TestRecalculateNoVoucherNoDiscountIsNoop(t *testing.T) {
	cart, items, products := fixtureCart("")
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, nil, products)

	if _, err := svc.Recalculate(context.Background(), cart.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carts.updateCalls != 0 || carts.clearCalls != 0 {
		t.Fatal("expected no writes for a cart without discount state")
	}
}

func TestRecalculateClearsLeftoverNameAfterDetach(t *testing.T) {
	// A percent voucher can round to a zero amount while still persisting its
	// display name. Detaching the code afterwards must clear that name too.
	cart, items, products := fixtureCart("")
	cart.DiscountAmount = 0
	cart.DiscountName = "One percent"
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, nil, products)

	updated, err := svc.Recalculate(context.Background(), cart.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carts.clearCalls != 1 {
		t.Fatalf("expected one clear, got %d", carts.clearCalls)
	}
	if updated.DiscountName != "" || updated.DiscountAmount != 0 {
		t.Fatalf("expected empty discount state, got amount=%d name=%q", updated.DiscountAmount, updated.DiscountName)
	}
}

func TestRecalculatePersistsZeroAmountWithName(t *testing.T) {
	cart, items, products := fixtureCart("ONE")
	items[0].Qty = 1
	items[0].UnitPrice = 50
	items[0].Subtotal = 50
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"ONE": {Code: "ONE", Name: "One percent", Kind: voucher.KindValue, DiscountType: voucher.DiscountPercent, PercentBps: 100},
	}, products)

	updated, err := svc.Recalculate(context.Background(), cart.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carts.updateCalls != 1 || carts.lastAmount != 0 {
		t.Fatalf("expected one update with amount 0, got %d calls amount %d", carts.updateCalls, carts.lastAmount)
	}
	if updated.DiscountName != "One percent" {
		t.Fatalf("expected rule name persisted, got %q", updated.DiscountName)
	}
}

func TestEvaluateUnknownCode(t *testing.T) {
	cart, items, products := fixtureCart("")
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{}, products)

	_, err := svc.Evaluate(context.Background(), cart.ID, "NOPE")
	if !errors.Is(err, voucher.ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode, got %v", err)
	}
}

func TestEvaluateComputesAgainstSnapshot(t *testing.T) {
	cart, items, products := fixtureCart("")
	carts := &stubCarts{cart: cart, items: items}
	svc := newService(carts, map[string]*voucher.Rule{
		"TEN": {Code: "TEN", Kind: voucher.KindValue, DiscountType: voucher.DiscountPercent, PercentBps: 1000},
	}, products)

	d, err := svc.Evaluate(context.Background(), cart.ID, "ten")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount != 10_000 {
		t.Fatalf("expected 10000 discount, got %d", d.Amount)
	}
}
