package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noval-eka/storefront/internal/repo"
)

type stubMaintenance struct {
	pruned   int64
	staleIDs []uuid.UUID
	lastNow  time.Time
}

func (s *stubMaintenance) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.lastNow = before
	return s.pruned, nil
}

func (s *stubMaintenance) ListIDsWithStaleVoucher(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	if limit < len(s.staleIDs) {
		return s.staleIDs[:limit], nil
	}
	return s.staleIDs, nil
}

type stubRecalc struct {
	calls []uuid.UUID
	fail  map[uuid.UUID]error
}

func (s *stubRecalc) Recalculate(_ context.Context, cartID uuid.UUID) (repo.Cart, error) {
	s.calls = append(s.calls, cartID)
	if err, ok := s.fail[cartID]; ok {
		return repo.Cart{}, err
	}
	return repo.Cart{ID: cartID}, nil
}

func TestHandleCartPrune(t *testing.T) {
	now := time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)
	store := &stubMaintenance{pruned: 7}
	h := &Handler{Carts: store, Now: func() time.Time { return now }}

	if err := h.HandleCartPrune(context.Background(), NewCartPruneTask()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.lastNow.Equal(now) {
		t.Fatalf("expected cutoff %v, got %v", now, store.lastNow)
	}
}

func TestHandleDiscountResyncRecalculatesEach(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	store := &stubMaintenance{staleIDs: ids}
	recalc := &stubRecalc{}
	h := &Handler{Carts: store, Checkout: recalc}

	if err := h.HandleDiscountResync(context.Background(), NewDiscountResyncTask()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recalc.calls) != len(ids) {
		t.Fatalf("expected %d recalculations, got %d", len(ids), len(recalc.calls))
	}
}

func TestHandleDiscountResyncContinuesPastFailures(t *testing.T) {
	bad := uuid.New()
	good := uuid.New()
	store := &stubMaintenance{staleIDs: []uuid.UUID{bad, good}}
	recalc := &stubRecalc{fail: map[uuid.UUID]error{bad: errors.New("boom")}}
	h := &Handler{Carts: store, Checkout: recalc}

	if err := h.HandleDiscountResync(context.Background(), NewDiscountResyncTask()); err != nil {
		t.Fatalf("per-cart failures must not abort the batch: %v", err)
	}
	if len(recalc.calls) != 2 {
		t.Fatalf("expected both carts attempted, got %d", len(recalc.calls))
	}
}
