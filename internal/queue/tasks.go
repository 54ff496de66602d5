package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/noval-eka/storefront/internal/obs"
	"github.com/noval-eka/storefront/internal/repo"
)

// Task type identifiers for the maintenance worker.
const (
	TypeCartPrune      = "cart:prune"
	TypeDiscountResync = "discount:resync"
)

const defaultResyncBatch = 200

// NewCartPruneTask builds the task that removes expired carts.
func NewCartPruneTask() *asynq.Task {
	return asynq.NewTask(TypeCartPrune, nil)
}

// NewDiscountResyncTask builds the task that re-runs discount recalculation
// for carts holding vouchers that fell out of their validity window.
func NewDiscountResyncTask() *asynq.Task {
	return asynq.NewTask(TypeDiscountResync, nil)
}

// MaintenanceStore captures the cart repository methods the worker needs.
type MaintenanceStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	ListIDsWithStaleVoucher(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// Recalculator re-evaluates one cart's discount.
type Recalculator interface {
	Recalculate(ctx context.Context, cartID uuid.UUID) (repo.Cart, error)
}

// Handler processes the maintenance tasks.
type Handler struct {
	Carts       MaintenanceStore
	Checkout    Recalculator
	Log         zerolog.Logger
	Now         func() time.Time
	ResyncBatch int

	meterOnce sync.Once
	processed metric.Int64Counter
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Mux returns the task router for the asynq server.
func (h *Handler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCartPrune, h.HandleCartPrune)
	mux.HandleFunc(TypeDiscountResync, h.HandleDiscountResync)
	return mux
}

// HandleCartPrune deletes carts whose expiry has passed.
func (h *Handler) HandleCartPrune(ctx context.Context, _ *asynq.Task) error {
	pruned, err := h.Carts.DeleteExpired(ctx, h.now())
	if err != nil {
		h.count(ctx, TypeCartPrune, "error")
		return err
	}
	if obs.CartsPrunedTotal != nil {
		obs.CartsPrunedTotal.Add(float64(pruned))
	}
	h.Log.Info().Int64("pruned", pruned).Msg("expired carts removed")
	h.count(ctx, TypeCartPrune, "ok")
	return nil
}

// HandleDiscountResync recalculates carts still holding vouchers that are no
// longer active, so stale discounts get cleared even when the shopper never
// touches the cart again.
func (h *Handler) HandleDiscountResync(ctx context.Context, _ *asynq.Task) error {
	batch := h.ResyncBatch
	if batch <= 0 {
		batch = defaultResyncBatch
	}
	ids, err := h.Carts.ListIDsWithStaleVoucher(ctx, h.now(), batch)
	if err != nil {
		h.count(ctx, TypeDiscountResync, "error")
		return err
	}
	var failed int
	for _, id := range ids {
		if _, err := h.Checkout.Recalculate(ctx, id); err != nil {
			failed++
			h.Log.Error().Err(err).Str("cart_id", id.String()).Msg("discount resync failed")
		}
	}
	h.Log.Info().Int("carts", len(ids)).Int("failed", failed).Msg("stale discounts resynced")
	h.count(ctx, TypeDiscountResync, "ok")
	return nil
}

func (h *Handler) count(ctx context.Context, taskType, outcome string) {
	h.meterOnce.Do(func() {
		counter, err := obs.Meter("storefront/worker").Int64Counter("worker_tasks_processed_total")
		if err == nil {
			h.processed = counter
		}
	})
	if h.processed == nil {
		return
	}
	h.processed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("task", taskType),
			attribute.String("outcome", outcome),
		))
}
