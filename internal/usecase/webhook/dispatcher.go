package webhook

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

const (
	// poolSlotTimeout bounds how long a post-commit callback waits for
	// a worker slot before the dispatch is dropped.
	poolSlotTimeout = 5 * time.Second

	// dispatchTimeout bounds one complete dispatch: fresh reads,
	// payload build and delivery including retries.
	dispatchTimeout = 30 * time.Second
)

// Dispatcher schedules change notifications for delivery after the
// triggering unit of work commits.
//
// Schedule is called from business hooks while their transaction is
// still open. It consults the dedup registry, then registers a commit
// hook; the hook hands the actual work to a bounded background pool so
// webhook latency never reaches the user-facing operation. The
// background dispatch re-reads the affected products in a fresh
// repository scope, because the triggering transaction's data is gone
// by the time it runs.
type Dispatcher struct {
	registry Registry
	builder  *Builder
	sender   Sender
	reader   repository.Reader

	pool chan struct{}
	wg   sync.WaitGroup
}

// NewDispatcher creates a dispatcher delivering at most maxConcurrent
// notifications at a time.
func NewDispatcher(registry Registry, builder *Builder, sender Sender, reader repository.Reader, maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Dispatcher{
		registry: registry,
		builder:  builder,
		sender:   sender,
		reader:   reader,
		pool:     make(chan struct{}, maxConcurrent),
	}
}

// Schedule requests a notification for the given products once uow
// commits. It is a no-op when the product set is empty, when the
// context suppresses low-level stock events for this operation, or
// when an equivalent notification is already pending in the dedup
// window. Never returns an error: scheduling problems are logged.
//
// processed optionally carries the per-product processed quantity of
// the triggering event; the payload builder uses it to drop products
// whose relevant quantity change is not positive.
func (d *Dispatcher) Schedule(ctx context.Context, uow repository.UnitOfWork, productIDs []int64, op Operation, processed map[int64]float64) {
	if len(productIDs) == 0 {
		slog.Debug("webhook schedule skipped: no affected products",
			slog.String("operation", string(op)))
		return
	}
	if op.StockEvent() && StockEventsSuppressed(ctx) {
		slog.Info("webhook suppressed: order-level hook will notify",
			slog.String("operation", string(op)),
			slog.Int("products", len(productIDs)))
		return
	}
	if d.registry.IsScheduled(productIDs, op) {
		webhookDedupedTotal.WithLabelValues(string(op)).Inc()
		slog.Info("skipped duplicate webhook",
			slog.String("operation", string(op)),
			slog.Int("products", len(productIDs)))
		return
	}

	key := d.registry.MarkScheduled(productIDs, op)
	webhookScheduledTotal.WithLabelValues(string(op)).Inc()

	// Copy the IDs: the commit hook outlives the caller's slice.
	ids := make([]int64, len(productIDs))
	copy(ids, productIDs)
	var quantities map[int64]float64
	if processed != nil {
		quantities = make(map[int64]float64, len(processed))
		for id, qty := range processed {
			quantities[id] = qty
		}
	}

	uow.OnCommit(func(context.Context) {
		d.enqueue(key, ids, op, quantities)
	})

	slog.Info("scheduled webhook",
		slog.String("operation", string(op)),
		slog.String("dedup_key", key),
		slog.Int("products", len(ids)))
}

// enqueue hands a committed dispatch to the worker pool. It returns
// immediately; the commit hook must not block the committing request.
func (d *Dispatcher) enqueue(key string, ids []int64, op Operation, processed map[int64]float64) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		select {
		case d.pool <- struct{}{}:
			defer func() { <-d.pool }()
		case <-time.After(poolSlotTimeout):
			webhookDroppedTotal.Inc()
			d.registry.Release(key)
			slog.Error("webhook dropped: worker pool saturated",
				slog.String("operation", string(op)),
				slog.String("dedup_key", key))
			return
		}

		d.dispatch(key, ids, op, processed)
	}()
}

// dispatch performs one deferred delivery. All failures are logged and
// contained; a panic in payload assembly must not take the worker
// down.
func (d *Dispatcher) dispatch(key string, ids []int64, op Operation, processed map[int64]float64) {
	defer d.registry.Release(key)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during webhook dispatch",
				slog.String("operation", string(op)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	dispatchID := uuid.New().String()
	logger := slog.With(
		slog.String("dispatch_id", dispatchID),
		slog.String("operation", string(op)))

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	url, err := d.reader.Settings().Get(ctx, repository.SettingWebhookStockURL, "")
	if err != nil {
		logger.Error("read webhook url", slog.Any("error", err))
		return
	}
	if url == "" {
		webhookSentTotal.WithLabelValues(string(op), "skipped").Inc()
		logger.Info("webhook url not configured, skipping")
		return
	}
	if err := entity.ValidateWebhookURL(url); err != nil {
		webhookSentTotal.WithLabelValues(string(op), "skipped").Inc()
		logger.Error("webhook url rejected", slog.Any("error", err))
		return
	}

	// Fresh read: the triggering transaction is gone.
	products, err := d.reader.Products().GetMany(ctx, ids)
	if err != nil {
		logger.Error("re-fetch products for webhook", slog.Any("error", err))
		return
	}

	payload, err := d.builder.Build(ctx, op, products, processed)
	if err != nil {
		webhookSentTotal.WithLabelValues(string(op), "skipped").Inc()
		logger.Warn("webhook payload not built", slog.Any("error", err))
		return
	}

	if d.sender.Send(ctx, url, payload) {
		webhookSentTotal.WithLabelValues(string(op), "success").Inc()
		logger.Info("webhook dispatched",
			slog.Int("products", len(payload.Products)),
			slog.Duration("elapsed", time.Since(start)))
	} else {
		webhookSentTotal.WithLabelValues(string(op), "failure").Inc()
	}
	webhookDispatchDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

// ScheduleStatus requests an order-status completion notification for
// the given storefront order once uow commits. It posts to the
// secondary webhook_change_status endpoint and follows the same
// containment rules as Schedule: failures are logged, never surfaced.
func (d *Dispatcher) ScheduleStatus(_ context.Context, uow repository.UnitOfWork, storefrontOrderID string, dateDone *time.Time) {
	if storefrontOrderID == "" {
		return
	}
	uow.OnCommit(func(context.Context) {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()

			select {
			case d.pool <- struct{}{}:
				defer func() { <-d.pool }()
			case <-time.After(poolSlotTimeout):
				webhookDroppedTotal.Inc()
				slog.Error("order-status webhook dropped: worker pool saturated",
					slog.String("storefront_order_id", storefrontOrderID))
				return
			}

			d.dispatchStatus(storefrontOrderID, dateDone)
		}()
	})
	slog.Info("scheduled order-status webhook",
		slog.String("storefront_order_id", storefrontOrderID))
}

// dispatchStatus delivers one order-status completion notification.
func (d *Dispatcher) dispatchStatus(storefrontOrderID string, dateDone *time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during order-status webhook dispatch",
				slog.String("storefront_order_id", storefrontOrderID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	logger := slog.With(
		slog.String("dispatch_id", uuid.New().String()),
		slog.String("storefront_order_id", storefrontOrderID))

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	url, err := d.reader.Settings().Get(ctx, repository.SettingWebhookStatusURL, "")
	if err != nil {
		logger.Error("read order-status webhook url", slog.Any("error", err))
		return
	}
	if url == "" {
		logger.Info("order-status webhook url not configured, skipping")
		return
	}
	if err := entity.ValidateWebhookURL(url); err != nil {
		logger.Error("order-status webhook url rejected", slog.Any("error", err))
		return
	}

	payload, err := d.builder.BuildStatus(ctx, storefrontOrderID, dateDone)
	if err != nil {
		logger.Warn("order-status payload not built", slog.Any("error", err))
		return
	}

	if d.sender.Send(ctx, url, payload) {
		webhookSentTotal.WithLabelValues("order_status", "success").Inc()
		logger.Info("order-status webhook dispatched")
	} else {
		webhookSentTotal.WithLabelValues("order_status", "failure").Inc()
	}
}

// Shutdown waits for in-flight dispatches to finish, or returns the
// context error on timeout. There is no cancellation: a dispatch that
// reached the pool runs to completion or exhausts its retries.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("webhook dispatcher drained")
		return nil
	case <-ctx.Done():
		slog.Warn("webhook dispatcher shutdown timed out", slog.Any("error", ctx.Err()))
		return ctx.Err()
	}
}
