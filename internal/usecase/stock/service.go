// Package stock implements the inventory-side trigger points of the
// storefront bridge: delivery validation, reservation and cancellation,
// manual adjustments, manufacturing completion and the periodic full
// stock snapshot. Each trigger runs its state change in a unit of work
// and schedules the matching change notification for after commit.
package stock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/observability/metrics"
	"commerce-bridge/internal/repository"
	"commerce-bridge/internal/usecase/webhook"
)

// Service exposes the stock operations that feed the storefront
// webhook pipeline.
type Service interface {
	// ValidateDelivery completes a delivery: moves are marked done, the
	// matching notification (purchase, return or done) is scheduled, and
	// when the delivery finishes its storefront order an order-status
	// completion notification goes out exactly once.
	ValidateDelivery(ctx context.Context, deliveryID int64) error

	// ReserveDelivery reserves stock for a delivery (state assigned) and
	// schedules an assign notification.
	ReserveDelivery(ctx context.Context, deliveryID int64) error

	// CancelDelivery cancels a delivery and schedules a cancel
	// notification for the quantities that were reserved.
	CancelDelivery(ctx context.Context, deliveryID int64) error

	// AdjustQuantity applies a manual inventory adjustment and schedules
	// a manual notification.
	AdjustQuantity(ctx context.Context, productID int64, newOnHand float64) error

	// CompleteBuild records a finished manufacturing order producing qty
	// units of the product and schedules a build notification.
	CompleteBuild(ctx context.Context, productID int64, qty float64) error

	// CompleteUnbuild records an unbuilt manufacturing order consuming
	// qty units of the product and schedules an unbuild notification.
	CompleteUnbuild(ctx context.Context, productID int64, qty float64) error

	// RegisterDirectSale records an over-the-counter sale of the given
	// quantities and schedules a sale notification.
	RegisterDirectSale(ctx context.Context, quantities map[int64]float64) error
}

type service struct {
	uowFactory repository.UnitOfWorkFactory
	dispatcher *webhook.Dispatcher
}

// NewService creates the stock trigger service.
func NewService(uowFactory repository.UnitOfWorkFactory, dispatcher *webhook.Dispatcher) Service {
	return &service{uowFactory: uowFactory, dispatcher: dispatcher}
}

func (s *service) ValidateDelivery(ctx context.Context, deliveryID int64) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	d, err := uow.Deliveries().Get(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("load delivery %d: %w", deliveryID, err)
	}
	if d.State == entity.DeliveryDone {
		return entity.BusinessRuleError("delivery %s is already done", d.Name)
	}
	if d.State == entity.DeliveryCancelled {
		return entity.BusinessRuleError("delivery %s is cancelled and cannot be validated", d.Name)
	}

	if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryDone); err != nil {
		return fmt.Errorf("complete delivery %s: %w", d.Name, err)
	}

	op := classifyValidation(d)
	processed := processedQuantities(d.Moves)
	s.dispatcher.Schedule(ctx, uow, entity.MoveProductIDs(d.Moves), op, processed)

	if d.StorefrontOrderID != "" {
		if err := s.checkOrderCompletion(ctx, uow, d); err != nil {
			// Completion detection must never block the validation.
			slog.Error("order completion check failed",
				slog.String("delivery", d.Name),
				slog.Any("error", err))
		}
	}

	if op == webhook.OpPurchase {
		if err := s.releasePaidOrderDeliveries(ctx, uow, d); err != nil {
			// Releasing held deliveries must never block the receipt.
			slog.Error("paid order delivery release failed",
				slog.String("delivery", d.Name),
				slog.Any("error", err))
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit delivery validation: %w", err)
	}

	metrics.RecordDeliveryValidated(string(d.Type))
	slog.Info("delivery validated",
		slog.String("delivery", d.Name),
		slog.String("operation", string(op)))
	return nil
}

// classifyValidation picks the notification operation for a completed
// delivery: receipts report purchase, customer returns report return,
// everything else reports done.
func classifyValidation(d *entity.Delivery) webhook.Operation {
	if d.Type == entity.DeliveryIncoming {
		for _, m := range d.Moves {
			if m.IsReturn() {
				return webhook.OpReturn
			}
		}
		return webhook.OpPurchase
	}
	return webhook.OpDone
}

// processedQuantities sums the done quantity per product across the
// delivery's moves.
func processedQuantities(moves []entity.StockMove) map[int64]float64 {
	out := make(map[int64]float64, len(moves))
	for _, m := range moves {
		out[m.ProductID] += m.DoneQuantity
	}
	return out
}

// checkOrderCompletion schedules the order-status completion
// notification when every outgoing delivery of the storefront order is
// done and none has notified yet.
func (s *service) checkOrderCompletion(ctx context.Context, uow repository.UnitOfWork, justDone *entity.Delivery) error {
	deliveries, err := uow.Deliveries().ListByStorefrontOrder(ctx, justDone.StorefrontOrderID)
	if err != nil {
		return fmt.Errorf("list storefront deliveries: %w", err)
	}

	for _, d := range deliveries {
		if d.WebhookSent {
			slog.Info("order completion already notified, skipping",
				slog.String("storefront_order_id", justDone.StorefrontOrderID))
			return nil
		}
		// The delivery just validated still reads its old state inside
		// the open transaction on some drivers, so treat it as done.
		if d.ID != justDone.ID && d.State != entity.DeliveryDone {
			return nil
		}
	}

	dateDone := justDone.DateDone
	if dateDone == nil {
		now := time.Now().UTC()
		dateDone = &now
	}
	s.dispatcher.ScheduleStatus(ctx, uow, justDone.StorefrontOrderID, dateDone)
	if err := uow.Deliveries().MarkWebhookSent(ctx, justDone.StorefrontOrderID); err != nil {
		return fmt.Errorf("mark completion notified: %w", err)
	}
	return nil
}

// releasePaidOrderDeliveries readies the first waiting delivery of
// every invoiced, fully paid sale order containing a product the
// receipt just restocked, provided on-hand stock covers each move.
// Counterpart of the payment-side release: a held order is freed by
// whichever comes last, payment or restock.
func (s *service) releasePaidOrderDeliveries(ctx context.Context, uow repository.UnitOfWork, receipt *entity.Delivery) error {
	received := receivedProductIDs(receipt.Moves)
	if len(received) == 0 {
		return nil
	}

	orders, err := uow.Orders().ListPaidContaining(ctx, received)
	if err != nil {
		return fmt.Errorf("list paid orders for received products: %w", err)
	}

	for _, ord := range orders {
		deliveries, err := uow.Deliveries().ListByOrigin(ctx, ord.Name,
			[]entity.DeliveryState{entity.DeliveryWaiting})
		if err != nil {
			return fmt.Errorf("list waiting deliveries for %s: %w", ord.Name, err)
		}
		if len(deliveries) == 0 {
			continue
		}
		d := deliveries[0]

		products, err := uow.Products().GetMany(ctx, entity.MoveProductIDs(d.Moves))
		if err != nil {
			return fmt.Errorf("load products for %s: %w", d.Name, err)
		}
		onHand := make(map[int64]float64, len(products))
		for _, p := range products {
			onHand[p.ID] = p.OnHand
		}
		covered := true
		for _, m := range d.Moves {
			if onHand[m.ProductID] < m.Demand {
				slog.Info("stock still short, keeping delivery waiting",
					slog.String("delivery", d.Name),
					slog.Int64("product_id", m.ProductID))
				covered = false
				break
			}
		}
		if !covered {
			continue
		}

		if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryAssigned); err != nil {
			return fmt.Errorf("ready delivery %s: %w", d.Name, err)
		}
		s.dispatcher.Schedule(ctx, uow, entity.MoveProductIDs(d.Moves), webhook.OpAssign, demandQuantities(d.Moves))
		slog.Info("delivery readied after restock",
			slog.String("delivery", d.Name),
			slog.String("order", ord.Name))
	}
	return nil
}

// receivedProductIDs lists the products a receipt actually restocked.
func receivedProductIDs(moves []entity.StockMove) []int64 {
	seen := make(map[int64]bool, len(moves))
	var out []int64
	for _, m := range moves {
		if m.DoneQuantity <= 0 || seen[m.ProductID] {
			continue
		}
		seen[m.ProductID] = true
		out = append(out, m.ProductID)
	}
	return out
}

func (s *service) ReserveDelivery(ctx context.Context, deliveryID int64) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	d, err := uow.Deliveries().Get(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("load delivery %d: %w", deliveryID, err)
	}
	if !d.Open() {
		return entity.BusinessRuleError("delivery %s can no longer be reserved", d.Name)
	}

	if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryAssigned); err != nil {
		return fmt.Errorf("reserve delivery %s: %w", d.Name, err)
	}

	s.dispatcher.Schedule(ctx, uow, entity.MoveProductIDs(d.Moves), webhook.OpAssign, demandQuantities(d.Moves))

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

func (s *service) CancelDelivery(ctx context.Context, deliveryID int64) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	d, err := uow.Deliveries().Get(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("load delivery %d: %w", deliveryID, err)
	}
	if !d.Open() {
		return entity.BusinessRuleError("delivery %s can no longer be cancelled", d.Name)
	}

	if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryCancelled); err != nil {
		return fmt.Errorf("cancel delivery %s: %w", d.Name, err)
	}

	s.dispatcher.Schedule(ctx, uow, entity.MoveProductIDs(d.Moves), webhook.OpCancel, demandQuantities(d.Moves))

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancellation: %w", err)
	}
	return nil
}

// demandQuantities sums the requested quantity per product, used for
// reservation and cancellation notifications where nothing has been
// processed yet.
func demandQuantities(moves []entity.StockMove) map[int64]float64 {
	out := make(map[int64]float64, len(moves))
	for _, m := range moves {
		out[m.ProductID] += m.Demand
	}
	return out
}

func (s *service) AdjustQuantity(ctx context.Context, productID int64, newOnHand float64) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	p, err := uow.Products().Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}

	delta := newOnHand - p.OnHand
	p.OnHand = newOnHand
	p.Forecast += delta
	if err := uow.Products().UpdateQuantities(ctx, p); err != nil {
		return fmt.Errorf("adjust product %s: %w", p.SKU, err)
	}

	s.dispatcher.Schedule(ctx, uow, []int64{p.ID}, webhook.OpManual, nil)

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit adjustment: %w", err)
	}

	slog.Info("inventory adjusted",
		slog.Int64("product_id", p.ID),
		slog.Float64("on_hand", newOnHand),
		slog.Float64("delta", delta))
	return nil
}

func (s *service) CompleteBuild(ctx context.Context, productID int64, qty float64) error {
	return s.manufacture(ctx, productID, qty, webhook.OpBuild)
}

func (s *service) CompleteUnbuild(ctx context.Context, productID int64, qty float64) error {
	return s.manufacture(ctx, productID, qty, webhook.OpUnbuild)
}

func (s *service) manufacture(ctx context.Context, productID int64, qty float64, op webhook.Operation) error {
	if qty <= 0 {
		return entity.BusinessRuleError("manufacturing quantity must be positive, got %v", qty)
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	p, err := uow.Products().Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}

	delta := qty
	if op == webhook.OpUnbuild {
		delta = -qty
	}
	p.OnHand += delta
	p.Forecast += delta
	if err := uow.Products().UpdateQuantities(ctx, p); err != nil {
		return fmt.Errorf("update product %s: %w", p.SKU, err)
	}

	s.dispatcher.Schedule(ctx, uow, []int64{p.ID}, op, map[int64]float64{p.ID: qty})

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit manufacturing change: %w", err)
	}
	return nil
}

func (s *service) RegisterDirectSale(ctx context.Context, quantities map[int64]float64) error {
	if len(quantities) == 0 {
		return entity.BusinessRuleError("direct sale needs at least one product")
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer rollback(ctx, uow)

	ids := make([]int64, 0, len(quantities))
	for id, qty := range quantities {
		p, err := uow.Products().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("load product %d: %w", id, err)
		}
		p.OnHand -= qty
		p.Forecast -= qty
		if err := uow.Products().UpdateQuantities(ctx, p); err != nil {
			return fmt.Errorf("update product %s: %w", p.SKU, err)
		}
		ids = append(ids, id)
	}

	s.dispatcher.Schedule(ctx, uow, ids, webhook.OpSale, quantities)

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit direct sale: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, uow repository.UnitOfWork) {
	_ = uow.Rollback(ctx)
}
