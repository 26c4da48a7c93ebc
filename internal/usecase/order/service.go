// Package order implements the RPC-callable order lifecycle
// operations: confirm, cancel, reset to draft, invoice creation,
// credit-note creation and payment registration. Every operation runs
// in its own unit of work, reports through the uniform Result shape
// and schedules storefront webhooks for the stock it touches.
package order

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

// Service exposes the order lifecycle operations consumed by the
// storefront integration. Methods never return an error: all failures,
// including business rule violations, are folded into the Result.
type Service interface {
	// Confirm confirms a sale order. orderDate optionally forces the
	// confirmation date; an unparseable value is logged and ignored.
	Confirm(ctx context.Context, orderID int64, orderDate string) Result

	// Cancel cancels the order linked to the given storefront order ID,
	// cancelling its open deliveries first.
	Cancel(ctx context.Context, storefrontOrderID string) Result

	// Reset moves a cancelled order back to draft.
	Reset(ctx context.Context, orderID int64) Result

	// ResetDeliveriesToWaiting moves the order's confirmed and assigned
	// deliveries back to the waiting state.
	ResetDeliveriesToWaiting(ctx context.Context, orderID int64) Result

	// SetToInvoice marks a confirmed order as ready to invoice.
	SetToInvoice(ctx context.Context, orderID int64) Result

	// CreateInvoice creates and posts an invoice for a confirmed order.
	CreateInvoice(ctx context.Context, orderID int64) Result

	// CreateCreditNote reverses a posted customer invoice into a posted
	// credit note.
	CreateCreditNote(ctx context.Context, invoiceID int64, reason string) Result

	// RegisterPayment registers a payment against a posted invoice or
	// credit note, then readies the first waiting delivery of the paid
	// order when stock suffices.
	RegisterPayment(ctx context.Context, invoiceID, journalID int64, paymentRef string) Result
}

type service struct {
	uowFactory repository.UnitOfWorkFactory
	dispatcher *webhook.Dispatcher
}

// NewService creates the order lifecycle service.
func NewService(uowFactory repository.UnitOfWorkFactory, dispatcher *webhook.Dispatcher) Service {
	return &service{uowFactory: uowFactory, dispatcher: dispatcher}
}

// orderDateLayouts are accepted formats for a forced confirmation
// date, most specific first.
var orderDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseOrderDate(raw string) (time.Time, bool) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *service) Confirm(ctx context.Context, orderID int64, orderDate string) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "confirm", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return failure(fmt.Sprintf("Sale Order with ID %d does not exist.", orderID))
	}
	if ord.IsConfirmed() {
		return failureFor(ord, fmt.Sprintf("Sale Order %s is already confirmed.", ord.Name))
	}
	if ord.State == entity.OrderCancelled {
		return failureFor(ord, fmt.Sprintf("Sale Order %s is cancelled and cannot be confirmed.", ord.Name))
	}

	if err := uow.Orders().SetState(ctx, ord.ID, entity.OrderConfirmed); err != nil {
		return s.internalFailure(ctx, "confirm", err)
	}

	if orderDate != "" {
		if forced, ok := parseOrderDate(orderDate); ok {
			slog.Info("forcing confirmation date",
				slog.Int64("order_id", ord.ID),
				slog.Time("date_order", forced))
			if err := uow.Orders().SetDateOrder(ctx, ord.ID, forced); err != nil {
				return s.internalFailure(ctx, "confirm", err)
			}
		} else {
			slog.Warn("could not parse provided order_date, ignoring",
				slog.Int64("order_id", ord.ID),
				slog.String("order_date", orderDate))
		}
	}

	// Reserve stock for the order's deliveries. The reservation's own
	// stock webhook is suppressed: the so_confirm notification below
	// covers the same products more specifically.
	suppressed := webhook.WithStockEventsSuppressed(ctx)
	if err := s.reserveDeliveries(suppressed, uow, ord); err != nil {
		return s.internalFailure(ctx, "confirm", err)
	}

	s.dispatcher.Schedule(ctx, uow, ord.ProductIDs(), webhook.OpOrderConfirm, nil)

	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "confirm", err)
	}

	metrics.RecordOrderConfirmed()
	logMsg := fmt.Sprintf("Sale Order %d confirmed successfully.", orderID)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           "Sale Order confirmed successfully.",
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
	}
}

// reserveDeliveries assigns the order's waiting deliveries and
// schedules the (suppressed) reservation webhook for their moves.
func (s *service) reserveDeliveries(ctx context.Context, uow repository.UnitOfWork, ord *entity.SaleOrder) error {
	deliveries, err := uow.Deliveries().ListByOrigin(ctx, ord.Name,
		[]entity.DeliveryState{entity.DeliveryConfirmed, entity.DeliveryWaiting})
	if err != nil {
		return fmt.Errorf("list deliveries for %s: %w", ord.Name, err)
	}
	for _, d := range deliveries {
		if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryAssigned); err != nil {
			return fmt.Errorf("assign delivery %s: %w", d.Name, err)
		}
		s.dispatcher.Schedule(ctx, uow, entity.MoveProductIDs(d.Moves), webhook.OpAssign, nil)
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, storefrontOrderID string) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "cancel", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().GetByStorefrontID(ctx, storefrontOrderID)
	if err != nil {
		msg := fmt.Sprintf("No Sales Order found for storefront order ID %s.", storefrontOrderID)
		slog.Error(msg)
		res := failure(msg)
		res.StorefrontOrderID = storefrontOrderID
		return res
	}

	if !ord.Cancellable() {
		msg := fmt.Sprintf("Sales Order %s is not in a cancellable state.", ord.Name)
		slog.Warn(msg)
		return failureFor(ord, msg)
	}

	wasConfirmed := ord.IsConfirmed()

	deliveries, err := uow.Deliveries().ListByOrigin(ctx, ord.Name, nil)
	if err != nil {
		return s.internalFailure(ctx, "cancel", err)
	}
	for _, d := range deliveries {
		if !d.Open() {
			continue
		}
		if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryCancelled); err != nil {
			msg := fmt.Sprintf("Error canceling delivery %s: %s", d.Name, err)
			slog.Error(msg)
			return failureFor(ord, msg)
		}
		slog.Info("delivery cancelled for sales order",
			slog.String("delivery", d.Name),
			slog.String("order", ord.Name))
	}

	if err := uow.Orders().SetState(ctx, ord.ID, entity.OrderCancelled); err != nil {
		return s.internalFailure(ctx, "cancel", err)
	}

	if wasConfirmed {
		s.dispatcher.Schedule(ctx, uow, ord.ProductIDs(), webhook.OpOrderCancel, nil)
	}

	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "cancel", err)
	}

	metrics.RecordOrderCancelled()
	logMsg := fmt.Sprintf("Sales Order %s has been cancelled.", ord.Name)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           "Sales Order cancelled successfully.",
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
	}
}

func (s *service) Reset(ctx context.Context, orderID int64) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "reset", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return failure(fmt.Sprintf("Sale Order with ID %d does not exist.", orderID))
	}
	if ord.State != entity.OrderCancelled {
		return failureFor(ord, fmt.Sprintf("Sale Order %d is not in a canceled state and cannot be reset.", orderID))
	}

	if err := uow.Orders().SetState(ctx, ord.ID, entity.OrderDraft); err != nil {
		return s.internalFailure(ctx, "reset", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "reset", err)
	}

	logMsg := fmt.Sprintf("Sale Order %d reset to draft successfully.", orderID)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           "Sale Order reset successfully.",
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
	}
}

// ResetDeliveriesToWaiting is the maintenance path that undoes stock
// reservations for an order: its confirmed and assigned deliveries go
// back to waiting so they can be re-released once payment arrives.
func (s *service) ResetDeliveriesToWaiting(ctx context.Context, orderID int64) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "reset_deliveries", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return failure(fmt.Sprintf("Sale Order with ID %d does not exist.", orderID))
	}

	deliveries, err := uow.Deliveries().ListByOrigin(ctx, ord.Name,
		[]entity.DeliveryState{entity.DeliveryConfirmed, entity.DeliveryAssigned})
	if err != nil {
		return s.internalFailure(ctx, "reset_deliveries", err)
	}
	if len(deliveries) == 0 {
		logMsg := fmt.Sprintf("No 'Confirmed' or 'Assigned' deliveries found for Sales Order %s.", ord.Name)
		slog.Info(logMsg)
		return Result{
			Success:           true,
			Message:           "No eligible deliveries to reset.",
			LogMessage:        logMsg,
			StorefrontOrderID: ord.StorefrontOrderID,
			SaleOrderID:       ord.ID,
		}
	}

	for _, d := range deliveries {
		if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryWaiting); err != nil {
			msg := fmt.Sprintf("Error resetting delivery %s: %s", d.Name, err)
			slog.Error(msg)
			return failureFor(ord, msg)
		}
		slog.Info("delivery reset to waiting",
			slog.String("delivery", d.Name),
			slog.String("order", ord.Name))
	}

	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "reset_deliveries", err)
	}

	logMsg := fmt.Sprintf("All eligible deliveries for %s have been reset to 'Waiting'.", ord.Name)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           "Deliveries reset to 'Waiting' successfully.",
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
	}
}

func (s *service) SetToInvoice(ctx context.Context, orderID int64) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "set_to_invoice", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return failure(fmt.Sprintf("Sale Order with ID %d does not exist.", orderID))
	}
	if !ord.IsConfirmed() {
		return failureFor(ord, fmt.Sprintf("Sale Order %s must be confirmed before invoicing.", ord.Name))
	}

	if err := uow.Orders().SetInvoiceStatus(ctx, ord.ID, entity.InvoiceStatusToInvoice); err != nil {
		return s.internalFailure(ctx, "set_to_invoice", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "set_to_invoice", err)
	}

	logMsg := fmt.Sprintf("Invoice status of Sale Order %s set to 'To Invoice'.", ord.Name)
	return Result{
		Success:           true,
		Message:           "Invoice status has been set to 'To Invoice'.",
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
	}
}

func (s *service) CreateInvoice(ctx context.Context, orderID int64) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "create_invoice", err)
	}
	defer rollback(ctx, uow)

	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return failure(fmt.Sprintf("No Sales Order found with ID %d.", orderID))
	}
	if !ord.IsConfirmed() {
		return failureFor(ord, "Invoices can only be created for Sales Orders in 'sale' or 'done' state.")
	}

	inv, err := uow.Invoices().CreateFromOrder(ctx, ord)
	if err != nil {
		msg := fmt.Sprintf("Error creating invoice for Sales Order %s: %s", ord.Name, err)
		slog.Error(msg)
		return failureFor(ord, msg)
	}
	if err := uow.Invoices().Post(ctx, inv.ID); err != nil {
		return s.internalFailure(ctx, "create_invoice", err)
	}
	if err := uow.Orders().SetInvoiceStatus(ctx, ord.ID, entity.InvoiceStatusInvoiced); err != nil {
		return s.internalFailure(ctx, "create_invoice", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "create_invoice", err)
	}

	metrics.RecordInvoiceCreated(string(entity.MoveInvoice))
	logMsg := fmt.Sprintf("Invoice(s) created and posted successfully for Sales Order %s.", ord.Name)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           fmt.Sprintf("Invoice(s) created and posted for Sales Order %s.", ord.Name),
		LogMessage:        logMsg,
		StorefrontOrderID: ord.StorefrontOrderID,
		SaleOrderID:       ord.ID,
		InvoiceIDs:        []int64{inv.ID},
	}
}

func (s *service) CreateCreditNote(ctx context.Context, invoiceID int64, reason string) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "create_credit_note", err)
	}
	defer rollback(ctx, uow)

	inv, err := uow.Invoices().Get(ctx, invoiceID)
	if err != nil {
		return failure(fmt.Sprintf("Invoice with ID %d does not exist.", invoiceID))
	}
	if inv.MoveType != entity.MoveInvoice {
		return failure(fmt.Sprintf("Document %s is not a customer invoice.", inv.Name))
	}
	if inv.State != entity.InvoicePosted {
		return failure(fmt.Sprintf("Invoice %s is not posted and cannot be reversed.", inv.Name))
	}

	note, err := uow.Invoices().CreateReversal(ctx, inv, reason)
	if err != nil {
		msg := fmt.Sprintf("Error creating credit note for Invoice %s: %s", inv.Name, err)
		slog.Error(msg)
		return failure(msg)
	}
	if err := uow.Invoices().Post(ctx, note.ID); err != nil {
		return s.internalFailure(ctx, "create_credit_note", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "create_credit_note", err)
	}

	metrics.RecordInvoiceCreated(string(entity.MoveCreditNote))
	logMsg := fmt.Sprintf("Credit Note %s created and posted for Invoice %s.", note.Name, inv.Name)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           logMsg,
		LogMessage:        logMsg,
		StorefrontOrderID: inv.StorefrontOrderID,
		CreditNoteID:      note.ID,
		InvoiceRef:        inv.Name,
		MoveType:          string(entity.MoveCreditNote),
	}
}

func (s *service) RegisterPayment(ctx context.Context, invoiceID, journalID int64, paymentRef string) Result {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return s.internalFailure(ctx, "register_payment", err)
	}
	defer rollback(ctx, uow)

	inv, err := uow.Invoices().Get(ctx, invoiceID)
	if err != nil {
		return failure(fmt.Sprintf("Invoice with ID %d does not exist.", invoiceID))
	}
	if inv.State != entity.InvoicePosted {
		return failure(fmt.Sprintf("Invoice %d is not in a posted state.", invoiceID))
	}

	journal, err := uow.Invoices().GetJournal(ctx, journalID)
	if err != nil {
		return failure(fmt.Sprintf("Journal with ID %d does not exist.", journalID))
	}

	payment, err := uow.Invoices().RegisterPayment(ctx, inv.ID, journal.ID, paymentRef)
	if err != nil {
		msg := fmt.Sprintf("Failed to register payment for invoice %d: %s", invoiceID, err)
		slog.Error(msg)
		return failure(msg)
	}
	if paymentRef != "" {
		slog.Info("payment reference recorded",
			slog.Int64("payment_id", payment.ID),
			slog.String("payment_ref", paymentRef))
	}
	if err := uow.Invoices().SetPaymentState(ctx, inv.ID, entity.PaymentPaid); err != nil {
		return s.internalFailure(ctx, "register_payment", err)
	}

	// A fully paid order releases its first waiting delivery, provided
	// stock covers every move.
	if inv.OrderID != 0 {
		if err := s.assignFirstWaitingDelivery(ctx, uow, inv.OrderID); err != nil {
			slog.Warn("could not ready delivery after payment",
				slog.Int64("order_id", inv.OrderID),
				slog.Any("error", err))
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return s.internalFailure(ctx, "register_payment", err)
	}

	metrics.RecordPaymentRegistered()
	invoiceRef := inv.Name
	if invoiceRef == "" {
		invoiceRef = fmt.Sprintf("Move ID %d", invoiceID)
	}
	logMsg := fmt.Sprintf("Payment registered successfully for %s %s using Journal '%s'.",
		inv.DocumentLabel(), invoiceRef, journal.Name)
	slog.Info(logMsg)
	return Result{
		Success:           true,
		Message:           fmt.Sprintf("Payment registered for %s %s using journal %s", inv.DocumentLabel(), invoiceRef, journal.Name),
		LogMessage:        logMsg,
		StorefrontOrderID: inv.StorefrontOrderID,
		PaymentRegisterID: payment.RegisterID,
		InvoiceRef:        invoiceRef,
		MoveType:          string(inv.MoveType),
	}
}

// assignFirstWaitingDelivery readies the oldest waiting delivery of a
// paid order when every move has enough stock on hand.
func (s *service) assignFirstWaitingDelivery(ctx context.Context, uow repository.UnitOfWork, orderID int64) error {
	ord, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return err
	}
	deliveries, err := uow.Deliveries().ListByOrigin(ctx, ord.Name,
		[]entity.DeliveryState{entity.DeliveryWaiting})
	if err != nil {
		return err
	}
	if len(deliveries) == 0 {
		slog.Info("no waiting deliveries for paid order", slog.String("order", ord.Name))
		return nil
	}

	d := deliveries[0]
	products, err := uow.Products().GetMany(ctx, entity.MoveProductIDs(d.Moves))
	if err != nil {
		return err
	}
	onHand := make(map[int64]float64, len(products))
	for _, p := range products {
		onHand[p.ID] = p.OnHand
	}
	for _, m := range d.Moves {
		if onHand[m.ProductID] < m.Demand {
			slog.Warn("not enough stock to ready delivery, keeping it waiting",
				slog.String("delivery", d.Name),
				slog.Int64("product_id", m.ProductID))
			return nil
		}
	}

	if err := uow.Deliveries().SetState(ctx, d.ID, entity.DeliveryAssigned); err != nil {
		return err
	}
	slog.Info("delivery readied after payment", slog.String("delivery", d.Name))
	return nil
}

// internalFailure logs an unexpected error and converts it into the
// uniform failure shape without leaking internals to the caller.
func (s *service) internalFailure(_ context.Context, op string, err error) Result {
	slog.Error("unexpected error during order operation",
		slog.String("operation", op),
		slog.Any("error", err))
	return failure("An unexpected error occurred.")
}

func failureFor(ord *entity.SaleOrder, msg string) Result {
	res := failure(msg)
	res.StorefrontOrderID = ord.StorefrontOrderID
	res.SaleOrderID = ord.ID
	return res
}

// rollback discards the unit of work; safe to call after Commit, where
// it is a no-op.
func rollback(ctx context.Context, uow repository.UnitOfWork) {
	_ = uow.Rollback(ctx)
}
