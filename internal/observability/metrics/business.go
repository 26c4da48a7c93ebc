package metrics

import (
	"time"
)

// RecordOrderConfirmed records a successful order confirmation.
func RecordOrderConfirmed() {
	OrdersConfirmedTotal.Inc()
}

// RecordOrderCancelled records a successful order cancellation.
func RecordOrderCancelled() {
	OrdersCancelledTotal.Inc()
}

// RecordInvoiceCreated records a created invoice or credit note.
// moveType is the posted document's move type (out_invoice, out_refund).
func RecordInvoiceCreated(moveType string) {
	InvoicesCreatedTotal.WithLabelValues(moveType).Inc()
}

// RecordPaymentRegistered records a registered payment.
func RecordPaymentRegistered() {
	PaymentsRegisteredTotal.Inc()
}

// RecordDeliveryValidated records a validated delivery.
func RecordDeliveryValidated(deliveryType string) {
	DeliveriesValidatedTotal.WithLabelValues(deliveryType).Inc()
}

// RecordSnapshotRun records the outcome of a stock snapshot run.
// result is one of success, failure, skipped.
func RecordSnapshotRun(result string, duration time.Duration) {
	StockSnapshotRunsTotal.WithLabelValues(result).Inc()
	StockSnapshotDuration.Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool gauges.
// Sampled periodically by the API server.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
