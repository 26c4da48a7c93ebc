package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Order lifecycle metrics.
var (
	// OrdersConfirmedTotal counts confirmed sale orders.
	OrdersConfirmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_confirmed_total",
			Help: "Sale orders confirmed through the RPC surface",
		},
	)

	// OrdersCancelledTotal counts cancelled sale orders.
	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Sale orders cancelled through the RPC surface",
		},
	)

	// InvoicesCreatedTotal counts created invoices by move type.
	InvoicesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Invoices and credit notes created",
		},
		[]string{"move_type"}, // out_invoice | out_refund
	)

	// PaymentsRegisteredTotal counts registered payments.
	PaymentsRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_registered_total",
			Help: "Payments registered against posted invoices",
		},
	)
)

// Inventory metrics.
var (
	// DeliveriesValidatedTotal counts validated deliveries by type.
	DeliveriesValidatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deliveries_validated_total",
			Help: "Deliveries validated by delivery type",
		},
		[]string{"delivery_type"}, // outgoing | incoming
	)

	// StockSnapshotRunsTotal counts full snapshot runs by result.
	StockSnapshotRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_snapshot_runs_total",
			Help: "Periodic full stock snapshot runs by result",
		},
		[]string{"result"}, // success | failure | skipped
	)

	// StockSnapshotDuration measures snapshot run duration. The upper
	// buckets allow for catalogs of tens of thousands of products.
	StockSnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stock_snapshot_duration_seconds",
			Help:    "Duration of periodic stock snapshot runs",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120},
		},
	)
)

// Database metrics.
var (
	// DBConnectionsActive tracks in-use pool connections.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Database connections currently in use",
		},
	)

	// DBConnectionsIdle tracks idle pool connections.
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Idle database connections in the pool",
		},
	)
)
