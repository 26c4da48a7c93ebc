package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for webhook dispatch monitoring
var (
	// webhookScheduledTotal counts schedule requests accepted into the registry
	webhookScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_scheduled_total",
			Help: "Total number of webhook dispatches scheduled",
		},
		[]string{"operation"},
	)

	// webhookDedupedTotal counts schedule requests collapsed by the dedup registry
	webhookDedupedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deduplicated_total",
			Help: "Total number of webhook schedule requests suppressed as duplicates",
		},
		[]string{"operation"},
	)

	// webhookSentTotal counts delivery outcomes
	webhookSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_sent_total",
			Help: "Total number of webhook deliveries",
		},
		[]string{"operation", "status"}, // status: success|failure|skipped
	)

	// webhookDispatchDuration tracks commit-to-delivery duration
	webhookDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_dispatch_duration_seconds",
			Help:    "Time from post-commit callback start to delivery outcome",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// webhookDroppedTotal counts dispatches dropped because the worker pool was saturated
	webhookDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_dropped_total",
			Help: "Total number of webhook dispatches dropped due to pool saturation",
		},
	)
)
