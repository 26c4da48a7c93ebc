// Package slo tracks whether the bridge meets its service level
// objectives. A Tracker counts requests in process and periodically
// publishes availability and error-rate gauges, so alerting does not
// depend on recording rules being installed.
package slo

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"commerce-bridge/internal/handler/http/responsewriter"
)

// SLO targets for the RPC surface.
const (
	// AvailabilitySLO is the target uptime percentage (99.9% allows
	// about 43 minutes of downtime per month).
	AvailabilitySLO = 99.9

	// ErrorRateSLO is the maximum acceptable 5xx ratio.
	ErrorRateSLO = 0.001
)

var (
	sloAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Availability ratio over the last update interval (0-1), target: 0.999",
		},
	)

	sloErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "5xx error ratio over the last update interval (0-1), target: 0.001",
		},
	)
)

// Tracker accumulates request outcomes between gauge updates.
type Tracker struct {
	total  atomic.Int64
	errors atomic.Int64
}

// NewTracker creates an SLO tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Middleware counts every request and its 5xx outcome.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := responsewriter.Wrap(w)
		next.ServeHTTP(wrapped, r)

		t.total.Add(1)
		if wrapped.StatusCode() >= 500 {
			t.errors.Add(1)
		}
	})
}

// Run updates the gauges every interval until the context is
// cancelled. Counters reset on each update, so the gauges reflect the
// last interval rather than the process lifetime.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.publish()
		}
	}
}

func (t *Tracker) publish() {
	total := t.total.Swap(0)
	errors := t.errors.Swap(0)
	if total == 0 {
		// No traffic: report full availability rather than NaN.
		sloAvailability.Set(1)
		sloErrorRate.Set(0)
		return
	}
	sloAvailability.Set(float64(total-errors) / float64(total))
	sloErrorRate.Set(float64(errors) / float64(total))
}
