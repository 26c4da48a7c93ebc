package config

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loading health: when the config
// was last loaded and which fields fell back to defaults.
type ConfigMetrics struct {
	loadTimestamp  prometheus.Gauge
	fallbacksTotal *prometheus.CounterVec
}

// Metrics is the process-wide configuration metrics instance.
var Metrics = newConfigMetrics()

func newConfigMetrics() *ConfigMetrics {
	return &ConfigMetrics{
		loadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "config_load_timestamp_seconds",
			Help: "Unix timestamp of the last configuration load",
		}),
		fallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "config_fallbacks_total",
			Help: "Configuration values replaced by defaults, by field",
		}, []string{"field"}),
	}
}

// RecordLoad marks a completed configuration load.
func (m *ConfigMetrics) RecordLoad() {
	m.loadTimestamp.Set(float64(time.Now().Unix()))
}

// RecordFallback records a field that fell back to its default.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.fallbacksTotal.WithLabelValues(field).Inc()
}
