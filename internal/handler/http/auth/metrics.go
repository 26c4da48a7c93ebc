package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by result",
		},
		[]string{"result"}, // success | failure
	)

	forbiddenAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forbidden_attempts_total",
			Help: "Requests rejected for carrying a non-service role",
		},
		[]string{"method"},
	)
)

// RecordAuthRequest records a token request outcome.
func RecordAuthRequest(result string) {
	authRequestsTotal.WithLabelValues(result).Inc()
}

// RecordForbidden records a request rejected on role grounds.
func RecordForbidden(method string) {
	forbiddenAttempts.WithLabelValues(method).Inc()
}
