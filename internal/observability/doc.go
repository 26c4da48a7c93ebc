// Package observability groups the monitoring infrastructure of the
// bridge: structured logging, Prometheus metrics, SLO tracking and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: slog configuration and context propagation
//   - metrics: business metrics for the order and webhook pipelines
//   - slo: in-process availability and error-rate tracking
//   - tracing: OpenTelemetry HTTP middleware
package observability
