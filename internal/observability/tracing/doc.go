// Package tracing integrates OpenTelemetry with the bridge's HTTP
// surface. Incoming W3C trace context is continued, every request gets
// a server span, and the trace ID is echoed in X-Trace-Id for
// storefront-side correlation.
package tracing
