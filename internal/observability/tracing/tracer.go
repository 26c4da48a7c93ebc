package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("commerce-bridge")

// GetTracer returns the tracer used for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}
