package webhook

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const suppressStockEventsKey contextKey = "suppress_stock_events"

// WithStockEventsSuppressed marks the context so that low-level stock
// event hooks (done/assign/cancel) skip their own webhook. Order-level
// hooks set this before delegating to stock logic, because they emit a
// more specific notification for the same products themselves.
func WithStockEventsSuppressed(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressStockEventsKey, true)
}

// StockEventsSuppressed reports whether low-level stock event webhooks
// are suppressed in this context.
func StockEventsSuppressed(ctx context.Context) bool {
	suppressed, _ := ctx.Value(suppressStockEventsKey).(bool)
	return suppressed
}
