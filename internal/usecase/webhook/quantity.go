package webhook

import (
	"log/slog"

	"commerce-bridge/internal/domain/entity"
)

// QuantityMode selects which stock figure is reported to the
// storefront. The value comes from the webhook_quantity setting.
type QuantityMode string

const (
	// QuantityOnHand reports the current on-hand quantity.
	QuantityOnHand QuantityMode = "on-hand"
	// QuantityForecast reports the projected (virtual) quantity.
	QuantityForecast QuantityMode = "forecast"
	// QuantityAvailable reports on-hand minus outgoing reservations.
	QuantityAvailable QuantityMode = "available"
)

// ResolveQuantity returns the stock figure for the configured mode.
// An unknown or unset mode falls back to on-hand with a warning; the
// resolver fails open so a bad setting degrades the numbers, not the
// delivery. Pure function of the product's current state.
func ResolveQuantity(p *entity.Product, mode QuantityMode) float64 {
	switch mode {
	case QuantityOnHand:
		return p.OnHand
	case QuantityForecast:
		return p.Forecast
	case QuantityAvailable:
		return p.Available()
	default:
		slog.Warn("invalid webhook_quantity setting, defaulting to on-hand",
			slog.String("mode", string(mode)),
			slog.String("product_sku", p.SKU))
		return p.OnHand
	}
}
