package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

// ProductLine is one product entry in a change notification.
type ProductLine struct {
	SKU      string  `json:"product_sku"`
	Quantity float64 `json:"custom_quantity"`
}

// Payload is the JSON body of a change notification. The field names
// ("odoo_db", "odoo_url") are the wire contract expected by the
// storefront plugin and must not change.
type Payload struct {
	APIKey    string        `json:"api_key"`
	Tenant    string        `json:"odoo_db"`
	BaseURL   string        `json:"odoo_url"`
	Operation Operation     `json:"operation"`
	Products  []ProductLine `json:"products"`
}

// SnapshotLine is one product entry in a full stock snapshot. It
// carries all three quantity figures so the storefront can pick.
type SnapshotLine struct {
	ProductID int64   `json:"product_id"`
	SKU       string  `json:"product_sku"`
	Name      string  `json:"product_name"`
	OnHand    float64 `json:"on_hand"`
	Forecast  float64 `json:"forecast"`
	Available float64 `json:"available"`
}

// SnapshotPayload is the JSON body of the periodic stock_update sync.
type SnapshotPayload struct {
	Timestamp string         `json:"timestamp"`
	APIKey    string         `json:"api_key"`
	Tenant    string         `json:"odoo_db"`
	BaseURL   string         `json:"odoo_url"`
	Operation Operation      `json:"operation"`
	Products  []SnapshotLine `json:"products"`
}

// StatusPayload is the JSON body of the order-status completion
// notification sent to the webhook_change_status endpoint.
type StatusPayload struct {
	StorefrontOrderID string  `json:"woocommerce_order_id"`
	Status            string  `json:"status"`
	DateDone          *string `json:"date_done"`
	APIKey            string  `json:"api_key"`
}

// Builder assembles notification payloads. Settings are read fresh on
// every build so operator changes take effect immediately; quantities
// come from the products passed in, already resolved by the caller's
// repository read. Builders perform no network I/O.
type Builder struct {
	settings repository.SettingsRepository
	tenant   string // tenant/database identifier reported in payloads
}

// NewBuilder creates a payload builder reading storefront settings
// from the given repository.
func NewBuilder(settings repository.SettingsRepository, tenant string) *Builder {
	return &Builder{settings: settings, tenant: tenant}
}

// Build assembles a change notification for the given operation and
// products. processed holds the per-product processed quantity of the
// triggering event and may be nil for operations that are not
// quantity-driven.
//
// Filtering, uniform across trigger points:
//   - products without a storefront SKU are logged and skipped;
//   - for quantity-driven operations, products whose processed
//     quantity is zero or negative are logged and skipped;
//   - if nothing remains, the build fails with ErrNoEligibleData.
//
// A missing API key fails the build with ErrConfigMissing before any
// filtering happens.
func (b *Builder) Build(ctx context.Context, op Operation, products []*entity.Product, processed map[int64]float64) (*Payload, error) {
	apiKey, baseURL, mode, err := b.readSettings(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]ProductLine, 0, len(products))
	for _, p := range products {
		if !p.Mirrored() {
			slog.Warn("product has no storefront SKU, skipping",
				slog.Int64("product_id", p.ID),
				slog.String("product_name", p.Name),
				slog.String("operation", string(op)))
			continue
		}
		if op.QuantityDriven() && processed != nil {
			if qty, ok := processed[p.ID]; ok && qty <= 0 {
				slog.Info("skipping product with non-positive processed quantity",
					slog.String("product_sku", p.SKU),
					slog.Float64("processed", qty),
					slog.String("operation", string(op)))
				continue
			}
		}
		lines = append(lines, ProductLine{
			SKU:      p.SKU,
			Quantity: ResolveQuantity(p, mode),
		})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("build %s payload: %w", op, ErrNoEligibleData)
	}

	return &Payload{
		APIKey:    apiKey,
		Tenant:    b.tenant,
		BaseURL:   baseURL,
		Operation: op,
		Products:  lines,
	}, nil
}

// BuildSnapshot assembles the full stock snapshot payload used by the
// periodic sync. Unlike Build it reports all three quantity figures
// per product; the SKU filter still applies.
func (b *Builder) BuildSnapshot(ctx context.Context, products []*entity.Product) (*SnapshotPayload, error) {
	apiKey, baseURL, _, err := b.readSettings(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]SnapshotLine, 0, len(products))
	for _, p := range products {
		if !p.Mirrored() {
			slog.Warn("product has no storefront SKU, skipping",
				slog.Int64("product_id", p.ID),
				slog.String("product_name", p.Name),
				slog.String("operation", string(OpStockUpdate)))
			continue
		}
		lines = append(lines, SnapshotLine{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			OnHand:    p.OnHand,
			Forecast:  p.Forecast,
			Available: p.Available(),
		})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("build stock snapshot: %w", ErrNoEligibleData)
	}

	return &SnapshotPayload{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		APIKey:    apiKey,
		Tenant:    b.tenant,
		BaseURL:   baseURL,
		Operation: OpStockUpdate,
		Products:  lines,
	}, nil
}

// BuildStatus assembles the order-status completion payload.
func (b *Builder) BuildStatus(ctx context.Context, storefrontOrderID string, dateDone *time.Time) (*StatusPayload, error) {
	apiKey, err := b.settings.Get(ctx, repository.SettingWebhookAPIKey, "")
	if err != nil {
		return nil, fmt.Errorf("read webhook settings: %w", err)
	}
	if apiKey == "" {
		return nil, ErrConfigMissing
	}

	var done *string
	if dateDone != nil {
		s := dateDone.UTC().Format(time.RFC3339)
		done = &s
	}
	return &StatusPayload{
		StorefrontOrderID: storefrontOrderID,
		Status:            "completed",
		DateDone:          done,
		APIKey:            apiKey,
	}, nil
}

func (b *Builder) readSettings(ctx context.Context) (apiKey, baseURL string, mode QuantityMode, err error) {
	apiKey, err = b.settings.Get(ctx, repository.SettingWebhookAPIKey, "")
	if err != nil {
		return "", "", "", fmt.Errorf("read webhook settings: %w", err)
	}
	if apiKey == "" {
		return "", "", "", ErrConfigMissing
	}
	baseURL, err = b.settings.Get(ctx, repository.SettingBaseURL, "")
	if err != nil {
		return "", "", "", fmt.Errorf("read webhook settings: %w", err)
	}
	rawMode, err := b.settings.Get(ctx, repository.SettingQuantityMode, "")
	if err != nil {
		return "", "", "", fmt.Errorf("read webhook settings: %w", err)
	}
	return apiKey, baseURL, QuantityMode(rawMode), nil
}
