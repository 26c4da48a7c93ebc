package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/observability/metrics"
	"commerce-bridge/internal/repository"
	"commerce-bridge/internal/usecase/webhook"
)

// Snapshotter pushes a full stock snapshot to the storefront. The
// worker runs it on a schedule so the storefront converges even when
// individual change notifications were lost.
type Snapshotter struct {
	reader  repository.Reader
	builder *webhook.Builder
	sender  webhook.Sender
}

// NewSnapshotter creates a periodic snapshot pusher.
func NewSnapshotter(reader repository.Reader, builder *webhook.Builder, sender webhook.Sender) *Snapshotter {
	return &Snapshotter{reader: reader, builder: builder, sender: sender}
}

// Run performs one snapshot push. It is safe to call concurrently with
// regular dispatches; the snapshot bypasses the dedup registry because
// it is already rate-limited by its schedule.
func (s *Snapshotter) Run(ctx context.Context) error {
	start := time.Now()

	url, err := s.reader.Settings().Get(ctx, repository.SettingWebhookStockURL, "")
	if err != nil {
		return fmt.Errorf("read webhook url: %w", err)
	}
	if url == "" {
		slog.Info("stock snapshot skipped: webhook url not configured")
		metrics.RecordSnapshotRun("skipped", time.Since(start))
		return nil
	}
	if err := entity.ValidateWebhookURL(url); err != nil {
		metrics.RecordSnapshotRun("skipped", time.Since(start))
		return fmt.Errorf("webhook url rejected: %w", err)
	}

	products, err := s.reader.Products().ListStorable(ctx)
	if err != nil {
		metrics.RecordSnapshotRun("failure", time.Since(start))
		return fmt.Errorf("list storable products: %w", err)
	}

	payload, err := s.builder.BuildSnapshot(ctx, products)
	if err != nil {
		if errors.Is(err, webhook.ErrNoEligibleData) {
			slog.Info("stock snapshot skipped: no mirrored products")
			metrics.RecordSnapshotRun("skipped", time.Since(start))
			return nil
		}
		metrics.RecordSnapshotRun("failure", time.Since(start))
		return fmt.Errorf("build stock snapshot: %w", err)
	}

	if !s.sender.Send(ctx, url, payload) {
		metrics.RecordSnapshotRun("failure", time.Since(start))
		return fmt.Errorf("stock snapshot delivery failed after retries")
	}

	metrics.RecordSnapshotRun("success", time.Since(start))
	slog.Info("stock snapshot delivered",
		slog.Int("products", len(payload.Products)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
