// The worker runs the periodic stock snapshot: a full push of every
// mirrored product's quantity to the storefront, so it converges even
// when individual change notifications were lost.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"commerce-bridge/internal/config"
	pgRepo "commerce-bridge/internal/infra/adapter/persistence/postgres"
	"commerce-bridge/internal/observability/logging"
	stockUC "commerce-bridge/internal/usecase/stock"
	"commerce-bridge/internal/usecase/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDatabase(ctx, logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	reader := pgRepo.NewFactory(database).Reader()
	builder := webhook.NewBuilder(reader.Settings(), cfg.Webhook.Tenant)
	snapshotter := stockUC.NewSnapshotter(reader, builder, webhook.NewHTTPSender())

	g, ctx := errgroup.WithContext(ctx)

	metricsServer := newMetricsServer(cfg.Worker.MetricsAddr)
	g.Go(func() error {
		logger.Info("metrics server starting", slog.String("addr", cfg.Worker.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return runScheduler(ctx, logger, cfg, snapshotter)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func initDatabase(ctx context.Context, logger *slog.Logger, cfg config.Config) *sql.DB {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := pgRepo.Open(openCtx, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// runScheduler runs the snapshot on the configured cron schedule until
// the context is cancelled, then waits for a running job to finish.
func runScheduler(ctx context.Context, logger *slog.Logger, cfg config.Config, snapshotter *stockUC.Snapshotter) error {
	c := cron.New()
	_, err := c.AddFunc(cfg.Worker.SnapshotSchedule, func() {
		runSnapshot(ctx, logger, snapshotter)
	})
	if err != nil {
		logger.Error("invalid snapshot schedule",
			slog.String("schedule", cfg.Worker.SnapshotSchedule),
			slog.Any("error", err))
		return err
	}
	c.Start()
	logger.Info("worker started", slog.String("schedule", cfg.Worker.SnapshotSchedule))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	<-c.Stop().Done()
	return nil
}

func runSnapshot(ctx context.Context, logger *slog.Logger, snapshotter *stockUC.Snapshotter) {
	start := time.Now()
	logger.Info("stock snapshot started")

	jobCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if err := snapshotter.Run(jobCtx); err != nil {
		logger.Error("stock snapshot failed",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("stock snapshot finished", slog.Duration("duration", time.Since(start)))
}
