package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"commerce-bridge/internal/config"
	pgRepo "commerce-bridge/internal/infra/adapter/persistence/postgres"
	"commerce-bridge/internal/infra/dedup"
	"commerce-bridge/internal/observability/logging"
	"commerce-bridge/internal/observability/metrics"
	"commerce-bridge/internal/observability/slo"
	"commerce-bridge/internal/observability/tracing"
	"commerce-bridge/internal/usecase/webhook"

	orderUC "commerce-bridge/internal/usecase/order"
	stockUC "commerce-bridge/internal/usecase/stock"

	hhttp "commerce-bridge/internal/handler/http"
	hauth "commerce-bridge/internal/handler/http/auth"
	horder "commerce-bridge/internal/handler/http/order"
	"commerce-bridge/internal/handler/http/requestid"
	hstock "commerce-bridge/internal/handler/http/stock"
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

	validateJWTSecret(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(ctx, logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	dispatcher := setupDispatcher(logger, cfg, database)
	handler := setupHandler(ctx, logger, cfg, database, dispatcher)

	runServer(ctx, cancel, logger, cfg, handler, dispatcher)
}

// validateJWTSecret refuses to start without a usable signing key.
// Everything else degrades with fallbacks; an unset JWT secret would
// make every token invalid and is always a deployment mistake.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
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

// setupDispatcher wires the notification pipeline: dedup registry
// (Redis when configured, in-process otherwise), payload builder,
// retrying sender and the bounded worker pool.
func setupDispatcher(logger *slog.Logger, cfg config.Config, database *sql.DB) *webhook.Dispatcher {
	reader := pgRepo.NewFactory(database).Reader()

	var registry webhook.Registry
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		registry = dedup.NewRedisRegistry(client, cfg.Webhook.DedupWindow.Std())
		logger.Info("webhook dedup: redis registry",
			slog.String("addr", cfg.Redis.Addr),
			slog.Duration("window", cfg.Webhook.DedupWindow.Std()))
	} else {
		registry = webhook.NewMemoryRegistry(cfg.Webhook.DedupWindow.Std())
		logger.Info("webhook dedup: in-process registry",
			slog.Duration("window", cfg.Webhook.DedupWindow.Std()))
	}

	builder := webhook.NewBuilder(reader.Settings(), cfg.Webhook.Tenant)
	sender := webhook.NewHTTPSender()

	return webhook.NewDispatcher(registry, builder, sender, reader, cfg.Webhook.Workers)
}

// setupHandler registers all routes and wraps them in the middleware
// chain.
func setupHandler(ctx context.Context, logger *slog.Logger, cfg config.Config, database *sql.DB, dispatcher *webhook.Dispatcher) http.Handler {
	factory := pgRepo.NewFactory(database)
	orderSvc := orderUC.NewService(factory, dispatcher)
	stockSvc := stockUC.NewService(factory, dispatcher)

	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/token", hauth.TokenHandler(hauth.NewProviderFromEnv()))
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	horder.Register(mux, orderSvc)
	hstock.Register(mux, stockSvc)

	tracker := slo.NewTracker()
	go tracker.Run(ctx, cfg.Server.SLOInterval.Std())
	go samplePoolStats(ctx, database)

	rateLimiter := hhttp.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitWindow.Std())

	// Applied in reverse: request ID is outermost, timeout innermost.
	chain := http.Handler(mux)
	chain = hhttp.Timeout(cfg.Server.RequestTimeout.Std())(chain)
	chain = rateLimiter.Limit(chain)
	chain = hhttp.LimitRequestBody(cfg.Server.MaxBodyBytes)(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracker.Middleware(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// samplePoolStats publishes connection pool gauges every 15 seconds.
func samplePoolStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}

// runServer starts the HTTP server and handles graceful shutdown. The
// dispatcher drains after the server stops accepting requests, so
// notifications scheduled by the last transactions still go out.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, cfg config.Config, handler http.Handler, dispatcher *webhook.Dispatcher) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Let in-flight webhook deliveries finish before the process exits.
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher shutdown incomplete", slog.Any("error", err))
	}

	cancel()
	logger.Info("server stopped")
}
