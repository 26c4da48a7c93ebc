// Package config loads the runtime configuration of both bridge
// binaries. Tunables come from an optional YAML file with environment
// overrides; secrets (database DSN, JWT secret, service-account
// credentials) come from the environment only. Invalid values fall
// back to defaults with a warning and a metric rather than refusing to
// start: the bridge degrades to safe behavior instead of taking the
// storefront integration down over a typo.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgcfg "commerce-bridge/pkg/config"
)

// Duration wraps time.Duration so YAML values like "10s" parse with
// the usual Go duration syntax.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig tunes the RPC HTTP server.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	RequestTimeout  Duration `yaml:"request_timeout"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	RateLimit       int      `yaml:"rate_limit"`
	RateLimitWindow Duration `yaml:"rate_limit_window"`
	SLOInterval     Duration `yaml:"slo_interval"`
}

// DatabaseConfig holds the Postgres connection settings. The DSN is
// environment-only so it never lands in a config file.
type DatabaseConfig struct {
	DSN          string `yaml:"-"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig holds the optional shared dedup registry settings. An
// empty address selects the in-process registry.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// WebhookConfig tunes the notification pipeline.
type WebhookConfig struct {
	DedupWindow Duration `yaml:"dedup_window"`
	Workers     int      `yaml:"workers"`
	Tenant      string   `yaml:"tenant"`
}

// WorkerConfig tunes the background worker binary.
type WorkerConfig struct {
	SnapshotSchedule string `yaml:"snapshot_schedule"`
	MetricsAddr      string `yaml:"metrics_addr"`
}

// Config is the full bridge configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			RequestTimeout:  Duration(25 * time.Second),
			MaxBodyBytes:    1 << 20,
			RateLimit:       120,
			RateLimitWindow: Duration(time.Minute),
			SLOInterval:     Duration(time.Minute),
		},
		Database: DatabaseConfig{MaxOpenConns: 20},
		Webhook: WebhookConfig{
			DedupWindow: Duration(5 * time.Second),
			Workers:     8,
			Tenant:      "erp_main",
		},
		Worker: WorkerConfig{
			SnapshotSchedule: "30 5 * * *",
			MetricsAddr:      ":9091",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides, then
// validation with fallbacks.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path comes from the CLI flag, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.validate()

	Metrics.RecordLoad()
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file values.
func applyEnv(cfg *Config) {
	cfg.Server.Addr = pkgcfg.GetEnvString("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.RequestTimeout = Duration(pkgcfg.GetEnvDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout.Std()))
	cfg.Server.RateLimit = pkgcfg.GetEnvInt("RATELIMIT_LIMIT", cfg.Server.RateLimit)
	cfg.Server.RateLimitWindow = Duration(pkgcfg.GetEnvDuration("RATELIMIT_WINDOW", cfg.Server.RateLimitWindow.Std()))

	cfg.Database.DSN = pkgcfg.GetEnvString("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.MaxOpenConns = pkgcfg.GetEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)

	cfg.Redis.Addr = pkgcfg.GetEnvString("REDIS_ADDR", cfg.Redis.Addr)

	cfg.Webhook.DedupWindow = Duration(pkgcfg.GetEnvDuration("WEBHOOK_DEDUP_WINDOW", cfg.Webhook.DedupWindow.Std()))
	cfg.Webhook.Workers = pkgcfg.GetEnvInt("WEBHOOK_WORKERS", cfg.Webhook.Workers)
	cfg.Webhook.Tenant = pkgcfg.GetEnvString("WEBHOOK_TENANT", cfg.Webhook.Tenant)

	cfg.Worker.SnapshotSchedule = pkgcfg.GetEnvString("SNAPSHOT_SCHEDULE", cfg.Worker.SnapshotSchedule)
	cfg.Worker.MetricsAddr = pkgcfg.GetEnvString("WORKER_METRICS_ADDR", cfg.Worker.MetricsAddr)
}

// validate replaces invalid values with defaults, recording each
// fallback.
func (c *Config) validate() {
	def := Default()

	if err := pkgcfg.ValidatePositiveDuration(c.Server.RequestTimeout.Std()); err != nil {
		c.Server.RequestTimeout = def.Server.RequestTimeout
		Metrics.RecordFallback("server.request_timeout")
	}
	if err := pkgcfg.ValidatePositiveDuration(c.Server.RateLimitWindow.Std()); err != nil {
		c.Server.RateLimitWindow = def.Server.RateLimitWindow
		Metrics.RecordFallback("server.rate_limit_window")
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = def.Server.RateLimit
		Metrics.RecordFallback("server.rate_limit")
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
		Metrics.RecordFallback("server.max_body_bytes")
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = def.Database.MaxOpenConns
		Metrics.RecordFallback("database.max_open_conns")
	}
	// The dedup window bounds how long bursts coalesce; an hour-long
	// window would silently swallow real updates.
	if err := pkgcfg.ValidateDurationRange(c.Webhook.DedupWindow.Std(), time.Second, time.Minute); err != nil {
		c.Webhook.DedupWindow = def.Webhook.DedupWindow
		Metrics.RecordFallback("webhook.dedup_window")
	}
	if c.Webhook.Workers <= 0 || c.Webhook.Workers > 64 {
		c.Webhook.Workers = def.Webhook.Workers
		Metrics.RecordFallback("webhook.workers")
	}
	if c.Webhook.Tenant == "" {
		c.Webhook.Tenant = def.Webhook.Tenant
		Metrics.RecordFallback("webhook.tenant")
	}
	if err := pkgcfg.ValidatePositiveDuration(c.Server.SLOInterval.Std()); err != nil {
		c.Server.SLOInterval = def.Server.SLOInterval
		Metrics.RecordFallback("server.slo_interval")
	}
}
