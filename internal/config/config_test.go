package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Webhook.DedupWindow.Std())
	assert.Equal(t, 8, cfg.Webhook.Workers)
	assert.Equal(t, "erp_main", cfg.Webhook.Tenant)
	assert.Equal(t, "30 5 * * *", cfg.Worker.SnapshotSchedule)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  rate_limit: 60
webhook:
  dedup_window: 10s
  workers: 4
  tenant: erp_eu
redis:
  addr: "redis:6379"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Webhook.DedupWindow.Std())
	assert.Equal(t, 4, cfg.Webhook.Workers)
	assert.Equal(t, "erp_eu", cfg.Webhook.Tenant)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	// Untouched sections keep their defaults.
	assert.Equal(t, 25*time.Second, cfg.Server.RequestTimeout.Std())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook:\n  workers: 4\n"), 0o600))

	t.Setenv("WEBHOOK_WORKERS", "16")
	t.Setenv("DATABASE_URL", "postgres://bridge:pw@db/bridge")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Webhook.Workers)
	assert.Equal(t, "postgres://bridge:pw@db/bridge", cfg.Database.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

// Out-of-range values fall back to defaults instead of failing startup.
func TestValidate_Fallbacks(t *testing.T) {
	cfg := Default()
	cfg.Webhook.DedupWindow = Duration(time.Hour)
	cfg.Webhook.Workers = -1
	cfg.Server.RateLimit = 0
	cfg.Webhook.Tenant = ""

	cfg.validate()

	def := Default()
	assert.Equal(t, def.Webhook.DedupWindow, cfg.Webhook.DedupWindow)
	assert.Equal(t, def.Webhook.Workers, cfg.Webhook.Workers)
	assert.Equal(t, def.Server.RateLimit, cfg.Server.RateLimit)
	assert.Equal(t, def.Webhook.Tenant, cfg.Webhook.Tenant)
}

func TestValidate_AcceptsBounds(t *testing.T) {
	cfg := Default()
	cfg.Webhook.DedupWindow = Duration(time.Second)
	cfg.Webhook.Workers = 64

	cfg.validate()

	assert.Equal(t, time.Second, cfg.Webhook.DedupWindow.Std())
	assert.Equal(t, 64, cfg.Webhook.Workers)
}
