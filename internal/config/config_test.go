package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "carekeeper-client.db", cfg.DBPath)
	assert.Equal(t, models.TierFree, cfg.Tier())
	assert.Equal(t, 2*time.Second, cfg.Sync.CrisisTimeout)
	assert.Equal(t, 10*time.Second, cfg.MQTT.ConnectTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, reliability.DefaultQueueConfig(), cfg.Queue)
	assert.NoError(t, cfg.Budgets.Validate())

	_, _, err = cfg.Identity()
	assert.Error(t, err, "identity is not configured by default")
}

func TestLoadClient_FileAndEnv(t *testing.T) {
	path := writeFile(t, "client.yaml", strings.TrimSpace(`
server_url: https://sync.example.org
sync:
  user_id: user-1
  device_id: device-a
  tier: premium
  drain_interval: 5s
queue:
  max_retries: 7
budgets:
  crisis_data_access: 300ms
log:
  level: debug
  file: ""
`))

	t.Setenv("CAREKEEPER_SYNC_DEVICE_ID", "device-env")
	t.Setenv("CAREKEEPER_TOKEN", "token-from-env")

	cfg, err := LoadClient(NewClientViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://sync.example.org", cfg.ServerURL)
	assert.Equal(t, "token-from-env", cfg.Token)
	assert.Equal(t, models.TierPremium, cfg.Tier())
	assert.Equal(t, 5*time.Second, cfg.Sync.DrainInterval)
	assert.Equal(t, 7, cfg.Queue.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.Budgets.CrisisDataAccess)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)

	userID, deviceID, err := cfg.Identity()
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "device-env", deviceID, "environment overrides the file")
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "relative server url", env: map[string]string{"CAREKEEPER_SERVER_URL": "localhost"}},
		{name: "unknown tier", env: map[string]string{"CAREKEEPER_SYNC_TIER": "gold"}},
		{name: "threshold above one", env: map[string]string{"CAREKEEPER_MERGE_CONFIDENCE_THRESHOLD": "1.5"}},
		{name: "margin exceeds budget", env: map[string]string{"CAREKEEPER_BUDGETS_SAFETY_MARGIN": "1h"}},
		{name: "bad log level", env: map[string]string{"CAREKEEPER_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadClient(nil, "")
			assert.Error(t, err)
		})
	}
}

func TestLoadClient_MissingFile(t *testing.T) {
	_, err := LoadClient(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestClient_Policies(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		cfg, err := LoadClient(nil, "")
		require.NoError(t, err)

		table, err := cfg.Policies()
		require.NoError(t, err)
		assert.Equal(t, models.StrategyClinicalValidation, table.For(models.EntityAssessment).DefaultStrategy)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &Client{PolicyFile: filepath.Join(t.TempDir(), "policies.yaml")}
		_, err := cfg.Policies()
		assert.Error(t, err)
	})
}

func TestLoadServer(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		_, err := LoadServer(nil, "")
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CAREKEEPER_JWT_SECRET", testSecret)

		cfg, err := LoadServer(nil, "")
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
		assert.Empty(t, cfg.Redis.Addr)
		assert.Equal(t, reliability.DefaultTierLimits(), cfg.RateLimits)
	})

	t.Run("file overrides one tier", func(t *testing.T) {
		path := writeFile(t, "server.yaml", strings.TrimSpace(`
addr: 127.0.0.1:9090
jwt_secret: `+testSecret+`
redis:
  addr: localhost:6379
  db: 2
rate_limits:
  free:
    per_window: 10
    window: 1m
`))

		cfg, err := LoadServer(NewServerViper(), path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, reliability.TierLimit{PerWindow: 10, Window: time.Minute}, cfg.RateLimits[models.TierFree])
		assert.Equal(t, reliability.DefaultTierLimits()[models.TierClinical], cfg.RateLimits[models.TierClinical])
	})

	t.Run("invalid limit", func(t *testing.T) {
		path := writeFile(t, "server.yaml", strings.TrimSpace(`
jwt_secret: `+testSecret+`
rate_limits:
  gold:
    per_window: 10
    window: 1m
`))
		_, err := LoadServer(nil, path)
		assert.Error(t, err)
	})
}
