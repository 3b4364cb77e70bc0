package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5789, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "~/.scrubd", cfg.Storage.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadMatchesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCRUBD_PORT", "9090")
	t.Setenv("SCRUBD_HOST", "0.0.0.0")
	t.Setenv("SCRUBD_DEBUG", "true")
	t.Setenv("SCRUBD_STORAGE_DIR", "/tmp/scrubd-test")
	t.Setenv("SCRUBD_RATE_LIMIT_ENABLED", "true")
	t.Setenv("SCRUBD_RATE_LIMIT_RPS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "/tmp/scrubd-test", cfg.Storage.Dir)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("SCRUBD_PORT", "not-a-number")
	cfg := LoadOrDefault()
	assert.Equal(t, 5789, cfg.Server.Port)
}
