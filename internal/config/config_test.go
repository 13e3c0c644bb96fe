package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 4566, cfg.EdgePort)
	assert.Equal(t, []string{"comprehend", "events", "efs"}, cfg.EnabledServices)
	assert.Equal(t, "123456789012", cfg.DefaultAccountID)
	assert.Equal(t, "us-east-1", cfg.DefaultRegion)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EDGE_PORT", "9999")
	t.Setenv("ENABLED_SERVICES", "events, efs")
	t.Setenv("ACCOUNT_ID", "000000000001")
	t.Setenv("DEFAULT_REGION", "eu-central-1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, 9999, cfg.EdgePort)
	assert.Equal(t, []string{"events", "efs"}, cfg.EnabledServices)
	assert.Equal(t, "000000000001", cfg.DefaultAccountID)
	assert.Equal(t, "eu-central-1", cfg.DefaultRegion)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresInvalidPort(t *testing.T) {
	t.Setenv("EDGE_PORT", "not-a-port")
	assert.Equal(t, 4566, Load().EdgePort)
}

func TestIsServiceEnabled(t *testing.T) {
	cfg := &Config{EnabledServices: []string{"events"}}
	assert.True(t, cfg.IsServiceEnabled("events"))
	assert.False(t, cfg.IsServiceEnabled("comprehend"))
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.EdgePort = 0
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.DefaultAccountID = ""
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.DefaultRegion = ""
	require.Error(t, cfg.Validate())
}
