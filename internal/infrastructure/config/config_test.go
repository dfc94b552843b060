package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, "app:\n  name: Pantry Pairing\n")

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 3, cfg.AI.MaxAttempts)
	assert.Equal(t, time.Second, cfg.AI.BaseDelay)
	assert.Equal(t, 3, cfg.Session.ExpiryThresholdDays)
	assert.Equal(t, "Asia/Seoul", cfg.Session.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "https://www.coupang.com/np/search?rocketAll=false", cfg.Shopping.SearchURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "gemini-2.5-flash-preview-09-2025", cfg.ActiveProvider().Model)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
ai:
  provider: ollama
  base_delay: 250ms
  ollama:
    model: llava
session:
  expiry_threshold_days: 5
`)
	t.Setenv("PANTRY_SERVER_PORT", "9090")

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.AI.BaseDelay)
	assert.Equal(t, 5, cfg.Session.ExpiryThresholdDays)
	assert.Equal(t, "llava", cfg.ActiveProvider().Model)
	assert.Equal(t, "http://localhost:11434", cfg.ActiveProvider().BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"UnknownProvider_ShouldFail", "ai:\n  provider: claude\n"},
		{"ZeroAttempts_ShouldFail", "ai:\n  max_attempts: 0\n"},
		{"UnknownCache_ShouldFail", "cache:\n  driver: memcached\n"},
		{"BadTimezone_ShouldFail", "session:\n  timezone: Mars/Olympus\n"},
		{"ProductionWithoutSecret_ShouldFail", "app:\n  environment: production\n"},
		{"BadPort_ShouldFail", "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
