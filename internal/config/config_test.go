package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SESSION_SECRET", "fedcba9876543210fedcba9876543210")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "STORE_DRIVER", "sqlite"},
		{"bad int", "CACHE_SIZE", "lots"},
		{"bad duration", "TOKEN_TTL", "forever"},
		{"bad bool", "SECURE_COOKIES", "maybe"},
		{"bad level", "LOG_LEVEL", "chatty"},
		{"zero rate", "RATE_LIMIT_REQUESTS", "0"},
		{"zero window", "RATE_LIMIT_WINDOW", "0s"},
		{"negative window", "RATE_LIMIT_WINDOW", "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.RequireSecrets(), "JWT_SECRET")

	setRequired(t)
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireSecrets())
}

func TestLoad_EnvFile(t *testing.T) {
	setRequired(t)
	t.Setenv("PLANS_FILE", "")
	require.NoError(t, os.Unsetenv("PLANS_FILE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PLANS_FILE=/etc/inkwell/plans.yaml\nAPP_PORT=7000\n"), 0o600))
	t.Setenv("APP_PORT", "7100")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/inkwell/plans.yaml", cfg.PlansFile)
	assert.Equal(t, "7100", cfg.Port)
}
