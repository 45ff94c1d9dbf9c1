package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 120, cfg.RateLimitPerWindow)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND", "postgres")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("RATE_LIMIT_PER_WINDOW", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.RateLimitPerWindow)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("BACKEND", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_WINDOW", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 120, cfg.RateLimitPerWindow)
}
