package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disaster")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 64, cfg.WSOutboundBuffer)
	assert.Equal(t, 5*time.Minute, cfg.IncidentCacheTTL)
	assert.Empty(t, cfg.WebhookURL)
	assert.Nil(t, cfg.WSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disaster")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("WS_OUTBOUND_BUFFER", "16")
	t.Setenv("WS_ALLOWED_ORIGINS", " example.com, ,*.example.org ")
	t.Setenv("WEBHOOK_MAX_RETRIES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 16, cfg.WSOutboundBuffer)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.WSAllowedOrigins)
	assert.Equal(t, 3, cfg.WebhookMaxRetries)
}

func TestLoadConfig_RequiredVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/disaster")
	t.Setenv("JWT_SECRET", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
