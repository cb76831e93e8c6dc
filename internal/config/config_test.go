package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./notes.db", cfg.DatabasePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "session", cfg.SessionCookieName)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "too-short")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("PORT", "8080")

	t.Setenv("COOKIE_SAMESITE", "sideways")
	_, err = Load()
	assert.Error(t, err)
	t.Setenv("COOKIE_SAMESITE", "strict")

	t.Setenv("FTS_OPTIMIZE_SCHEDULE", "every tuesday")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_SAMESITE", "none")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
