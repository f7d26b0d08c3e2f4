package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xandwr/doctown-website/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "client-secret")
	t.Setenv("BACKEND_URL", "http://backend:9000")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.False(t, cfg.Production())
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, "http://backend:9000", cfg.BackendURL)
	require.Equal(t, 30*24*time.Hour, cfg.SessionCookieMaxAge)
	require.Equal(t, 10*time.Minute, cfg.StateCookieMaxAge)
	require.Equal(t, 600, cfg.RateLimitRPM)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("BACKEND_URL", "http://backend:9000")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GITHUB_CLIENT_ID")
}

func TestLoadMissingBackendURL(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("BACKEND_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoadTrimsBackendSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKEND_URL", "http://backend:9000/")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend:9000", cfg.BackendURL)
}

func TestProductionFlag(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_COOKIE_MAX_AGE", "1h")
	t.Setenv("RATE_LIMIT_RPM", "120")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://doctown.dev, https://staging.doctown.dev")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.SessionCookieMaxAge)
	require.Equal(t, 120, cfg.RateLimitRPM)
	require.Equal(t, []string{"https://doctown.dev", "https://staging.doctown.dev"}, cfg.CORSAllowedOrigins)
}
