package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/beacon/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("BEACON_ENV", "local")
	t.Setenv("BEACON_GEOAPIFY_KEY", "testAPIKey")
	t.Setenv("BEACON_CACHE_TTL", "30m")
	t.Setenv("BEACON_CACHE_PATH", "/tmp/beacon-test.db")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 8080, cfg.HealthPort)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Empty(t, cfg.GoogleAPIKey)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 4000, cfg.SearchRadius)
	assert.Equal(t, "/tmp/beacon-test.db", cfg.CachePath)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("BEACON_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for API server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_HealthPortError(t *testing.T) {
	t.Setenv("BEACON_HEALTH_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for monitoring server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Setenv("BEACON_PROVIDER_RATE_LIMIT", "error_value")

	assert.PanicsWithValue(
		t,
		"failed to parse provider rate limit from configuration, must be an integer",
		func() {
			config.MustLoad()
		},
	)
}

func TestMustLoad_RadiusError(t *testing.T) {
	t.Setenv("BEACON_SEARCH_RADIUS", "error_value")

	assert.PanicsWithValue(
		t,
		"failed to parse search radius from configuration, must be an integer",
		func() {
			config.MustLoad()
		},
	)
}

func TestMustLoad_CacheTTLError(t *testing.T) {
	t.Setenv("BEACON_CACHE_TTL", "error_value")

	assert.PanicsWithValue(t, "failed to parse cache TTL from configuration", func() {
		config.MustLoad()
	})
}
