package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "LOG_FORMAT", "DATABASE_DRIVER", "DATABASE_URL", "CLUB_TIMEZONE", "ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, int64(1), cfg.OrganizationID)
	assert.True(t, cfg.SeedPlans)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:club.db")
	t.Setenv("ORGANIZATION_ID", "42")
	t.Setenv("SEED_DEFAULT_PLANS", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BREAKER_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, int64(42), cfg.OrganizationID)
	assert.False(t, cfg.SeedPlans)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err = Load()
	assert.ErrorContains(t, err, "unsupported")

	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("CLUB_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "CLUB_TIMEZONE")
}
