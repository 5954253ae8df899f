package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
		assert.Equal(t, 6, cfg.UsersPageSize)
		assert.NotEmpty(t, cfg.AllowedOrigins)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")
		t.Setenv("RATE_LIMIT_CONTENT", "2s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
		assert.Equal(t, 2*time.Second, cfg.RateLimitContent)
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("JWT_TTL", "forever")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_TTL")
	})
}
