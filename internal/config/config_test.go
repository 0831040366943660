package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":               os.Getenv("PORT"),
		"DATABASE_URL":       os.Getenv("DATABASE_URL"),
		"REDIS_URL":          os.Getenv("REDIS_URL"),
		"ADMIN_PASSWORD_HASH": os.Getenv("ADMIN_PASSWORD_HASH"),
		"RATE_LIMIT_PER_MIN": os.Getenv("RATE_LIMIT_PER_MIN"),
		"LOG_LEVEL":          os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("PORT")
		os.Unsetenv("RATE_LIMIT_PER_MIN")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 60, cfg.RateLimitPerMin)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("fails without DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		os.Setenv("REDIS_URL", "redis://localhost:6379")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-bcrypt admin hash", func(t *testing.T) {
		cfg := &Config{AdminPasswordHash: "plaintext"}
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts bcrypt admin hash", func(t *testing.T) {
		cfg := &Config{AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv"}
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("requires strong session secret in production", func(t *testing.T) {
		cfg := &Config{AdminSessionSecret: "secret"}
		assert.Error(t, cfg.Validate(true))

		cfg.AdminSessionSecret = "a-long-enough-session-secret-value-1234"
		assert.NoError(t, cfg.Validate(true))
	})
}
