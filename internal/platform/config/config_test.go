package config_test

import (
	"testing"
	"time"

	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		StoreDriver:                config.StoreDriverMemory,
		JWTSecret:                  "access-secret-access-secret-access-secret",
		RefreshTokenSecret:         "refresh-secret-refresh-secret-refresh-secret",
		JWTExpiryDuration:          15 * time.Minute,
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		MaxRefreshTokens:           5,
		BcryptCost:                 12,
		RequestTimeout:             10 * time.Second,
		AuthRateLimit:              "20-M",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiryDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiryDuration)
	assert.Equal(t, 5, cfg.MaxRefreshTokens)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.NotEqual(t, cfg.JWTSecret, cfg.RefreshTokenSecret)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_EXPIRY_DURATION", "30m")
	t.Setenv("MAX_REFRESH_TOKENS", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiryDuration)
	assert.Equal(t, 3, cfg.MaxRefreshTokens)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "DEBUG", cfg.LogLevel.String())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("REFRESH_TOKEN_EXPIRY_DURATION", "a week")

	_, err := config.LoadConfig()
	assert.ErrorContains(t, err, "REFRESH_TOKEN_EXPIRY_DURATION")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"same secrets", func(c *config.Config) { c.RefreshTokenSecret = c.JWTSecret }, "must differ"},
		{"zero access ttl", func(c *config.Config) { c.JWTExpiryDuration = 0 }, "JWT_EXPIRY_DURATION"},
		{"bcrypt too low", func(c *config.Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"no sessions", func(c *config.Config) { c.MaxRefreshTokens = 0 }, "MAX_REFRESH_TOKENS"},
		{"bad rate", func(c *config.Config) { c.AuthRateLimit = "lots" }, "AUTH_RATE_LIMIT"},
		{"unknown driver", func(c *config.Config) { c.StoreDriver = "sqlite" }, "unknown STORE_DRIVER"},
		{"postgres without url", func(c *config.Config) { c.StoreDriver = config.StoreDriverPostgres }, "PGSQL_URL"},
		{"memory in production", func(c *config.Config) { c.IsProduction = true }, "not allowed in production"},
		{"short secret in production", func(c *config.Config) {
			c.IsProduction = true
			c.StoreDriver = config.StoreDriverMongo
			c.MongoURI = "mongodb://db"
			c.MongoDatabase = "echopind"
			c.JWTSecret = "short"
		}, "at least 32 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
