package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Supported credential store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

const (
	defaultJWTSecret     = "dev-access-secret-change-me-before-deploying"
	defaultRefreshSecret = "dev-refresh-secret-change-me-before-deploying"
	minProductionSecret  = 32
)

// Config holds application configuration. It is built once at startup and passed down explicitly.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      slog.Level
	StoreDriver   string
	DatabaseURL   string
	EnableDBCheck bool
	RunMigrations bool
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenSecret         string
	RefreshTokenExpiryDuration time.Duration
	MaxRefreshTokens           int

	BcryptCost     int
	RequestTimeout time.Duration
	AuthRateLimit  string // ulule/limiter format, e.g. "20-M"
	AllowedOrigins []string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "echopind")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "15m")
	v.SetDefault("JWT_ISSUER", "echopind-backend")
	v.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshSecret)
	v.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	v.SetDefault("MAX_REFRESH_TOKENS", 5)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("AUTH_RATE_LIMIT", "20-M")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		MongoURI:           v.GetString("MONGODB_URI"),
		MongoDatabase:      v.GetString("MONGODB_DATABASE"),
		RedisURL:           v.GetString("REDIS_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		MaxRefreshTokens:   v.GetInt("MAX_REFRESH_TOKENS"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		AuthRateLimit:      v.GetString("AUTH_RATE_LIMIT"),
		AllowedOrigins:     splitList(v.GetString("ALLOWED_ORIGINS")),
		FrontendBaseURL:    v.GetString("FRONTEND_BASE_URL"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:    v.GetString("POSTHOG_ENDPOINT"),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(v.GetString("LOG_LEVEL")); err != nil {
		return nil, err
	}
	if cfg.JWTExpiryDuration, err = parseDuration(v, "JWT_EXPIRY_DURATION"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenExpiryDuration, err = parseDuration(v, "REFRESH_TOKEN_EXPIRY_DURATION"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret || cfg.RefreshTokenSecret == defaultRefreshSecret {
		slog.Warn("JWT_SECRET or REFRESH_TOKEN_SECRET not set, using development defaults")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		slog.Warn("Google OAuth credentials incomplete, Google sign-in disabled")
	}

	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" || c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must be set"))
	} else if c.JWTSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.JWTExpiryDuration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_DURATION must be positive"))
	}
	if c.RefreshTokenExpiryDuration <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY_DURATION must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.MaxRefreshTokens < 1 {
		errs = append(errs, errors.New("MAX_REFRESH_TOKENS must be at least 1"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [4,31], got %d", c.BcryptCost))
	}
	if _, err := limiter.NewRateFromFormatted(c.AuthRateLimit); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT %q is invalid: %w", c.AuthRateLimit, err))
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("PGSQL_URL is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGODB_URI and MONGODB_DATABASE are required when STORE_DRIVER=mongo"))
		}
	case StoreDriverMemory:
		if c.IsProduction {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.IsProduction {
		if c.JWTSecret == defaultJWTSecret || c.RefreshTokenSecret == defaultRefreshSecret {
			errs = append(errs, errors.New("default token secrets are not allowed in production"))
		}
		if len(c.JWTSecret) < minProductionSecret || len(c.RefreshTokenSecret) < minProductionSecret {
			errs = append(errs, fmt.Errorf("token secrets must be at least %d bytes in production", minProductionSecret))
		}
	}

	return errors.Join(errs...)
}

// GoogleOAuthEnabled reports whether Google sign-in can be offered.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid value for LOG_LEVEL (%q): %w", raw, err)
	}
	return level, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
