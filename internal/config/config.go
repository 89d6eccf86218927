// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

// Config holds all application configuration.
// It is read once at startup and never mutated afterwards.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Cache (Redis). Empty selects the in-process rate limiter.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Token signing
	JWTSecret                string        `env:"JWT_SECRET,required,unset"`
	JWTAlgorithm             string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	TokenLeeway              time.Duration `env:"TOKEN_LEEWAY" envDefault:"0s"`

	// Credential hashing
	PasswordHashAlgorithm string `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost            int    `env:"BCRYPT_COST" envDefault:"12"`
	Argon2Time            uint32 `env:"ARGON2_TIME" envDefault:"3"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled    bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitLoginRPS   float64 `env:"RATE_LIMIT_LOGIN_RPS" envDefault:"1"`
	RateLimitLoginBurst int     `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"5"`
	RateLimitWriteRPM   int     `env:"RATE_LIMIT_WRITE_RPM" envDefault:"120"`
	RateLimitWriteBurst int     `env:"RATE_LIMIT_WRITE_BURST" envDefault:"20"`

	// Honor X-Forwarded-For / X-Real-IP. Enable only behind a proxy that
	// overwrites them; otherwise clients pick their own rate limit key.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AccessTokenTTL returns the configured token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm))
	}

	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}

	if c.DBMaxConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS"))
	}

	if c.TokenLeeway < 0 {
		errs = append(errs, errors.New("TOKEN_LEEWAY must not be negative"))
	}

	switch c.PasswordHashAlgorithm {
	case HashBcrypt:
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
		}
	case HashArgon2id:
		if c.Argon2Time == 0 {
			errs = append(errs, errors.New("ARGON2_TIME must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported PASSWORD_HASH_ALGORITHM %q", c.PasswordHashAlgorithm))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
