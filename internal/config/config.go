package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EmailProviderLog      = "log"
	EmailProviderResend   = "resend"
	EmailProviderSendGrid = "sendgrid"

	CacheInMemory = "inmemory"
	CacheRedis    = "redis"
)

type Config struct {
	// Application
	AppName            string
	AppEnv             string
	AppURL             string
	Port               string
	SupportEmail       string
	CORSAllowedOrigins []string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret                string
	JWTExpiry                time.Duration
	TokenEmailVerifyExpiry   time.Duration
	TokenPasswordResetExpiry time.Duration
	BcryptCost               int

	// Email
	EmailProvider  string // "log", "resend" or "sendgrid"
	EmailFrom      string
	EmailFromName  string
	ResendAPIKey   string
	SendGridAPIKey string

	// Cache
	CacheType string // "inmemory" or "redis"
	RedisURL  string

	// Rate limiting (auth endpoints, per client IP)
	RateLimitAuth       int
	RateLimitAuthWindow time.Duration

	// Observability (optional)
	LogLevel       string
	SentryDSN      string
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appName := envString("APP_NAME", "Acme")

	cfg := &Config{
		// Application
		AppName:            appName,
		AppEnv:             envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:             envRequired("APP_URL"), // Required: base URL used in email context
		Port:               envString("PORT", "8090"),
		SupportEmail:       envString("SUPPORT_EMAIL", "hello@example.com"),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/acme.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:                envRequired("JWT_SECRET"),
		JWTExpiry:                envDuration("JWT_EXPIRY", 30*time.Minute),
		TokenEmailVerifyExpiry:   envDuration("TOKEN_EMAIL_VERIFY_EXPIRY", 15*time.Minute),
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 15*time.Minute),
		BcryptCost:               envInt("BCRYPT_COST", 10),

		// Email (provider keys optional in development, "log" provider prints instead of sending)
		EmailProvider:  envString("EMAIL_PROVIDER", EmailProviderLog),
		EmailFrom:      envString("EMAIL_FROM", "noreply@example.com"),
		EmailFromName:  envString("EMAIL_FROM_NAME", appName),
		ResendAPIKey:   envString("RESEND_API_KEY", ""),
		SendGridAPIKey: envString("SENDGRID_API_KEY", ""),

		// Cache
		CacheType: envString("CACHE_TYPE", CacheInMemory),
		RedisURL:  envString("REDIS_URL", "redis://localhost:6379/0"),

		// Rate limiting
		RateLimitAuth:       envInt("RATE_LIMIT_AUTH", 5),
		RateLimitAuthWindow: envDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),

		// Observability
		LogLevel:       envString("LOG_LEVEL", ""),
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	err = cfg.Validate()
	if err != nil {
		slog.Error("invalid configuration", "error", err,
			"hint", "set APP_ENV=development and EMAIL_PROVIDER=log for local testing")
		os.Exit(1)
	}

	return cfg
}

// Validate checks settings that do not depend on the environment first,
// then the stricter production requirements.
func (c *Config) Validate() error {
	var errs []error

	switch c.EmailProvider {
	case EmailProviderLog, EmailProviderResend, EmailProviderSendGrid:
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q (supported: log, resend, sendgrid)", c.EmailProvider))
	}

	switch c.CacheType {
	case CacheInMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("CACHE_TYPE=redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_TYPE %q (supported: inmemory, redis)", c.CacheType))
	}

	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}

	if c.IsProduction() {
		errs = append(errs, c.validateProduction()...)
	}

	return errors.Join(errs...)
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows the log email provider and short secrets for easier local testing.
func (c *Config) validateProduction() []error {
	var errs []error

	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("production deployment requires JWT_SECRET of at least 32 characters"))
	}

	switch c.EmailProvider {
	case EmailProviderLog:
		errs = append(errs, errors.New("production deployment requires EMAIL_PROVIDER resend or sendgrid"))
	case EmailProviderResend:
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("production deployment requires RESEND_API_KEY"))
		}
	case EmailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("production deployment requires SENDGRID_API_KEY"))
		}
	}

	return errs
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated value, dropping empty items.
func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and connection strings are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:            c.AppName,
		AppEnv:             c.AppEnv,
		AppURL:             c.AppURL,
		Port:               c.Port,
		SupportEmail:       c.SupportEmail,
		CORSAllowedOrigins: c.CORSAllowedOrigins,

		DBDriver: c.DBDriver,

		JWTExpiry:                c.JWTExpiry,
		TokenEmailVerifyExpiry:   c.TokenEmailVerifyExpiry,
		TokenPasswordResetExpiry: c.TokenPasswordResetExpiry,

		EmailProvider: c.EmailProvider,
		EmailFrom:     c.EmailFrom,
		EmailFromName: c.EmailFromName,

		CacheType: c.CacheType,

		MetricsEnabled: c.MetricsEnabled,
	}
}
