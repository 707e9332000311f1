package app

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/apiplate/internal/cache"
	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/db"
	"github.com/templui/apiplate/internal/metrics"
	"github.com/templui/apiplate/internal/middleware"
	"github.com/templui/apiplate/internal/repository"
	"github.com/templui/apiplate/internal/security"
	"github.com/templui/apiplate/internal/service"
	"github.com/templui/apiplate/internal/service/mailer"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Cache        cache.Cache
	Metrics      *metrics.Metrics
	EmailService *service.EmailService
	AuthService  *service.AuthService
	AuthLimiter  middleware.Limiter

	stopLimiter func()
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewWithDB(cfg, database)
}

// NewWithDB wires the services around an already migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB) (*App, error) {
	c, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	provider, err := mailer.NewProvider(cfg)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}

	emailService, err := service.NewEmailService(provider, cfg.AppName, cfg.AppURL, cfg.SupportEmail)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	authService := service.NewAuthService(
		repository.NewStore(database),
		hasher,
		security.NewCodeIssuer(hasher),
		security.NewTokenIssuer(cfg.JWTSecret),
		emailService,
		m,
		service.AuthConfig{
			TokenTTL:            cfg.JWTExpiry,
			VerificationCodeTTL: cfg.TokenEmailVerifyExpiry,
			ResetCodeTTL:        cfg.TokenPasswordResetExpiry,
		},
	)

	a := &App{
		Cfg:          cfg,
		DB:           database,
		Cache:        c,
		Metrics:      m,
		EmailService: emailService,
		AuthService:  authService,
	}

	// Redis-backed limits are shared between instances
	if cfg.CacheType == config.CacheRedis {
		a.AuthLimiter = middleware.NewCacheLimiter(c, "ratelimit:auth:", cfg.RateLimitAuth, cfg.RateLimitAuthWindow)
	} else {
		limiter := middleware.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitAuthWindow)
		a.AuthLimiter = limiter
		a.stopLimiter = limiter.Stop
	}

	return a, nil
}

func (a *App) Close() error {
	if a.stopLimiter != nil {
		a.stopLimiter()
	}

	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
