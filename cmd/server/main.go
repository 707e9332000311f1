package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/templui/apiplate/internal/app"
	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/logger"
	"github.com/templui/apiplate/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	sentry.Flush(2 * time.Second)

	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. The app is closed
// before it returns.
func run(ctx context.Context, cfg *config.Config) (err error) {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port,
			"email_provider", a.EmailService.ProviderName(), "cache", a.Cache.Name())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
