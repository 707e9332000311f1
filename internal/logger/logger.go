package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// levelOverride (LOG_LEVEL) replaces the environment default when set.
// Optionally sends errors to Sentry for error tracking
func Init(isDev bool, levelOverride, sentryDSN string) {
	var handlers []slog.Handler

	level := slog.LevelInfo
	if isDev {
		level = slog.LevelDebug
	}
	if lvl, ok := ParseLevel(levelOverride); ok {
		level = lvl
	}

	// Base handler for stdout (always enabled)
	opts := &slog.HandlerOptions{Level: level}
	if isDev {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, opts))
	}

	// Optional Sentry handler (sends errors only)
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	// Use multi-handler if we have multiple, otherwise use single
	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// ParseLevel maps LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "critical":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
