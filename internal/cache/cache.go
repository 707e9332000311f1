// Package cache provides a small key/value cache with TTLs, backed either by
// process memory or by Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/templui/apiplate/internal/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr increments a counter and returns the new value. The first
	// increment starts a window of the given length after which the key expires.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// New returns the backend selected by CACHE_TYPE.
func New(cfg *config.Config) (Cache, error) {
	switch cfg.CacheType {
	case config.CacheInMemory, "":
		return NewMemory(time.Minute), nil
	case config.CacheRedis:
		return NewRedis(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: inmemory, redis)", cfg.CacheType)
	}
}
