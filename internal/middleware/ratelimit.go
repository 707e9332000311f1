package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/templui/apiplate/internal/apperr"
	"github.com/templui/apiplate/internal/cache"
	"github.com/templui/apiplate/internal/metrics"
	"github.com/templui/apiplate/internal/response"
)

// RateLimitMessage is returned with every 429 response.
const RateLimitMessage = "Too many requests. Please try again later."

// Limiter decides whether one more request for key fits the quota.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter tracks request times per key in process memory using a
// sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int           // Max requests allowed
	window   time.Duration // Time window for rate limiting
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. Stop must be called to end its
// cleanup goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go rl.cleanupLoop(5 * time.Minute)

	return rl
}

// Allow checks if a request for key should be allowed
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	// Drop requests outside the window
	valid := rl.requests[key][:0]
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, nil
	}

	rl.requests[key] = append(valid, now)
	return true, nil
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes keys with no recent requests
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// CacheLimiter counts requests in a shared cache with a fixed window, so
// several instances behind a load balancer share one quota.
type CacheLimiter struct {
	cache  cache.Cache
	prefix string
	limit  int
	window time.Duration
}

func NewCacheLimiter(c cache.Cache, prefix string, limit int, window time.Duration) *CacheLimiter {
	return &CacheLimiter{cache: c, prefix: prefix, limit: limit, window: window}
}

func (l *CacheLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.cache.Incr(ctx, l.prefix+key, l.window)
	if err != nil {
		return false, err
	}
	return n <= int64(l.limit), nil
}

// RateLimit rejects requests from a client IP once the limiter's quota is
// spent. A failing limiter lets the request through.
func RateLimit(limiter Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err, "ip", ip)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				slog.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
				)
				m.ObserveRateLimited(r.URL.Path)
				response.Error(w, r, apperr.New(apperr.KindRateLimited, RateLimitMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. Proxy headers are already
// folded into RemoteAddr by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
