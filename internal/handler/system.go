package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/templui/apiplate/internal/apperr"
	"github.com/templui/apiplate/internal/cache"
	"github.com/templui/apiplate/internal/ctxkeys"
	"github.com/templui/apiplate/internal/response"
	"github.com/templui/apiplate/internal/service"
)

const (
	testCacheKey = "test_key"
	testCacheTTL = 60 * time.Second
	testEmailTo  = "test@example.com"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type systemHandler struct {
	db       Pinger
	cache    cache.Cache
	notifier service.Notifier
	now      func() time.Time
}

func NewSystemHandler(db Pinger, c cache.Cache, notifier service.Notifier) *systemHandler {
	return &systemHandler{db: db, cache: c, notifier: notifier, now: time.Now}
}

func (h *systemHandler) Root(w http.ResponseWriter, r *http.Request) {
	appName := "API"
	if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.AppName != "" {
		appName = cfg.AppName
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Welcome to " + appName + " API"})
}

type healthData struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Health pings the database and the cache.
func (h *systemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data := healthData{Database: "ok", Cache: "ok"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		data.Database = "unavailable"
		healthy = false
	}
	if err := h.cache.Ping(ctx); err != nil {
		data.Cache = "unavailable"
		healthy = false
	}

	if !healthy {
		response.JSON(w, http.StatusServiceUnavailable, response.Envelope{
			Success:    false,
			Message:    "Service unavailable",
			Data:       data,
			StatusCode: http.StatusServiceUnavailable,
		})
		return
	}

	response.Success(w, http.StatusOK, "healthy", data)
}

type cachedValue struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// TestCache stores a value on the first call and serves it from the cache
// until it expires.
func (h *systemHandler) TestCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var value cachedValue
	raw, err := h.cache.Get(ctx, testCacheKey)
	switch {
	case err == nil:
		err = json.Unmarshal([]byte(raw), &value)
		if err != nil {
			response.Error(w, r, apperr.Internal(err, "decode cached value"))
			return
		}
	case errors.Is(err, cache.ErrMiss):
		value = cachedValue{Timestamp: h.now().UTC().Format(time.RFC3339), Message: "Cached!"}
		encoded, _ := json.Marshal(value)
		err = h.cache.Set(ctx, testCacheKey, string(encoded), testCacheTTL)
		if err != nil {
			response.Error(w, r, apperr.Internal(err, "set cache", "backend", h.cache.Name()))
			return
		}
	default:
		response.Error(w, r, apperr.Internal(err, "get cache", "backend", h.cache.Name()))
		return
	}

	response.Success(w, http.StatusOK, "Cache test successful.", value)
}

// TestEmail sends the welcome template to the given address. Registered in
// development only.
func (h *systemHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	// An empty body falls back to the default address
	if r.ContentLength != 0 {
		err := response.Decode(w, r, &req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
	}
	to := req.Email
	if to == "" {
		to = testEmailTo
	}

	err := h.notifier.Send(r.Context(), to, "", service.TemplateWelcome, map[string]any{"username": "Test User"})
	if err != nil {
		response.Error(w, r, apperr.Internal(err, "send test email"))
		return
	}

	response.Success(w, http.StatusOK, "Test email sent successfully!", nil)
}
