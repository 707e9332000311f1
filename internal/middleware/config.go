package middleware

import (
	"net/http"

	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/ctxkeys"
)

// Config middleware adds the sanitized app configuration to the request context.
// Secrets and connection strings are excluded.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
