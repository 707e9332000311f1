package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS answers preflight requests and sets the CORS headers for allowed
// origins. "*" allows any origin, without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: !allowAll,
		MaxAge:           600,
	})
}
