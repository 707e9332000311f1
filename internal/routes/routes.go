package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/templui/apiplate/internal/app"
	"github.com/templui/apiplate/internal/handler"
	"github.com/templui/apiplate/internal/middleware"
	"github.com/templui/apiplate/internal/response"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	system := handler.NewSystemHandler(app.DB, app.Cache, app.EmailService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(app.Metrics))
	r.Use(middleware.CORS(app.Cfg.CORSAllowedOrigins))
	r.Use(middleware.Config(app.Cfg))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// ============================================================================
	// SYSTEM
	// ============================================================================

	r.Get("/", system.Root)
	r.Get("/health", system.Health)
	if app.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	}

	// ============================================================================
	// API v1
	// ============================================================================

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			// Credential flows are rate limited per client IP
			ar.Group(func(limited chi.Router) {
				limited.Use(middleware.RateLimit(app.AuthLimiter, app.Metrics))

				limited.Post("/register", auth.Register)
				limited.Post("/verify", auth.Verify)
				limited.Post("/resend_verification_code", auth.ResendVerificationCode)
				limited.Post("/login", auth.Login)
				limited.Post("/forgot-password", auth.ForgotPassword)
				limited.Post("/reset-password", auth.ResetPassword)
			})

			ar.With(middleware.RequireAuth(app.AuthService)).Get("/me", auth.Me)
			ar.Get("/test-cache", system.TestCache)
		})

		if app.Cfg.IsDevelopment() {
			api.Post("/email/test", system.TestEmail)
		}
	})

	return r
}
