package api

import (
	"net/http"
	"time"

	"trend-watch/config"
	"trend-watch/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, a *app.App, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", h.HandleHealth)

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.HandleSignup)
			r.Post("/login", h.HandleLogin)
			r.With(RequireAuth(a)).Post("/logout", h.HandleLogout)
		})

		// Analysis works anonymously; a logged-in caller also gets
		// watch-list alerts on crossovers
		r.Group(func(r chi.Router) {
			r.Use(OptionalAuth(a))
			r.Get("/analyze/{ticker}", h.HandleAnalyze)
			r.Get("/chart/{ticker}", h.HandleChart)
			r.Get("/quote/{ticker}", h.HandleQuote)
		})

		// Watch-list
		r.Route("/watchlist", func(r chi.Router) {
			r.Use(RequireAuth(a))
			r.Get("/", h.HandleGetWatchlist)
			r.Post("/", h.HandleAddToWatchlist)
			r.Delete("/{ticker}", h.HandleRemoveFromWatchlist)
		})
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
