// Package api wires HTTP middleware and routes for the auction-alerts service.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/motorbid/auction-alerts/internal/api/handler"
	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/service"
	"github.com/motorbid/auction-alerts/internal/storage"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(svc *service.Service, store storage.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "Link"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(svc, store, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/store", h.HealthCheckStore)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/stats", h.GetStats)
			r.Get("/scheduled", h.GetScheduled)
			r.Get("/service-info", h.GetServiceInfo)
			r.Post("/favorites", h.UpdateFavorite)
			r.Post("/schedule-all", h.ScheduleAll)
			r.Post("/test", h.SendTest)
			r.Delete("/", h.ClearAll)
		})
	})

	return r
}
