// Package handler provides HTTP handlers for all API endpoints.
// Handlers delegate to the notification service facade; the facade owns
// backend selection and never surfaces delivery errors to callers.
package handler

import (
	"net/http"
	"time"

	"github.com/motorbid/auction-alerts/internal/api/respond"
	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/service"
	"github.com/motorbid/auction-alerts/internal/storage"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	svc   *service.Service
	store storage.Store
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(svc *service.Service, store storage.Store, cfg *config.Config) *Handler {
	return &Handler{
		svc:   svc,
		store: store,
		cfg:   cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the active notification backend.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	info := h.svc.GetServiceInfo()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Auction Alerts API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"backend": info.Backend,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckStore verifies persistence-layer connectivity.
// @Summary Storage health check
// @Description Verifies the key-value store backing the notification ledger is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/store [get]
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	_, _, err := h.store.Get(r.Context(), config.LedgerStorageKey)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"store":     "disconnected",
			"error":     "Storage connectivity check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"store":     "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
