package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/models"
)

const version = "1.0.0"

var startTime = time.Now()

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints
type HealthHandler struct {
	service string
	db      Pinger
	logger  *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, db Pinger, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{service: service, db: db, logger: logger}
}

// Check handles GET /api/v1/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Service: h.service,
		Version: version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warnw("Readiness check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, models.HealthStatus{
			Status:   "not ready",
			Service:  h.service,
			Version:  version,
			Database: "disconnected",
		})
		return
	}

	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:   "ready",
		Service:  h.service,
		Version:  version,
		Uptime:   time.Since(startTime).String(),
		Database: "connected",
	})
}
