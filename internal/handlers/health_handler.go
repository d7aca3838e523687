package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jugayaprende/internal/database"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports readiness of the database
type HealthHandler struct {
	db     *database.DB
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
