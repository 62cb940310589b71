package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     Pinger
	hub    interface{ ConnectionCount() int }
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, hub interface{ ConnectionCount() int }, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, hub: hub, logger: logger}
}

type readyzResponse struct {
	Status            string `json:"status"`
	DatabaseLatencyMs int64  `json:"database_latency_ms,omitempty"`
	OnlineConnections int    `json:"online_connections"`
	Error             string `json:"error,omitempty"`
}

// Livez is a simple liveness probe — if the process can serve HTTP, it's alive.
func (h *HealthHandler) Livez(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports database reachability and the live connection count.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := readyzResponse{Status: "ok", OnlineConnections: h.hub.ConnectionCount()}

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		h.logger.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.DatabaseLatencyMs = time.Since(start).Milliseconds()

	writeJSON(w, http.StatusOK, resp)
}
