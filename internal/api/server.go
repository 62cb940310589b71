package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryanbastic/noteboard/internal/auth"
	"github.com/ryanbastic/noteboard/internal/hub"
	"github.com/ryanbastic/noteboard/internal/metrics"
	"github.com/ryanbastic/noteboard/internal/storage"
)

// NewServer creates an HTTP handler with all routes configured: the REST
// API, the websocket sync endpoint, health probes, and metrics.
func NewServer(
	logger *slog.Logger,
	boardStore storage.BoardStore,
	directory *auth.Directory,
	h *hub.Hub,
	db Pinger,
) http.Handler {
	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(Logging(logger))
	mux.Use(metrics.Metrics)
	mux.Use(Recovery(logger))

	humaAPI := humachi.New(mux, huma.DefaultConfig("Noteboard API", "1.0.0"))
	registerAuthRoutes(humaAPI, NewAuthHandler(directory, logger))
	registerBoardRoutes(humaAPI, NewBoardHandler(boardStore, h, logger))

	syncHandler := NewSyncHandler(boardStore, h, logger)
	mux.Get("/v1/sync", syncHandler.Serve)

	healthHandler := NewHealthHandler(db, h, logger)
	mux.Get("/livez", healthHandler.Livez)
	mux.Get("/readyz", healthHandler.Readyz)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
