// Package http serves the quicklook dashboard: the control page, the
// rendered plot images, a small JSON API, and the health/metrics
// endpoints.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arctictools/nav-quicklook/internal/adapter/basemap"
	"github.com/arctictools/nav-quicklook/internal/adapter/netcdf"
	"github.com/arctictools/nav-quicklook/internal/config"
	"github.com/arctictools/nav-quicklook/internal/observability"
)

//go:embed dashboard.html
var dashboardFS embed.FS

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard, plot, API, health, and metrics routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	store    *netcdf.Store
	basemap  basemap.Fetcher // nil when the basemap layer is disabled
	metrics  *observability.Metrics
	defaults viewDefaults
	tmpl     *template.Template
}

// viewDefaults seed the dashboard controls.
type viewDefaults struct {
	Coarsen    int
	MarkerSize int
	Alpha      float64
}

// NewServer creates the quicklook HTTP server. Pass a nil fetcher to
// disable the basemap layer.
func NewServer(cfg *config.Config, store *netcdf.Store, fetcher basemap.Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:  logger,
		store:   store,
		basemap: fetcher,
		metrics: metrics,
		defaults: viewDefaults{
			Coarsen:    cfg.DefaultCoarsen,
			MarkerSize: cfg.DefaultMarkerSize,
			Alpha:      cfg.DefaultAlpha,
		},
		tmpl: template.Must(template.ParseFS(dashboardFS, "dashboard.html")),
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/days", s.handleDays)
	mux.HandleFunc("GET /api/days/{day}/bounds", s.handleDayBounds)
	mux.HandleFunc("GET /plots/timeseries.png", s.handleTimeseries)
	mux.HandleFunc("GET /plots/map.png", s.handleMap)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(store))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
