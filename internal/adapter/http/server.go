package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Renderer produces the current view of the heat-map data.
type Renderer interface {
	Render(ctx context.Context) domain.View
}

// Server exposes the heat-map page, its JSON API, and the health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	renderer   Renderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the page, /api, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, renderer Renderer, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			// The first page load may wait on the remote coordinate download.
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		renderer: renderer,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/points", s.handlePoints)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
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

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view := s.renderer.Render(r.Context())
	templ.Handler(Page(view), templ.WithStatus(statusFor(view))).ServeHTTP(w, r)
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	view := s.renderer.Render(r.Context())
	if view.Failed {
		writeError(w, view)
		return
	}
	writeJSON(w, http.StatusOK, view.Result.HeatMap)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	n := 0
	if q := r.URL.Query().Get("rows"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rows must be a positive integer"})
			return
		}
		n = v
	}

	view := s.renderer.Render(r.Context())
	if view.Failed {
		writeError(w, view)
		return
	}
	rows := view.Result.Preview
	if n > 0 {
		rows = domain.Preview(view.Result.Rows, n)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view := s.renderer.Render(r.Context())
	if view.Failed {
		writeError(w, view)
		return
	}
	writeJSON(w, http.StatusOK, view.Result.Summary)
}

// statusFor maps a failed view onto an HTTP status.
func statusFor(view domain.View) int {
	if !view.Failed {
		return http.StatusOK
	}
	switch view.Kind {
	case "file_not_found":
		return http.StatusNotFound
	case "network":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, view domain.View) {
	writeJSON(w, statusFor(view), map[string]string{
		"error": view.Message,
		"kind":  view.Kind,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
