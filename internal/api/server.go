// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/analytics"
	"github.com/mkarlsen/pulse/internal/api/handler"
	"github.com/mkarlsen/pulse/internal/api/middleware"
	"github.com/mkarlsen/pulse/internal/archive"
	"github.com/mkarlsen/pulse/internal/metrics"
)

// Server is the HTTP server exposing the analytics API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Deps bundles the wired components the API serves.
type Deps struct {
	Prices         handler.PriceSource
	Engine         *analytics.Engine
	Reports        *archive.Reports
	Registry       *metrics.Registry
	RiskFree       float64
	PeriodsPerYear int
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)

	// Middleware wraps the whole mux so every route is covered.
	var root http.Handler = mux
	if deps.Registry != nil {
		root = metrics.HTTPMiddleware(deps.Registry)(root)
	}
	root = metrics.LoggingMiddleware(logger)(root)
	s.httpServer.Handler = root

	return s
}

// setupRoutes configures all HTTP routes. The health and metrics
// endpoints stay unauthenticated; everything else sits behind the
// API key check when one is configured.
func (s *Server) setupRoutes(cfg Config, deps Deps) {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	auth := middleware.APIKeyAuth(cfg.APIKey)

	if deps.Prices != nil {
		prices := handler.NewPricesHandler(deps.Prices)
		s.mux.Handle("/api/prices", auth(method(http.MethodGet, prices.Get)))
	}

	if deps.Engine != nil {
		var saver handler.ReportSaver
		if deps.Reports != nil {
			saver = deps.Reports
		}
		var recorder handler.SummaryRecorder
		if deps.Registry != nil {
			recorder = deps.Registry
		}
		summary := handler.NewSummaryHandler(deps.Engine, saver, recorder, deps.RiskFree, deps.PeriodsPerYear)
		s.mux.Handle("/api/summary", auth(method(http.MethodPost, summary.Compute)))
	}

	if deps.Reports != nil {
		reports := handler.NewReportsHandler(deps.Reports)
		s.mux.Handle("/api/reports", auth(method(http.MethodGet, reports.Get)))
	}

	if deps.Registry != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
}

func method(want string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != want {
			w.Header().Set("Allow", want)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
