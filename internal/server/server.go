// Package server hosts the cinelens HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/internal/version"
)

// RouteRegistrar is implemented by every API module.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Options configures a Server.
type Options struct {
	Addr string

	// RateLimit is the sustained request rate; zero disables limiting.
	RateLimit float64
	Burst     int

	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the main cinelens server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server and mounts the routes of every registrar.
func New(opts Options, logger *zap.Logger, registrars ...RouteRegistrar) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           RateLimit(opts.RateLimit, opts.Burst, mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// No WriteTimeout: /library/events holds websocket connections open.
			IdleTimeout: 60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.registerCoreRoutes(opts.Gatherer)
	for _, r := range registrars {
		r.RegisterRoutes(mux)
	}

	return s
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes(g prometheus.Gatherer) {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	if g != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cinelens-Version", version.Short())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"service": "cinelens",
		"version": version.Map(),
	})
}
