// Package server exposes the monitoring engine over HTTP: the JSON API
// consumed by the dashboard, a Prometheus text endpoint, a websocket
// status stream, and the embedded static page itself.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"pingwatch/pkg/monitor"
)

// Server is the HTTP boundary around a monitor.Engine.
type Server struct {
	engine *monitor.Engine
	logger *logrus.Logger
	srv    *http.Server
}

// New creates a Server listening on addr.
func New(engine *monitor.Engine, logger *logrus.Logger, addr string) *Server {
	s := &Server{
		engine: engine,
		logger: logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler builds the full route and middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.AllowAll().Handler)
	r.Use(requireGET)
	r.Use(newRateLimitMiddleware(rate.NewLimiter(rate.Limit(200), 500)))
	r.Use(securityHeadersMiddleware)

	r.Get("/api/hosts", s.handleHosts)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/ping-all", s.handlePingAll)
	r.Get("/api/ping/{host}", s.handlePingOne)
	r.Get("/api/reload", s.handleReload)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", s.handleWS)
	r.Get("/metrics", s.handleMetrics)

	r.Handle("/*", noCacheMiddleware(staticHandler()))

	return r
}

// ListenAndServe runs the HTTP server until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("server: listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
