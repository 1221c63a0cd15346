// Package web serves export and import over HTTP.
//
// Routes:
//
//	GET  /healthz                              liveness
//	GET  /metrics                              prometheus metrics
//	GET  /api/formats                          active export and import formats
//	GET  /api/records/{recordType}/fields      field catalog in column order
//	GET  /api/records/{recordType}/export      export and download (?format=)
//	POST /api/records/{recordType}/import      multipart upload, field "file" (?format=)
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/dataio/internal/core"
	weblog "github.com/JonMunkholm/dataio/internal/web/middleware"
)

// DefaultMaxUploadSize caps import uploads when Options leaves it unset.
const DefaultMaxUploadSize = 100 << 20

// ModelFunc returns the facade for a record type.
type ModelFunc func(recordType string) *core.Model

// Options configures a Server.
type Options struct {
	Models         ModelFunc
	Registry       *core.Registry // nil means core.DefaultRegistry
	MaxUploadSize  int64
	RequestTimeout time.Duration // 0 means no timeout
}

// Server is the HTTP front end for export and import.
type Server struct {
	models    ModelFunc
	registry  *core.Registry
	maxUpload int64
	timeout   time.Duration

	router *chi.Mux
	server *http.Server
}

// NewServer builds the router for opts.
func NewServer(opts Options) *Server {
	s := &Server{
		models:    opts.Models,
		registry:  opts.Registry,
		maxUpload: opts.MaxUploadSize,
		timeout:   opts.RequestTimeout,
		router:    chi.NewRouter(),
	}
	if s.registry == nil {
		s.registry = core.DefaultRegistry()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadSize
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	if s.timeout > 0 {
		s.router.Use(middleware.Timeout(s.timeout))
	}
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)

		r.Route("/records/{recordType}", func(r chi.Router) {
			r.Get("/fields", s.handleFields)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})
	})
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
