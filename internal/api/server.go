// Package api serves the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout    flow data → layout JSON
//	POST /v1/render    flow data → artifact (?format=svg|png|json|dot)
//	POST /v1/snapshot  flow data → mesh snapshot JSON
//	GET  /healthz      liveness
//	GET  /metrics      Prometheus metrics
//
// Request bodies are flow documents in JSON, YAML or TOML, selected by the
// Content-Type header or the "input" query parameter. Mesh options embedded
// in the body take precedence over the server's config file.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/linearmesh/pkg/config"
	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	cfg    *config.Config
	logger *log.Logger
	router chi.Router
}

// New creates a server. Metrics are served from gatherer, or from the
// default Prometheus gatherer when it is nil.
func New(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger, gatherer prometheus.Gatherer) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{runner: runner, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody(r, errs.ErrCodeNotFound, "no route for "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody(r, errs.ErrCodeUnsupported, r.Method+" not allowed on "+r.URL.Path))
	})

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Post("/render", s.render)
		r.Post("/snapshot", s.snapshot)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown", "err", err)
		}
		return nil
	})

	return g.Wait()
}
