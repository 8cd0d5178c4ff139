// Package server exposes scenarios, topology graphs, and bus-balance
// figures over HTTP.
//
// Scenarios live in a directory fixed at startup, one subdirectory per
// scenario containing scenario.toml plus its profile CSVs. Every
// rendered artifact is cached keyed by the scenario bytes and the full
// set of plot options, so edits to a scenario invalidate its figures
// automatically.
package server

import (
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/errors"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 24 * time.Hour

// Config configures a server instance.
type Config struct {
	// ScenarioDir holds one subdirectory per scenario.
	ScenarioDir string

	// Cache stores rendered artifacts. Nil disables caching.
	Cache cache.Cache

	// Logger receives request and error logs. Nil uses log.Default().
	Logger *log.Logger

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration
}

// Server serves the fluxplot HTTP API.
type Server struct {
	scenarioDir string
	cache       cache.Cache
	logger      *log.Logger
	ttl         time.Duration
	router      chi.Router
}

// New validates cfg and builds the route table.
func New(cfg Config) (*Server, error) {
	if cfg.ScenarioDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scenario directory is required")
	}
	info, err := os.Stat(cfg.ScenarioDir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"scenario directory %q is not a readable directory", cfg.ScenarioDir)
	}

	s := &Server{
		scenarioDir: cfg.ScenarioDir,
		cache:       cfg.Cache,
		logger:      cfg.Logger,
		ttl:         cfg.TTL,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", s.handleListScenarios)
		r.Route("/scenarios/{name}", func(r chi.Router) {
			r.Get("/", s.handleScenario)
			r.Get("/graph.svg", s.handleGraph)
			r.Get("/buses/{bus}/balance.svg", s.handleBalanceSVG)
			r.Get("/buses/{bus}/balance.png", s.handleBalancePNG)
		})
	})

	s.router = r
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// logRequests logs method, path, status, and latency per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started).Round(time.Millisecond),
		)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
