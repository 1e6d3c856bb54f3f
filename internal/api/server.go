// Package api provides the HTTP server: the htmx admin pages and the JSON API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tagrs/movietagger/internal/ratelimit"
)

// Options configures the HTTP layer.
type Options struct {
	// StaticDir is served under /static. Empty disables it.
	StaticDir string
	// AdminPasswordHash is a bcrypt hash. Empty disables basic auth.
	AdminPasswordHash string
	// MutationRate caps POST requests per client IP per minute. Zero disables it.
	MutationRate int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	pages    *pages
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		pages:    mustParsePages(),
		logger:   logger,
	}
	if opts.MutationRate > 0 {
		s.limiter = ratelimit.PerMinute(opts.MutationRate)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Movie Tagger API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	if opts.AdminPasswordHash != "" {
		humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"basic": {Type: "http", Scheme: "basic"},
		}
		humaConfig.Security = []map[string][]string{{"basic": {}}}
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerMovieRoutes()
	s.registerLibraryRoutes()
	s.registerWebRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(escapedRoutePath)
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "text/html", "text/css", "application/javascript", "application/json"))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         int((5 * time.Minute).Seconds()),
	}))
	s.router.Use(s.basicAuth)
	s.router.Use(s.rateLimitMutations)
}
