package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asad/sandstack/internal/config"
	"github.com/asad/sandstack/internal/control"
	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
	"github.com/asad/sandstack/internal/metrics"
)

// ControlPrefix is where the out-of-band reset/data endpoints live. It is
// namespaced so it can never collide with an emulated service.
const ControlPrefix = "/_sandstack"

// EdgeRouter is the single HTTP entry point: it receives all incoming
// requests and dispatches them to the emulated service modules.
type EdgeRouter struct {
	router chi.Router
	cfg    *config.Config
	logger logging.Logger
}

// NewEdgeRouter creates and configures a new edge router instance over an
// explicit service list and backend registry. Disabled services are skipped.
func NewEdgeRouter(cfg *config.Config, logger logging.Logger, registry *core.Registry, services []core.Service) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(scopeDefaultsMiddleware(cfg))

	// Health check endpoint - always available regardless of enabled services
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"sandstack"}`))
	})

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Out-of-band control endpoints (reset, state dump)
	controlAPI := control.New(registry, logger)
	r.Route(ControlPrefix, func(r chi.Router) {
		controlAPI.RegisterRoutes(r)
	})

	// Register routes for each enabled service under its own prefix
	for _, service := range services {
		if cfg.IsServiceEnabled(service.Name()) {
			logger.Info("registering service routes",
				logging.String("service", service.Name()),
			)
			r.Route("/"+service.Name(), func(r chi.Router) {
				service.RegisterRoutes(r)
			})
		} else {
			logger.Info("skipping service (not enabled)",
				logging.String("service", service.Name()),
			)
		}
	}

	return &EdgeRouter{
		router: r,
		cfg:    cfg,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (er *EdgeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	er.router.ServeHTTP(w, r)
}

// serviceFromPath derives the owning service name from a request path for
// metrics labels: the first path segment, or "edge" for top-level endpoints.
func serviceFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if trimmed == "" {
		return "edge"
	}
	return trimmed
}

// scopeDefaultsMiddleware applies the configured account/region defaults to
// requests that carry no scope of their own. The region header is only set
// when the request is unsigned, so a SigV4 credential scope still wins.
func scopeDefaultsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(core.HeaderAccountID) == "" {
				r.Header.Set(core.HeaderAccountID, cfg.DefaultAccountID)
			}
			if r.Header.Get(core.HeaderRegion) == "" && r.Header.Get("Authorization") == "" {
				r.Header.Set(core.HeaderRegion, cfg.DefaultRegion)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLoggingMiddleware logs each request with structured fields and
// records it in the Prometheus counters.
func requestLoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			metrics.ObserveRequest(serviceFromPath(r.URL.Path), ww.Status(), duration)
			logger.Info("request completed",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("target", r.Header.Get("X-Amz-Target")),
				logging.Int("status", ww.Status()),
				logging.Duration("latency_ms", duration.Milliseconds()),
				logging.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
