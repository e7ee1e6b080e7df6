package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"idproof/pkg/platform/httputil"
	"idproof/pkg/platform/middleware/requestlog"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type routerConfig struct {
	gatherer prometheus.Gatherer
	checks   map[string]HealthCheck
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

// WithGatherer exposes gatherer on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) RouterOption {
	return func(c *routerConfig) {
		c.gatherer = g
	}
}

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) RouterOption {
	return func(c *routerConfig) {
		c.checks[name] = check
	}
}

// NewRouter wires the public endpoints.
func NewRouter(h *Handler, logger *slog.Logger, opts ...RouterOption) http.Handler {
	cfg := &routerConfig{
		gatherer: prometheus.DefaultGatherer,
		checks:   map[string]HealthCheck{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestlog.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "idproof")
	})

	h.Register(r)
	r.Get("/healthz", healthz(cfg.checks))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = "unavailable"
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
