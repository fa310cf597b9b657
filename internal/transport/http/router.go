// Package http assembles the portal's HTTP surface: middleware chain,
// health and metrics endpoints, and the versioned API routes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contenthandler "isleport/internal/content/handler"
	notifhandler "isleport/internal/notification/handler"
	orghandler "isleport/internal/org/handler"
	"isleport/internal/platform/metrics"
	"isleport/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// HealthCheck probes one backing dependency for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router needs. Handlers own their own
// routes; the router only decides which auth wraps them.
type Deps struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Validator     middleware.ActorValidator
	AdminToken    string
	Org           *orghandler.Handler
	Content       *contenthandler.Handler
	Notifications *notifhandler.Handler
	Checks        []HealthCheck
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", readiness(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor(deps.Validator, deps.Logger))
			deps.Content.Routes(r)
			deps.Notifications.Routes(r)
			deps.Org.ActorRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Org.AdminRoutes(r)
		})
	})

	return r
}

func readiness(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable","failed":"` + check.Name + `"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
