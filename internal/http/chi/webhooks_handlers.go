package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/webhook"
	"github.com/rs/zerolog"
)

const (
	serviceName    = "webhook-client"
	serviceVersion = "0.1.0"

	// longest send a valid route allows, plus room to store and answer
	requestTimeout = routes.MaxDeliveryBudget + 30*time.Second

	healthTimeout = 2 * time.Second
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebhookHandlers sets up the delivery API routes.
// store is checked by /health when non-nil; metricsHandler is mounted at /metrics when non-nil.
func WebhookHandlers(ctx context.Context, logger zerolog.Logger, webhookService webhook.UseCase, routeLoader *routes.Loader, store Pinger, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "NECTA Webhook Client API",
			"version": serviceVersion,
		})
	})

	// Health check
	r.Method(http.MethodGet, "/health", health(store))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Delivery API routes
	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/routes", getRoutes(routeLoader))
		r.Method(http.MethodPost, "/routes/{route_id}/messages", postMessage(webhookService))
		r.Method(http.MethodPost, "/routes/{route_id}/test", postTest(webhookService))
		r.Method(http.MethodGet, "/routes/{route_id}/deliveries", getDeliveries(webhookService, routeLoader))
		r.Method(http.MethodGet, "/deliveries/{id}", getDelivery(webhookService))
	})

	return r
}

func health(store Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				httplog.LogEntrySetField(r.Context(), "error", err.Error())
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unhealthy",
					"service": serviceName,
					"error":   "delivery store unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	})
}
