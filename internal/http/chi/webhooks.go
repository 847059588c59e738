package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/webhook"
)

const (
	maxMessageBytes  = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 100
)

/* HTTP layer DTOs for the delivery API
 * Separate from domain entities to avoid leaking internal structure
 */

// messageRequest is the body of POST /v1/routes/{route_id}/messages
type messageRequest struct {
	MessageID   string         `json:"message_id"`
	UserID      string         `json:"user_id"`
	Content     string         `json:"content"`
	Format      string         `json:"format"`
	Timestamp   time.Time      `json:"timestamp"`
	Attachments []string       `json:"attachments"`
	Metadata    map[string]any `json:"metadata"`
}

func (m messageRequest) validate() error {
	if m.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if m.Content == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

func (m messageRequest) toMessage() webhook.Message {
	id := m.MessageID
	if id == "" {
		id = uuid.New().String()
	}
	return webhook.NewMessage(id, m.UserID, m.Content,
		webhook.WithContentFormat(m.Format),
		webhook.WithTimestamp(m.Timestamp),
		webhook.WithAttachments(m.Attachments...),
		webhook.WithMetadata(m.Metadata),
	)
}

// deliveryResponse represents a stored delivery in the API
type deliveryResponse struct {
	ID        string          `json:"id"`
	RouteID   string          `json:"route_id"`
	MessageID string          `json:"message_id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Outcome   webhook.Outcome `json:"outcome"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newDeliveryResponse(d webhook.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:        d.ID,
		RouteID:   d.RouteID,
		MessageID: d.MessageID,
		UserID:    d.UserID,
		Status:    d.Status.String(),
		Outcome:   d.Outcome,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// routeResponse represents a route in the API; credentials are never exposed
type routeResponse struct {
	RouteID           string `json:"route_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Environment       string `json:"environment"`
	BaseURL           string `json:"base_url"`
	WebhookPath       string `json:"webhook_path"`
	TestPath          string `json:"test_path"`
	PayloadFormat     string `json:"payload_format"`
	AuthType          string `json:"auth_type"`
	Signed            bool   `json:"signed"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	MaxRetries        int    `json:"max_retries"`
	RetryDelaySeconds int    `json:"retry_delay_seconds"`
	Active            bool   `json:"active"`
}

func newRouteResponse(route *routes.Route) routeResponse {
	return routeResponse{
		RouteID:           route.RouteID,
		Name:              route.Name,
		Description:       route.Description,
		Environment:       route.Environment.String(),
		BaseURL:           route.BaseURL(),
		WebhookPath:       route.WebhookPath,
		TestPath:          route.TestPath,
		PayloadFormat:     route.Format.String(),
		AuthType:          route.AuthKind().String(),
		Signed:            route.SigningSecret != "",
		TimeoutSeconds:    int(route.Timeout / time.Second),
		MaxRetries:        route.MaxRetries,
		RetryDelaySeconds: int(route.RetryDelay / time.Second),
		Active:            route.Active,
	}
}

// connectionResponse is the answer of POST /v1/routes/{route_id}/test
type connectionResponse struct {
	RouteID string `json:"route_id"`
	webhook.ConnectionReport
}

// postMessage handles POST /v1/routes/{route_id}/messages
func postMessage(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "route_id")

		var req messageRequest
		body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
		defer body.Close()
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
			return
		}
		if err := req.validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		msg := req.toMessage()
		httplog.LogEntrySetField(r.Context(), "message_id", msg.ID)

		d, err := service.Deliver(r.Context(), routeID, msg)
		if err != nil && d.ID == "" {
			writeError(w, r, err)
			return
		}
		if err != nil {
			// delivered but not recorded
			logger := httplog.LogEntry(r.Context())
			logger.Warn().Err(err).Str("delivery_id", d.ID).Msg("delivery not recorded")
		}

		status := http.StatusOK
		if !d.Outcome.Success {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, newDeliveryResponse(d))
	})
}

// postTest handles POST /v1/routes/{route_id}/test
func postTest(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "route_id")

		report, err := service.TestRoute(r.Context(), routeID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, connectionResponse{RouteID: routeID, ConnectionReport: report})
	})
}

// getDeliveries handles GET /v1/routes/{route_id}/deliveries
func getDeliveries(service webhook.UseCase, routeLoader *routes.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "route_id")
		if !routeLoader.Exists(routeID) {
			writeError(w, r, fmt.Errorf("%w: %s", webhook.ErrRouteNotFound, routeID))
			return
		}

		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxListLimit {
				writeJSON(w, http.StatusBadRequest, errorResponse{
					Error: fmt.Sprintf("limit must be between 1 and %d", maxListLimit),
				})
				return
			}
			limit = n
		}

		deliveries, err := service.List(r.Context(), routeID, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}

		responses := make([]deliveryResponse, 0, len(deliveries))
		for _, d := range deliveries {
			responses = append(responses, newDeliveryResponse(d))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

// getDelivery handles GET /v1/deliveries/{id}
func getDelivery(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newDeliveryResponse(d))
	})
}

// getRoutes handles GET /v1/routes
func getRoutes(routeLoader *routes.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allRoutes := routeLoader.List()

		responses := make([]routeResponse, 0, len(allRoutes))
		for _, route := range allRoutes {
			responses = append(responses, newRouteResponse(route))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}
