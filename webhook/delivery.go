package webhook

import (
	"errors"
	"time"
)

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrRouteInactive    = errors.New("route is inactive")
	ErrDeliveryNotFound = errors.New("delivery not found")
)

/* Delivery is the stored record of one Send through a route
 * Uses value semantics as it represents data, not behavior
 */
type Delivery struct {
	ID        string    `json:"id"`
	RouteID   string    `json:"route_id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Status    Status    `json:"status"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

/* Target is everything needed to build a Client for one route
 * Produced by a TargetResolver (routes.Loader in production)
 */
type Target struct {
	RouteID       string
	BaseURL       string
	Path          string
	TestPath      string
	Format        PayloadFormat
	Auth          Auth
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	SigningSecret string
	DeliveredTTL  time.Duration
	FailedTTL     time.Duration
}
