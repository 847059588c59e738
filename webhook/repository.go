package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 */

// Reader provides read operations for delivery records
type Reader interface {
	Get(ctx context.Context, id string) (Delivery, error)
	ListByRoute(ctx context.Context, routeID string, limit int) ([]Delivery, error)
}

// Writer provides write operations for delivery records
type Writer interface {
	Store(ctx context.Context, delivery Delivery) error
	/* SetTTL sets an expiration time on a delivery record
	 * Used to automatically clean up delivered and failed records
	 */
	SetTTL(ctx context.Context, id string, ttl time.Duration) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}

// TargetResolver looks up the delivery target configured for a route
type TargetResolver interface {
	Target(ctx context.Context, routeID string) (Target, error)
}

// HealthStore keeps the latest connectivity check per route
type HealthStore interface {
	SetRouteHealth(ctx context.Context, health RouteHealth) error
	ListRouteHealth(ctx context.Context) (map[string]RouteHealth, error)
}
