package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-client/webhook"
	"github.com/redis/go-redis/v9"
)

const (
	healthPrefix = "route:health" // Key naming: route:health:{route_id}

	// A check older than this is no longer reported
	healthTTL = 24 * time.Hour
)

// SetRouteHealth stores the latest connectivity check of a route.
// The key expires after 24 hours so routes that are never tested drop out.
func (r *Repository) SetRouteHealth(ctx context.Context, health webhook.RouteHealth) error {
	key := fmt.Sprintf("%s:%s", healthPrefix, health.RouteID)

	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("marshaling route health: %w", err)
	}

	err = r.client.Set(ctx, key, data, healthTTL).Err()
	if err != nil {
		return fmt.Errorf("setting route health: %w", err)
	}

	return nil
}

// ListRouteHealth retrieves the latest check of every recently tested route
func (r *Repository) ListRouteHealth(ctx context.Context) (map[string]webhook.RouteHealth, error) {
	pattern := healthPrefix + ":*"
	byRoute := make(map[string]webhook.RouteHealth)

	var cursor uint64
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning route health keys: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				// Key expired between scan and get
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting route health: %w", err)
			}

			var health webhook.RouteHealth
			if err := json.Unmarshal([]byte(data), &health); err != nil {
				continue
			}

			byRoute[health.RouteID] = health
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return byRoute, nil
}

var _ webhook.HealthStore = (*Repository)(nil)
