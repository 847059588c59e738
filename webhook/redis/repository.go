package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-client/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Uses Redis Hashes for delivery records and one Sorted Set per route as a
 * creation-time index for listing.
 */

const (
	hashPrefix  = "delivery"         // Hash naming: delivery:{delivery_id}
	indexPrefix = "deliveries:route" // Sorted set naming: deliveries:route:{route_id}
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// Store writes a delivery record and indexes it under its route
func (r *Repository) Store(ctx context.Context, d webhook.Delivery) error {
	outcomeJSON, err := json.Marshal(d.Outcome)
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, HashKey(d.ID), map[string]interface{}{
		"id":         d.ID,
		"route_id":   d.RouteID,
		"message_id": d.MessageID,
		"user_id":    d.UserID,
		"status":     d.Status.String(),
		"outcome":    string(outcomeJSON),
		"created_at": d.CreatedAt.UnixMilli(),
		"updated_at": d.UpdatedAt.UnixMilli(),
	})
	pipe.ZAdd(ctx, IndexKey(d.RouteID), redis.Z{
		Score:  float64(d.CreatedAt.UnixMilli()),
		Member: d.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing delivery: %w", err)
	}

	return nil
}

// Get retrieves a delivery by ID from its Redis hash
func (r *Repository) Get(ctx context.Context, id string) (webhook.Delivery, error) {
	data, err := r.client.HGetAll(ctx, HashKey(id)).Result()
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if len(data) == 0 {
		return webhook.Delivery{}, fmt.Errorf("%w: %s", webhook.ErrDeliveryNotFound, id)
	}

	return decode(data)
}

// ListByRoute returns up to limit deliveries of a route, newest first.
// Index entries whose record has expired are dropped from the index.
func (r *Repository) ListByRoute(ctx context.Context, routeID string, limit int) ([]webhook.Delivery, error) {
	if limit <= 0 {
		return []webhook.Delivery{}, nil
	}

	indexKey := IndexKey(routeID)
	ids, err := r.client.ZRevRange(ctx, indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading route index: %w", err)
	}
	if len(ids) == 0 {
		return []webhook.Delivery{}, nil
	}

	// Use pipeline for efficient batch operations
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, HashKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	deliveries := make([]webhook.Delivery, 0, len(ids))
	var expired []interface{}
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			expired = append(expired, ids[i])
			continue
		}
		d, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding delivery %s: %w", ids[i], err)
		}
		deliveries = append(deliveries, d)
	}

	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, indexKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("pruning route index: %w", err)
		}
	}

	return deliveries, nil
}

// SetTTL sets an expiration time on a delivery hash
func (r *Repository) SetTTL(ctx context.Context, id string, ttl time.Duration) error {
	err := r.client.Expire(ctx, HashKey(id), ttl).Err()
	if err != nil {
		return fmt.Errorf("setting TTL on delivery: %w", err)
	}

	return nil
}

// Ping checks the connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// HashKey returns the key of a delivery record
func HashKey(id string) string {
	return fmt.Sprintf("%s:%s", hashPrefix, id)
}

// IndexKey returns the key of a route's delivery index
func IndexKey(routeID string) string {
	return fmt.Sprintf("%s:%s", indexPrefix, routeID)
}

func decode(data map[string]string) (webhook.Delivery, error) {
	var outcome webhook.Outcome
	if raw := data["outcome"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
			return webhook.Delivery{}, fmt.Errorf("unmarshaling outcome: %w", err)
		}
	}

	status := webhook.NewStatus(data["status"])
	if err := status.Validate(); err != nil {
		return webhook.Delivery{}, fmt.Errorf("%w (%q)", err, data["status"])
	}

	return webhook.Delivery{
		ID:        data["id"],
		RouteID:   data["route_id"],
		MessageID: data["message_id"],
		UserID:    data["user_id"],
		Status:    status,
		Outcome:   outcome,
		CreatedAt: time.UnixMilli(parseInt64(data["created_at"])),
		UpdatedAt: time.UnixMilli(parseInt64(data["updated_at"])),
	}, nil
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

var _ webhook.Repository = (*Repository)(nil)
