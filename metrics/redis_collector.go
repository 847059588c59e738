package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/webhook"
	whredis "github.com/marcelsud/webhook-client/webhook/redis"
	"github.com/redis/go-redis/v9"
)

// RedisCollector implements the Collector interface for Redis-backed metrics
type RedisCollector struct {
	repo         *whredis.Repository
	routesLoader *routes.Loader
	now          func() time.Time
}

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(repo *whredis.Repository, loader *routes.Loader) *RedisCollector {
	return &RedisCollector{
		repo:         repo,
		routesLoader: loader,
		now:          time.Now,
	}
}

// record is the subset of a delivery hash the collector reads
type record struct {
	routeID   string
	status    string
	updatedAt int64 // unix milliseconds
}

// Collect gathers all metrics from Redis
func (c *RedisCollector) Collect(ctx context.Context) (Metrics, error) {
	records, err := c.scan(ctx)
	if err != nil {
		return Metrics{}, err
	}

	health, err := c.GetRouteHealth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting route health: %w", err)
	}

	now := c.now()
	return Metrics{
		RouteCounts:  c.routeCounts(records),
		StatusCounts: statusCounts(records),
		Throughput:   throughput(records, now),
		RouteHealth:  health,
		Timestamp:    now,
	}, nil
}

// GetRouteCounts returns the number of stored deliveries per route.
// Every loaded route is reported, with 0 when it has no records.
func (c *RedisCollector) GetRouteCounts(ctx context.Context) (map[string]int64, error) {
	records, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	return c.routeCounts(records), nil
}

// GetStatusCounts returns counts of deliveries grouped by status
func (c *RedisCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	records, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	return statusCounts(records), nil
}

// GetThroughput calculates messages delivered over different time windows
func (c *RedisCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	records, err := c.scan(ctx)
	if err != nil {
		return ThroughputMetrics{}, err
	}
	return throughput(records, c.now()), nil
}

// GetRouteHealth returns the latest connectivity check per route
func (c *RedisCollector) GetRouteHealth(ctx context.Context) (map[string]webhook.RouteHealth, error) {
	return c.repo.ListRouteHealth(ctx)
}

// scan reads route, status and update time of every delivery hash
func (c *RedisCollector) scan(ctx context.Context) ([]record, error) {
	client := c.repo.GetClient()

	var cursor uint64
	var keys []string
	for {
		var scanKeys []string
		var err error

		scanKeys, cursor, err = client.Scan(ctx, cursor, whredis.HashKey("*"), 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning delivery keys: %w", err)
		}
		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	// Use pipeline for efficient batch operations
	pipe := client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, key, "route_id", "status", "updated_at")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	records := make([]record, 0, len(keys))
	for _, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil || len(values) < 3 {
			continue
		}
		routeID, ok1 := values[0].(string)
		status, ok2 := values[1].(string)
		if !ok1 || !ok2 {
			// Key expired between scan and read
			continue
		}
		var updatedAt int64
		if s, ok := values[2].(string); ok {
			updatedAt, _ = strconv.ParseInt(s, 10, 64)
		}
		records = append(records, record{routeID: routeID, status: status, updatedAt: updatedAt})
	}
	return records, nil
}

func (c *RedisCollector) routeCounts(records []record) map[string]int64 {
	counts := make(map[string]int64)
	if c.routesLoader != nil {
		for _, route := range c.routesLoader.List() {
			counts[route.RouteID] = 0
		}
	}
	for _, r := range records {
		counts[r.routeID]++
	}
	return counts
}

func statusCounts(records []record) map[string]int64 {
	counts := map[string]int64{
		webhook.Delivered.String(): 0,
		webhook.Failed.String():    0,
	}
	for _, r := range records {
		if _, exists := counts[r.status]; exists {
			counts[r.status]++
		}
	}
	return counts
}

func throughput(records []record, now time.Time) ThroughputMetrics {
	oneMinuteAgo := now.Add(-1 * time.Minute).UnixMilli()
	fiveMinutesAgo := now.Add(-5 * time.Minute).UnixMilli()
	fifteenMinutesAgo := now.Add(-15 * time.Minute).UnixMilli()

	var tp ThroughputMetrics
	for _, r := range records {
		if r.status != webhook.Delivered.String() {
			continue
		}
		// Count in time windows
		if r.updatedAt >= fifteenMinutesAgo {
			tp.LastFifteenMinutes++
			if r.updatedAt >= fiveMinutesAgo {
				tp.LastFiveMinutes++
				if r.updatedAt >= oneMinuteAgo {
					tp.LastMinute++
				}
			}
		}
	}
	return tp
}
