package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/webhook-client/webhook"
)

// Metrics represents the current state of the delivery store.
type Metrics struct {
	// RouteCounts maps route_id to the number of stored delivery records
	RouteCounts map[string]int64 `json:"route_counts"`

	// StatusCounts maps status name to count of deliveries in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// Throughput represents deliveries completed per time window
	Throughput ThroughputMetrics `json:"throughput"`

	// RouteHealth maps route_id to its latest connectivity check
	RouteHealth map[string]webhook.RouteHealth `json:"route_health"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// ThroughputMetrics represents deliveries completed over different time windows.
type ThroughputMetrics struct {
	// LastMinute is messages delivered in the last 1 minute
	LastMinute int64 `json:"last_minute"`

	// LastFiveMinutes is messages delivered in the last 5 minutes
	LastFiveMinutes int64 `json:"last_five_minutes"`

	// LastFifteenMinutes is messages delivered in the last 15 minutes
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// Collector defines the interface for collecting metrics from the delivery store.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetRouteCounts returns the number of stored deliveries per route
	GetRouteCounts(ctx context.Context) (map[string]int64, error)

	// GetStatusCounts returns the count of deliveries by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetThroughput returns deliveries completed over time windows
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)

	// GetRouteHealth returns the latest connectivity check per route
	GetRouteHealth(ctx context.Context) (map[string]webhook.RouteHealth, error)
}
