package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/webhook-client/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	err error
}

func (s stubCollector) Collect(ctx context.Context) (Metrics, error) {
	return Metrics{}, s.err
}

func (s stubCollector) GetRouteCounts(context.Context) (map[string]int64, error) {
	return map[string]int64{"support-agent": 7}, s.err
}

func (s stubCollector) GetStatusCounts(context.Context) (map[string]int64, error) {
	return map[string]int64{"delivered": 5, "failed": 2}, s.err
}

func (s stubCollector) GetThroughput(context.Context) (ThroughputMetrics, error) {
	return ThroughputMetrics{LastMinute: 1, LastFiveMinutes: 3, LastFifteenMinutes: 5}, s.err
}

func (s stubCollector) GetRouteHealth(context.Context) (map[string]webhook.RouteHealth, error) {
	return map[string]webhook.RouteHealth{
		"support-agent": {RouteID: "support-agent", Report: webhook.ConnectionReport{Status: webhook.Connected}},
	}, s.err
}

func scrape(t *testing.T, oe *OTelExporter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	oe.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestOTelExporter_Recorder(t *testing.T) {
	oe, err := NewOTelExporter(nil)
	require.NoError(t, err)
	defer oe.Shutdown(context.Background())

	ctx := context.Background()
	oe.ObserveAttempt(ctx, webhook.Attempt{MessageID: "m", Number: 1, Err: errors.New("refused")})
	oe.ObserveAttempt(ctx, webhook.Attempt{MessageID: "m", Number: 2, StatusCode: 200, Elapsed: 15 * time.Millisecond})
	oe.ObserveOutcome(ctx, webhook.Outcome{Success: true, MessageID: "m"})

	body := scrape(t, oe)

	assert.Regexp(t, `webhook[._]delivery[._]attempts`, body)
	assert.Regexp(t, `webhook[._]delivery[._]outcomes`, body)
	assert.Regexp(t, `webhook[._]delivery[._]duration`, body)
	assert.Contains(t, body, `result="transport_error"`)
	assert.Contains(t, body, `result="ok"`)
	assert.Contains(t, body, `success="true"`)
	assert.NotRegexp(t, `webhook[._]throughput`, body)
}

func TestOTelExporter_Gauges(t *testing.T) {
	t.Run("success - collector values are exported", func(t *testing.T) {
		oe, err := NewOTelExporter(stubCollector{})
		require.NoError(t, err)
		defer oe.Shutdown(context.Background())

		body := scrape(t, oe)

		assert.Regexp(t, `webhook[._]deliveries[._]stored`, body)
		assert.Regexp(t, `webhook[._]status[._]count`, body)
		assert.Regexp(t, `webhook[._]throughput`, body)
		assert.Regexp(t, `webhook[._]route[._]up`, body)
		assert.Regexp(t, `time[._]window="15m"`, body)
		assert.Regexp(t, `route[._]id="support-agent"`, body)
	})

	t.Run("collector errors do not break the endpoint", func(t *testing.T) {
		oe, err := NewOTelExporter(stubCollector{err: errors.New("redis down")})
		require.NoError(t, err)
		defer oe.Shutdown(context.Background())

		oe.ObserveOutcome(context.Background(), webhook.Outcome{Success: false})

		body := scrape(t, oe)
		assert.Regexp(t, `webhook[._]delivery[._]outcomes`, body)
	})
}

func TestCollector_Interface(t *testing.T) {
	t.Run("RedisCollector implements Collector interface", func(t *testing.T) {
		var _ Collector = (*RedisCollector)(nil)
	})
}
