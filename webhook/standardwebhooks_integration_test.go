//go:build integration

package webhook_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/webhook"
	wbredis "github.com/marcelsud/webhook-client/webhook/redis"
	"github.com/marcelsud/webhook-client/webhook/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// TestStandardWebhooks_EndToEnd delivers signed messages through a route file into Redis
func TestStandardWebhooks_EndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("signed delivery is verified by the receiver and recorded", func(t *testing.T) {
		redisContainer, cleanup := setupRedisContainer(t, ctx)
		defer cleanup()

		repo := createTestRepository(t, redisContainer)
		defer repo.Close(ctx)

		secret, err := signature.GenerateSecret(32)
		require.NoError(t, err)

		var mu sync.Mutex
		received := make([]ReceivedWebhook, 0)
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()

			body, _ := io.ReadAll(r.Body)
			rw := ReceivedWebhook{
				Headers: map[string]string{
					"webhook-id":        r.Header.Get("webhook-id"),
					"webhook-timestamp": r.Header.Get("webhook-timestamp"),
					"webhook-signature": r.Header.Get("webhook-signature"),
					"authorization":     r.Header.Get("Authorization"),
				},
				Body: body,
			}
			received = append(received, rw)

			if !verifyWebhookSignature(t, secret, rw.Headers, body) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response":"Thanks!","format":"text","metadata":{"model":"gpt"}}`))
		}))
		defer endpoint.Close()

		svc := newIntegrationService(t, repo, fmt.Sprintf(`
routes:
  - route_id: "user-events"
    dev_base_url: %q
    webhook_path: "/webhook/chat"
    signing_secret: %q
    max_retries: 1
    retry_delay_seconds: 0
    auth:
      type: "bearer"
      token: "agent-token"
`, endpoint.URL, secret.String()))
		defer svc.Close()

		d1, err := svc.Deliver(ctx, "user-events", webhook.NewMessage("msg-1", "user-1", "hello"))
		require.NoError(t, err)
		d2, err := svc.Deliver(ctx, "user-events", webhook.NewMessage("msg-2", "user-1", "again"))
		require.NoError(t, err)

		assert.True(t, d1.Outcome.Success)
		assert.Equal(t, "Thanks!", d1.Outcome.Reply())
		assert.Equal(t, "text", d1.Outcome.ResponseFormat)
		assert.Equal(t, webhook.Delivered, d2.Status)

		mu.Lock()
		require.Len(t, received, 2)
		for i, rw := range received {
			assert.Equal(t, fmt.Sprintf("msg-%d", i+1), rw.Headers["webhook-id"])
			assert.True(t, strings.HasPrefix(rw.Headers["webhook-signature"], "v1,"))
			assert.Equal(t, "Bearer agent-token", rw.Headers["authorization"])

			var body map[string]any
			require.NoError(t, json.Unmarshal(rw.Body, &body))
			assert.Equal(t, rw.Headers["webhook-id"], body["message_id"])
		}
		mu.Unlock()

		stored, err := repo.Get(ctx, d1.ID)
		require.NoError(t, err)
		assert.Equal(t, "msg-1", stored.MessageID)
		assert.Equal(t, "Thanks!", stored.Outcome.Reply())

		listed, err := svc.List(ctx, "user-events", 10)
		require.NoError(t, err)
		require.Len(t, listed, 2)

		ttl, err := repo.GetClient().TTL(ctx, wbredis.HashKey(d1.ID)).Result()
		require.NoError(t, err)
		assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	})

	t.Run("receiver rejecting the signature records a failed delivery", func(t *testing.T) {
		redisContainer, cleanup := setupRedisContainer(t, ctx)
		defer cleanup()

		repo := createTestRepository(t, redisContainer)
		defer repo.Close(ctx)

		secret, err := signature.GenerateSecret(32)
		require.NoError(t, err)
		other, err := signature.GenerateSecret(32)
		require.NoError(t, err)

		var calls int
		var mu sync.Mutex
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()

			body, _ := io.ReadAll(r.Body)
			headers := map[string]string{
				"webhook-id":        r.Header.Get("webhook-id"),
				"webhook-timestamp": r.Header.Get("webhook-timestamp"),
				"webhook-signature": r.Header.Get("webhook-signature"),
			}
			if !verifyWebhookSignature(t, other, headers, body) {
				http.Error(w, "bad signature", http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer endpoint.Close()

		svc := newIntegrationService(t, repo, fmt.Sprintf(`
routes:
  - route_id: "user-events"
    dev_base_url: %q
    webhook_path: "/webhook/chat"
    signing_secret: %q
    max_retries: 2
    retry_delay_seconds: 0
    failed_ttl_hours: 2
`, endpoint.URL, secret.String()))
		defer svc.Close()

		d, err := svc.Deliver(ctx, "user-events", webhook.NewMessage("msg-1", "user-1", "hello"))
		require.NoError(t, err)

		assert.False(t, d.Outcome.Success)
		assert.Equal(t, webhook.Failed, d.Status)
		assert.Equal(t, 3, d.Outcome.Attempts)
		assert.Contains(t, d.Outcome.Error, "HTTP 401")
		assert.Equal(t, 3, calls)

		stored, err := repo.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, webhook.Failed, stored.Status)

		ttl, err := repo.GetClient().TTL(ctx, wbredis.HashKey(d.ID)).Result()
		require.NoError(t, err)
		assert.InDelta(t, (2 * time.Hour).Seconds(), ttl.Seconds(), 5)
	})
}

// TestStandardWebhooks_RouteHealth records connectivity checks in Redis
func TestStandardWebhooks_RouteHealth(t *testing.T) {
	ctx := context.Background()

	redisContainer, cleanup := setupRedisContainer(t, ctx)
	defer cleanup()

	repo := createTestRepository(t, redisContainer)
	defer repo.Close(ctx)

	var testPathHits int
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/webhook/test" {
			testPathHits++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer endpoint.Close()

	svc := newIntegrationService(t, repo, fmt.Sprintf(`
routes:
  - route_id: "up"
    dev_base_url: %q
    webhook_path: "/webhook/chat"
    test_path: "/webhook/test"
  - route_id: "down"
    dev_base_url: "http://127.0.0.1:1"
    webhook_path: "/webhook/chat"
    max_retries: 0
`, endpoint.URL))
	defer svc.Close()

	up, err := svc.TestRoute(ctx, "up")
	require.NoError(t, err)
	down, err := svc.TestRoute(ctx, "down")
	require.NoError(t, err)

	assert.Equal(t, webhook.Connected, up.Status)
	assert.Equal(t, webhook.Disconnected, down.Status)
	assert.Equal(t, 1, testPathHits)

	health, err := repo.ListRouteHealth(ctx)
	require.NoError(t, err)
	require.Len(t, health, 2)
	assert.Equal(t, webhook.Connected, health["up"].Report.Status)
	assert.Equal(t, webhook.Disconnected, health["down"].Report.Status)
}

// Helper types and functions

type ReceivedWebhook struct {
	Headers map[string]string
	Body    []byte
}

type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

func setupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	container, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	time.Sleep(1 * time.Second)

	rc := &RedisContainer{
		Container: container,
		Addr:      addr,
	}
	return rc, func() { container.Terminate(ctx) }
}

func createTestRepository(t *testing.T, rc *RedisContainer) *wbredis.Repository {
	t.Helper()
	repo, err := wbredis.NewRepository(rc.Addr, "", 0)
	require.NoError(t, err)
	return repo
}

func newIntegrationService(t *testing.T, repo *wbredis.Repository, routesYAML string) *webhook.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(routesYAML), 0o600))

	loader := routes.NewLoader(routes.WithConfig(&config.Config{
		WebhookTimeoutSeconds:    5,
		WebhookDeliveredTTLHours: 1,
		WebhookFailedTTLHours:    24,
	}))
	require.NoError(t, loader.Load(path))

	return webhook.NewService(loader, repo, webhook.WithHealthStore(repo))
}

func verifyWebhookSignature(t *testing.T, secret signature.Secret, headers map[string]string, body []byte) bool {
	t.Helper()

	msgID := headers["webhook-id"]
	timestampStr := headers["webhook-timestamp"]
	signatureHeader := headers["webhook-signature"]

	if msgID == "" || timestampStr == "" || signatureHeader == "" {
		return false
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return false
	}

	valid, err := signature.Verify(secret, msgID, time.Unix(timestamp, 0), body, signatureHeader)
	return err == nil && valid
}
