//go:build integration

package redis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/webhook-client/webhook/redis"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

/* Test Helpers for Redis Integration Tests
 * Following the pattern from: https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
 */

// newTestRepository starts a throwaway Redis and returns a repository connected to it.
// Container and connection are released when the test ends.
func newTestRepository(t *testing.T) *redis.Repository {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	repo, err := redis.NewRepository(strings.TrimPrefix(addr, "redis://"), "", 0)
	require.NoError(t, err, "failed to create Redis repository")
	t.Cleanup(func() { repo.Close(ctx) })

	return repo
}

// keyTTL returns the remaining TTL of a key
func keyTTL(t *testing.T, repo *redis.Repository, key string) time.Duration {
	t.Helper()
	ttl, err := repo.GetClient().TTL(context.Background(), key).Result()
	require.NoError(t, err)
	return ttl
}

// keyExists checks if a key is present
func keyExists(t *testing.T, repo *redis.Repository, key string) bool {
	t.Helper()
	n, err := repo.GetClient().Exists(context.Background(), key).Result()
	require.NoError(t, err)
	return n > 0
}
