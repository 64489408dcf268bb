//go:build integration

package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/blitzr-client/internal/testutil"
	"github.com/Sternrassler/blitzr-client/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "start Redis container")

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(ctx)
	})
	return client
}

func TestIntegration_CachedResponse(t *testing.T) {
	redisClient := setupRedisContainer(t)

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "500")
		w.Header().Set("X-RateLimit-Reset", "60")
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Radiohead"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.Redis = redisClient
	c, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, c.Cache())
	require.NoError(t, c.Ping(context.Background()))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		var out map[string]any
		require.NoError(t, c.GetJSON(ctx, "artist/", nil, &out))
		assert.Equal(t, "Radiohead", out["name"])
	}
	assert.Equal(t, int32(1), requests.Load(), "later requests are served from Redis")

	// The cache key leaves out the API key.
	keys, err := redisClient.Keys(ctx, "blitzr:artist*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], testutil.TestAPIKey)
}

func TestIntegration_ConditionalRevalidation(t *testing.T) {
	redisClient := setupRedisContainer(t)

	var requests, conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "500")
		w.Header().Set("X-RateLimit-Reset", "60")

		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.Header().Set("Cache-Control", "max-age=300")
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Cache-Control", "max-age=1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"OK Computer"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.Redis = redisClient
	c, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	var out map[string]any
	require.NoError(t, c.GetJSON(ctx, "release/", nil, &out))

	// Let the entry go stale; it stays in Redis for revalidation.
	time.Sleep(1500 * time.Millisecond)

	req, err := c.newRequest(ctx, "release/", nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	assert.JSONEq(t, `{"name":"OK Computer"}`, string(body))
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), conditional.Load())

	// The 304 extended the entry, so the next call does not reach the server.
	entry, err := c.Cache().Get(ctx, cache.Key{Endpoint: "release/", Query: req.URL.Query()})
	require.NoError(t, err)
	assert.Greater(t, entry.TTL(), time.Minute)

	require.NoError(t, c.GetJSON(ctx, "release/", nil, &out))
	assert.Equal(t, int32(2), requests.Load())
}

func TestIntegration_QuotaSharedThroughRedis(t *testing.T) {
	redisClient := setupRedisContainer(t)

	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.SetObject("tag/", map[string]any{})
	mock.SetQuota(1, 60)

	cfg := testConfig(mock.URL())
	cfg.Redis = redisClient

	first, err := New(cfg)
	require.NoError(t, err)
	second, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	var out map[string]any
	require.NoError(t, first.GetJSON(ctx, "tag/", nil, &out))

	// Same API key, same namespace: the second client sees the exhausted quota.
	err = second.GetJSON(ctx, "tag/", nil, &out)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, ErrorClassRateLimit, classOf(err))
	assert.Len(t, mock.RequestsTo("tag/"), 1)
}
