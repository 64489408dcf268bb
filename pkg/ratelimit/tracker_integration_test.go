//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client for it.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		container.Terminate(ctx)
	})

	return client
}

func TestTracker_Integration_SharedState(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Namespace = "shared-key"
	writer := NewTracker(client, cfg, zerolog.Nop())
	reader := NewTracker(client, cfg, zerolog.Nop())

	if err := writer.UpdateFromHeaders(ctx, quotaHeaders("3", "120")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	state, err := reader.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", state.Remaining)
	}
	if d := state.TimeUntilReset(); d < 115*time.Second || d > 120*time.Second {
		t.Errorf("TimeUntilReset = %v, want about 2m", d)
	}

	allowed, err := reader.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if allowed {
		t.Error("Reader should see the critical state written by another tracker")
	}
}

func TestTracker_Integration_Namespaces(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	a := DefaultConfig()
	a.Namespace = "key-a"
	b := DefaultConfig()
	b.Namespace = "key-b"

	if err := NewTracker(client, a, zerolog.Nop()).UpdateFromHeaders(ctx, quotaHeaders("1", "60")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	allowed, err := NewTracker(client, b, zerolog.Nop()).ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if !allowed {
		t.Error("A different API key must not be blocked")
	}
}

func TestTracker_Integration_KeyExpires(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Namespace = "expiring"
	tracker := NewTracker(client, cfg, zerolog.Nop())

	if err := tracker.UpdateFromHeaders(ctx, quotaHeaders("1", "0")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	ttl, err := client.TTL(ctx, "blitzr:quota:expiring").Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want at most 1m", ttl)
	}
}
