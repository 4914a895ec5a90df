//go:build integration

package ops

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sungwon/ion-notify/internal/config"
)

func startRedis(t *testing.T) config.OpsConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}
	return config.OpsConfig{RedisAddr: host + ":" + port.Port()}
}

func TestRedisStore_SessionsAndFlush(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	sessions := NewRedisStore(cfg, 0)
	defer sessions.Close()
	cache := NewRedisStore(cfg, 1)
	defer cache.Close()

	for _, k := range []string{"ion:session:a", "ion:session:b", "dev:session:a"} {
		if err := sessions.client.Set(ctx, k, "x", 0).Err(); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
	if err := cache.client.Set(ctx, "views.decorators.cache", "x", 0).Err(); err != nil {
		t.Fatal(err)
	}

	keys, err := sessions.Keys(ctx, "ion:session:*")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "ion:session:a" || keys[1] != "ion:session:b" {
		t.Fatalf("Keys() = %v", keys)
	}

	n, err := sessions.Delete(ctx, keys...)
	if err != nil || n != 2 {
		t.Fatalf("Delete() = %d, %v", n, err)
	}
	if left, _ := sessions.Keys(ctx, "*"); len(left) != 1 {
		t.Errorf("expected only the dev session left, got %v", left)
	}

	if err := cache.FlushDB(ctx); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}
	if left, _ := cache.Keys(ctx, "*"); len(left) != 0 {
		t.Errorf("cache not empty: %v", left)
	}
	if left, _ := sessions.Keys(ctx, "*"); len(left) != 1 {
		t.Error("FlushDB touched another database")
	}
}
