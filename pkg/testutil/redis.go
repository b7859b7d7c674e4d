package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a testcontainers Redis instance.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	Client    *redis.Client
}

// NewRedisContainer starts a Redis server for testing and registers its
// cleanup with t.
func NewRedisContainer(ctx context.Context, t *testing.T) *RedisContainer {
	t.Helper()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	rc := &RedisContainer{Container: redisContainer}
	t.Cleanup(func() {
		if rc.Client != nil {
			_ = rc.Client.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rc.Container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate redis container: %v", err)
		}
	})

	uri, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis url %s: %v", uri, err)
	}
	rc.Client = redis.NewClient(opts)

	return rc
}
