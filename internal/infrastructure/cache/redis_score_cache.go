// Package cache provides the Redis-backed model score cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisScoreCache implements ml.ScoreCache on Redis.
type RedisScoreCache struct {
	client redis.UniversalClient
}

// NewRedisScoreCache creates a cache over an existing client.
func NewRedisScoreCache(client redis.UniversalClient) *RedisScoreCache {
	return &RedisScoreCache{client: client}
}

// Dial connects to the Redis server at addr and verifies it answers.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get returns the score stored under key. A missing key is a miss, not an error.
func (c *RedisScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached score under %s: %w", key, err)
	}
	return score, true, nil
}

// Set stores score under key for ttl.
func (c *RedisScoreCache) Set(ctx context.Context, key string, score float64, ttl time.Duration) error {
	val := strconv.FormatFloat(score, 'g', -1, 64)
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
