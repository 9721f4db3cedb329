package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter enforces a fixed reset window per user on a shared Redis
// instance, coordinating limits across horizontally scaled instances.
// The counter key is created with the window as TTL on the first request
// and increments atomically after that.
type RedisLimiter struct {
	client *redis.Client

	maxRequests int
	window      time.Duration
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter
func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow checks and records one request for the user
func (rl *RedisLimiter) Allow(ctx context.Context, userID string) (Decision, error) {
	key := fmt.Sprintf("ratelimit:user:%s", userID)

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	if count > int64(rl.maxRequests) {
		retryAfter := rl.window
		if ttl, err := rl.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			retryAfter = ttl
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true}, nil
}
