package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter bounds how often a shared resource may be touched within a
// rolling window. State lives in Redis so every server instance sees the
// same counter for the operating account.
type RateLimiter struct {
	client *redis.Client
	key    string
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing `limit` events per `window`.
func NewRateLimiter(client *redis.Client, key string, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		key:    "ratelimit:" + key,
		limit:  limit,
		window: window,
	}
}

// Allow consumes one slot and reports whether the caller may proceed.
// The counter expires with the window, so a Redis outage fails open only
// for reads that error; callers decide how to treat the error.
func (l *RateLimiter) Allow(ctx context.Context) (bool, error) {
	count, err := l.client.Incr(ctx, l.key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, l.key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= l.limit, nil
}

// Reset clears the window. Used by tests and operational tooling.
func (l *RateLimiter) Reset(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}
