// Package ratelimit provides fixed-window request counters backed by Redis.
// Key format: ratelimit:<subject>
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds how often a subject may attempt an operation per window.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// New creates a Limiter wrapping the given Redis client.
func New(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window}
}

// Allow reports whether the subject is still under its attempt budget and
// records this attempt. The window starts with the first attempt and the
// counter expires with it.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", subject)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}
