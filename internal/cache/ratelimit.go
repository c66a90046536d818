package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter. The window starts with the first
// hit on a key.
type RateLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow counts a hit on key and reports whether it is within the limit.
// On a redis error the hit is allowed and the error returned for logging.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "rl:" + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}

	count := incr.Val()
	// a counter without a ttl never resets, so arm it on any hit that finds one
	if count == 1 || ttl.Val() < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= l.limit, nil
}
