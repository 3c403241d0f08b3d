package rate

import (
	"errors"
	"fmt"
	"time"

	"context"

	"github.com/redis/go-redis/v9"
)

// Config holds failure-counter tuning parameters.
type Config struct {
	Window time.Duration
}

// Counter tracks failed attempts per source address within a trailing window.
type Counter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a failure [Counter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Counter {
	return &Counter{
		redis:  redisClient,
		config: cfg,
	}
}

func failureKey(address string) string {
	return "bfg:addr:" + address
}

// Increment records one failed attempt for the address and returns the windowed
// total including this one. The increment is atomic; callers compare the result
// against their threshold, never read-then-write.
func (c *Counter) Increment(ctx context.Context, address string) (int64, error) {
	count, err := c.redis.Incr(ctx, failureKey(address)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := c.redis.Expire(ctx, failureKey(address), c.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

// Count reads the current windowed failure total without mutating it. Missing
// keys report zero.
func (c *Counter) Count(ctx context.Context, address string) (int64, error) {
	count, err := c.redis.Get(ctx, failureKey(address)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

// Reset clears the counter for an address after a successful authentication.
func (c *Counter) Reset(ctx context.Context, address string) error {
	if err := c.redis.Del(ctx, failureKey(address)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
