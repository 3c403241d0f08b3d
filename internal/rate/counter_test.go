package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCounter(t *testing.T, window time.Duration) (*Counter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, Config{Window: window}), mr
}

func TestIncrementAndCount(t *testing.T) {
	c, _ := newCounter(t, time.Minute)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("increment = %d, want %d", got, want)
		}
	}

	count, err := c.Count(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestCountMissingKeyIsZero(t *testing.T) {
	c, _ := newCounter(t, time.Minute)

	count, err := c.Count(context.Background(), "10.0.0.2")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestResetClearsCounter(t *testing.T) {
	c, _ := newCounter(t, time.Minute)
	ctx := context.Background()

	if _, err := c.Increment(ctx, "10.0.0.3"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := c.Reset(ctx, "10.0.0.3"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	count, err := c.Count(ctx, "10.0.0.3")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after reset = %d, want 0", count)
	}
}

func TestWindowExpiry(t *testing.T) {
	c, mr := newCounter(t, time.Minute)
	ctx := context.Background()

	if _, err := c.Increment(ctx, "10.0.0.4"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := c.Increment(ctx, "10.0.0.4"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	mr.FastForward(61 * time.Second)

	got, err := c.Increment(ctx, "10.0.0.4")
	if err != nil {
		t.Fatalf("increment after expiry: %v", err)
	}
	if got != 1 {
		t.Fatalf("increment after expiry = %d, want 1", got)
	}
}

func TestCountersAreKeyedByAddress(t *testing.T) {
	c, _ := newCounter(t, time.Minute)
	ctx := context.Background()

	if _, err := c.Increment(ctx, "10.0.0.5"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	count, err := c.Count(ctx, "10.0.0.6")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("other address count = %d, want 0", count)
	}
}

func TestUnavailableRedisWrapsSentinel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := New(client, Config{Window: time.Minute})

	mr.Close()

	if _, err := c.Increment(context.Background(), "10.0.0.7"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("increment error = %v, want ErrRedisUnavailable", err)
	}
}
