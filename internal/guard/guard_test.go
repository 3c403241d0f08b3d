package guard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goShield/internal/guard"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/MrEthical07/goShield/store/memory"
)

func newGuard(t *testing.T, threshold int) (*guard.Guard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	counter := rate.New(client, rate.Config{Window: 15 * time.Minute})
	return guard.New(counter, memory.NewBlockStore(), guard.Config{
		FailureThreshold: threshold,
		FailureWindow:    15 * time.Minute,
	}), mr
}

func TestThresholdBlocksAddress(t *testing.T) {
	g, _ := newGuard(t, 5)
	ctx := context.Background()
	const addr = "203.0.113.7"

	for i := 1; i <= 4; i++ {
		crossed, err := g.RecordFailure(ctx, addr)
		if err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
		if crossed {
			t.Fatalf("crossed threshold at failure %d", i)
		}
		if err := g.Admit(ctx, addr); err != nil {
			t.Fatalf("admit after failure %d: %v", i, err)
		}
	}

	crossed, err := g.RecordFailure(ctx, addr)
	if err != nil {
		t.Fatalf("fifth failure: %v", err)
	}
	if !crossed {
		t.Fatal("fifth failure did not cross threshold")
	}

	if err := g.Admit(ctx, addr); !errors.Is(err, guard.ErrAddressBlocked) {
		t.Fatalf("admit after block = %v, want ErrAddressBlocked", err)
	}
}

func TestCrossedReportedOnce(t *testing.T) {
	g, _ := newGuard(t, 3)
	ctx := context.Background()
	const addr = "203.0.113.8"

	var crossings int
	for i := 0; i < 6; i++ {
		crossed, err := g.RecordFailure(ctx, addr)
		if err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
		if crossed {
			crossings++
		}
	}
	if crossings != 1 {
		t.Fatalf("crossings = %d, want 1", crossings)
	}
}

func TestBlockSurvivesSuccessReset(t *testing.T) {
	g, _ := newGuard(t, 2)
	ctx := context.Background()
	const addr = "203.0.113.9"

	for i := 0; i < 2; i++ {
		if _, err := g.RecordFailure(ctx, addr); err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
	}
	if err := g.Admit(ctx, addr); !errors.Is(err, guard.ErrAddressBlocked) {
		t.Fatalf("admit = %v, want ErrAddressBlocked", err)
	}

	// Success clears the counter but never the block list.
	if err := g.RecordSuccess(ctx, addr); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := g.Admit(ctx, addr); !errors.Is(err, guard.ErrAddressBlocked) {
		t.Fatalf("admit after success = %v, want ErrAddressBlocked", err)
	}
}

func TestBlockSurvivesWindowExpiry(t *testing.T) {
	g, mr := newGuard(t, 2)
	ctx := context.Background()
	const addr = "203.0.113.10"

	for i := 0; i < 2; i++ {
		if _, err := g.RecordFailure(ctx, addr); err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
	}

	// Let the counter window lapse; the persistent block must remain.
	mr.FastForward(time.Hour)

	if err := g.Admit(ctx, addr); !errors.Is(err, guard.ErrAddressBlocked) {
		t.Fatalf("admit after window expiry = %v, want ErrAddressBlocked", err)
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	g, mr := newGuard(t, 5)
	ctx := context.Background()
	const addr = "203.0.113.11"

	for i := 0; i < 4; i++ {
		if _, err := g.RecordFailure(ctx, addr); err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
	}

	mr.FastForward(16 * time.Minute)

	// The window restarted, so the next failure counts as the first.
	crossed, err := g.RecordFailure(ctx, addr)
	if err != nil {
		t.Fatalf("failure after expiry: %v", err)
	}
	if crossed {
		t.Fatal("threshold crossed after window reset")
	}
	if err := g.Admit(ctx, addr); err != nil {
		t.Fatalf("admit: %v", err)
	}
}

func TestUnblockRestoresAdmission(t *testing.T) {
	g, _ := newGuard(t, 1)
	ctx := context.Background()
	const addr = "203.0.113.12"

	if _, err := g.RecordFailure(ctx, addr); err != nil {
		t.Fatalf("failure: %v", err)
	}
	if err := g.Admit(ctx, addr); !errors.Is(err, guard.ErrAddressBlocked) {
		t.Fatalf("admit = %v, want ErrAddressBlocked", err)
	}

	if err := g.Unblock(ctx, addr); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := g.Admit(ctx, addr); err != nil {
		t.Fatalf("admit after unblock: %v", err)
	}

	entries, err := g.Blocked(ctx)
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("block list has %d entries after unblock", len(entries))
	}
}

func TestEmptyAddressIsAlwaysAdmitted(t *testing.T) {
	g, _ := newGuard(t, 1)
	ctx := context.Background()

	if err := g.Admit(ctx, ""); err != nil {
		t.Fatalf("admit empty: %v", err)
	}
	crossed, err := g.RecordFailure(ctx, "")
	if err != nil {
		t.Fatalf("record failure empty: %v", err)
	}
	if crossed {
		t.Fatal("empty address crossed threshold")
	}
}

func TestBlockedListsEntryWithReason(t *testing.T) {
	g, _ := newGuard(t, 1)
	ctx := context.Background()
	const addr = "203.0.113.13"

	if _, err := g.RecordFailure(ctx, addr); err != nil {
		t.Fatalf("failure: %v", err)
	}

	entries, err := g.Blocked(ctx)
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Address != addr {
		t.Errorf("address = %q, want %q", entries[0].Address, addr)
	}
	if entries[0].Reason != guard.BlockReason {
		t.Errorf("reason = %q, want %q", entries[0].Reason, guard.BlockReason)
	}
	if entries[0].BlockedAt.IsZero() {
		t.Error("blocked_at is zero")
	}
}
