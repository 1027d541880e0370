package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLimiter(store CounterStore) *Limiter {
	return New(store, Config{MaxAttempts: 3, Window: 15 * time.Minute})
}

func TestLimiterBlocksAtBudget(t *testing.T) {
	limiter := testLimiter(NewMemoryCounterStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Check(ctx, "id"); err != nil {
			t.Fatalf("Check before budget = %v, want nil", err)
		}
		if err := limiter.RecordFailure(ctx, "id"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	if err := limiter.Check(ctx, "id"); !errors.Is(err, ErrLimited) {
		t.Fatalf("Check at budget = %v, want ErrLimited", err)
	}
}

func TestLimiterCheckDoesNotCount(t *testing.T) {
	store := NewMemoryCounterStore()
	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := limiter.Check(ctx, "id"); err != nil {
			t.Fatalf("Check = %v, want nil", err)
		}
	}

	count, err := store.Count(ctx, "id")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Check incremented the counter to %d", count)
	}
}

func TestLimiterClearResetsBudget(t *testing.T) {
	limiter := testLimiter(NewMemoryCounterStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.RecordFailure(ctx, "id"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := limiter.Check(ctx, "id"); !errors.Is(err, ErrLimited) {
		t.Fatalf("Check = %v, want ErrLimited", err)
	}

	if err := limiter.Clear(ctx, "id"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := limiter.Check(ctx, "id"); err != nil {
		t.Fatalf("Check after Clear = %v, want nil", err)
	}
}

func TestLimiterTracksIdentifiersIndependently(t *testing.T) {
	limiter := testLimiter(NewMemoryCounterStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.RecordFailure(ctx, "locked"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	if err := limiter.Check(ctx, "locked"); !errors.Is(err, ErrLimited) {
		t.Fatalf("locked identifier = %v, want ErrLimited", err)
	}
	if err := limiter.Check(ctx, "other"); err != nil {
		t.Fatalf("unrelated identifier = %v, want nil", err)
	}
}

func TestMemoryWindowAnchoredAtFirstFailure(t *testing.T) {
	store := NewMemoryCounterStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	limiter := testLimiter(store)
	ctx := context.Background()

	if err := limiter.RecordFailure(ctx, "id"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}

	// Failures near the end of the window must not push it out.
	now = now.Add(14 * time.Minute)
	for i := 0; i < 2; i++ {
		if err := limiter.RecordFailure(ctx, "id"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := limiter.Check(ctx, "id"); !errors.Is(err, ErrLimited) {
		t.Fatalf("Check inside window = %v, want ErrLimited", err)
	}

	// Two minutes later the window opened by the first failure has elapsed.
	now = now.Add(2 * time.Minute)
	if err := limiter.Check(ctx, "id"); err != nil {
		t.Fatalf("Check after window = %v, want nil", err)
	}

	// The next failure opens a fresh window counting from one.
	if err := limiter.RecordFailure(ctx, "id"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	count, err := store.Count(ctx, "id")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("fresh window count = %d, want 1", count)
	}
}

func TestRedisWindowAnchoredAtFirstFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisCounterStore(client, "")
	limiter := testLimiter(store)
	ctx := context.Background()

	if err := limiter.RecordFailure(ctx, "id"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	mr.FastForward(14 * time.Minute)
	for i := 0; i < 2; i++ {
		if err := limiter.RecordFailure(ctx, "id"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := limiter.Check(ctx, "id"); !errors.Is(err, ErrLimited) {
		t.Fatalf("Check inside window = %v, want ErrLimited", err)
	}

	// The key's TTL was set by the first INCR only, so the window closes 15
	// minutes after the first failure.
	mr.FastForward(2 * time.Minute)
	if err := limiter.Check(ctx, "id"); err != nil {
		t.Fatalf("Check after window = %v, want nil", err)
	}
	count, err := store.Count(ctx, "id")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after reclaim = %d, want 0", count)
	}
}

func TestRedisClear(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisCounterStore(client, "")
	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.RecordFailure(ctx, "id"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := limiter.Clear(ctx, "id"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := limiter.Check(ctx, "id"); err != nil {
		t.Fatalf("Check after Clear = %v, want nil", err)
	}
}
