package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func runRefreshContract(t *testing.T, store RefreshStore) {
	t.Helper()
	ctx := context.Background()

	rec := &RefreshRecord{
		UserID:           "u1",
		SessionTokenHash: "sth-1",
		ExpiresAt:        time.Now().Add(time.Hour).Unix(),
	}
	if err := store.Save(ctx, "hash-1", rec, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.UserID != "u1" || got.SessionTokenHash != "sth-1" || got.ExpiresAt != rec.ExpiresAt {
		t.Fatalf("round trip lost data: %+v", got)
	}

	// Consume is one-shot.
	if _, err := store.Consume(ctx, "hash-1"); !errors.Is(err, ErrRefreshNotFound) {
		t.Fatalf("second Consume = %v, want ErrRefreshNotFound", err)
	}

	if _, err := store.Consume(ctx, "never-saved"); !errors.Is(err, ErrRefreshNotFound) {
		t.Fatalf("unknown hash = %v, want ErrRefreshNotFound", err)
	}
}

func TestMemoryRefreshContract(t *testing.T) {
	runRefreshContract(t, NewMemoryRefreshStore())
}

func TestRedisRefreshContract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	runRefreshContract(t, NewRedisRefreshStore(client, ""))
}

func TestMemoryRefreshConsumeIsExclusive(t *testing.T) {
	store := NewMemoryRefreshStore()
	ctx := context.Background()

	rec := &RefreshRecord{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	if err := store.Save(ctx, "hash-1", rec, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const racers = 16
	var wins, misses int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Consume(ctx, "hash-1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, ErrRefreshNotFound) {
				misses++
			}
		}()
	}
	wg.Wait()

	if wins != 1 || misses != racers-1 {
		t.Fatalf("wins=%d misses=%d, want exactly one winner", wins, misses)
	}
}

func TestRedisRefreshExpiresWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisRefreshStore(client, "")

	ctx := context.Background()
	rec := &RefreshRecord{UserID: "u1", ExpiresAt: time.Now().Add(time.Minute).Unix()}
	if err := store.Save(ctx, "hash-1", rec, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Consume(ctx, "hash-1"); !errors.Is(err, ErrRefreshNotFound) {
		t.Fatalf("reclaimed record = %v, want ErrRefreshNotFound", err)
	}
}
