package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the backing Redis cannot be reached.
var ErrStoreUnavailable = errors.New("rate store unavailable")

type counter struct {
	count   int
	firstAt time.Time
	window  time.Duration
}

// MemoryCounterStore keeps failure counters in process memory. Stale counters
// are removed lazily on the next read or write of their identifier.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

// NewMemoryCounterStore returns an empty in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// SetClock overrides the store's time source. Test hook.
func (s *MemoryCounterStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Count returns the live attempt count for the identifier.
func (s *MemoryCounterStore) Count(_ context.Context, identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[identifier]
	if !ok {
		return 0, nil
	}
	if s.stale(c) {
		delete(s.counters, identifier)
		return 0, nil
	}
	return c.count, nil
}

// Increment counts one failure, opening a fresh window when none is live.
func (s *MemoryCounterStore) Increment(_ context.Context, identifier string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[identifier]
	if !ok || s.stale(c) {
		s.counters[identifier] = &counter{count: 1, firstAt: s.now(), window: window}
		return 1, nil
	}

	// The window stays anchored at the first failure; later hits never extend it.
	c.count++
	return c.count, nil
}

// Clear removes the identifier's counter.
func (s *MemoryCounterStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, identifier)
	return nil
}

func (s *MemoryCounterStore) stale(c *counter) bool {
	return !c.windowEnd().After(s.now())
}

func (c *counter) windowEnd() time.Time {
	return c.firstAt.Add(c.window)
}

// RedisCounterStore keeps failure counters as Redis keys whose TTL is the
// attempt window, set on the first hit only.
type RedisCounterStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisCounterStore returns a counter store using the given client.
// prefix namespaces the keys; it defaults to "al" when empty.
func NewRedisCounterStore(redisClient redis.UniversalClient, prefix string) *RedisCounterStore {
	if prefix == "" {
		prefix = "al"
	}
	return &RedisCounterStore{redis: redisClient, prefix: prefix}
}

func (s *RedisCounterStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

// Count returns the live attempt count; a missing key reads as zero.
func (s *RedisCounterStore) Count(ctx context.Context, identifier string) (int, error) {
	count, err := s.redis.Get(ctx, s.key(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Increment counts one failure. The TTL is set only when the INCR created the
// key, so the window stays anchored at the first failure.
func (s *RedisCounterStore) Increment(ctx context.Context, identifier string, window time.Duration) (int, error) {
	key := s.key(identifier)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return int(count), nil
}

// Clear removes the identifier's counter.
func (s *RedisCounterStore) Clear(ctx context.Context, identifier string) error {
	if err := s.redis.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
