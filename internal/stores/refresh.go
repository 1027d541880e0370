package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshNotFound is returned by Consume when no record is keyed by the
// hash, including records that were already consumed.
var ErrRefreshNotFound = errors.New("refresh record not found")

// ErrStoreUnavailable is returned when the backing Redis cannot be reached.
var ErrStoreUnavailable = errors.New("store unavailable")

// RefreshRecord maps a refresh-token hash to its owner. SessionTokenHash keys
// the session the token was issued alongside, so rotation can retire it.
type RefreshRecord struct {
	UserID           string `json:"uid"`
	SessionTokenHash string `json:"sth"`
	ExpiresAt        int64  `json:"exp"`
}

// RefreshStore records refresh-token ownership. Consume is one-shot: a
// successful call removes the record before returning it, so the same token
// value can never be redeemed twice.
type RefreshStore interface {
	Save(ctx context.Context, tokenHash string, rec *RefreshRecord, ttl time.Duration) error
	Consume(ctx context.Context, tokenHash string) (*RefreshRecord, error)
}

// MemoryRefreshStore keeps refresh records in process memory.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	records map[string]*RefreshRecord
}

// NewMemoryRefreshStore returns an empty in-memory refresh store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{records: make(map[string]*RefreshRecord)}
}

// Save stores the record under the token hash. The ttl is ignored; expiry is
// enforced through the record's ExpiresAt at consume time.
func (s *MemoryRefreshStore) Save(_ context.Context, tokenHash string, rec *RefreshRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[tokenHash] = &cp
	return nil
}

// Consume removes and returns the record in one step.
func (s *MemoryRefreshStore) Consume(_ context.Context, tokenHash string) (*RefreshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[tokenHash]
	if !ok {
		return nil, ErrRefreshNotFound
	}
	delete(s.records, tokenHash)
	return rec, nil
}

// RedisRefreshStore keeps refresh records as TTL-bound Redis keys.
type RedisRefreshStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRefreshStore returns a refresh store using the given client.
// prefix namespaces the keys; it defaults to "ar" when empty.
func NewRedisRefreshStore(redisClient redis.UniversalClient, prefix string) *RedisRefreshStore {
	if prefix == "" {
		prefix = "ar"
	}
	return &RedisRefreshStore{redis: redisClient, prefix: prefix}
}

func (s *RedisRefreshStore) key(tokenHash string) string {
	return s.prefix + ":" + tokenHash
}

// Save stores the record with the rotation window as its TTL.
func (s *RedisRefreshStore) Save(ctx context.Context, tokenHash string, rec *RefreshRecord, ttl time.Duration) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(tokenHash), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume atomically fetches and deletes the record via GETDEL.
func (s *RedisRefreshStore) Consume(ctx context.Context, tokenHash string) (*RefreshRecord, error) {
	data, err := s.redis.GetDel(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rec RefreshRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrRefreshNotFound
	}
	return &rec, nil
}
