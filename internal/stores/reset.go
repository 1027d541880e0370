package stores

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetNotFound is returned when no live ticket exists for the email.
var ErrResetNotFound = errors.New("reset ticket not found")

// ResetTicket is a pending password-reset challenge. Only the code's hash is
// stored; the raw code exists in the notification mail and nowhere else.
type ResetTicket struct {
	CodeHash  [32]byte `json:"ch"`
	ExpiresAt int64    `json:"exp"`
}

// Matches compares a presented code hash in constant time.
func (t *ResetTicket) Matches(codeHash [32]byte) bool {
	return subtle.ConstantTimeCompare(t.CodeHash[:], codeHash[:]) == 1
}

// ResetStore keeps at most one live ticket per email. Save overwrites any
// prior ticket for the same email.
type ResetStore interface {
	Save(ctx context.Context, email string, ticket *ResetTicket, ttl time.Duration) error
	Get(ctx context.Context, email string) (*ResetTicket, error)
	Delete(ctx context.Context, email string) error
}

// MemoryResetStore keeps reset tickets in process memory.
type MemoryResetStore struct {
	mu      sync.Mutex
	tickets map[string]*ResetTicket
}

// NewMemoryResetStore returns an empty in-memory reset store.
func NewMemoryResetStore() *MemoryResetStore {
	return &MemoryResetStore{tickets: make(map[string]*ResetTicket)}
}

// Save stores the ticket, replacing any previous one for the email.
func (s *MemoryResetStore) Save(_ context.Context, email string, ticket *ResetTicket, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *ticket
	s.tickets[email] = &cp
	return nil
}

// Get returns the live ticket for the email.
func (s *MemoryResetStore) Get(_ context.Context, email string) (*ResetTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[email]
	if !ok {
		return nil, ErrResetNotFound
	}
	cp := *ticket
	return &cp, nil
}

// Delete removes the ticket. Deleting an absent ticket is not an error.
func (s *MemoryResetStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tickets, email)
	return nil
}

// RedisResetStore keeps reset tickets as TTL-bound Redis keys.
type RedisResetStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisResetStore returns a reset store using the given client. prefix
// namespaces the keys; it defaults to "apr" when empty.
func NewRedisResetStore(redisClient redis.UniversalClient, prefix string) *RedisResetStore {
	if prefix == "" {
		prefix = "apr"
	}
	return &RedisResetStore{redis: redisClient, prefix: prefix}
}

func (s *RedisResetStore) key(email string) string {
	return s.prefix + ":" + email
}

// Save stores the ticket with the reset window as its TTL, overwriting any
// prior ticket for the email.
func (s *RedisResetStore) Save(ctx context.Context, email string, ticket *ResetTicket, ttl time.Duration) error {
	encoded, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(email), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the live ticket for the email.
func (s *RedisResetStore) Get(ctx context.Context, email string) (*ResetTicket, error) {
	data, err := s.redis.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrResetNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var ticket ResetTicket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, ErrResetNotFound
	}
	return &ticket, nil
}

// Delete removes the ticket. Deleting an absent ticket is not an error.
func (s *RedisResetStore) Delete(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
