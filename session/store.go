package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no session is keyed by the token hash.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by access-token hash with a per-user index.
// Stores do not judge expiry: expired rows stay readable until a caller
// removes them, so "expired" and "unknown" remain distinguishable outcomes.
type Store interface {
	Save(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, tokenHash string) (*Session, error)
	DeleteByToken(ctx context.Context, tokenHash string) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	byToken map[string]*Session
	byUser  map[string]map[string]struct{}
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]*Session),
		byUser:  make(map[string]map[string]struct{}),
	}
}

// Save inserts the session under its token hash and user index.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.byToken[sess.TokenHash] = &cp

	index, ok := s.byUser[sess.UserID]
	if !ok {
		index = make(map[string]struct{})
		s.byUser[sess.UserID] = index
	}
	index[sess.TokenHash] = struct{}{}
	return nil
}

// GetByToken returns a copy of the session keyed by the token hash.
func (s *MemoryStore) GetByToken(_ context.Context, tokenHash string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// DeleteByToken removes the session keyed by the token hash. Removing an
// absent session is not an error.
func (s *MemoryStore) DeleteByToken(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(tokenHash)
	return nil
}

// ListByUser returns copies of every session owned by the user, expired ones
// included.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.byUser[userID]
	out := make([]*Session, 0, len(index))
	for tokenHash := range index {
		if sess, ok := s.byToken[tokenHash]; ok {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteByUser removes every session owned by the user, regardless of expiry,
// and reports how many were removed.
func (s *MemoryStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.byUser[userID]
	removed := 0
	for tokenHash := range index {
		if _, ok := s.byToken[tokenHash]; ok {
			delete(s.byToken, tokenHash)
			removed++
		}
	}
	delete(s.byUser, userID)
	return removed, nil
}

// caller holds s.mu
func (s *MemoryStore) remove(tokenHash string) {
	sess, ok := s.byToken[tokenHash]
	if !ok {
		return
	}
	delete(s.byToken, tokenHash)

	if index, ok := s.byUser[sess.UserID]; ok {
		delete(index, tokenHash)
		if len(index) == 0 {
			delete(s.byUser, sess.UserID)
		}
	}
}
