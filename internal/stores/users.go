package stores

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrUserNotFound is returned when no record matches the id or email.
	ErrUserNotFound = errors.New("user record not found")
	// ErrEmailTaken is returned by Create when the email already owns a record.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRecord is the stored identity row. PasswordHash is empty for accounts
// provisioned through federated login that never set a password.
type UserRecord struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Origin           string
	EmailVerified    bool
	BiometricEnabled bool
	PasswordHash     string
	CreatedAt        int64
	UpdatedAt        int64
}

func (r *UserRecord) clone() *UserRecord {
	cp := *r
	return &cp
}

// UserStore owns user records. Email uniqueness is enforced at Create; emails
// match exactly as stored (case-sensitive).
type UserStore interface {
	Create(ctx context.Context, rec *UserRecord) error
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	Update(ctx context.Context, rec *UserRecord) error
}

// MemoryUserStore keeps user records in process memory.
type MemoryUserStore struct {
	mu      sync.Mutex
	byID    map[string]*UserRecord
	byEmail map[string]string
}

// NewMemoryUserStore returns an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]*UserRecord),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new record, failing with [ErrEmailTaken] on a duplicate email.
func (s *MemoryUserStore) Create(_ context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[rec.Email]; exists {
		return ErrEmailTaken
	}

	s.byID[rec.ID] = rec.clone()
	s.byEmail[rec.Email] = rec.ID
	return nil
}

// GetByID returns a copy of the record owning the id.
func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return rec.clone(), nil
}

// GetByEmail returns a copy of the record owning the email.
func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.byID[id].clone(), nil
}

// Update replaces the stored record. The email is immutable once created.
func (s *MemoryUserStore) Update(_ context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[rec.ID]
	if !ok {
		return ErrUserNotFound
	}
	if current.Email != rec.Email {
		return errors.New("user email is immutable")
	}

	s.byID[rec.ID] = rec.clone()
	return nil
}
