package authcore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/halcyondev/authcore/session"
)

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret-key-0123456789abcdef")
	// Cheapest parameters the hasher accepts; production costs make the
	// suite crawl.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	// No login floor by default; the timing test sets its own.
	cfg.Login.MinDuration = 0
	return cfg
}

type engineOption func(*Builder)

func newTestEngine(t *testing.T, opts ...engineOption) *Engine {
	t.Helper()

	b := New().WithConfig(testConfig()).WithSecureStore(newMemSecureStore())
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// testClock is a controllable time source pinned at construction.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memSecureStore fakes the device secure key-value store.
type memSecureStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSecureStore() *memSecureStore {
	return &memSecureStore{values: make(map[string]string)}
}

func (s *memSecureStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *memSecureStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memSecureStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// fakeBiometric fakes the device biometric capability provider.
type fakeBiometric struct {
	hardware    bool
	enrolled    bool
	challengeOK bool
	err         error
}

func (f *fakeBiometric) HasHardware(context.Context) (bool, error) {
	return f.hardware, f.err
}

func (f *fakeBiometric) IsEnrolled(context.Context) (bool, error) {
	return f.enrolled, f.err
}

func (f *fakeBiometric) Challenge(context.Context, string) (bool, error) {
	return f.challengeOK, f.err
}

// fakeVerifier maps identity tokens to verified emails.
type fakeVerifier struct {
	emails map[string]string
}

func (f *fakeVerifier) Verify(_ context.Context, _ Origin, idToken string) (string, error) {
	email, ok := f.emails[idToken]
	if !ok {
		return "", errors.New("identity token rejected")
	}
	return email, nil
}

// fakeMailer records dispatched mails and optionally fails.
type fakeMailer struct {
	mu          sync.Mutex
	verifySent  []string
	resetCodes  map[string]string
	failWith    error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{resetCodes: make(map[string]string)}
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.verifySent = append(f.verifySent, email)
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.resetCodes[email] = code
	return nil
}

func (f *fakeMailer) verifiedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifySent)
}

func (f *fakeMailer) resetCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetCodes[email]
}

// trackingSessionStore counts writes so tests can prove which store the
// engine was wired to.
type trackingSessionStore struct {
	*session.MemoryStore
	saves atomic.Uint64
}

func newTrackingSessionStore() *trackingSessionStore {
	return &trackingSessionStore{MemoryStore: session.NewMemoryStore()}
}

func (s *trackingSessionStore) Save(ctx context.Context, sess *session.Session) error {
	s.saves.Add(1)
	return s.MemoryStore.Save(ctx, sess)
}

func mustRegister(t *testing.T, engine *Engine, email, pw string) *User {
	t.Helper()

	user, err := engine.Register(context.Background(), email, pw, Profile{FirstName: "A"})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user
}

func mustLogin(t *testing.T, engine *Engine, email, pw string) *LoginResult {
	t.Helper()

	res, err := engine.Login(context.Background(), email, pw, nil)
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", email, err)
	}
	return res
}
