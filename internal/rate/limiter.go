package rate

import (
	"context"
	"errors"
	"time"
)

// ErrLimited is returned by Check once the attempt budget is exhausted
// within the live window.
var ErrLimited = errors.New("too many failed attempts")

// Config holds limiter tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// CounterStore persists per-identifier failure counters. Increment opens the
// window on the first failure; Count reports zero for identifiers whose
// window has elapsed.
type CounterStore interface {
	Count(ctx context.Context, identifier string) (int, error)
	Increment(ctx context.Context, identifier string, window time.Duration) (int, error)
	Clear(ctx context.Context, identifier string) error
}

// Limiter enforces the failed-attempt budget for login identifiers.
type Limiter struct {
	store  CounterStore
	config Config
}

// New creates a [Limiter] over the given counter store.
func New(store CounterStore, cfg Config) *Limiter {
	return &Limiter{store: store, config: cfg}
}

// Check fails with [ErrLimited] when the identifier has exhausted its budget
// within the live window. It never increments: blocked attempts must not
// extend the lockout.
func (l *Limiter) Check(ctx context.Context, identifier string) error {
	count, err := l.store.Count(ctx, identifier)
	if err != nil {
		return err
	}
	if count >= l.config.MaxAttempts {
		return ErrLimited
	}
	return nil
}

// RecordFailure counts one failed attempt, opening the window if this is the
// first failure for the identifier.
func (l *Limiter) RecordFailure(ctx context.Context, identifier string) error {
	_, err := l.store.Increment(ctx, identifier, l.config.Window)
	return err
}

// Clear resets the identifier's counter. Called on any successful
// authentication and after a completed password reset.
func (l *Limiter) Clear(ctx context.Context, identifier string) error {
	return l.store.Clear(ctx, identifier)
}
