package authcore

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types emitted by the engine.
const (
	auditEventRegister          = "account.register"
	auditEventLoginSuccess      = "login.success"
	auditEventLoginFailure      = "login.failure"
	auditEventLoginRateLimited  = "login.rate_limited"
	auditEventRefreshRotated    = "refresh.rotated"
	auditEventRefreshRejected   = "refresh.rejected"
	auditEventLogout            = "logout"
	auditEventSessionExpired    = "session.expired"
	auditEventSessionsRevoked   = "session.revoked_all"
	auditEventResetRequested    = "password_reset.requested"
	auditEventResetConfirmed    = "password_reset.confirmed"
	auditEventResetRejected     = "password_reset.rejected"
	auditEventBiometricEnabled  = "biometric.enabled"
	auditEventBiometricLogin    = "biometric.login"
	auditEventSocialLogin       = "social.login"
	auditEventMailFailure       = "mail.failure"
)

// AuditEvent is one security-relevant occurrence in an auth flow.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives audit events from the dispatcher. Implementations must
// be safe for concurrent use.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit discards the event.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel for consumption by the
// host application.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink returns a sink buffering up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan AuditEvent, buffer)}
}

// Emit forwards the event, giving up when ctx is done.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the sink's channel.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON line per event.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink returns a sink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

// Emit encodes the event as a JSON line. Encoding or write failures are
// dropped; auditing never fails a flow.
func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(append(data, '\n'))
}
