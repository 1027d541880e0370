package authcore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/halcyondev/authcore/internal"
	"github.com/halcyondev/authcore/internal/rate"
	"github.com/halcyondev/authcore/internal/stores"
	"github.com/halcyondev/authcore/jwt"
	"github.com/halcyondev/authcore/password"
	"github.com/halcyondev/authcore/session"
)

// Engine is the auth façade. It owns the five record stores exclusively and
// is the sole writer of their state; the external secure store only mirrors
// the device's current token pair.
//
// Construct through [Builder]; a zero Engine is not usable.
type Engine struct {
	config Config

	users    stores.UserStore
	sessions session.Store
	refresh  stores.RefreshStore
	resets   stores.ResetStore
	limiter  *rate.Limiter

	hasher     *password.Hasher
	jwtManager *jwt.Manager

	secure    SecureStore
	biometric BiometricProvider
	verifier  IdentityVerifier
	mailer    Mailer

	audit   *auditDispatcher
	metrics *Metrics

	now   func() time.Time
	sleep func(time.Duration)
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, userID, sessionID string, success bool, opErr error, metadata map[string]string) {
	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	e.audit.Emit(ctx, event)
}

// dispatchMail runs a fire-and-forget notification. A mailer error becomes an
// audit event and a counter bump, never a flow failure.
func (e *Engine) dispatchMail(ctx context.Context, kind string, send func() error) {
	if e.mailer == nil {
		return
	}
	if err := send(); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventMailFailure, "", "", false, err, map[string]string{"kind": kind})
	}
}

// issueTokens mints one access/refresh pair for the user, records the refresh
// ownership, inserts the session, and mirrors the pair into the device secure
// store. Session creation happens strictly after token issuance.
func (e *Engine) issueTokens(ctx context.Context, userID string, device *DeviceInfo) (TokenPair, *session.Session, error) {
	sid := uuid.NewString()

	access, err := e.jwtManager.CreateAccess(userID, sid)
	if err != nil {
		return TokenPair{}, nil, err
	}
	refreshVal, err := internal.NewToken()
	if err != nil {
		return TokenPair{}, nil, err
	}

	now := e.now()
	tokenHash := internal.HashToken(access)

	rec := &stores.RefreshRecord{
		UserID:           userID,
		SessionTokenHash: tokenHash,
		ExpiresAt:        now.Add(e.config.JWT.RefreshTTL).Unix(),
	}
	if err := e.refresh.Save(ctx, internal.HashToken(refreshVal), rec, e.config.JWT.RefreshTTL); err != nil {
		return TokenPair{}, nil, err
	}

	sess := &session.Session{
		ID:        sid,
		UserID:    userID,
		TokenHash: tokenHash,
		Device:    toSessionDevice(device),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.Session.TTL).Unix(),
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return TokenPair{}, nil, err
	}
	e.metricInc(MetricSessionCreated)

	pair := TokenPair{AccessToken: access, RefreshToken: refreshVal}
	if err := e.writeSecurePair(ctx, pair); err != nil {
		return TokenPair{}, nil, err
	}

	return pair, sess, nil
}

func (e *Engine) writeSecurePair(ctx context.Context, pair TokenPair) error {
	if e.secure == nil {
		return nil
	}
	if err := e.secure.Set(ctx, SecureKeyAccessToken, pair.AccessToken); err != nil {
		return err
	}
	return e.secure.Set(ctx, SecureKeyRefreshToken, pair.RefreshToken)
}

func (e *Engine) clearSecurePair(ctx context.Context) error {
	if e.secure == nil {
		return nil
	}
	if err := e.secure.Delete(ctx, SecureKeyAccessToken); err != nil {
		return err
	}
	return e.secure.Delete(ctx, SecureKeyRefreshToken)
}

func toSessionDevice(d *DeviceInfo) *session.Device {
	if d == nil {
		return nil
	}
	return &session.Device{ID: d.ID, Name: d.Name, Platform: d.Platform}
}

func toSessionInfo(s *session.Session) *SessionInfo {
	info := &SessionInfo{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: time.Unix(s.CreatedAt, 0),
		ExpiresAt: time.Unix(s.ExpiresAt, 0),
	}
	if s.Device != nil {
		info.Device = &DeviceInfo{ID: s.Device.ID, Name: s.Device.Name, Platform: s.Device.Platform}
	}
	return info
}

func toUser(rec *stores.UserRecord) *User {
	return &User{
		ID:               rec.ID,
		Email:            rec.Email,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Origin:           Origin(rec.Origin),
		EmailVerified:    rec.EmailVerified,
		BiometricEnabled: rec.BiometricEnabled,
		CreatedAt:        time.Unix(rec.CreatedAt, 0),
		UpdatedAt:        time.Unix(rec.UpdatedAt, 0),
	}
}
