package authcore

import (
	"context"
	"errors"

	"github.com/halcyondev/authcore/internal"
	"github.com/halcyondev/authcore/session"
)

// ValidateSession resolves the session keyed by the access token. The token's
// signature is verified but its own short expiry is not: the 30-day session
// row governs. An unknown token fails with [ErrInvalidSession]; a known but
// expired session fails with [ErrSessionExpired] and is removed on the way.
func (e *Engine) ValidateSession(ctx context.Context, accessToken string) (*SessionInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.lookupSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return toSessionInfo(sess), nil
}

// GetSession is an alias for [Engine.ValidateSession] kept for callers that
// only want the lookup semantics spelled differently.
func (e *Engine) GetSession(ctx context.Context, accessToken string) (*SessionInfo, error) {
	return e.ValidateSession(ctx, accessToken)
}

// GetCurrentSession resolves the session for the token pair held in the
// device secure store. When the access token has less than the configured
// refresh-ahead threshold of life left (including already expired), the pair
// is rotated transparently and the replacement session is returned; with more
// life remaining the session is returned unchanged.
func (e *Engine) GetCurrentSession(ctx context.Context) (*CurrentSession, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.secure == nil {
		return nil, ErrNoActiveSession
	}

	access, err := e.secure.Get(ctx, SecureKeyAccessToken)
	if err != nil {
		return nil, err
	}
	refreshVal, err := e.secure.Get(ctx, SecureKeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" || refreshVal == "" {
		return nil, ErrNoActiveSession
	}

	claims, err := e.jwtManager.ParseAccessIgnoreExpiry(access)
	if err != nil {
		return nil, ErrInvalidSession
	}

	sess, err := e.lookupSession(ctx, access)
	if err != nil {
		return nil, err
	}

	remaining := claims.ExpiresAt.Time.Sub(e.now())
	if remaining >= e.config.Session.RefreshAhead {
		return &CurrentSession{
			Session: toSessionInfo(sess),
			Tokens:  TokenPair{AccessToken: access, RefreshToken: refreshVal},
		}, nil
	}

	rotated, err := e.RefreshTokens(ctx, refreshVal)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricSessionAutoRefreshed)

	return &CurrentSession{
		Session: rotated.Session,
		Tokens:  rotated.Tokens,
		Rotated: true,
	}, nil
}

// ActiveSessions returns every non-expired session owned by the user, for
// multi-device visibility. Expired rows are excluded but not purged here.
func (e *Engine) ActiveSessions(ctx context.Context, userID string) ([]*SessionInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	all, err := e.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	out := make([]*SessionInfo, 0, len(all))
	for _, sess := range all {
		if sess.ExpiresAfter(now) {
			out = append(out, toSessionInfo(sess))
		}
	}
	return out, nil
}

// Logout removes the session matching the access token currently held in the
// device secure store, then clears both secure-store slots. Logging out with
// no stored token still clears the slots and succeeds.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.secure == nil {
		return nil
	}

	access, err := e.secure.Get(ctx, SecureKeyAccessToken)
	if err != nil {
		return err
	}

	var userID, sessionID string
	if access != "" {
		tokenHash := internal.HashToken(access)
		if sess, err := e.sessions.GetByToken(ctx, tokenHash); err == nil {
			userID, sessionID = sess.UserID, sess.ID
		}
		if err := e.sessions.DeleteByToken(ctx, tokenHash); err != nil {
			return err
		}
	}

	if err := e.clearSecurePair(ctx); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, userID, sessionID, true, nil, nil)
	return nil
}

// invalidateAllSessions removes every session owned by the user, regardless
// of expiry. Used after a password reset.
func (e *Engine) invalidateAllSessions(ctx context.Context, userID string) error {
	removed, err := e.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if removed > 0 {
		e.emitAudit(ctx, auditEventSessionsRevoked, userID, "", true, nil, nil)
	}
	return nil
}

// lookupSession maps an access token to its live session row, removing the
// row on lazy expiry detection.
func (e *Engine) lookupSession(ctx context.Context, accessToken string) (*session.Session, error) {
	if _, err := e.jwtManager.ParseAccessIgnoreExpiry(accessToken); err != nil {
		return nil, ErrInvalidSession
	}

	tokenHash := internal.HashToken(accessToken)
	sess, err := e.sessions.GetByToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if !sess.ExpiresAfter(e.now()) {
		if err := e.sessions.DeleteByToken(ctx, tokenHash); err != nil {
			return nil, err
		}
		e.metricInc(MetricSessionExpired)
		e.emitAudit(ctx, auditEventSessionExpired, sess.UserID, sess.ID, false, ErrSessionExpired, nil)
		return nil, ErrSessionExpired
	}

	return sess, nil
}
