package authcore

import (
	"context"
	"errors"

	"github.com/halcyondev/authcore/internal"
	"github.com/halcyondev/authcore/internal/stores"
)

// RefreshTokens redeems a refresh token for a fresh pair. Redemption is
// one-shot: the record is consumed before the new pair is issued, so there is
// no window in which both the old and the new refresh token are valid, and a
// second presentation of the same value fails with [ErrInvalidRefreshToken].
//
// The session issued alongside the consumed token is retired and replaced by
// a new one carrying the same device descriptor.
func (e *Engine) RefreshTokens(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := e.refresh.Consume(ctx, internal.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, stores.ErrRefreshNotFound) {
			return nil, e.failRefresh(ctx)
		}
		return nil, err
	}
	if rec.ExpiresAt <= e.now().Unix() {
		return nil, e.failRefresh(ctx)
	}

	// Carry the device descriptor over from the session being retired.
	var device *DeviceInfo
	if old, err := e.sessions.GetByToken(ctx, rec.SessionTokenHash); err == nil {
		if old.Device != nil {
			device = &DeviceInfo{ID: old.Device.ID, Name: old.Device.Name, Platform: old.Device.Platform}
		}
	}
	if err := e.sessions.DeleteByToken(ctx, rec.SessionTokenHash); err != nil {
		return nil, err
	}

	pair, sess, err := e.issueTokens(ctx, rec.UserID, device)
	if err != nil {
		return nil, err
	}

	var user *User
	if userRec, err := e.users.GetByID(ctx, rec.UserID); err == nil {
		user = toUser(userRec)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshRotated, rec.UserID, sess.ID, true, nil, nil)

	return &LoginResult{
		User:    user,
		Session: toSessionInfo(sess),
		Tokens:  pair,
	}, nil
}

func (e *Engine) failRefresh(ctx context.Context) error {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, auditEventRefreshRejected, "", "", false, ErrInvalidRefreshToken, nil)
	return ErrInvalidRefreshToken
}
