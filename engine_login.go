package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/halcyondev/authcore/internal/rate"
	"github.com/halcyondev/authcore/internal/stores"
)

// Login authenticates email+password and establishes a session.
//
// The whole path is held to a minimum floor duration regardless of outcome,
// so response timing cannot reveal whether the email exists, the password was
// wrong, or the account has no password at all. Those three failures also
// share the one generic [ErrInvalidCredentials] message.
//
// Failed attempts are counted per email; once the budget is exhausted within
// the window, further attempts fail with [ErrLoginRateLimited] before any
// credential work and without extending the count.
func (e *Engine) Login(ctx context.Context, email, pw string, device *DeviceInfo) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer e.holdLoginFloor(start)

	if err := e.limiter.Check(ctx, email); err != nil {
		if errors.Is(err, rate.ErrLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, "", "", false, ErrLoginRateLimited, nil)
			return nil, ErrLoginRateLimited
		}
		return nil, err
	}

	rec, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrUserNotFound) {
			return nil, e.failLogin(ctx, email, "")
		}
		return nil, err
	}

	// Accounts provisioned through federated login have no password hash and
	// must fail the same generic path as a wrong password.
	if rec.PasswordHash == "" {
		return nil, e.failLogin(ctx, email, rec.ID)
	}

	ok, err := e.hasher.Verify(pw, rec.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, email, rec.ID)
	}

	if err := e.limiter.Clear(ctx, email); err != nil {
		return nil, err
	}

	if e.config.Password.UpgradeOnLogin {
		if upgrade, err := e.hasher.NeedsUpgrade(rec.PasswordHash); err == nil && upgrade {
			if newHash, err := e.hasher.Hash(pw); err == nil {
				rec.PasswordHash = newHash
				rec.UpdatedAt = e.now().Unix()
				_ = e.users.Update(ctx, rec)
			}
		}
	}

	pair, sess, err := e.issueTokens(ctx, rec.ID, device)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, rec.ID, sess.ID, true, nil, nil)

	return &LoginResult{
		User:    toUser(rec),
		Session: toSessionInfo(sess),
		Tokens:  pair,
	}, nil
}

func (e *Engine) failLogin(ctx context.Context, email, userID string) error {
	if err := e.limiter.RecordFailure(ctx, email); err != nil {
		return err
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, userID, "", false, ErrInvalidCredentials, nil)
	return ErrInvalidCredentials
}

// holdLoginFloor blocks until at least Login.MinDuration has passed since
// start. This is the deliberate constant-time defense: the delay wraps the
// whole login path, not just the password comparison.
func (e *Engine) holdLoginFloor(start time.Time) {
	if remaining := e.config.Login.MinDuration - time.Since(start); remaining > 0 {
		e.sleep(remaining)
	}
}
