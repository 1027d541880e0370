package authcore

import (
	"context"
	"errors"

	"github.com/halcyondev/authcore/internal"
	"github.com/halcyondev/authcore/internal/stores"
)

// RequestPasswordReset issues a time-boxed reset ticket for the email,
// replacing any prior ticket, and mails the code as a fire-and-forget side
// effect. The returned code lets the host deliver it over another channel.
//
// A ticket is issued for any well-formed email: whether an account owns it is
// deliberately not checked until consumption, so request-time behavior cannot
// be used to enumerate accounts.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	if err := validateEmail(email); err != nil {
		return "", err
	}

	code, err := internal.NewCode(e.config.PasswordReset.CodeDigits)
	if err != nil {
		return "", err
	}

	ticket := &stores.ResetTicket{
		CodeHash:  internal.HashCode(code),
		ExpiresAt: e.now().Add(e.config.PasswordReset.TTL).Unix(),
	}
	if err := e.resets.Save(ctx, email, ticket, e.config.PasswordReset.TTL); err != nil {
		return "", err
	}

	e.dispatchMail(ctx, "password_reset", func() error {
		return e.mailer.SendPasswordResetEmail(ctx, email, code)
	})

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventResetRequested, "", "", true, nil, nil)

	return code, nil
}

// ResetPassword consumes a reset ticket and rotates the account credential.
// Missing tickets, wrong codes, expired tickets, and unknown accounts all
// fail with the one [ErrResetCodeInvalid] message. On success the new
// password replaces the stored hash, every session owned by the user is
// invalidated, the failed-attempt counter is cleared, and the ticket is
// deleted.
//
// A wrong code never burns the ticket, and a correct code followed by a
// policy-violating password leaves the ticket live for a retry.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	ticket, err := e.resets.Get(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrResetNotFound) {
			return e.failReset(ctx)
		}
		return err
	}

	if ticket.ExpiresAt <= e.now().Unix() {
		if err := e.resets.Delete(ctx, email); err != nil {
			return err
		}
		return e.failReset(ctx)
	}
	if !ticket.Matches(internal.HashCode(code)) {
		return e.failReset(ctx)
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	rec, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrUserNotFound) {
			// Ticket existence never implied account existence; keep the
			// generic rejection.
			return e.failReset(ctx)
		}
		return err
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	rec.PasswordHash = hash
	rec.UpdatedAt = e.now().Unix()
	if err := e.users.Update(ctx, rec); err != nil {
		return err
	}

	if err := e.invalidateAllSessions(ctx, rec.ID); err != nil {
		return err
	}
	if err := e.limiter.Clear(ctx, email); err != nil {
		return err
	}
	if err := e.resets.Delete(ctx, email); err != nil {
		return err
	}

	e.metricInc(MetricResetConfirmed)
	e.emitAudit(ctx, auditEventResetConfirmed, rec.ID, "", true, nil, nil)
	return nil
}

func (e *Engine) failReset(ctx context.Context) error {
	e.metricInc(MetricResetRejected)
	e.emitAudit(ctx, auditEventResetRejected, "", "", false, ErrResetCodeInvalid, nil)
	return ErrResetCodeInvalid
}
