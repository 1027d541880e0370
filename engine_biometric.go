package authcore

import (
	"context"
	"errors"

	"github.com/halcyondev/authcore/internal/stores"
)

const biometricLoginPrompt = "Log in to your account"

// EnableBiometric opts the account into biometric login. It fails with
// [ErrUserNotFound] for unknown emails and with [ErrBiometricUnavailable]
// when the device reports no biometric hardware or no enrolled biometric.
//
// Biometric operations run on the account owner's device, so their errors are
// allowed to be specific where login errors must stay generic.
func (e *Engine) EnableBiometric(ctx context.Context, email string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	rec, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := e.checkBiometricCapability(ctx); err != nil {
		return err
	}

	rec.BiometricEnabled = true
	rec.UpdatedAt = e.now().Unix()
	if err := e.users.Update(ctx, rec); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventBiometricEnabled, rec.ID, "", true, nil, nil)
	return nil
}

// LoginWithBiometric establishes a session after a successful device
// biometric challenge. Password verification and the failed-attempt limiter
// are bypassed: the security guarantee is delegated to the device, which
// also means the constant-time login floor does not apply here.
func (e *Engine) LoginWithBiometric(ctx context.Context, email string, device *DeviceInfo) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrUserNotFound) {
			return nil, e.failBiometric(ctx, "", ErrUserNotFound)
		}
		return nil, err
	}

	if !rec.BiometricEnabled {
		return nil, e.failBiometric(ctx, rec.ID, ErrBiometricNotEnabled)
	}

	if e.biometric == nil {
		return nil, e.failBiometric(ctx, rec.ID, ErrBiometricUnavailable)
	}
	ok, err := e.biometric.Challenge(ctx, biometricLoginPrompt)
	if err != nil || !ok {
		return nil, e.failBiometric(ctx, rec.ID, ErrBiometricFailed)
	}

	pair, sess, err := e.issueTokens(ctx, rec.ID, device)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricBiometricLoginSuccess)
	e.emitAudit(ctx, auditEventBiometricLogin, rec.ID, sess.ID, true, nil, nil)

	return &LoginResult{
		User:    toUser(rec),
		Session: toSessionInfo(sess),
		Tokens:  pair,
	}, nil
}

func (e *Engine) checkBiometricCapability(ctx context.Context) error {
	if e.biometric == nil {
		return ErrBiometricUnavailable
	}

	hasHardware, err := e.biometric.HasHardware(ctx)
	if err != nil || !hasHardware {
		return ErrBiometricUnavailable
	}
	enrolled, err := e.biometric.IsEnrolled(ctx)
	if err != nil || !enrolled {
		return ErrBiometricUnavailable
	}
	return nil
}

func (e *Engine) failBiometric(ctx context.Context, userID string, cause *AuthError) error {
	e.metricInc(MetricBiometricLoginFailure)
	e.emitAudit(ctx, auditEventBiometricLogin, userID, "", false, cause, nil)
	return cause
}
