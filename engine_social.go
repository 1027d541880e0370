package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/halcyondev/authcore/internal/stores"
)

// SocialLogin authenticates a provider-issued identity token. The token is
// verified through the attached [IdentityVerifier]; the email it asserts
// either resolves to an existing account, whose origin is re-linked to the
// provider, or provisions a new account with the email pre-verified and no
// password hash. Either way a session is established exactly as a password
// login would.
//
// Accounts provisioned here can never authenticate through [Engine.Login]
// until a password is set via reset: password login against them takes the
// generic invalid-credentials path.
func (e *Engine) SocialLogin(ctx context.Context, provider Origin, idToken string, device *DeviceInfo) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if provider != OriginGoogle && provider != OriginApple {
		return nil, &ValidationError{Reason: "Unsupported identity provider"}
	}
	if e.verifier == nil {
		return nil, e.failSocial(ctx, ErrInvalidIdentityToken)
	}

	email, err := e.verifier.Verify(ctx, provider, idToken)
	if err != nil || email == "" {
		return nil, e.failSocial(ctx, ErrInvalidIdentityToken)
	}

	rec, err := e.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		rec.Origin = string(provider)
		rec.EmailVerified = true
		rec.UpdatedAt = e.now().Unix()
		if err := e.users.Update(ctx, rec); err != nil {
			return nil, err
		}
	case errors.Is(err, stores.ErrUserNotFound):
		now := e.now().Unix()
		rec = &stores.UserRecord{
			ID:            uuid.NewString(),
			Email:         email,
			Origin:        string(provider),
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := e.users.Create(ctx, rec); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	pair, sess, err := e.issueTokens(ctx, rec.ID, device)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSocialLoginSuccess)
	e.emitAudit(ctx, auditEventSocialLogin, rec.ID, sess.ID, true, nil, map[string]string{"provider": string(provider)})

	return &LoginResult{
		User:    toUser(rec),
		Session: toSessionInfo(sess),
		Tokens:  pair,
	}, nil
}

func (e *Engine) failSocial(ctx context.Context, cause *AuthError) error {
	e.metricInc(MetricSocialLoginFailure)
	e.emitAudit(ctx, auditEventSocialLogin, "", "", false, cause, nil)
	return cause
}
