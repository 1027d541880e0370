package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/halcyondev/authcore/internal/stores"
)

// Register creates a local-origin account. The email must be unique and
// well-formed; the password must satisfy the strength policy, whose error
// enumerates every unmet rule. The stored record holds only a derived hash.
//
// Registration triggers a verification email as a fire-and-forget side
// effect: a mail failure never fails the registration.
func (e *Engine) Register(ctx context.Context, email, pw string, profile Profile) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(pw); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(pw)
	if err != nil {
		return nil, err
	}

	now := e.now().Unix()
	rec := &stores.UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Origin:       string(OriginLocal),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.users.Create(ctx, rec); err != nil {
		if errors.Is(err, stores.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	e.dispatchMail(ctx, "verification", func() error {
		return e.mailer.SendVerificationEmail(ctx, email)
	})

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, rec.ID, "", true, nil, nil)

	return toUser(rec), nil
}
