package authcore

import (
	"context"
	"time"
)

// Origin identifies how an account was first provisioned.
type Origin string

const (
	// OriginLocal marks accounts created through password registration.
	OriginLocal Origin = "local"
	// OriginGoogle marks accounts provisioned or re-linked through Google
	// federated login.
	OriginGoogle Origin = "google"
	// OriginApple marks accounts provisioned or re-linked through Apple
	// federated login.
	OriginApple Origin = "apple"
)

// User is the public identity record returned by engine operations. It never
// carries the password hash or any other credential material.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Origin           Origin
	EmailVerified    bool
	BiometricEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Profile carries the optional name fields accepted at registration.
type Profile struct {
	FirstName string
	LastName  string
}

// TokenPair is one access/refresh token issuance. The refresh token is
// single-use; presenting it rotates the pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// DeviceInfo describes the device a session was established from.
type DeviceInfo struct {
	ID       string
	Name     string
	Platform string
}

// SessionInfo is the caller-facing view of an active session.
type SessionInfo struct {
	ID        string
	UserID    string
	Device    *DeviceInfo
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginResult is returned by every flow that establishes a session.
type LoginResult struct {
	User    *User
	Session *SessionInfo
	Tokens  TokenPair
}

// CurrentSession is returned by [Engine.GetCurrentSession]. Tokens holds the
// pair currently valid for the device, which may differ from what the secure
// store held on entry when the access token was close enough to expiry to be
// rotated transparently.
type CurrentSession struct {
	Session *SessionInfo
	Tokens  TokenPair
	Rotated bool
}

// SecureStore is the device-side opaque key-value store holding the current
// token pair. A missing key reads as an empty string with a nil error. The
// engine owns exactly two keys in it, [SecureKeyAccessToken] and
// [SecureKeyRefreshToken].
type SecureStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const (
	// SecureKeyAccessToken is the secure-store slot for the current access token.
	SecureKeyAccessToken = "auth.access_token"
	// SecureKeyRefreshToken is the secure-store slot for the current refresh token.
	SecureKeyRefreshToken = "auth.refresh_token"
)

// BiometricProvider exposes the device biometric capability. Challenge shows
// the platform prompt and reports whether the user passed it; a false return
// with a nil error means the user failed or dismissed the prompt.
type BiometricProvider interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	Challenge(ctx context.Context, prompt string) (bool, error)
}

// IdentityVerifier validates a provider-issued identity token and returns the
// verified email it asserts. Verification internals (issuer keys, audience
// checks) belong to the implementation.
type IdentityVerifier interface {
	Verify(ctx context.Context, provider Origin, idToken string) (string, error)
}

// Mailer dispatches account notifications. Both calls are fire-and-forget
// from the engine's point of view: a returned error is recorded as an audit
// event and never fails the triggering operation.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email string) error
	SendPasswordResetEmail(ctx context.Context, email, code string) error
}
