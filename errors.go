package authcore

import "errors"

// ValidationError reports malformed or policy-violating input. The caller can
// recover by correcting the input and retrying the operation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AuthError reports an authentication or session failure. Messages are kept
// generic wherever a more specific one would reveal whether an account exists.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// RateLimitError reports a temporary lockout. The caller can retry after the
// attempt window elapses.
type RateLimitError struct {
	Reason string
}

func (e *RateLimitError) Error() string {
	return e.Reason
}

var (
	// ErrInvalidCredentials is returned for unknown emails, wrong passwords,
	// and password logins against accounts that have no password. All three
	// share one message so a caller cannot probe for account existence.
	ErrInvalidCredentials = &AuthError{Reason: "Invalid credentials"}
	// ErrInvalidRefreshToken is returned when a refresh token is unknown,
	// already consumed, or expired.
	ErrInvalidRefreshToken = &AuthError{Reason: "Invalid refresh token"}
	// ErrInvalidIdentityToken is returned when a federated identity token
	// fails provider verification.
	ErrInvalidIdentityToken = &AuthError{Reason: "Invalid identity token"}
	// ErrInvalidSession is returned when no session is keyed by the presented
	// access token.
	ErrInvalidSession = &AuthError{Reason: "Invalid session"}
	// ErrSessionExpired is returned when a session exists but its expiry has
	// passed. The stale entry is removed as a side effect.
	ErrSessionExpired = &AuthError{Reason: "Session expired"}
	// ErrNoActiveSession is returned when the device secure store holds no
	// token pair.
	ErrNoActiveSession = &AuthError{Reason: "No active session"}
	// ErrResetCodeInvalid covers every reset-consumption failure: missing
	// ticket, wrong code, expired ticket, unknown account.
	ErrResetCodeInvalid = &AuthError{Reason: "Invalid or expired reset code"}
	// ErrUserNotFound is returned by biometric operations, which are allowed
	// a distinguishing message because they run on the account owner's device.
	ErrUserNotFound = &AuthError{Reason: "User not found"}
	// ErrBiometricUnavailable is returned when the device reports no
	// biometric hardware or no enrolled biometric.
	ErrBiometricUnavailable = &AuthError{Reason: "Biometric authentication not available"}
	// ErrBiometricNotEnabled is returned when the account has not opted in
	// to biometric login.
	ErrBiometricNotEnabled = &AuthError{Reason: "Biometric authentication not enabled"}
	// ErrBiometricFailed is returned when the device challenge does not
	// succeed.
	ErrBiometricFailed = &AuthError{Reason: "Biometric authentication failed"}
	// ErrEmailExists is returned when registering an email that already owns
	// an account.
	ErrEmailExists = &ValidationError{Reason: "Email already exists"}
	// ErrLoginRateLimited is returned once the failed-attempt budget for an
	// identifier is exhausted within the window.
	ErrLoginRateLimited = &RateLimitError{Reason: "Too many failed attempts. Please try again later."}

	// ErrEngineNotReady is returned when a method is invoked on a nil or
	// unbuilt engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrEngineAlreadyBuilt is returned when Build is called twice on the
	// same builder.
	ErrEngineAlreadyBuilt = errors.New("engine already built")
)
