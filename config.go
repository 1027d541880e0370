package authcore

import (
	"errors"
	"time"
)

// Config is the sectioned engine configuration. Zero values are filled from
// [defaultConfig] by the builder; only key material has no usable default.
type Config struct {
	JWT           JWTConfig
	Session       SessionConfig
	Password      PasswordConfig
	Login         LoginConfig
	RateLimit     RateLimitConfig
	PasswordReset PasswordResetConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

// JWTConfig controls access-token minting and the refresh rotation window.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// SessionConfig controls the session lifetime and the transparent-refresh
// threshold used by GetCurrentSession.
type SessionConfig struct {
	TTL          time.Duration
	RefreshAhead time.Duration
	RedisPrefix  string
}

// PasswordConfig holds argon2id cost parameters.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

// LoginConfig controls the password-login path. MinDuration is the explicit
// constant-time floor every password login takes, success or failure, so
// response timing cannot distinguish unknown emails, wrong passwords, or
// passwordless accounts.
type LoginConfig struct {
	MinDuration time.Duration
}

// RateLimitConfig budgets failed login attempts per identifier. The window
// opens at the first failure.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
	RedisPrefix string
}

// PasswordResetConfig controls reset tickets: one live ticket per email,
// valid for TTL, carrying a CodeDigits-long numeric code.
type PasswordResetConfig struct {
	TTL         time.Duration
	CodeDigits  int
	RedisPrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Session: SessionConfig{
			TTL:          30 * 24 * time.Hour,
			RefreshAhead: 2 * time.Minute,
			RedisPrefix:  "as",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Login: LoginConfig{
			MinDuration: 100 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
			RedisPrefix: "al",
		},
		PasswordReset: PasswordResetConfig{
			TTL:         15 * time.Minute,
			CodeDigits:  6,
			RedisPrefix: "apr",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("config: JWT.AccessTTL must be positive")
	}
	if cfg.JWT.RefreshTTL <= cfg.JWT.AccessTTL {
		return errors.New("config: JWT.RefreshTTL must exceed JWT.AccessTTL")
	}
	if cfg.Session.TTL <= 0 {
		return errors.New("config: Session.TTL must be positive")
	}
	if cfg.Session.RefreshAhead < 0 || cfg.Session.RefreshAhead >= cfg.JWT.AccessTTL {
		return errors.New("config: Session.RefreshAhead must be shorter than JWT.AccessTTL")
	}
	if cfg.Login.MinDuration < 0 {
		return errors.New("config: Login.MinDuration must not be negative")
	}
	if cfg.RateLimit.MaxAttempts <= 0 {
		return errors.New("config: RateLimit.MaxAttempts must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		return errors.New("config: RateLimit.Window must be positive")
	}
	if cfg.PasswordReset.TTL <= 0 {
		return errors.New("config: PasswordReset.TTL must be positive")
	}
	if cfg.PasswordReset.CodeDigits < 4 || cfg.PasswordReset.CodeDigits > 10 {
		return errors.New("config: PasswordReset.CodeDigits must be between 4 and 10")
	}
	return nil
}
