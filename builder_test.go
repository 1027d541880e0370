package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRejectsMissingKey(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.PrivateKey = nil

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("Build must fail without signing key material")
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"refresh under access", func(c *Config) { c.JWT.RefreshTTL = time.Minute }},
		{"refresh-ahead over access", func(c *Config) { c.Session.RefreshAhead = c.JWT.AccessTTL }},
		{"zero attempts", func(c *Config) { c.RateLimit.MaxAttempts = 0 }},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"short reset code", func(c *Config) { c.PasswordReset.CodeDigits = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := New().WithConfig(cfg).Build(); err == nil {
				t.Fatal("Build must reject the configuration")
			}
		})
	}
}

func TestBuildIsSingleUse(t *testing.T) {
	b := New().WithConfig(testConfig())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); !errors.Is(err, ErrEngineAlreadyBuilt) {
		t.Fatalf("second Build = %v, want ErrEngineAlreadyBuilt", err)
	}
}

func TestBuildWithRedisBacksStores(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithSecureStore(newMemSecureStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()
	mustRegister(t, engine, "a@x.com", "Abc12345!")
	res := mustLogin(t, engine, "a@x.com", "Abc12345!")

	if _, err := engine.ValidateSession(ctx, res.Tokens.AccessToken); err != nil {
		t.Fatalf("ValidateSession against Redis failed: %v", err)
	}

	rotated, err := engine.RefreshTokens(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens against Redis failed: %v", err)
	}
	if _, err := engine.RefreshTokens(ctx, res.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed refresh token = %v, want ErrInvalidRefreshToken", err)
	}

	code, err := engine.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if err := engine.ResetPassword(ctx, "a@x.com", code, "New12345!"); err != nil {
		t.Fatalf("ResetPassword against Redis failed: %v", err)
	}
	if _, err := engine.ValidateSession(ctx, rotated.Tokens.AccessToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("session survived the reset: %v", err)
	}
}

func TestExplicitStoreWinsOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := newTrackingSessionStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithSessionStore(sessions).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	mustRegister(t, engine, "a@x.com", "Abc12345!")
	mustLogin(t, engine, "a@x.com", "Abc12345!")

	if sessions.saves.Load() == 0 {
		t.Fatal("explicit session store was bypassed")
	}
}
