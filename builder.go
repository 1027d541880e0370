package authcore

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halcyondev/authcore/internal/rate"
	"github.com/halcyondev/authcore/internal/stores"
	"github.com/halcyondev/authcore/jwt"
	"github.com/halcyondev/authcore/password"
	"github.com/halcyondev/authcore/session"
)

// Builder assembles an [Engine]. Stores default to in-memory implementations;
// supplying a Redis client switches the TTL-natural stores (sessions, failed
// attempts, refresh records, reset tickets) to Redis-backed ones. Explicitly
// provided stores always win.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users        stores.UserStore
	sessionStore session.Store
	refreshStore stores.RefreshStore
	resetStore   stores.ResetStore
	counterStore rate.CounterStore

	secure    SecureStore
	biometric BiometricProvider
	verifier  IdentityVerifier
	mailer    Mailer
	auditSink AuditSink

	built bool
}

// New returns a builder seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the TTL-natural stores with the given client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore overrides the user repository.
func (b *Builder) WithUserStore(s stores.UserStore) *Builder {
	b.users = s
	return b
}

// WithSessionStore overrides the session repository.
func (b *Builder) WithSessionStore(s session.Store) *Builder {
	b.sessionStore = s
	return b
}

// WithRefreshStore overrides the refresh-record repository.
func (b *Builder) WithRefreshStore(s stores.RefreshStore) *Builder {
	b.refreshStore = s
	return b
}

// WithResetStore overrides the reset-ticket repository.
func (b *Builder) WithResetStore(s stores.ResetStore) *Builder {
	b.resetStore = s
	return b
}

// WithCounterStore overrides the failed-attempt counter repository.
func (b *Builder) WithCounterStore(s rate.CounterStore) *Builder {
	b.counterStore = s
	return b
}

// WithSecureStore attaches the device secure key-value store.
func (b *Builder) WithSecureStore(s SecureStore) *Builder {
	b.secure = s
	return b
}

// WithBiometricProvider attaches the device biometric capability.
func (b *Builder) WithBiometricProvider(p BiometricProvider) *Builder {
	b.biometric = p
	return b
}

// WithIdentityVerifier attaches the federated identity-token verifier.
func (b *Builder) WithIdentityVerifier(v IdentityVerifier) *Builder {
	b.verifier = v
	return b
}

// WithMailer attaches the notification dispatcher.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink attaches the audit event sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the stores, and returns a ready
// engine. Misconfiguration fails here, never at call time.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrEngineAlreadyBuilt
	}

	cfg := b.config
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	users := b.users
	if users == nil {
		users = stores.NewMemoryUserStore()
	}

	sessionStore := b.sessionStore
	if sessionStore == nil {
		if b.redis != nil {
			sessionStore = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
		} else {
			sessionStore = session.NewMemoryStore()
		}
	}

	refreshStore := b.refreshStore
	if refreshStore == nil {
		if b.redis != nil {
			refreshStore = stores.NewRedisRefreshStore(b.redis, "ar")
		} else {
			refreshStore = stores.NewMemoryRefreshStore()
		}
	}

	resetStore := b.resetStore
	if resetStore == nil {
		if b.redis != nil {
			resetStore = stores.NewRedisResetStore(b.redis, cfg.PasswordReset.RedisPrefix)
		} else {
			resetStore = stores.NewMemoryResetStore()
		}
	}

	counterStore := b.counterStore
	if counterStore == nil {
		if b.redis != nil {
			counterStore = rate.NewRedisCounterStore(b.redis, cfg.RateLimit.RedisPrefix)
		} else {
			counterStore = rate.NewMemoryCounterStore()
		}
	}

	b.built = true

	return &Engine{
		config:     cfg,
		users:      users,
		sessions:   sessionStore,
		refresh:    refreshStore,
		resets:     resetStore,
		limiter:    rate.New(counterStore, rate.Config{MaxAttempts: cfg.RateLimit.MaxAttempts, Window: cfg.RateLimit.Window}),
		hasher:     hasher,
		jwtManager: jwtManager,
		secure:     b.secure,
		biometric:  b.biometric,
		verifier:   b.verifier,
		mailer:     b.mailer,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    newMetrics(cfg.Metrics),
		now:        time.Now,
		sleep:      time.Sleep,
	}, nil
}
