package cache

import (
	"fmt"
	"io"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SessionStore is a checkout.SessionStore that holds resources until closed
type SessionStore interface {
	checkout.SessionStore
	io.Closer
}

// SessionStoreFactory creates session stores based on configuration
type SessionStoreFactory struct {
	redisConfig           config.RedisConfig
	sessionConfig         config.SessionConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SessionStoreFactoryOption is a functional option for configuring the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(redisCfg config.RedisConfig, sessionCfg config.SessionConfig, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		redisConfig:           redisCfg,
		sessionConfig:         sessionCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based session store
func (f *SessionStoreFactory) CreateRedisStore() (SessionStore, error) {
	store, err := NewRedisSessionStore(RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.redisConfig.KeyPrefix,
	}, f.sessionConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis session store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory session store.
// Sessions are lost on restart and not shared between instances.
func (f *SessionStoreFactory) CreateInMemoryStore() SessionStore {
	return NewInMemorySessionStore(f.sessionConfig.TTL, f.sessionConfig.CleanupPeriod)
}

// CreateStore creates a Redis store when Redis is enabled and reachable,
// and an in-memory store otherwise if fallback is allowed
func (f *SessionStoreFactory) CreateStore() (SessionStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory session store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("Using Redis session store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for sessions but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
		"Sessions are not shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
