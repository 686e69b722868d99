package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// RateLimitStoreFactory creates rate limit stores based on configuration
type RateLimitStoreFactory struct {
	redisConfig           RedisConfig
	redisEnabled          bool
	limit                 RateLimit
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateLimitStoreFactoryOption is a functional option for configuring the factory
type RateLimitStoreFactoryOption func(*RateLimitStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateLimitStoreFactoryOption {
	return func(f *RateLimitStoreFactory) {
		f.logger = logger
	}
}

// WithRedis makes CreateStore try Redis first
func WithRedis(cfg RedisConfig) RateLimitStoreFactoryOption {
	return func(f *RateLimitStoreFactory) {
		f.redisConfig = cfg
		f.redisEnabled = true
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RateLimitStoreFactoryOption {
	return func(f *RateLimitStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateLimitStoreFactory creates a new factory
func NewRateLimitStoreFactory(limit RateLimit, opts ...RateLimitStoreFactoryOption) *RateLimitStoreFactory {
	f := &RateLimitStoreFactory{
		limit:                 limit,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is configured and reachable,
// and an in-memory store otherwise.
func (f *RateLimitStoreFactory) CreateStore() (RateLimitStore, error) {
	if !f.redisEnabled {
		f.logger.Info("using in-memory rate limit store")
		return NewInMemoryRateLimitStore(f.limit), nil
	}

	store, err := NewRedisRateLimitStore(f.redisConfig, f.limit)
	if err == nil {
		f.logger.Info("using Redis rate limit store",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
		)
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for rate limiting but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rate limit store. "+
		"Limits will be enforced per instance.",
		zap.Error(err),
	)
	return NewInMemoryRateLimitStore(f.limit), nil
}
