package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateLimitKeyPrefix = "docgen:ratelimit:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRateLimitStore counts requests in fixed windows shared by every
// instance connected to the same Redis.
type RedisRateLimitStore struct {
	client    *redis.Client
	keyPrefix string
	limit     RateLimit
	now       func() time.Time
}

// NewRedisRateLimitStore connects to Redis and verifies the connection
func NewRedisRateLimitStore(cfg RedisConfig, limit RateLimit) (*RedisRateLimitStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateLimitStoreWithClient(client, "", limit), nil
}

// NewRedisRateLimitStoreWithClient creates a store with an existing Redis client
func NewRedisRateLimitStoreWithClient(client *redis.Client, keyPrefix string, limit RateLimit) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = defaultRateLimitKeyPrefix
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit.normalized(),
		now:       time.Now,
	}
}

// Allow increments the counter of the current window for key.
// INCR and EXPIRE run in one transaction, so a counter never outlives its window.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := s.windowKey(key)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, s.limit.Window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count request: %w", err)
	}

	count := int(incr.Val())
	remaining := s.limit.Requests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= s.limit.Requests,
		Limit:     s.limit.Requests,
		Remaining: remaining,
	}, nil
}

// windowKey returns "<prefix><key>:<window index>"
func (s *RedisRateLimitStore) windowKey(key string) string {
	window := s.now().UnixNano() / int64(s.limit.Window)
	return s.keyPrefix + key + ":" + strconv.FormatInt(window, 10)
}

// Close closes the Redis client
func (s *RedisRateLimitStore) Close() error {
	return s.client.Close()
}

var _ RateLimitStore = (*RedisRateLimitStore)(nil)
