package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInMemoryRateLimitStore_Allow(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{Requests: 3, Window: time.Hour})
	defer store.Close()

	ctx := context.Background()

	t.Run("allows up to the budget", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			d, err := store.Allow(ctx, "client-a")
			require.NoError(t, err)
			assert.True(t, d.Allowed, "request %d should pass", i+1)
			assert.Equal(t, 3, d.Limit)
			assert.Equal(t, 2-i, d.Remaining)
		}
	})

	t.Run("rejects once exhausted", func(t *testing.T) {
		d, err := store.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		d, err := store.Allow(ctx, "client-b")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestInMemoryRateLimitStore_Refills(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{Requests: 1, Window: 20 * time.Millisecond})
	defer store.Close()

	ctx := context.Background()
	d, err := store.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	time.Sleep(40 * time.Millisecond)

	d, err = store.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestInMemoryRateLimitStore_Defaults(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{})
	defer store.Close()

	assert.Equal(t, 60, store.limit.Requests)
	assert.Equal(t, time.Minute, store.limit.Window)
	assert.Equal(t, 2*time.Minute, store.idleTTL)
}

func TestInMemoryRateLimitStore_Cleanup(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{Requests: 5, Window: time.Hour})
	defer store.Close()

	ctx := context.Background()
	_, _ = store.Allow(ctx, "stale")
	_, _ = store.Allow(ctx, "fresh")

	store.mu.Lock()
	store.visitors["stale"].lastSeen = time.Now().Add(-3 * time.Hour)
	store.mu.Unlock()

	store.cleanup()

	assert.Equal(t, 1, store.size())
	store.mu.Lock()
	_, ok := store.visitors["fresh"]
	store.mu.Unlock()
	assert.True(t, ok)
}

func TestInMemoryRateLimitStore_Concurrent(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{Requests: 50, Window: time.Hour})
	defer store.Close()

	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := store.Allow(ctx, "shared")
			assert.NoError(t, err)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestInMemoryRateLimitStore_CloseIdempotent(t *testing.T) {
	store := NewInMemoryRateLimitStore(RateLimit{Requests: 1, Window: time.Second})
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRedisRateLimitStore_WindowKey(t *testing.T) {
	store := NewRedisRateLimitStoreWithClient(nil, "", RateLimit{Requests: 10, Window: time.Minute})
	store.now = func() time.Time { return time.Unix(120, 0) }

	assert.Equal(t, "docgen:ratelimit:10.0.0.1:2", store.windowKey("10.0.0.1"))

	store.now = func() time.Time { return time.Unix(179, 0) }
	assert.Equal(t, "docgen:ratelimit:10.0.0.1:2", store.windowKey("10.0.0.1"))

	store.now = func() time.Time { return time.Unix(180, 0) }
	assert.Equal(t, "docgen:ratelimit:10.0.0.1:3", store.windowKey("10.0.0.1"))
}

func TestRateLimitStoreFactory(t *testing.T) {
	limit := RateLimit{Requests: 5, Window: time.Minute}

	t.Run("in-memory when Redis is not configured", func(t *testing.T) {
		f := NewRateLimitStoreFactory(limit, WithLogger(zaptest.NewLogger(t)))
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryRateLimitStore{}, store)
	})

	// nothing listens on port 1, so Ping fails fast
	unreachable := RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("falls back when Redis is unreachable", func(t *testing.T) {
		f := NewRateLimitStoreFactory(limit,
			WithLogger(zaptest.NewLogger(t)),
			WithRedis(unreachable),
		)
		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryRateLimitStore{}, store)
	})

	t.Run("errors when fallback is disabled", func(t *testing.T) {
		f := NewRateLimitStoreFactory(limit,
			WithRedis(unreachable),
			WithInMemoryFallback(false),
		)
		store, err := f.CreateStore()
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
