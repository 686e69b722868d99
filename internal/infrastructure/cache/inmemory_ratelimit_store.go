package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// RateLimitStore counts requests per client key
type RateLimitStore interface {
	// Allow consumes one request for key
	Allow(ctx context.Context, key string) (Decision, error)
	// Close releases resources held by the store
	Close() error
}

// RateLimit is a request budget per window
type RateLimit struct {
	Requests int
	Window   time.Duration
}

func (l RateLimit) normalized() RateLimit {
	if l.Requests <= 0 {
		l.Requests = 60
	}
	if l.Window <= 0 {
		l.Window = time.Minute
	}
	return l
}

// visitor is the token bucket of one client
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryRateLimitStore keeps a token bucket per key in process memory.
// State is not shared between instances.
type InMemoryRateLimitStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     RateLimit
	idleTTL   time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRateLimitStore creates a store and starts its cleanup goroutine
func NewInMemoryRateLimitStore(limit RateLimit) *InMemoryRateLimitStore {
	limit = limit.normalized()
	store := &InMemoryRateLimitStore{
		visitors: make(map[string]*visitor),
		limit:    limit,
		idleTTL:  limit.Window * 2,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Allow takes one token from the bucket of key.
// Buckets refill evenly, Requests tokens per Window.
func (s *InMemoryRateLimitStore) Allow(_ context.Context, key string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		every := s.limit.Window / time.Duration(s.limit.Requests)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), s.limit.Requests)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()

	allowed := v.limiter.Allow()
	remaining := int(v.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: allowed, Limit: s.limit.Requests, Remaining: remaining}, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryRateLimitStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryRateLimitStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup forgets clients idle for longer than idleTTL
func (s *InMemoryRateLimitStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.idleTTL {
			delete(s.visitors, key)
		}
	}
}

// size returns the number of tracked clients
func (s *InMemoryRateLimitStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

var _ RateLimitStore = (*InMemoryRateLimitStore)(nil)
