package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket gives every client its own bucket of max tokens refilled at max per window.
// Unlike FixedWindow, rejected requests do not consume tokens.
type TokenBucket struct {
	mu      sync.Mutex
	clients map[string]*bucket

	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
	start  sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTokenBucket returns a TokenBucket admitting bursts of max requests and max requests per window on average.
func NewTokenBucket(maxRequests int, window time.Duration, opts ...Option) *TokenBucket {
	o := applyOpts(opts...)
	return &TokenBucket{
		clients: make(map[string]*bucket),
		limit:   rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:   maxRequests,
		window:  window,
		now:     o.now,
		logger:  o.logger,
	}
}

// Allow takes one token from the bucket of key.
func (l *TokenBucket) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.clients[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Evict drops clients idle for at least one window. Their buckets are full again by then.
func (l *TokenBucket) Evict() {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	evicted := 0
	for key, b := range l.clients {
		if !b.lastSeen.After(cutoff) {
			delete(l.clients, key)
			evicted++
		}
	}
	remaining := len(l.clients)
	l.mu.Unlock()
	l.logger.Debug("evicted idle clients", slog.Int("evicted", evicted), slog.Int("clients", remaining))
}

// Len returns the number of tracked clients.
func (l *TokenBucket) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Start launches the idle eviction loop. Subsequent calls are no-ops.
func (l *TokenBucket) Start(ctx context.Context) {
	l.start.Do(func() {
		go runEvery(ctx, l.window, l.Evict)
	})
}
