package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FixedWindow counts requests per client and clears every count at once each window.
// A client's effective window is shorter than the interval when a reset lands mid-burst.
type FixedWindow struct {
	mu     sync.Mutex
	counts map[string]int

	max    int
	window time.Duration
	logger *slog.Logger
	start  sync.Once
}

// NewFixedWindow returns a FixedWindow admitting up to max requests per client per window.
// The periodic reset begins once Start is called.
func NewFixedWindow(maxRequests int, window time.Duration, opts ...Option) *FixedWindow {
	o := applyOpts(opts...)
	return &FixedWindow{
		counts: make(map[string]int),
		max:    maxRequests,
		window: window,
		logger: o.logger,
	}
}

// Allow increments the count for key and admits the request while the count is within max.
// Rejected requests are counted too.
func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= l.max
}

// Count returns the number of requests recorded for key in the current window.
func (l *FixedWindow) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key]
}

// Reset clears every client count.
func (l *FixedWindow) Reset() {
	l.mu.Lock()
	clients := len(l.counts)
	l.counts = make(map[string]int)
	l.mu.Unlock()
	l.logger.Debug("rate window reset", slog.Int("clients", clients))
}

// Start launches the reset loop. Subsequent calls are no-ops.
func (l *FixedWindow) Start(ctx context.Context) {
	l.start.Do(func() {
		l.logger.Debug("starting rate window", slog.Int("max", l.max), slog.Duration("window", l.window))
		go runEvery(ctx, l.window, l.Reset)
	})
}
