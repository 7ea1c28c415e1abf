// Package ratelimit throttles webhook deliveries per client.
package ratelimit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/isometry/payment-webhook/internal/helpers"
)

// UnknownClientKey groups every request that carries no forwarded address.
const UnknownClientKey = "unknown"

// Limiter decides whether a request from a client is admitted.
type Limiter interface {
	// Allow records one request from key and reports whether it is admitted.
	Allow(key string) bool
	// Start runs the limiter's background maintenance until ctx is cancelled.
	Start(ctx context.Context)
}

// Option configures a limiter.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for window maintenance messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the time source. Only the token bucket consults it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOpts(opts ...Option) options {
	o := options{
		logger: helpers.NewNoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ClientKey derives the throttling identity of a request from the forwarded-address header:
// the first hop of the comma-separated chain, or UnknownClientKey when absent.
// Header keys are expected lower-cased; header is matched case-insensitively. The value is not authenticated.
func ClientKey(headers map[string]string, header string) string {
	if key := helpers.FirstField(headers[strings.ToLower(header)], ","); key != "" {
		return key
	}
	return UnknownClientKey
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
