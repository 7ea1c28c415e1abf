package handler

import (
	"log/slog"
	"time"

	"github.com/isometry/payment-webhook/internal/handler/processor"
	"github.com/isometry/payment-webhook/internal/metrics"
	"github.com/isometry/payment-webhook/internal/ratelimit"
	"github.com/isometry/payment-webhook/internal/store"
	"github.com/isometry/payment-webhook/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock sets the time source used to stamp processed transactions.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithRequestIDGenerator replaces the random UUID request IDs.
func WithRequestIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		h.newRequestID = fn
	}
}

// WithMetrics sets the collectors the handler reports to. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithRateLimiter sets the limiter and the header its client keys are derived from.
func WithRateLimiter(limiter ratelimit.Limiter, clientKeyHeader string) Option {
	return func(h *Handler) {
		h.limiter = limiter
		if clientKeyHeader != "" {
			h.clientKeyHeader = clientKeyHeader
		}
	}
}

// WithWebhookSecret configures the handler with a webhook secret for request validation.
func WithWebhookSecret(secret string) Option {
	return func(h *Handler) {
		h.secret = validation.NewWebhookSecret(secret)
	}
}

// WithSignatureHeader sets the request header carrying the signature.
func WithSignatureHeader(header string) Option {
	return func(h *Handler) {
		if header != "" {
			h.signatureHeader = header
		}
	}
}

// WithMaxBodyBytes bounds the request body size. Zero means unbounded.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

// WithStore sets the transaction store. It is required.
func WithStore(s store.TransactionStore) Option {
	return func(h *Handler) {
		h.store = s
	}
}

// WithArchiver enables archiving of every stored payload to bucket.
func WithArchiver(archiver processor.Archiver, bucket string) Option {
	return func(h *Handler) {
		h.archiver = archiver
		h.archiveBucket = bucket
	}
}
