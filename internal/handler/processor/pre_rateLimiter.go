package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/metrics"
	"github.com/isometry/payment-webhook/internal/ratelimit"
)

type rateLimiterProcessor struct {
	limiter         ratelimit.Limiter
	clientKeyHeader string
	metrics         *metrics.Metrics
}

// NewRateLimiterProcessor admits requests through limiter, keyed by the first address in clientKeyHeader.
func NewRateLimiterProcessor(limiter ratelimit.Limiter, clientKeyHeader string, m *metrics.Metrics) Processor {
	return &rateLimiterProcessor{
		limiter:         limiter,
		clientKeyHeader: clientKeyHeader,
		metrics:         m,
	}
}

func (p *rateLimiterProcessor) Process(_ context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "rate-limiter")
	bus.ClientKey = ratelimit.ClientKey(bus.Request.Headers, p.clientKeyHeader)
	if !p.limiter.Allow(bus.ClientKey) {
		logger.Warn("rate limit exceeded", slog.String("clientKey", bus.ClientKey))
		p.metrics.RateLimited()
		return &ingest.AdmissionRejectedError{ClientKey: bus.ClientKey}
	}
	bus.Stage = ingest.RateChecked
	return nil
}
