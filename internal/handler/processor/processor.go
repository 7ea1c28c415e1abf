// Package processor provides the steps of the webhook pipeline. Each processor advances a shared ingest.Bus
// or stops the pipeline with an error that decides the response.
package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/payment-webhook/internal/ingest"
)

// Processor is an interface that defines a method to process a request.
// Processors are shared by concurrent requests and keep no per-request state.
type Processor interface {
	Process(ctx context.Context, logger *slog.Logger, bus *ingest.Bus) error
}

// Process runs the processors in order and stops at the first error.
// Each processor gets a logger annotated with the state of the bus at the time it runs.
func Process(ctx context.Context, logger *slog.Logger, bus *ingest.Bus, processors ...Processor) error {
	for _, p := range processors {
		if err := p.Process(ctx, logger.With(slog.Any("request", bus)), bus); err != nil {
			return err
		}
	}
	return nil
}
