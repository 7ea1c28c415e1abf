package processor

import (
	"context"
	"io"
	"log/slog"

	"github.com/isometry/payment-webhook/internal/ingest"
)

type bodyReaderProcessor struct {
	maxBytes int64
}

// NewBodyReaderProcessor reads the raw request body. A body longer than maxBytes is a read failure.
// A non-positive maxBytes disables the bound.
func NewBodyReaderProcessor(maxBytes int64) Processor {
	return &bodyReaderProcessor{maxBytes: maxBytes}
}

func (p *bodyReaderProcessor) Process(_ context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "body-reader")
	if bus.Request.Body == nil {
		bus.Body = []byte{}
		return nil
	}
	reader := bus.Request.Body
	if p.maxBytes > 0 {
		reader = io.LimitReader(reader, p.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return ingest.WrapInternalError(err, "failed to read request body")
	}
	if p.maxBytes > 0 && int64(len(body)) > p.maxBytes {
		return ingest.NewInternalError("request body exceeds %d bytes", p.maxBytes)
	}
	logger.Debug("read request body", slog.Int("bytes", len(body)))
	bus.Body = body
	return nil
}
