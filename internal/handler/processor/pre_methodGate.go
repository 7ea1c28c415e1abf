package processor

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/isometry/payment-webhook/internal/ingest"
)

type methodGateProcessor struct {
	allowed []string
}

// NewMethodGateProcessor rejects requests whose method is not allowed. POST is the default.
func NewMethodGateProcessor(allowed []string) Processor {
	if len(allowed) == 0 {
		allowed = []string{http.MethodPost}
	}
	return &methodGateProcessor{allowed: allowed}
}

func (p *methodGateProcessor) Process(_ context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "method-gate")
	if !slices.Contains(p.allowed, bus.Request.Method) {
		logger.Debug("rejecting unsupported method", slog.String("method", bus.Request.Method))
		return &ingest.MalformedRequestError{Method: bus.Request.Method}
	}
	return nil
}
