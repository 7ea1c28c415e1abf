package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/metrics"
)

// Archiver stores a copy of a verified payload.
type Archiver interface {
	PutS3Object(ctx context.Context, id, bucket string, body []byte) (string, error)
}

type archiverPostProcessor struct {
	archiver Archiver
	bucket   string
	metrics  *metrics.Metrics
}

// NewArchiverPostProcessor archives the raw body of stored transactions to bucket.
// Failures are logged and counted but never fail the request.
func NewArchiverPostProcessor(archiver Archiver, bucket string, m *metrics.Metrics) Processor {
	return &archiverPostProcessor{archiver: archiver, bucket: bucket, metrics: m}
}

func (p *archiverPostProcessor) Process(ctx context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "archiver")
	if bus.Stage != ingest.Stored || bus.Transaction == nil {
		logger.Debug("skipping archive of unstored request")
		return nil
	}
	key, err := p.archiver.PutS3Object(ctx, bus.Transaction.TxRef, p.bucket, bus.Body)
	if err != nil {
		logger.Warn("failed to archive payload", slog.Any("error", err))
		p.metrics.ArchiveFailed()
		return nil
	}
	logger.Debug("archived payload", slog.String("bucket", p.bucket), slog.String("key", key))
	return nil
}
