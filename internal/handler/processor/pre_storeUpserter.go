package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/metrics"
	"github.com/isometry/payment-webhook/internal/store"
)

type storeUpserterProcessor struct {
	store   store.TransactionStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStoreUpserterProcessor writes the parsed transaction to s, stamped with the time of the write.
// A nil now uses time.Now.
func NewStoreUpserterProcessor(s store.TransactionStore, m *metrics.Metrics, now func() time.Time) Processor {
	if now == nil {
		now = time.Now
	}
	return &storeUpserterProcessor{store: s, metrics: m, now: now}
}

func (p *storeUpserterProcessor) Process(ctx context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "store-upserter")
	if bus.Transaction == nil {
		return ingest.NewInternalError("no transaction to store")
	}
	bus.Transaction.ProcessedAt = p.now().UTC()
	start := time.Now()
	err := p.store.Upsert(ctx, *bus.Transaction)
	p.metrics.ObserveUpsert(time.Since(start))
	if err != nil {
		return ingest.WrapInternalError(err, "failed to store transaction")
	}
	bus.Stage = ingest.Stored
	logger.Info("transaction stored", slog.Any("transaction", bus.Transaction))
	return nil
}
