package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/models"
)

type payloadParserProcessor struct{}

// NewPayloadParserProcessor extracts data.tx_ref, data.amount and data.status from the verified body.
func NewPayloadParserProcessor() Processor {
	return &payloadParserProcessor{}
}

func (p *payloadParserProcessor) Process(_ context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "payload-parser")
	var payload models.Payload
	if err := json.Unmarshal(bus.Body, &payload); err != nil {
		return ingest.WrapInternalError(err, "failed to parse payload")
	}
	if payload.Data == nil {
		return ingest.NewInternalError("payload has no data object")
	}
	if payload.Data.TxRef == "" {
		return ingest.NewInternalError("payload has no tx_ref")
	}
	bus.Payload = &payload
	bus.Transaction = &models.TransactionRecord{
		TxRef:  payload.Data.TxRef,
		Amount: payload.Data.Amount,
		Status: payload.Data.Status,
	}
	bus.Stage = ingest.Parsed
	logger.Debug("parsed transaction", slog.Any("transaction", bus.Transaction))
	return nil
}
