// Package ingest holds the per-request state threaded through the webhook pipeline and the
// error taxonomy that decides the single response of each request.
package ingest

import (
	"log/slog"
	"time"

	"github.com/isometry/payment-webhook/internal/models"
)

// Stage is the furthest point a request reached in the pipeline.
type Stage string

const (
	// Received is the initial stage of every request.
	Received Stage = "received"
	// RateChecked means the client was admitted by the rate limiter.
	RateChecked Stage = "rate_checked"
	// SignatureVerified means the body carried a valid signature.
	SignatureVerified Stage = "signature_verified"
	// Parsed means the transaction fields were extracted from the body.
	Parsed Stage = "parsed"
	// Stored means the transaction record was upserted.
	Stored Stage = "stored"
	// Responded is the terminal stage.
	Responded Stage = "responded"
)

// Bus carries one request through the pipeline processors.
type Bus struct {
	RequestID string
	ClientKey string
	Stage     Stage

	Request models.Request
	Body    []byte

	Payload     *models.Payload
	Transaction *models.TransactionRecord

	ReceivedAt time.Time
	Response   models.Response
}

// NewBus returns a Bus for req in the Received stage.
func NewBus(requestID string, req models.Request, now time.Time) *Bus {
	return &Bus{
		RequestID:  requestID,
		Stage:      Received,
		Request:    req,
		ReceivedAt: now,
	}
}

// LogValue implements slog.LogValuer.
func (b *Bus) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.String("requestID", b.RequestID), slog.String("stage", string(b.Stage)))
	if b.ClientKey != "" {
		attrs = append(attrs, slog.String("clientKey", b.ClientKey))
	}
	if b.Transaction != nil {
		attrs = append(attrs, slog.String("txRef", b.Transaction.TxRef))
	}
	return slog.GroupValue(attrs...)
}
