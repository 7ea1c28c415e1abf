package models

import (
	"log/slog"
	"time"
)

// TransactionRecord is the locally stored state of one payment event, keyed by TxRef.
type TransactionRecord struct {
	TxRef       string    `json:"tx_ref" dynamodbav:"tx_ref" gorm:"column:tx_ref;primaryKey"`
	Amount      float64   `json:"amount" dynamodbav:"amount" gorm:"column:amount"`
	Status      string    `json:"status" dynamodbav:"status" gorm:"column:status"`
	ProcessedAt time.Time `json:"processed_at" dynamodbav:"processed_at" gorm:"column:processed_at"`
}

// LogValue implements slog.LogValuer.
func (t TransactionRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("txRef", t.TxRef),
		slog.Float64("amount", t.Amount),
		slog.String("status", t.Status),
		slog.Time("processedAt", t.ProcessedAt),
	)
}

// TransactionData holds the provider fields consumed from a webhook payload.
// Everything else the provider sends is ignored.
type TransactionData struct {
	TxRef  string  `json:"tx_ref"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// Payload is the envelope of a provider event notification.
type Payload struct {
	Data *TransactionData `json:"data"`
}
