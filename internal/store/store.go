// Package store persists transaction records keyed by their reference.
package store

import (
	"context"

	"github.com/isometry/payment-webhook/internal/models"
)

// TransactionStore inserts or replaces the record sharing the same TxRef.
// Concurrent upserts of one key resolve as last write wins.
type TransactionStore interface {
	Upsert(ctx context.Context, record models.TransactionRecord) error
}
