package store

import (
	"context"
	"sync"

	"github.com/isometry/payment-webhook/internal/models"
)

// Memory keeps records in process memory. Records do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.TransactionRecord
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.TransactionRecord)}
}

func (m *Memory) Upsert(ctx context.Context, record models.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.TxRef] = record
	return nil
}

// Get returns the record stored under txRef.
func (m *Memory) Get(txRef string) (models.TransactionRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, found := m.records[txRef]
	return record, found
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
