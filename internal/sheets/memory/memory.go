// Package memory is an in-memory spreadsheet mirror used in tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"conto/internal/core"
	ports "conto/internal/sheets"
)

type Mirror struct {
	mu  sync.Mutex
	txs []core.Transaction
}

var (
	_ ports.TransactionWriter = (*Mirror)(nil)
	_ ports.MirrorLister      = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
	return fmt.Sprintf("row-%d", len(m.txs)), nil
}

func (m *Mirror) ListIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.txs))
	for i, tx := range m.txs {
		ids[i] = tx.ID
	}
	return ids, nil
}

// Transactions returns a snapshot of the mirrored rows.
func (m *Mirror) Transactions() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.txs))
	copy(out, m.txs)
	return out
}
