package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Mirror is an in-memory stand-in for the spreadsheet mirror, used in
// tests and when no Google credentials are configured.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Mirror {
	return &Mirror{}
}

// Append stores the transaction and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, tx)
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Remove drops the row matching the deleted transaction's ID. A missing
// row is not an error, the mirror may simply never have seen it.
func (m *Mirror) Remove(_ context.Context, msg amqp.TransactionDeleteMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == msg.ID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the mirrored rows.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
