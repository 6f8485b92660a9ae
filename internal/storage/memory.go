package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
)

// MemoryStore is an in-memory implementation of the same transaction
// operations as SQLiteRepository, with identical conditional-insert
// semantics. It backs tests and the ephemeral "memory" backend.
type MemoryStore struct {
	mu      sync.RWMutex
	txs     []core.Transaction
	budgets []core.Budget
	goals   []core.Goal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, tx := range txs {
		if tx.IsRecurring && m.hasSeriesInMonthLocked(recurring.KeyOf(tx), tx.Date.Year(), tx.Date.Month()) {
			continue
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		m.txs = append(m.txs, tx)
		inserted++
	}
	return inserted, nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tx := range m.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range m.txs {
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if f.Account != "" && tx.Account != f.Account {
			continue
		}
		if f.IsRecurring != nil && tx.IsRecurring != *f.IsRecurring {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsZero() && !tx.Date.Before(f.To.Time) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (m *MemoryStore) ListRecurringTransactions(ctx context.Context) ([]core.Transaction, error) {
	rec := true
	return m.ListTransactions(ctx, TransactionFilter{IsRecurring: &rec})
}

func (m *MemoryStore) SeriesExistsInMonth(ctx context.Context, key recurring.SeriesKey, year, month int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasSeriesInMonthLocked(key, year, month), nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.txs {
		if tx.ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) DeleteSeriesFrom(ctx context.Context, key recurring.SeriesKey, from core.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.txs[:0]
	deleted := 0
	for _, tx := range m.txs {
		if tx.IsRecurring && recurring.KeyOf(tx) == key && !tx.Date.Before(from.Time) {
			deleted++
			continue
		}
		kept = append(kept, tx)
	}
	m.txs = kept
	return deleted, nil
}

func (m *MemoryStore) SetReceived(ctx context.Context, id string, received bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.txs {
		if tx.ID == id {
			m.txs[i].Received = received
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := core.MonthSummary{Year: year, Month: month}
	byCategory := map[string]int64{}
	for _, tx := range m.txs {
		if !tx.Date.SameMonth(year, month) {
			continue
		}
		switch tx.Type {
		case core.Income:
			summary.Income.Cents += tx.Amount.Cents
		case core.Expense:
			summary.Expense.Cents += tx.Amount.Cents
			byCategory[tx.Category] += tx.Amount.Cents
		}
	}
	for name, cents := range byCategory {
		summary.ByCategory = append(summary.ByCategory, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: cents},
		})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Amount.Cents > summary.ByCategory[j].Amount.Cents
	})
	return summary, nil
}

func (m *MemoryStore) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, have := range m.budgets {
		if have.Category == b.Category && have.Year == b.Year && have.Month == b.Month {
			b.ID = have.ID
			m.budgets[i] = b
			return b, nil
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.budgets = append(m.budgets, b)
	return b, nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Budget
	for _, b := range m.budgets {
		if b.Year == year && b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.budgets {
		if b.ID == id {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	m.goals = append(m.goals, g)
	return g, nil
}

func (m *MemoryStore) ListGoals(ctx context.Context) ([]core.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]core.Goal(nil), m.goals...), nil
}

func (m *MemoryStore) UpdateGoalSaved(ctx context.Context, id string, savedCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].SavedCents = savedCents
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, g := range m.goals {
		if g.ID == id {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

func (m *MemoryStore) hasSeriesInMonthLocked(key recurring.SeriesKey, year, month int) bool {
	for _, tx := range m.txs {
		if tx.IsRecurring && recurring.KeyOf(tx) == key && tx.Date.SameMonth(year, month) {
			return true
		}
	}
	return false
}
