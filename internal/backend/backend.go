package backend

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Type represents the storage backend to run against.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SQLite, Memory}
}

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// Stores bundles the store interfaces every service layer needs. Both
// backends satisfy all three with a single value.
type Stores struct {
	Transactions services.Store
	Refresh      services.RefreshStore
	Budgets      services.BudgetStore
}

// Open builds the stores for the configured backend. The SQLite
// repository runs pending migrations as part of opening. The returned
// cleanup function is never nil.
func Open(cfg *config.Config) (Stores, CleanupFunc, error) {
	noop := func() error { return nil }

	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return Stores{}, noop, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return Stores{}, noop, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return Stores{Transactions: repo, Refresh: repo, Budgets: repo}, repo.Close, nil
	default:
		mem := storage.NewMemoryStore()
		return Stores{Transactions: mem, Refresh: mem, Budgets: mem}, noop, nil
	}
}
