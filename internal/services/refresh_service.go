package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
	"fintrack/internal/storage"
)

// Snapshot is what an interactive refresh hands back: the full transaction
// list after the top-up, plus how many rows the top-up created.
type Snapshot struct {
	Transactions []core.Transaction
	Created      int
}

// RefreshStore extends the engine's store with the full list the snapshot
// needs.
type RefreshStore interface {
	recurring.Store
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
}

// RefreshService runs the recurring top-up and then reloads state, making
// "open the app" and "the scheduler fired" the same code path.
type RefreshService struct {
	store  RefreshStore
	engine *recurring.Engine
}

func NewRefreshService(store RefreshStore) *RefreshService {
	return &RefreshService{
		store:  store,
		engine: recurring.NewEngine(store),
	}
}

// Refresh tops up the current month and returns a fresh snapshot. A failed
// top-up load aborts before any write; partial per-series failures still
// produce a snapshot with the error reported alongside it.
func (s *RefreshService) Refresh(ctx context.Context, today core.Date) (Snapshot, error) {
	created, topUpErr := s.engine.TopUp(ctx, today)
	if topUpErr != nil && created == 0 {
		// Nothing materialized and the cycle reported failure, bail out
		// rather than hand back a snapshot that looks authoritative.
		return Snapshot{}, fmt.Errorf("top up recurring transactions: %w", topUpErr)
	}

	all, err := s.store.ListTransactions(ctx, storage.TransactionFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("reload transactions: %w", err)
	}

	if topUpErr != nil {
		slog.WarnContext(ctx, "Refresh completed with partial top-up failures",
			"created", created,
			"error", topUpErr)
	}

	return Snapshot{Transactions: all, Created: created}, topUpErr
}

// TopUp runs just the materialization step, the scheduled sweep's entry
// point.
func (s *RefreshService) TopUp(ctx context.Context, today core.Date) (int, error) {
	return s.engine.TopUp(ctx, today)
}
