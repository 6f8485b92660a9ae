package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// Store is the narrow data-access contract the engine needs. Implementations
// must treat InsertTransactions as conditional: rows that would violate the
// one-instance-per-series-per-month invariant are skipped, not errors, and
// the returned count covers only rows actually inserted.
type Store interface {
	ListRecurringTransactions(ctx context.Context) ([]core.Transaction, error)
	SeriesExistsInMonth(ctx context.Context, key SeriesKey, year, month int) (bool, error)
	InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error)
}

// Engine orchestrates the monthly top-up against a Store.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// TopUp materializes the current month's missing instance for every
// recurring series and returns how many rows were created. Zero is success.
//
// A failed read is never treated as absence: if the bulk load fails the
// cycle aborts, and a series whose existence re-check fails is skipped this
// cycle with its error reported alongside the count of rows that did go in.
// The store-level conditional insert makes a concurrently-created instance
// a skip rather than a duplicate.
func (e *Engine) TopUp(ctx context.Context, today core.Date) (int, error) {
	all, err := e.store.ListRecurringTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load recurring transactions: %w", err)
	}

	planned := PlanTopUp(all, today)
	if len(planned) == 0 {
		slog.InfoContext(ctx, "Recurring top-up complete, nothing to materialize",
			"series_checked", len(ExtractSeries(all)),
			"date", today.String())
		return 0, nil
	}

	var errs []error
	batch := make([]core.Transaction, 0, len(planned))
	for _, tx := range planned {
		exists, err := e.store.SeriesExistsInMonth(ctx, KeyOf(tx), today.Year(), today.Month())
		if err != nil {
			slog.ErrorContext(ctx, "Existence check failed, skipping series this cycle",
				"description", tx.Description,
				"amount_cents", tx.Amount.Cents,
				"error", err)
			errs = append(errs, fmt.Errorf("check series %q: %w", tx.Description, err))
			continue
		}
		if exists {
			continue
		}
		batch = append(batch, tx)
	}

	created := 0
	if len(batch) > 0 {
		created, err = e.store.InsertTransactions(ctx, batch)
		if err != nil {
			errs = append(errs, fmt.Errorf("insert materialized instances: %w", err))
		}
	}

	slog.InfoContext(ctx, "Recurring top-up complete",
		"planned", len(planned),
		"created", created,
		"date", today.String())

	return created, errors.Join(errs...)
}
