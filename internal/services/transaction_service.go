package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/recurring"
	"fintrack/internal/storage"
)

// Summary cache bounds: one entry per month view, refreshed within a
// minute of going stale even without a write.
const (
	summaryCacheSize = 64
	summaryCacheTTL  = time.Minute
)

// DeleteScope selects how far a delete reaches for recurring rows.
type DeleteScope string

const (
	// ScopeSingle removes only the addressed row, its series keeps running.
	ScopeSingle DeleteScope = "single"
	// ScopeSeries removes the addressed row's series from today forward,
	// past instances stay untouched.
	ScopeSeries DeleteScope = "series"
)

func (s DeleteScope) Validate() error {
	switch s {
	case ScopeSingle, ScopeSeries:
		return nil
	default:
		return fmt.Errorf("invalid delete scope %q", string(s))
	}
}

// Store is the data access the transaction service needs.
type Store interface {
	InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	DeleteSeriesFrom(ctx context.Context, key recurring.SeriesKey, from core.Date) (int, error)
	SetReceived(ctx context.Context, id string, received bool) error
	MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error)
}

// Publisher pushes mirror messages onto the queue. It may be nil when no
// broker is configured, mirroring is then skipped.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error
}

// TransactionService orchestrates transaction writes across storage and
// the mirror queue.
type TransactionService struct {
	store     Store
	publisher Publisher
	summaries *cache.LRU[core.MonthSummary]
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		summaries: cache.New[core.MonthSummary](summaryCacheSize, summaryCacheTTL),
	}
}

// Create validates and stores a transaction. A recurring transaction is
// expanded into its full forward batch, one row per month starting at the
// origin month, before a single conditional insert.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) ([]core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	var rows []core.Transaction
	if tx.IsRecurring {
		rows = recurring.PlanForward(tx, recurring.ForwardMonths)
	} else {
		rows = []core.Transaction{tx}
	}

	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
	}

	inserted, err := s.store.InsertTransactions(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}
	if inserted < len(rows) {
		slog.InfoContext(ctx, "Some rows already covered their month, skipped",
			"planned", len(rows),
			"inserted", inserted)
	}
	s.invalidateSummaries(rows...)

	// Mirror asynchronously, a broker outage must not fail the write.
	for _, row := range rows {
		if err := s.publishSync(ctx, row.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"transaction_id", row.ID, "error", err)
		}
	}

	return rows, nil
}

// Get returns a single transaction by ID.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// List returns transactions matching the filter.
func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// SetReceived toggles the received flag of a single transaction.
func (s *TransactionService) SetReceived(ctx context.Context, id string, received bool) error {
	return s.store.SetReceived(ctx, id, received)
}

// Summary aggregates a month's totals and per-category breakdown. Results
// are cached per month and invalidated by any write touching that month.
func (s *TransactionService) Summary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	key := summaryKey(year, month)
	if summary, ok := s.summaries.Get(key); ok {
		return summary, nil
	}

	summary, err := s.store.MonthSummary(ctx, year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	s.summaries.Set(key, summary)
	return summary, nil
}

func summaryKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (s *TransactionService) invalidateSummaries(txs ...core.Transaction) {
	for _, tx := range txs {
		s.summaries.Delete(summaryKey(tx.Date.Year(), tx.Date.Month()))
	}
}

// Delete removes a transaction. With ScopeSingle only the addressed row
// goes, even when it belongs to a recurring series. With ScopeSeries every
// row of the series dated today or later goes, the past is preserved.
func (s *TransactionService) Delete(ctx context.Context, id string, scope DeleteScope, today core.Date) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("load transaction: %w", err)
	}

	if scope == ScopeSingle || !tx.IsRecurring {
		if err := s.store.DeleteTransaction(ctx, id); err != nil {
			return 0, fmt.Errorf("delete transaction: %w", err)
		}
		s.invalidateSummaries(tx)
		s.publishDelete(ctx, tx)
		return 1, nil
	}

	key := recurring.KeyOf(tx)

	// Collect the forward tail first so each mirrored row can be removed,
	// the rows are gone from storage right after.
	tail, err := s.seriesTail(ctx, key, today)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list series tail for mirror removal",
			"transaction_id", id, "error", err)
	}

	deleted, err := s.store.DeleteSeriesFrom(ctx, key, today)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}

	s.invalidateSummaries(tail...)
	for _, row := range tail {
		s.publishDelete(ctx, row)
	}

	slog.InfoContext(ctx, "Deleted recurring series tail",
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"deleted", deleted,
		"from", today.String())

	return deleted, nil
}

func (s *TransactionService) seriesTail(ctx context.Context, key recurring.SeriesKey, from core.Date) ([]core.Transaction, error) {
	isRecurring := true
	all, err := s.store.ListTransactions(ctx, storage.TransactionFilter{
		IsRecurring: &isRecurring,
		From:        from,
	})
	if err != nil {
		return nil, err
	}
	tail := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if recurring.KeyOf(tx) == key {
			tail = append(tail, tx)
		}
	}
	return tail, nil
}

func (s *TransactionService) publishSync(ctx context.Context, id string) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id)
}

func (s *TransactionService) publishDelete(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	msg := &amqp.TransactionDeleteMessage{
		ID:          tx.ID,
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Account:     tx.Account,
		Date:        tx.Date.String(),
	}
	if err := s.publisher.PublishTransactionDelete(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"transaction_id", tx.ID, "error", err)
	}
}
