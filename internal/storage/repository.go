package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
)

// SQLiteRepository persists transactions, budgets and goals in a local
// SQLite database. It implements recurring.Store: InsertTransactions is
// conditional via the unique series+month index and ON CONFLICT DO NOTHING.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero-valued fields are
// ignored. From is inclusive, To exclusive (half-open, like the engine's
// month windows).
type TransactionFilter struct {
	Type        core.TxType
	Category    string
	Account     string
	IsRecurring *bool
	From        core.Date
	To          core.Date
}

const transactionColumns = `id, type, category, account, description, amount_cents, date,
	is_recurring, received, payment_method, observations, attachment, pix_data, bank_data`

// InsertTransactions writes a batch inside one database transaction and
// returns how many rows were actually inserted. Recurring rows that would
// duplicate a series instance in the same calendar month are skipped by the
// unique index, not errors. IDs are assigned here when empty.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, tx := range txs {
		id := tx.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := stmt.ExecContext(ctx,
			id, string(tx.Type), tx.Category, tx.Account, tx.Description,
			tx.Amount.Cents, tx.Date.String(),
			boolToInt(tx.IsRecurring), boolToInt(tx.Received),
			tx.PaymentMethod, tx.Observations, tx.Attachment, tx.PixData, tx.BankData)
		if err != nil {
			return 0, fmt.Errorf("insert transaction %q: %w", tx.Description, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert batch: %w", err)
	}

	slog.InfoContext(ctx, "Transaction batch saved",
		"batch_size", len(txs),
		"inserted", inserted,
		"skipped", len(txs)-inserted)

	return inserted, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Account != "" {
		where = append(where, "account = ?")
		args = append(args, f.Account)
	}
	if f.IsRecurring != nil {
		where = append(where, "is_recurring = ?")
		args = append(args, boolToInt(*f.IsRecurring))
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, f.To.String())
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// ListRecurringTransactions implements recurring.Store, most-recent-first
// so series extraction picks the latest row as representative.
func (r *SQLiteRepository) ListRecurringTransactions(ctx context.Context) ([]core.Transaction, error) {
	rec := true
	return r.ListTransactions(ctx, TransactionFilter{IsRecurring: &rec})
}

// SeriesExistsInMonth implements recurring.Store: a read-only lookup for an
// instance of the series inside [first day of month, first day of next month).
func (r *SQLiteRepository) SeriesExistsInMonth(ctx context.Context, key recurring.SeriesKey, year, month int) (bool, error) {
	first, next := monthWindow(year, month)
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM transactions
		WHERE is_recurring = 1
		  AND description = ? AND amount_cents = ? AND category = ? AND account = ?
		  AND date >= ? AND date < ?
		LIMIT 1`,
		key.Description, key.AmountCents, key.Category, key.Account,
		first, next).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("series existence lookup: %w", err)
	}
	return true, nil
}

// DeleteTransaction removes exactly one row, no cascade.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteSeriesFrom removes every recurring row of the series dated from or
// later. Past instances stay untouched; history is not rewritten.
func (r *SQLiteRepository) DeleteSeriesFrom(ctx context.Context, key recurring.SeriesKey, from core.Date) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE is_recurring = 1
		  AND description = ? AND amount_cents = ? AND category = ? AND account = ?
		  AND date >= ?`,
		key.Description, key.AmountCents, key.Category, key.Account, from.String())
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Recurring series tail deleted",
		"description", key.Description,
		"amount_cents", key.AmountCents,
		"from", from.String(),
		"deleted", n)

	return int(n), nil
}

// SetReceived flags income as collected / an expense as paid.
func (r *SQLiteRepository) SetReceived(ctx context.Context, id string, received bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET received = ? WHERE id = ?`, boolToInt(received), id)
	if err != nil {
		return fmt.Errorf("set received %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// MonthSummary aggregates income, expenses and per-category expense totals
// for one calendar month.
func (r *SQLiteRepository) MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	summary := core.MonthSummary{Year: year, Month: month}
	first, next := monthWindow(year, month)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE date >= ? AND date < ?`, first, next).
		Scan(&summary.Income.Cents, &summary.Expense.Cents)
	if err != nil {
		return summary, fmt.Errorf("month totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM transactions
		WHERE type = 'expense' AND date >= ? AND date < ?
		GROUP BY category
		ORDER BY SUM(amount_cents) DESC`, first, next)
	if err != nil {
		return summary, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return summary, fmt.Errorf("scan category sum: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, ca)
	}
	return summary, rows.Err()
}

// UpsertBudget creates or replaces the budget for (category, year, month).
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, category, year, month, limit_cents)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (category, year, month)
		DO UPDATE SET limit_cents = excluded.limit_cents`,
		b.ID, b.Category, b.Year, b.Month, b.LimitCents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, year, month, limit_cents
		FROM budgets WHERE year = ? AND month = ?
		ORDER BY category`, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Year, &b.Month, &b.LimitCents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	due := ""
	if !g.DueDate.IsZero() {
		due = g.DueDate.String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_cents, saved_cents, due_date)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetCents, g.SavedCents, due)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, saved_cents, due_date FROM goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g   core.Goal
			due string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetCents, &g.SavedCents, &due); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if due != "" {
			if g.DueDate, err = core.ParseDate(due); err != nil {
				return nil, fmt.Errorf("goal %s due date: %w", g.ID, err)
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoalSaved(ctx context.Context, id string, savedCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET saved_cents = ? WHERE id = ?`, savedCents, id)
	if err != nil {
		return fmt.Errorf("update goal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                    core.Transaction
		txType, date          string
		isRecurring, received int
	)
	err := row.Scan(&tx.ID, &txType, &tx.Category, &tx.Account, &tx.Description,
		&tx.Amount.Cents, &date, &isRecurring, &received,
		&tx.PaymentMethod, &tx.Observations, &tx.Attachment, &tx.PixData, &tx.BankData)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TxType(txType)
	tx.IsRecurring = isRecurring != 0
	tx.Received = received != 0
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// monthWindow returns the half-open [first, next) date strings bounding a
// calendar month.
func monthWindow(year, month int) (first, next string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start.Format(core.DateLayout), start.AddDate(0, 1, 0).Format(core.DateLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
