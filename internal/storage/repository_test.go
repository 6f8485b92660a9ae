package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTx(desc string, cents int64, date string, isRecurring bool) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		Type:        core.Expense,
		Category:    "Lazer",
		Account:     "Nubank",
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Date:        d,
		IsRecurring: isRecurring,
	}
}

func TestInsertAndGetTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := testTx("Netflix", 3990, "2024-01-31", true)
	tx.PaymentMethod = "credit_card"
	tx.PixData = "chave-pix"

	n, err := repo.InsertTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	list, err := repo.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	got, err := repo.GetTransaction(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Netflix" || got.Amount.Cents != 3990 ||
		got.Date.String() != "2024-01-31" || !got.IsRecurring ||
		got.PaymentMethod != "credit_card" || got.PixData != "chave-pix" {
		t.Errorf("round-tripped transaction differs: %+v", got)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetTransaction(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertSkipsDuplicateSeriesMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := recurring.PlanForward(testTx("Netflix", 3990, "2024-01-31", true), recurring.ForwardMonths)
	n, err := repo.InsertTransactions(ctx, seed)
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	if n != 12 {
		t.Fatalf("seed inserted %d rows, want 12", n)
	}

	// Same series, same months: the unique index swallows every row.
	again, err := repo.InsertTransactions(ctx, seed)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if again != 0 {
		t.Fatalf("duplicate insert created %d rows, want 0", again)
	}

	// A different category is a different series and goes through.
	other := testTx("Netflix", 3990, "2024-01-31", true)
	other.Category = "Trabalho"
	n, err = repo.InsertTransactions(ctx, []core.Transaction{other})
	if err != nil {
		t.Fatalf("other series insert: %v", err)
	}
	if n != 1 {
		t.Fatalf("other series inserted %d rows, want 1", n)
	}
}

func TestSeriesExistsInMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := testTx("Netflix", 3990, "2024-06-15", true)
	if _, err := repo.InsertTransactions(ctx, []core.Transaction{tx}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	key := recurring.KeyOf(tx)

	exists, err := repo.SeriesExistsInMonth(ctx, key, 2024, 6)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("June instance not found")
	}

	exists, err = repo.SeriesExistsInMonth(ctx, key, 2024, 7)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("July instance reported but none inserted")
	}
}

func TestDeleteSeriesFromPreservesPast(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := recurring.PlanForward(testTx("Academia", 9900, "2024-01-10", true), recurring.ForwardMonths)
	if _, err := repo.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	today, _ := core.ParseDate("2024-06-10")
	deleted, err := repo.DeleteSeriesFrom(ctx, recurring.KeyOf(seed[0]), today)
	if err != nil {
		t.Fatalf("delete series: %v", err)
	}
	// June 10 through December 10 inclusive.
	if deleted != 7 {
		t.Fatalf("deleted = %d, want 7", deleted)
	}

	remaining, err := repo.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 5 {
		t.Fatalf("%d rows remain, want 5 past instances", len(remaining))
	}
	for _, tx := range remaining {
		if !tx.Date.Before(today.Time) {
			t.Errorf("row dated %s survived a series delete from %s", tx.Date, today)
		}
	}
}

func TestDeleteTransactionSingle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := recurring.PlanForward(testTx("Spotify", 1990, "2024-01-05", true), 3)
	if _, err := repo.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, _ := repo.ListTransactions(ctx, TransactionFilter{})

	if err := repo.DeleteTransaction(ctx, list[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, _ := repo.ListTransactions(ctx, TransactionFilter{})
	if len(after) != 2 {
		t.Fatalf("%d rows remain, want 2 (single delete, no cascade)", len(after))
	}

	if err := repo.DeleteTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: err = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	salary := testTx("Salário", 500000, "2024-06-05", false)
	salary.Type = core.Income
	salary.Category = "Renda"
	market := testTx("Mercado", 35000, "2024-06-12", false)
	market.Category = "Alimentação"
	netflix := testTx("Netflix", 3990, "2024-07-15", true)

	if _, err := repo.InsertTransactions(ctx, []core.Transaction{salary, market, netflix}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	income, err := repo.ListTransactions(ctx, TransactionFilter{Type: core.Income})
	if err != nil {
		t.Fatalf("list income: %v", err)
	}
	if len(income) != 1 || income[0].Description != "Salário" {
		t.Errorf("income filter returned %d rows", len(income))
	}

	from, _ := core.ParseDate("2024-06-01")
	to, _ := core.ParseDate("2024-07-01")
	june, err := repo.ListTransactions(ctx, TransactionFilter{From: from, To: to})
	if err != nil {
		t.Fatalf("list june: %v", err)
	}
	if len(june) != 2 {
		t.Errorf("half-open June window returned %d rows, want 2", len(june))
	}

	rec := true
	recurringOnly, err := repo.ListTransactions(ctx, TransactionFilter{IsRecurring: &rec})
	if err != nil {
		t.Fatalf("list recurring: %v", err)
	}
	if len(recurringOnly) != 1 || recurringOnly[0].Description != "Netflix" {
		t.Errorf("recurring filter returned %d rows", len(recurringOnly))
	}
}

func TestMonthSummary(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	salary := testTx("Salário", 500000, "2024-06-05", false)
	salary.Type = core.Income
	salary.Category = "Renda"
	market := testTx("Mercado", 35000, "2024-06-12", false)
	market.Category = "Alimentação"
	netflix := testTx("Netflix", 3990, "2024-06-15", true)
	julyRent := testTx("Aluguel", 180000, "2024-07-01", false)

	if _, err := repo.InsertTransactions(ctx, []core.Transaction{salary, market, netflix, julyRent}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	summary, err := repo.MonthSummary(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Income.Cents != 500000 {
		t.Errorf("income = %d, want 500000", summary.Income.Cents)
	}
	if summary.Expense.Cents != 38990 {
		t.Errorf("expense = %d, want 38990", summary.Expense.Cents)
	}
	if summary.Balance().Cents != 461010 {
		t.Errorf("balance = %d, want 461010", summary.Balance().Cents)
	}
	if len(summary.ByCategory) != 2 || summary.ByCategory[0].Name != "Alimentação" {
		t.Errorf("unexpected category breakdown: %+v", summary.ByCategory)
	}
}

func TestBudgetsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b, err := repo.UpsertBudget(ctx, core.Budget{Category: "Alimentação", Year: 2024, Month: 6, LimitCents: 100000})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if b.ID == "" {
		t.Fatal("budget ID not assigned")
	}

	// Upsert for the same key replaces the limit, not adds a row.
	if _, err := repo.UpsertBudget(ctx, core.Budget{Category: "Alimentação", Year: 2024, Month: 6, LimitCents: 120000}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	budgets, err := repo.ListBudgets(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 1 || budgets[0].LimitCents != 120000 {
		t.Fatalf("budgets = %+v, want one row with limit 120000", budgets)
	}

	if err := repo.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteBudget(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	due, _ := core.ParseDate("2025-12-31")
	g, err := repo.CreateGoal(ctx, core.Goal{Name: "Reserva de emergência", TargetCents: 1000000, DueDate: due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateGoalSaved(ctx, g.ID, 250000); err != nil {
		t.Fatalf("update saved: %v", err)
	}

	goals, err := repo.ListGoals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("len(goals) = %d, want 1", len(goals))
	}
	if goals[0].SavedCents != 250000 || goals[0].DueDate.String() != "2025-12-31" {
		t.Errorf("goal round trip differs: %+v", goals[0])
	}

	if err := repo.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSetReceived(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertTransactions(ctx, []core.Transaction{testTx("Mercado", 35000, "2024-06-12", false)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	list, _ := repo.ListTransactions(ctx, TransactionFilter{})

	if err := repo.SetReceived(ctx, list[0].ID, true); err != nil {
		t.Fatalf("set received: %v", err)
	}
	got, _ := repo.GetTransaction(ctx, list[0].ID)
	if !got.Received {
		t.Error("received flag not persisted")
	}
}
