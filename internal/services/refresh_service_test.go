package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
	"fintrack/internal/storage"
)

func seedRecurring(t *testing.T, store *storage.MemoryStore, desc string, date core.Date) {
	t.Helper()
	tx := core.Transaction{
		ID:          desc + "-" + date.String(),
		Type:        core.Expense,
		Category:    "subscriptions",
		Account:     "checking",
		Description: desc,
		Amount:      core.Money{Cents: 999},
		Date:        date,
		IsRecurring: true,
	}
	if _, err := store.InsertTransactions(context.Background(), []core.Transaction{tx}); err != nil {
		t.Fatalf("seed %s: %v", desc, err)
	}
}

func TestRefreshMaterializesAndReturnsSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewRefreshService(store)

	seedRecurring(t, store, "Spotify", core.NewDate(2024, 6, 10))

	snap, err := svc.Refresh(context.Background(), core.NewDate(2024, 7, 15))
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if snap.Created != 1 {
		t.Fatalf("Created = %d, want 1", snap.Created)
	}
	if len(snap.Transactions) != 2 {
		t.Fatalf("snapshot should hold both rows, got %d", len(snap.Transactions))
	}

	found := false
	for _, tx := range snap.Transactions {
		if tx.Date.SameMonth(2024, 7) && tx.Description == "Spotify" {
			found = true
		}
	}
	if !found {
		t.Fatal("snapshot must contain the materialized July instance")
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewRefreshService(store)

	seedRecurring(t, store, "Spotify", core.NewDate(2024, 6, 10))

	today := core.NewDate(2024, 7, 15)
	if _, err := svc.Refresh(context.Background(), today); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	snap, err := svc.Refresh(context.Background(), today)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if snap.Created != 0 {
		t.Fatalf("second refresh must create nothing, got %d", snap.Created)
	}
	if len(snap.Transactions) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snap.Transactions))
	}
}

type failingRefreshStore struct {
	*storage.MemoryStore
}

func (failingRefreshStore) ListRecurringTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("disk error")
}

func TestRefreshAbortsWhenLoadFails(t *testing.T) {
	svc := NewRefreshService(failingRefreshStore{storage.NewMemoryStore()})

	if _, err := svc.Refresh(context.Background(), core.Today()); err == nil {
		t.Fatal("a failed load must abort the refresh, not read as absence")
	}
}

var _ recurring.Store = (*storage.MemoryStore)(nil)
