package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	logger := log.New(log.DefaultConfig())
	h := NewHandler(
		services.NewTransactionService(store, nil),
		services.NewRefreshService(store),
		services.NewBudgetService(store),
		logger,
	)
	return NewRouter(h, nil, nil), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":        "expense",
		"category":    "food",
		"account":     "checking",
		"description": "Groceries",
		"amount":      "54.30",
		"date":        "2024-07-05",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decode(t, w, &created)
	if len(created.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(created.Transactions))
	}
	tx := created.Transactions[0]
	if tx.AmountCents != 5430 || tx.Date != "2024-07-05" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions/"+tx.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got transactionResponse
	decode(t, w, &got)
	if got.Description != "Groceries" {
		t.Fatalf("unexpected get response: %+v", got)
	}
}

func TestCreateRecurringReturnsForwardBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":         "expense",
		"category":     "entertainment",
		"account":      "checking",
		"description":  "Netflix",
		"amount":       "19.99",
		"date":         "2024-01-31",
		"is_recurring": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decode(t, w, &created)
	if len(created.Transactions) != 12 {
		t.Fatalf("expected 12 transactions, got %d", len(created.Transactions))
	}
	if created.Transactions[1].Date != "2024-02-29" {
		t.Errorf("February instance must clamp to the 29th, got %s", created.Transactions[1].Date)
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":        "expense",
		"category":    "food",
		"account":     "checking",
		"description": "Groceries",
		"amount":      "not-a-number",
		"date":        "2024-07-05",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/transactions/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	router, _ := newTestRouter(t)

	for i, month := range []string{"06", "07"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
			"type":        "expense",
			"category":    "food",
			"account":     "checking",
			"description": fmt.Sprintf("Groceries %d", i),
			"amount":      "10.00",
			"date":        "2024-" + month + "-05",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("seed status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/transactions?from=2024-07-01&to=2024-08-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decode(t, w, &resp)
	if len(resp.Transactions) != 1 || resp.Transactions[0].Date != "2024-07-05" {
		t.Fatalf("unexpected filtered list: %+v", resp.Transactions)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/transactions?recurring=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad recurring filter status = %d, want 400", w.Code)
	}
}

func TestDeleteTransactionScopes(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":         "expense",
		"category":     "housing",
		"account":      "checking",
		"description":  "Rent",
		"amount":       "1200.00",
		"date":         core.Today().String(),
		"is_recurring": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", w.Code)
	}
	var created struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decode(t, w, &created)

	// Single: one row gone, eleven stay.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/transactions/"+created.Transactions[3].ID+"?scope=single", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("single delete status = %d, body = %s", w.Code, w.Body.String())
	}
	all, _ := store.ListTransactions(context.Background(), storage.TransactionFilter{})
	if len(all) != 11 {
		t.Fatalf("expected 11 rows after single delete, got %d", len(all))
	}

	// Series: the forward tail goes. Everything is dated today or later,
	// so nothing survives.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/transactions/"+created.Transactions[0].ID+"?scope=series", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("series delete status = %d, body = %s", w.Code, w.Body.String())
	}
	all, _ = store.ListTransactions(context.Background(), storage.TransactionFilter{})
	if len(all) != 0 {
		t.Fatalf("expected 0 rows after series delete, got %d", len(all))
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/transactions/ghost?scope=everything", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid scope status = %d, want 400", w.Code)
	}
}

func TestSetReceived(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":        "income",
		"category":    "salary",
		"account":     "checking",
		"description": "Paycheck",
		"amount":      "3000.00",
		"date":        "2024-07-01",
	})
	var created struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decode(t, w, &created)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/transactions/"+created.Transactions[0].ID+"/received", gin.H{"received": true})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	tx, err := store.GetTransaction(context.Background(), created.Transactions[0].ID)
	if err != nil || !tx.Received {
		t.Fatalf("received flag not persisted: tx=%+v err=%v", tx, err)
	}
}

func TestDashboard(t *testing.T) {
	router, _ := newTestRouter(t)

	seed := []gin.H{
		{"type": "income", "category": "salary", "account": "checking", "description": "Paycheck", "amount": "3000.00", "date": "2024-07-01"},
		{"type": "expense", "category": "food", "account": "checking", "description": "Groceries", "amount": "400.00", "date": "2024-07-05"},
		{"type": "expense", "category": "housing", "account": "checking", "description": "Rent", "amount": "1200.00", "date": "2024-07-01"},
	}
	for _, body := range seed {
		if w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", body); w.Code != http.StatusCreated {
			t.Fatalf("seed status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/dashboard?year=2024&month=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp dashboardResponse
	decode(t, w, &resp)
	if resp.IncomeCents != 300000 || resp.ExpenseCents != 160000 || resp.BalanceCents != 140000 {
		t.Fatalf("unexpected dashboard: %+v", resp)
	}
	if len(resp.ByCategory) != 2 || resp.ByCategory[0].Name != "housing" {
		t.Fatalf("unexpected category breakdown: %+v", resp.ByCategory)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/dashboard?month=13", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("month 13 status = %d, want 400", w.Code)
	}
}

func TestRefreshEndpointMaterializesCurrentMonth(t *testing.T) {
	router, store := newTestRouter(t)

	// A recurring series last materialized before the current month.
	// time.Date normalizes month 0 to December of the prior year.
	today := core.Today()
	origin := core.Transaction{
		ID:          "seed",
		Type:        core.Expense,
		Category:    "subscriptions",
		Account:     "checking",
		Description: "Spotify",
		Amount:      core.Money{Cents: 999},
		Date:        core.NewDate(today.Year(), today.Month()-1, 10),
		IsRecurring: true,
	}
	if _, err := store.InsertTransactions(context.Background(), []core.Transaction{origin}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp refreshResponse
	decode(t, w, &resp)
	if resp.Created != 1 {
		t.Fatalf("created = %d, want 1", resp.Created)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions in snapshot, got %d", len(resp.Transactions))
	}

	// Second refresh is a no-op.
	w = doJSON(t, router, http.MethodPost, "/api/v1/refresh", nil)
	decode(t, w, &resp)
	if resp.Created != 0 {
		t.Fatalf("second refresh created = %d, want 0", resp.Created)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type": "expense", "category": "food", "account": "checking",
		"description": "Groceries", "amount": "700.00", "date": "2024-07-05",
	}); w.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/budgets", gin.H{
		"category": "food", "year": 2024, "month": 7, "limit": "500.00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/budgets?year=2024&month=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp struct {
		Budgets []budgetResponse `json:"budgets"`
	}
	decode(t, w, &resp)
	if len(resp.Budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(resp.Budgets))
	}
	b := resp.Budgets[0]
	if b.SpentCents != 70000 || !b.Over {
		t.Fatalf("unexpected budget status: %+v", b)
	}

	if w := doJSON(t, router, http.MethodDelete, "/api/v1/budgets/"+b.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
}

func TestGoalEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/goals", gin.H{
		"name": "Vacation", "target": "2000.00", "due_date": "2025-06-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var goal goalResponse
	decode(t, w, &goal)
	if goal.TargetCents != 200000 || goal.DueDate != "2025-06-01" {
		t.Fatalf("unexpected goal: %+v", goal)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/v1/goals/"+goal.ID+"/saved", gin.H{"saved": "750.00"})
	if w.Code != http.StatusOK {
		t.Fatalf("saved status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/goals", nil)
	var resp struct {
		Goals []goalResponse `json:"goals"`
	}
	decode(t, w, &resp)
	if len(resp.Goals) != 1 || resp.Goals[0].SavedCents != 75000 {
		t.Fatalf("unexpected goals: %+v", resp.Goals)
	}

	if w := doJSON(t, router, http.MethodDelete, "/api/v1/goals/"+goal.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
