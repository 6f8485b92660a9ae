package api

import (
	"fmt"

	"fintrack/internal/core"
)

type createTransactionRequest struct {
	Type          string `json:"type" binding:"required"`
	Category      string `json:"category" binding:"required"`
	Account       string `json:"account" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Date          string `json:"date" binding:"required"`
	IsRecurring   bool   `json:"is_recurring"`
	Received      bool   `json:"received"`
	PaymentMethod string `json:"payment_method"`
	Observations  string `json:"observations"`
	Attachment    string `json:"attachment"`
	PixData       string `json:"pix_data"`
	BankData      string `json:"bank_data"`
}

func (r createTransactionRequest) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}
	return core.Transaction{
		Type:          core.TxType(r.Type),
		Category:      r.Category,
		Account:       r.Account,
		Description:   r.Description,
		Amount:        core.Money{Cents: cents},
		Date:          date,
		IsRecurring:   r.IsRecurring,
		Received:      r.Received,
		PaymentMethod: r.PaymentMethod,
		Observations:  r.Observations,
		Attachment:    r.Attachment,
		PixData:       r.PixData,
		BankData:      r.BankData,
	}, nil
}

type transactionResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Account       string `json:"account"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amount_cents"`
	Date          string `json:"date"`
	IsRecurring   bool   `json:"is_recurring"`
	Received      bool   `json:"received"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Observations  string `json:"observations,omitempty"`
	Attachment    string `json:"attachment,omitempty"`
	PixData       string `json:"pix_data,omitempty"`
	BankData      string `json:"bank_data,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Type:          string(tx.Type),
		Category:      tx.Category,
		Account:       tx.Account,
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		AmountCents:   tx.Amount.Cents,
		Date:          tx.Date.String(),
		IsRecurring:   tx.IsRecurring,
		Received:      tx.Received,
		PaymentMethod: tx.PaymentMethod,
		Observations:  tx.Observations,
		Attachment:    tx.Attachment,
		PixData:       tx.PixData,
		BankData:      tx.BankData,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type setReceivedRequest struct {
	Received bool `json:"received"`
}

type budgetRequest struct {
	Category string `json:"category" binding:"required"`
	Year     int    `json:"year" binding:"required"`
	Month    int    `json:"month" binding:"required"`
	Limit    string `json:"limit" binding:"required"`
}

type budgetResponse struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	LimitCents int64  `json:"limit_cents"`
	SpentCents int64  `json:"spent_cents"`
	Over       bool   `json:"over"`
}

type goalRequest struct {
	Name    string `json:"name" binding:"required"`
	Target  string `json:"target" binding:"required"`
	DueDate string `json:"due_date"`
}

type goalSavedRequest struct {
	Saved string `json:"saved" binding:"required"`
}

type goalResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TargetCents int64  `json:"target_cents"`
	SavedCents  int64  `json:"saved_cents"`
	DueDate     string `json:"due_date,omitempty"`
}

func toGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:          g.ID,
		Name:        g.Name,
		TargetCents: g.TargetCents,
		SavedCents:  g.SavedCents,
	}
	if !g.DueDate.IsZero() {
		resp.DueDate = g.DueDate.String()
	}
	return resp
}

type categoryAmountResponse struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

type dashboardResponse struct {
	Year         int                      `json:"year"`
	Month        int                      `json:"month"`
	Income       string                   `json:"income"`
	IncomeCents  int64                    `json:"income_cents"`
	Expense      string                   `json:"expense"`
	ExpenseCents int64                    `json:"expense_cents"`
	Balance      string                   `json:"balance"`
	BalanceCents int64                    `json:"balance_cents"`
	ByCategory   []categoryAmountResponse `json:"by_category"`
}

func toDashboardResponse(s core.MonthSummary) dashboardResponse {
	byCat := make([]categoryAmountResponse, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		byCat = append(byCat, categoryAmountResponse{
			Name:        c.Name,
			Amount:      c.Amount.String(),
			AmountCents: c.Amount.Cents,
		})
	}
	balance := s.Balance()
	return dashboardResponse{
		Year:         s.Year,
		Month:        s.Month,
		Income:       s.Income.String(),
		IncomeCents:  s.Income.Cents,
		Expense:      s.Expense.String(),
		ExpenseCents: s.Expense.Cents,
		Balance:      balance.String(),
		BalanceCents: balance.Cents,
		ByCategory:   byCat,
	}
}

type refreshResponse struct {
	Created      int                   `json:"created"`
	Transactions []transactionResponse `json:"transactions"`
}
