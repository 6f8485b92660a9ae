package core

import (
	"errors"
	"strings"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	// TxType distinguishes money coming in from money going out.
	TxType string

	// Transaction is the single entity the tracker revolves around.
	// Category and Account are referenced by name; they are never mutated
	// by the recurring engine.
	Transaction struct {
		ID          string
		Type        TxType
		Category    string
		Account     string
		Description string
		Amount      Money
		Date        Date
		IsRecurring bool
		Received    bool

		// Optional metadata, copied verbatim into generated recurring
		// instances and never interpreted by the engine.
		PaymentMethod string
		Observations  string
		Attachment    string
		PixData       string
		BankData      string
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyAccount     = errors.New("empty account")
	ErrNotFound         = errors.New("not found")
)

func (t TxType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(tx.Account) == "" {
		return ErrEmptyAccount
	}
	return nil
}
