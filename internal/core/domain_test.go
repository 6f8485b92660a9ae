package core

import (
	"errors"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Category:    "Lazer",
		Account:     "Nubank",
		Description: "Netflix",
		Amount:      Money{Cents: 3990},
		Date:        NewDate(2024, 1, 31),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "bad type", mutate: func(tx *Transaction) { tx.Type = "transfer" }, wantErr: ErrInvalidType},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = Date{} }},
		{name: "empty description", mutate: func(tx *Transaction) { tx.Description = "  " }, wantErr: ErrEmptyDescription},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, wantErr: ErrInvalidAmount},
		{name: "empty category", mutate: func(tx *Transaction) { tx.Category = "" }, wantErr: ErrEmptyCategory},
		{name: "empty account", mutate: func(tx *Transaction) { tx.Account = "" }, wantErr: ErrEmptyAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.name == "valid" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Errorf("ParseDate = %v, want 2024-02-29", d)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %q, want 2024-02-29", d.String())
	}

	if _, err := ParseDate("31/01/2024"); err == nil {
		t.Error("ParseDate accepted non-canonical layout")
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("ParseDate accepted empty string")
	}
}

func TestDateSameMonth(t *testing.T) {
	d := NewDate(2024, 7, 15)
	if !d.SameMonth(2024, 7) {
		t.Error("SameMonth(2024, 7) = false, want true")
	}
	if d.SameMonth(2024, 6) || d.SameMonth(2023, 7) {
		t.Error("SameMonth matched a different month")
	}
}
