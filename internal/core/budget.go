package core

import (
	"errors"
	"strings"
)

// Budget caps spending for one category in one calendar month.
type Budget struct {
	ID         string
	Category   string
	Year       int
	Month      int // 1-12
	LimitCents int64
}

// Goal is a savings target the user works toward over time.
type Goal struct {
	ID          string
	Name        string
	TargetCents int64
	SavedCents  int64
	DueDate     Date // optional, zero when open-ended
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.New("invalid month")
	}
	if b.LimitCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("empty goal name")
	}
	if g.TargetCents <= 0 {
		return ErrInvalidAmount
	}
	if g.SavedCents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
