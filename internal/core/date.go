package core

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical serialization of a Date.
const DateLayout = "2006-01-02"

// Date is a pure calendar date with no time-of-day or timezone component.
// All comparisons and storage go through the YYYY-MM-DD form so dates never
// shift across timezones.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// SameMonth reports whether d falls in the given calendar month.
func (d Date) SameMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
