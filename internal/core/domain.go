package core

import (
	"errors"
	"time"
)

const (
	Assets        Category = "assets"
	Liabilities   Category = "liabilities"
	Equity        Category = "equity"
	Revenue       Category = "revenue"
	Expenses      Category = "expenses"
	Uncategorized Category = "uncategorized"
)

const (
	SourceEmail    SourceKind = "email"
	SourceDocument SourceKind = "document"
)

// UnknownSubject is recorded when the originating message carries no subject line.
const UnknownSubject = "Unknown"

type (
	// Category is one of the six accounting buckets an entry can land in.
	Category string

	// SourceKind records where the text that produced an entry came from.
	SourceKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Entry is a single classified amount discovered in a message body or
	// attachment text. Entries are immutable once appended to a ledger.
	Entry struct {
		Amount     Money
		Source     SourceKind
		OccurredOn Date
		Subject    string
		Category   Category
	}
)

// Categories lists all buckets in their fixed report order.
var Categories = []Category{Assets, Liabilities, Equity, Revenue, Expenses, Uncategorized}

var (
	ErrMalformedAmount = errors.New("malformed monetary amount")
	ErrInvalidSource   = errors.New("invalid source kind")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (s SourceKind) Validate() error {
	switch s {
	case SourceEmail, SourceDocument:
		return nil
	}
	return ErrInvalidSource
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (e Entry) Validate() error {
	if err := e.Source.Validate(); err != nil {
		return err
	}
	if e.OccurredOn.IsZero() {
		return errors.New("entry date cannot be zero")
	}
	if e.Subject == "" {
		return errors.New("entry subject cannot be empty")
	}
	if !e.Category.Valid() {
		return errors.New("unknown category: " + string(e.Category))
	}
	return nil
}
