package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is one immutable entry in the append-only ledger.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Category    string // raw label as entered; match via NormalizeCategory
		Amount      Money
		Type        TransactionType
		Recurring   bool
	}

	// TransactionInput is a transaction before the ledger assigned its ID.
	TransactionInput struct {
		Date        Date
		Description string
		Category    string
		Amount      Money
		Type        TransactionType
		Recurring   bool
	}

	// Budget is the per-category ceiling with its cached running total.
	// Spent caches the ledger sum and may lag it after a partial write;
	// reconciliation recomputes it from the ledger.
	Budget struct {
		Category Category
		Limit    Money
		Spent    Money
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("transaction type must be income or expense")
	ErrInvalidLimit     = errors.New("budget limit must be positive")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// MonthLabel returns the three-letter month abbreviation (Jan..Dec).
func (d Date) MonthLabel() string {
	return d.Format("Jan")
}

// YearLabel returns the four-digit year.
func (d Date) YearLabel() string {
	return d.Format("2006")
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (in TransactionInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.Type.Validate(); err != nil {
		return err
	}
	if _, err := NormalizeCategory(in.Category); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Category.Key == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
