package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
	}

	// Category is static reference data used to populate the category pickers.
	Category struct {
		ID   int64
		Name string
	}

	// Transaction references its category by name, not by id.
	Transaction struct {
		ID          int64
		UserID      int64
		Date        Date
		Category    string
		Amount      decimal.Decimal
		Description string
	}

	MonthlyBudget struct {
		ID     int64
		UserID int64
		Total  decimal.Decimal
		Month  Date // always the first day of the month
	}

	CategoricalBudget struct {
		ID       int64
		UserID   int64
		Category string
		Amount   decimal.Decimal
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MonthStart returns the first day of the given month.
func MonthStart(year, month int) (Date, error) {
	if month < 1 || month > 12 || year < 1 {
		return Date{}, fmt.Errorf("%w: %d-%d", ErrInvalidMonth, year, month)
	}
	return NewDate(year, month, 1), nil
}

// ParseDate accepts a plain date, a date with a midnight time part as written
// by the tabular stores, or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range []string{DateLayout, DateTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
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

// SameMonth reports whether d falls in the given year and month.
func (d Date) SameMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// Value implements driver.Valuer so dates are stored as YYYY-MM-DD.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for TEXT (SQLite) and DATE (PostgreSQL) columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

// NextID assigns ids as the current maximum plus one, starting at 1.
func NextID[T any](rows []T, id func(T) int64) int64 {
	var max int64
	for _, r := range rows {
		if v := id(r); v > max {
			max = v
		}
	}
	return max + 1
}

// Identity is what a session knows about the signed-in user.
type Identity struct {
	UserID int64
	Email  string
}

// Authenticated reports whether a user id is present.
func (i Identity) Authenticated() bool {
	return i.UserID > 0
}
