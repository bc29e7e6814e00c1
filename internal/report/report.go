// Package report renders a month of spending as a downloadable XLSX
// workbook or PDF document.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"budgetr/internal/core"

	"github.com/shopspring/decimal"
)

// Format is an export file format.
type Format string

const (
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" and "pdf", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case XLSX, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// CategoryTotal is the month's spending in one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Monthly is everything a monthly report shows.
type Monthly struct {
	Email        string
	Year         int
	Month        int
	Transactions []core.Transaction
	Totals       []CategoryTotal
	Spent        decimal.Decimal
	Overview     core.BudgetOverview
	GeneratedAt  time.Time
}

// NewMonthly orders the transactions by date then id and derives the per
// category totals, largest first.
func NewMonthly(email string, year, month int, txs []core.Transaction, overview core.BudgetOverview) Monthly {
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date.Time) {
			return sorted[i].Date.Before(sorted[j].Date.Time)
		}
		return sorted[i].ID < sorted[j].ID
	})

	byCat := map[string]decimal.Decimal{}
	spent := decimal.Zero
	for _, tx := range sorted {
		byCat[tx.Category] = byCat[tx.Category].Add(tx.Amount)
		spent = spent.Add(tx.Amount)
	}
	totals := make([]CategoryTotal, 0, len(byCat))
	for cat, amt := range byCat {
		totals = append(totals, CategoryTotal{Category: cat, Amount: amt})
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Amount.Cmp(totals[j].Amount); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})

	return Monthly{
		Email:        email,
		Year:         year,
		Month:        month,
		Transactions: sorted,
		Totals:       totals,
		Spent:        spent,
		Overview:     overview,
		GeneratedAt:  time.Now().UTC(),
	}
}

// Period renders YYYY-MM.
func (m Monthly) Period() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Filename is the suggested download name.
func (m Monthly) Filename(f Format) string {
	return fmt.Sprintf("budgetr-%s.%s", m.Period(), f)
}

// Write renders the report in the requested format.
func Write(w io.Writer, f Format, m Monthly) error {
	switch f {
	case XLSX:
		return WriteXLSX(w, m)
	case PDF:
		return WritePDF(w, m)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
