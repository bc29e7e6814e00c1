package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NoCategoriesPlaceholder is the single table row shown when a user has no
// category budgets.
const NoCategoriesPlaceholder = "No categories found"

// CategoryRow is one line of the category budget table.
type CategoryRow struct {
	Category string
	Amount   decimal.Decimal
}

// BudgetOverview is the monthly budget picture for one user.
type BudgetOverview struct {
	Year        int
	Month       int // 1-12, zero when no month is selected
	Total       decimal.Decimal
	Categories  []CategoryRow
	Unallocated decimal.Decimal
}

// ComputeOverview picks the user's budget for the month and subtracts every
// category budget of that user. Rows belonging to other users are ignored.
// A zero year or month yields an empty overview.
func ComputeOverview(userID int64, year, month int, monthly []MonthlyBudget, categorical []CategoricalBudget) BudgetOverview {
	start, err := MonthStart(year, month)
	if err != nil {
		return BudgetOverview{}
	}
	ov := BudgetOverview{Year: year, Month: month, Total: decimal.Zero}
	for _, b := range monthly {
		if b.UserID == userID && b.Month.Equal(start.Time) {
			ov.Total = b.Total
			break
		}
	}
	allocated := decimal.Zero
	for _, b := range categorical {
		if b.UserID != userID {
			continue
		}
		ov.Categories = append(ov.Categories, CategoryRow{Category: b.Category, Amount: b.Amount})
		allocated = allocated.Add(b.Amount)
	}
	ov.Unallocated = ov.Total.Sub(allocated)
	return ov
}

// Empty reports whether no month was selected.
func (o BudgetOverview) Empty() bool {
	return o.Month == 0
}

// Headline renders "Current Budget for YYYY-MM: $T".
func (o BudgetOverview) Headline() string {
	if o.Empty() {
		return ""
	}
	return fmt.Sprintf("Current Budget for %04d-%02d: %s", o.Year, o.Month, Dollars(o.Total))
}

// Rows returns the category table, with a placeholder row when empty.
func (o BudgetOverview) Rows() []CategoryRow {
	if o.Empty() {
		return nil
	}
	if len(o.Categories) == 0 {
		return []CategoryRow{{Category: NoCategoriesPlaceholder, Amount: decimal.Zero}}
	}
	return o.Categories
}

// UnallocatedMessage branches on the exact sign of the remainder.
func (o BudgetOverview) UnallocatedMessage() string {
	if o.Empty() {
		return ""
	}
	switch o.Unallocated.Sign() {
	case -1:
		return "Exceeding current monthly budget by " + Dollars(o.Unallocated.Neg())
	case 1:
		return "Remaining monthly budget of " + Dollars(o.Unallocated)
	default:
		return Dollars(o.Total) + " Budget Fully Allocated"
	}
}
