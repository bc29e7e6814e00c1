package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"budgetr/internal/core"

	"github.com/shopspring/decimal"
)

// Table names and their column layout. Column names are the contract with
// existing data files, so they are matched by name rather than position.
const (
	TableUsers              = "users"
	TableCategories         = "categories"
	TableTransactions       = "transactions"
	TableMonthlyBudgets     = "monthlybudgets"
	TableCategoricalBudgets = "categoricalbudgets"
)

var headers = map[string][]string{
	TableUsers:              {"userid", "name", "email", "password"},
	TableCategories:         {"categoryid", "name"},
	TableTransactions:       {"transactionid", "userid", "date", "categoryname", "amount", "description"},
	TableMonthlyBudgets:     {"budgetid", "userid", "totalbudget", "budgetmonth"},
	TableCategoricalBudgets: {"catbudgetid", "userid", "categoryname", "categorybudget"},
}

// Tables returns every table name in dependency order.
func Tables() []string {
	return []string{TableUsers, TableCategories, TableTransactions, TableMonthlyBudgets, TableCategoricalBudgets}
}

// Header returns the canonical column list of a table.
func Header(name string) []string {
	return append([]string(nil), headers[name]...)
}

type table struct {
	name   string
	header []string
	index  map[string]int
	rows   [][]string
}

func newTable(name string, records [][]string) (*table, error) {
	want, ok := headers[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	t := &table{name: name}
	if len(records) == 0 {
		t.header = append([]string(nil), want...)
	} else {
		t.header = make([]string, len(records[0]))
		for i, h := range records[0] {
			t.header[i] = strings.ToLower(strings.TrimSpace(h))
		}
	}
	t.index = make(map[string]int, len(t.header))
	for i, h := range t.header {
		t.index[h] = i
	}
	for _, col := range want {
		if _, ok := t.index[col]; !ok {
			return nil, fmt.Errorf("table %s: missing column %q; got header=%v", name, col, t.header)
		}
	}
	if len(records) > 1 {
		for _, r := range records[1:] {
			if blank(r) {
				continue
			}
			t.rows = append(t.rows, r)
		}
	}
	return t, nil
}

func (t *table) records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.header)
	return append(out, t.rows...)
}

func (t *table) get(row []string, col string) string {
	i := t.index[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) set(row []string, col, value string) []string {
	i := t.index[col]
	for len(row) <= i {
		row = append(row, "")
	}
	row[i] = value
	return row
}

func (t *table) newRow(values map[string]string) []string {
	row := make([]string, len(t.header))
	for col, v := range values {
		row = t.set(row, col, v)
	}
	return row
}

func (t *table) id(row []string, col string) (int64, error) {
	return parseID(t.get(row, col))
}

func (t *table) nextID(col string) (int64, error) {
	ids := make([]int64, 0, len(t.rows))
	for _, r := range t.rows {
		id, err := t.id(r, col)
		if err != nil {
			return 0, fmt.Errorf("table %s: %w", t.name, err)
		}
		ids = append(ids, id)
	}
	return core.NextID(ids, func(v int64) int64 { return v }), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseID accepts "3" and the "3.0" form spreadsheets and dataframes emit.
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty id")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int64(f), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseStoredAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func decodeUser(t *table, row []string) (core.User, error) {
	id, err := t.id(row, "userid")
	if err != nil {
		return core.User{}, err
	}
	return core.User{
		ID:           id,
		Name:         t.get(row, "name"),
		Email:        t.get(row, "email"),
		PasswordHash: t.get(row, "password"),
	}, nil
}

func decodeCategory(t *table, row []string) (core.Category, error) {
	id, err := t.id(row, "categoryid")
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{ID: id, Name: t.get(row, "name")}, nil
}

func decodeTransaction(t *table, row []string) (core.Transaction, error) {
	id, err := t.id(row, "transactionid")
	if err != nil {
		return core.Transaction{}, err
	}
	userID, err := t.id(row, "userid")
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(t.get(row, "date"))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseStoredAmount(t.get(row, "amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          id,
		UserID:      userID,
		Date:        date,
		Category:    t.get(row, "categoryname"),
		Amount:      amount,
		Description: t.get(row, "description"),
	}, nil
}

func encodeTransaction(tx core.Transaction) map[string]string {
	return map[string]string{
		"transactionid": formatID(tx.ID),
		"userid":        formatID(tx.UserID),
		"date":          tx.Date.Format(core.DateTimeLayout),
		"categoryname":  tx.Category,
		"amount":        tx.Amount.String(),
		"description":   tx.Description,
	}
}

func decodeMonthlyBudget(t *table, row []string) (core.MonthlyBudget, error) {
	id, err := t.id(row, "budgetid")
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	userID, err := t.id(row, "userid")
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	month, err := core.ParseDate(t.get(row, "budgetmonth"))
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	total, err := parseStoredAmount(t.get(row, "totalbudget"))
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	return core.MonthlyBudget{ID: id, UserID: userID, Total: total, Month: month}, nil
}

func decodeCategoricalBudget(t *table, row []string) (core.CategoricalBudget, error) {
	id, err := t.id(row, "catbudgetid")
	if err != nil {
		return core.CategoricalBudget{}, err
	}
	userID, err := t.id(row, "userid")
	if err != nil {
		return core.CategoricalBudget{}, err
	}
	amount, err := parseStoredAmount(t.get(row, "categorybudget"))
	if err != nil {
		return core.CategoricalBudget{}, err
	}
	return core.CategoricalBudget{
		ID:       id,
		UserID:   userID,
		Category: t.get(row, "categoryname"),
		Amount:   amount,
	}, nil
}
