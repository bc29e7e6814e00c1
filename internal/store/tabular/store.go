// Package tabular implements the store over whole-table persistence: every
// mutation loads the full table, changes it in memory and replaces the
// table. Table access goes through a TableIO so the same logic serves CSV
// directories, Google Sheets and in-memory tables.
package tabular

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"budgetr/internal/core"
	"budgetr/internal/store"

	"github.com/shopspring/decimal"
)

// Store serialises its own read-modify-write cycles. Writers in other
// processes are not coordinated with; the last write wins.
type Store struct {
	mu sync.Mutex
	io TableIO
}

var _ store.Store = (*Store)(nil)

func New(io TableIO) *Store {
	return &Store{io: io}
}

func (s *Store) load(ctx context.Context, name string) (*table, error) {
	records, err := s.io.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return newTable(name, records)
}

func (s *Store) save(ctx context.Context, t *table) error {
	if err := s.io.Save(ctx, t.name, t.records()); err != nil {
		return fmt.Errorf("save %s: %w", t.name, err)
	}
	slog.DebugContext(ctx, "Table saved", "table", t.name, "rows", len(t.rows))
	return nil
}

// Seed writes the category reference table when it is empty.
func (s *Store) Seed(ctx context.Context, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableCategories)
	if err != nil {
		return err
	}
	if len(t.rows) > 0 || len(categories) == 0 {
		return nil
	}
	for i, name := range categories {
		t.rows = append(t.rows, t.newRow(map[string]string{
			"categoryid": formatID(int64(i + 1)),
			"name":       name,
		}))
	}
	return s.save(ctx, t)
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.load(ctx, TableCategories)
	return err
}

func (s *Store) Close() error {
	if c, ok := s.io.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Users

func (s *Store) users(ctx context.Context) (*table, []core.User, error) {
	t, err := s.load(ctx, TableUsers)
	if err != nil {
		return nil, nil, err
	}
	users := make([]core.User, 0, len(t.rows))
	for _, r := range t.rows {
		u, err := decodeUser(t, r)
		if err != nil {
			return nil, nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, u)
	}
	return t, users, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, users, err := s.users(ctx)
	if err != nil {
		return core.User{}, err
	}
	for _, existing := range users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.User{}, store.ErrEmailTaken
		}
	}
	u.ID = core.NextID(users, func(x core.User) int64 { return x.ID })
	t.rows = append(t.rows, t.newRow(map[string]string{
		"userid":   formatID(u.ID),
		"name":     u.Name,
		"email":    u.Email,
		"password": u.PasswordHash,
	}))
	if err := s.save(ctx, t); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	_, users, err := s.users(ctx)
	if err != nil {
		return core.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	_, users, err := s.users(ctx)
	if err != nil {
		return core.User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

// updateUser applies fn to the row of the given user and saves the table.
func (s *Store) updateUser(ctx context.Context, id int64, fn func(t *table, row []string) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableUsers)
	if err != nil {
		return err
	}
	found := false
	for i, r := range t.rows {
		rowID, err := t.id(r, "userid")
		if err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		if rowID == id {
			t.rows[i] = fn(t, r)
			found = true
		}
	}
	if !found {
		return store.ErrNotFound
	}
	return s.save(ctx, t)
}

func (s *Store) UpdateUserProfile(ctx context.Context, id int64, name, email string) error {
	return s.updateUser(ctx, id, func(t *table, row []string) []string {
		row = t.set(row, "name", name)
		return t.set(row, "email", email)
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.updateUser(ctx, id, func(t *table, row []string) []string {
		return t.set(row, "password", passwordHash)
	})
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableUsers)
	if err != nil {
		return err
	}
	kept := t.rows[:0]
	for _, r := range t.rows {
		rowID, err := t.id(r, "userid")
		if err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		if rowID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(t.rows) {
		return store.ErrNotFound
	}
	t.rows = kept
	return s.save(ctx, t)
}

// Categories

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	t, err := s.load(ctx, TableCategories)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(t.rows))
	for _, r := range t.rows {
		c, err := decodeCategory(t, r)
		if err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Transactions

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableTransactions)
	if err != nil {
		return core.Transaction{}, err
	}
	id, err := t.nextID("transactionid")
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = id
	t.rows = append(t.rows, t.newRow(encodeTransaction(tx)))
	if err := s.save(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	t, err := s.load(ctx, TableTransactions)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, r := range t.rows {
		tx, err := decodeTransaction(t, r)
		if err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Budgets

func (s *Store) ListMonthlyBudgets(ctx context.Context, userID int64) ([]core.MonthlyBudget, error) {
	t, err := s.load(ctx, TableMonthlyBudgets)
	if err != nil {
		return nil, err
	}
	var out []core.MonthlyBudget
	for _, r := range t.rows {
		b, err := decodeMonthlyBudget(t, r)
		if err != nil {
			return nil, fmt.Errorf("decode monthly budget: %w", err)
		}
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) UpsertMonthlyBudget(ctx context.Context, userID int64, month core.Date, total decimal.Decimal) (core.MonthlyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableMonthlyBudgets)
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	for i, r := range t.rows {
		b, err := decodeMonthlyBudget(t, r)
		if err != nil {
			return core.MonthlyBudget{}, fmt.Errorf("decode monthly budget: %w", err)
		}
		if b.UserID == userID && b.Month.Equal(month.Time) {
			t.rows[i] = t.set(r, "totalbudget", total.String())
			b.Total = total
			if err := s.save(ctx, t); err != nil {
				return core.MonthlyBudget{}, err
			}
			return b, nil
		}
	}
	id, err := t.nextID("budgetid")
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	b := core.MonthlyBudget{ID: id, UserID: userID, Total: total, Month: month}
	t.rows = append(t.rows, t.newRow(map[string]string{
		"budgetid":    formatID(b.ID),
		"userid":      formatID(b.UserID),
		"totalbudget": total.String(),
		"budgetmonth": month.String(),
	}))
	if err := s.save(ctx, t); err != nil {
		return core.MonthlyBudget{}, err
	}
	return b, nil
}

func (s *Store) ListCategoricalBudgets(ctx context.Context, userID int64) ([]core.CategoricalBudget, error) {
	t, err := s.load(ctx, TableCategoricalBudgets)
	if err != nil {
		return nil, err
	}
	var out []core.CategoricalBudget
	for _, r := range t.rows {
		b, err := decodeCategoricalBudget(t, r)
		if err != nil {
			return nil, fmt.Errorf("decode category budget: %w", err)
		}
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) UpsertCategoricalBudget(ctx context.Context, userID int64, category string, amount decimal.Decimal) (core.CategoricalBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, TableCategoricalBudgets)
	if err != nil {
		return core.CategoricalBudget{}, err
	}
	for i, r := range t.rows {
		b, err := decodeCategoricalBudget(t, r)
		if err != nil {
			return core.CategoricalBudget{}, fmt.Errorf("decode category budget: %w", err)
		}
		if b.UserID == userID && b.Category == category {
			t.rows[i] = t.set(r, "categorybudget", amount.String())
			b.Amount = amount
			if err := s.save(ctx, t); err != nil {
				return core.CategoricalBudget{}, err
			}
			return b, nil
		}
	}
	id, err := t.nextID("catbudgetid")
	if err != nil {
		return core.CategoricalBudget{}, err
	}
	b := core.CategoricalBudget{ID: id, UserID: userID, Category: category, Amount: amount}
	t.rows = append(t.rows, t.newRow(map[string]string{
		"catbudgetid":    formatID(b.ID),
		"userid":         formatID(b.UserID),
		"categoryname":   category,
		"categorybudget": amount.String(),
	}))
	if err := s.save(ctx, t); err != nil {
		return core.CategoricalBudget{}, err
	}
	return b, nil
}
