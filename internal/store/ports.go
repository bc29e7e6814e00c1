// Package store defines the storage capabilities the application depends on.
// Every backend (tabular files, Google Sheets, SQL databases) implements the
// same contract so handlers only ever see these interfaces.
package store

import (
	"context"
	"errors"

	"budgetr/internal/core"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore manages accounts. Deleting a user leaves its transactions and
// budgets in place.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	FindUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateUserProfile(ctx context.Context, id int64, name, email string) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// CategoryReader lists the static category reference data.
type CategoryReader interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// TransactionStore appends and lists transactions. AddTransaction assigns
// the id (current maximum plus one).
type TransactionStore interface {
	AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
}

// BudgetStore lists and upserts budgets. Monthly budgets are keyed by
// (month, user) and category budgets by (category, user).
type BudgetStore interface {
	ListMonthlyBudgets(ctx context.Context, userID int64) ([]core.MonthlyBudget, error)
	UpsertMonthlyBudget(ctx context.Context, userID int64, month core.Date, total decimal.Decimal) (core.MonthlyBudget, error)
	ListCategoricalBudgets(ctx context.Context, userID int64) ([]core.CategoricalBudget, error)
	UpsertCategoricalBudget(ctx context.Context, userID int64, category string, amount decimal.Decimal) (core.CategoricalBudget, error)
}

// Store is the full capability set selected at startup.
type Store interface {
	UserStore
	CategoryReader
	TransactionStore
	BudgetStore
	Ping(ctx context.Context) error
	Close() error
}
