package services

import (
	"context"
	"fmt"
	"strings"

	"budgetr/internal/core"
	"budgetr/internal/events"
	applog "budgetr/internal/log"
	"budgetr/internal/store"

	"golang.org/x/sync/errgroup"
)

// SpendingsStore is the storage the record and dashboard pages need.
type SpendingsStore interface {
	store.CategoryReader
	store.TransactionStore
	store.BudgetStore
}

// TransactionForm is the raw record-page input.
type TransactionForm struct {
	Date        string
	Amount      string
	Category    string
	Description string
}

// Spendings records transactions and maintains the monthly and per-category
// budgets of the session user.
type Spendings struct {
	store     SpendingsStore
	publisher events.Publisher
}

func NewSpendings(st SpendingsStore, publisher events.Publisher) *Spendings {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Spendings{store: st, publisher: publisher}
}

// Categories returns the category names for the pickers.
func (s *Spendings) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names, nil
}

// AddTransaction validates the form and appends one transaction for the
// session user.
func (s *Spendings) AddTransaction(ctx context.Context, id core.Identity, form TransactionForm) (core.Status, error) {
	dateIn := strings.TrimSpace(form.Date)
	amountIn := strings.TrimSpace(form.Amount)
	category := strings.TrimSpace(form.Category)

	if dateIn == "" {
		return core.Missing(core.MsgSelectDate), nil
	}
	amount, amountErr := core.ParseAmount(amountIn)
	if amountIn == "" || (amountErr == nil && amount.IsZero()) {
		return core.Missing(core.MsgEnterAmount), nil
	}
	if category == "" {
		return core.Missing(core.MsgSelectCategory), nil
	}
	if amountErr != nil {
		return core.Invalid(core.MsgInvalidAmount), nil
	}
	date, err := core.ParseDate(dateIn)
	if err != nil {
		return core.Invalid(core.MsgInvalidDate), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	tx, err := s.store.AddTransaction(ctx, core.Transaction{
		UserID:      id.UserID,
		Date:        date,
		Category:    category,
		Amount:      amount,
		Description: strings.TrimSpace(form.Description),
	})
	if err != nil {
		return core.Status{}, fmt.Errorf("add transaction: %w", err)
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogTransactionAdded(ctx, tx.UserID, tx.ID, tx.Category, core.FormatAmount(tx.Amount))
	publish(ctx, s.publisher, events.NewTransactionAdded(tx))

	return core.Success(fmt.Sprintf(core.MsgTransactionAdded, tx.Date, core.FormatAmount(tx.Amount), tx.Category)), nil
}

// BudgetOverview computes the session user's budget picture for a month. A
// zero year or month, or a missing session, yields an empty overview.
func (s *Spendings) BudgetOverview(ctx context.Context, id core.Identity, year, month int) (core.BudgetOverview, error) {
	if year == 0 || month == 0 || !id.Authenticated() {
		return core.BudgetOverview{}, nil
	}

	var (
		monthly     []core.MonthlyBudget
		categorical []core.CategoricalBudget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthly, err = s.store.ListMonthlyBudgets(gctx, id.UserID)
		if err != nil {
			return fmt.Errorf("list monthly budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categorical, err = s.store.ListCategoricalBudgets(gctx, id.UserID)
		if err != nil {
			return fmt.Errorf("list category budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.BudgetOverview{}, err
	}

	return core.ComputeOverview(id.UserID, year, month, monthly, categorical), nil
}

// UpdateTotalBudget sets the budget for the first day of the given month.
func (s *Spendings) UpdateTotalBudget(ctx context.Context, id core.Identity, year, month int, amountIn string) (core.Status, error) {
	amountIn = strings.TrimSpace(amountIn)
	if amountIn == "" {
		return core.Missing(core.MsgEnterTotalBudget), nil
	}
	start, err := core.MonthStart(year, month)
	if err != nil {
		return core.Invalid(core.MsgInvalidTotalBudget), nil
	}
	amount, err := core.ParseAmount(amountIn)
	if err != nil {
		return core.Invalid(core.MsgInvalidTotalBudget), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	if _, err := s.store.UpsertMonthlyBudget(ctx, id.UserID, start, amount); err != nil {
		return core.Status{}, fmt.Errorf("upsert monthly budget: %w", err)
	}
	s.budgetChanged(ctx, id.UserID, year, month, "")
	return core.Success(core.MsgTotalBudgetUpdated), nil
}

// UpdateCategoryBudget sets the user's budget for one category. The month is
// only carried into the change notification.
func (s *Spendings) UpdateCategoryBudget(ctx context.Context, id core.Identity, year, month int, category, amountIn string) (core.Status, error) {
	category = strings.TrimSpace(category)
	amountIn = strings.TrimSpace(amountIn)
	if category == "" {
		return core.Missing(core.MsgSelectCategory), nil
	}
	if amountIn == "" {
		return core.Missing(core.MsgEnterBudgetAmount), nil
	}
	amount, err := core.ParseAmount(amountIn)
	if err != nil {
		return core.Invalid(core.MsgInvalidBudgetAmount), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	if _, err := s.store.UpsertCategoricalBudget(ctx, id.UserID, category, amount); err != nil {
		return core.Status{}, fmt.Errorf("upsert category budget: %w", err)
	}
	s.budgetChanged(ctx, id.UserID, year, month, category)
	return core.Success(core.MsgCategoryBudgetSaved), nil
}

func (s *Spendings) budgetChanged(ctx context.Context, userID int64, year, month int, category string) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogBudgetChanged(ctx, userID, year, month, category)
	publish(ctx, s.publisher, events.NewBudgetChanged(userID, year, month, category))
}

// MonthTransactions returns the session user's transactions dated in the
// given month, in id order.
func (s *Spendings) MonthTransactions(ctx context.Context, id core.Identity, year, month int) ([]core.Transaction, error) {
	if !id.Authenticated() {
		return nil, nil
	}
	all, err := s.store.ListTransactions(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var out []core.Transaction
	for _, tx := range all {
		if tx.UserID == id.UserID && tx.Date.SameMonth(year, month) {
			out = append(out, tx)
		}
	}
	return out, nil
}
