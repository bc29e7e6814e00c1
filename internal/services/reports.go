package services

import (
	"context"
	"fmt"

	"budgetr/internal/core"
	"budgetr/internal/report"

	"golang.org/x/sync/errgroup"
)

// MonthlyReport gathers the month's transactions and budget overview for the
// export endpoint.
func (s *Spendings) MonthlyReport(ctx context.Context, id core.Identity, year, month int) (report.Monthly, error) {
	if _, err := core.MonthStart(year, month); err != nil {
		return report.Monthly{}, err
	}
	if !id.Authenticated() {
		return report.Monthly{}, fmt.Errorf("monthly report: %s", core.MsgNotLoggedIn)
	}

	var (
		txs      []core.Transaction
		overview core.BudgetOverview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.MonthTransactions(gctx, id, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = s.BudgetOverview(gctx, id, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Monthly{}, err
	}
	return report.NewMonthly(id.Email, year, month, txs, overview), nil
}
