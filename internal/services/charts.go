package services

import (
	"context"
	"fmt"

	"budgetr/internal/chart"
	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/store"
)

// Charts builds the dashboard charts from the session user's transactions.
type Charts struct {
	transactions store.TransactionStore
}

func NewCharts(transactions store.TransactionStore) *Charts {
	return &Charts{transactions: transactions}
}

// Build renders the chart of the given kind for one month. Without a session
// the chart keeps its titles but carries no data.
func (c *Charts) Build(ctx context.Context, id core.Identity, kind string, year, month int) (chart.Chart, error) {
	k := chart.ParseKind(kind)
	if !id.Authenticated() {
		return chart.Build(k, nil, year, month), nil
	}

	txs, err := c.transactions.ListTransactions(ctx, id.UserID)
	if err != nil {
		return chart.Chart{}, fmt.Errorf("list transactions: %w", err)
	}
	var owned []core.Transaction
	for _, tx := range txs {
		if tx.UserID == id.UserID {
			owned = append(owned, tx)
		}
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentCharts).DebugContext(ctx, "Building chart",
		applog.FieldUserID, id.UserID,
		"kind", string(k),
		"transactions", len(owned))
	return chart.Build(k, owned, year, month), nil
}
