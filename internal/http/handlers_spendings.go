package http

import (
	"net/http"
	"sync/atomic"

	"budgetr/internal/auth"
	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/services"

	"github.com/shopspring/decimal"
)

// handleTransactions lists the selected month's transactions on GET and
// records a new one on POST.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleTransactionList(w, r)
	case http.MethodPost:
		s.handleAddTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	sel := ParseMonthParams(r.URL.Query(), s.now())
	id := auth.IdentityFromContext(r.Context())

	var txs []core.Transaction
	if sel.Selected() {
		var err error
		txs, err = s.spendings.MonthTransactions(r.Context(), id, sel.Year, sel.Month)
		if err != nil {
			s.serverError(w, r, "List transactions error", err, applog.OpList,
				applog.FieldYear, sel.Year, applog.FieldMonth, sel.Month)
			return
		}
	}

	resp, err := s.renderFragment("transaction_list", struct {
		Selected     MonthParams
		Transactions []core.Transaction
		Total        string
	}{
		Selected:     sel,
		Transactions: txs,
		Total:        core.Dollars(core.Sum(txs, func(tx core.Transaction) decimal.Decimal { return tx.Amount })),
	})
	if err != nil {
		s.serverError(w, r, "Transaction list render failed", err, applog.OpRender)
		return
	}
	resp.Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := services.TransactionForm{
		Date:        FormValue(r, "date"),
		Amount:      FormValue(r, "amount"),
		Category:    FormValue(r, "category"),
		Description: FormValue(r, "description"),
	}
	st, err := s.spendings.AddTransaction(r.Context(), auth.IdentityFromContext(r.Context()), form)
	if err != nil {
		s.serverError(w, r, "Failed to save transaction", err, applog.OpAppend)
		return
	}

	resp := StatusResponse(st)
	if st.OK() {
		atomic.AddInt64(&s.appMetrics.transactions, 1)
		if d, err := core.ParseDate(form.Date); err == nil {
			resp.TriggerTransactionAdded(d.Year(), d.Month())
		}
		resp.TriggerFormReset()
	}
	resp.Write(w)
}

// handleBudgetOverview renders the budget overview partial for the selected
// month. It is re-requested whenever a budget:changed event fires.
func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	sel := ParseMonthParams(r.URL.Query(), s.now())

	ov, err := s.spendings.BudgetOverview(r.Context(), auth.IdentityFromContext(r.Context()), sel.Year, sel.Month)
	if err != nil {
		s.serverError(w, r, "Budget overview error", err, applog.OpRead,
			applog.FieldYear, sel.Year, applog.FieldMonth, sel.Month)
		return
	}

	resp, err := s.renderFragment("budget_overview", ov)
	if err != nil {
		s.serverError(w, r, "Budget overview render failed", err, applog.OpRender)
		return
	}
	resp.Write(w)
}

func (s *Server) handleUpdateTotalBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sel := ParseMonthParams(r.PostForm, s.now())

	st, err := s.spendings.UpdateTotalBudget(r.Context(), auth.IdentityFromContext(r.Context()),
		sel.Year, sel.Month, FormValue(r, "total"))
	if err != nil {
		s.serverError(w, r, "Failed to update total budget", err, applog.OpUpsert)
		return
	}
	s.budgetResponse(st, sel).Write(w)
}

func (s *Server) handleUpdateCategoryBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sel := ParseMonthParams(r.PostForm, s.now())

	st, err := s.spendings.UpdateCategoryBudget(r.Context(), auth.IdentityFromContext(r.Context()),
		sel.Year, sel.Month, FormValue(r, "category"), FormValue(r, "amount"))
	if err != nil {
		s.serverError(w, r, "Failed to update category budget", err, applog.OpUpsert)
		return
	}
	s.budgetResponse(st, sel).Write(w)
}

// budgetResponse announces a successful upsert so the overview re-fetches.
func (s *Server) budgetResponse(st core.Status, sel MonthParams) *HTMXResponseBuilder {
	resp := StatusResponse(st)
	if st.OK() {
		atomic.AddInt64(&s.appMetrics.budgetUpdates, 1)
		resp.TriggerBudgetChanged(sel.Year, sel.Month)
	}
	return resp
}
