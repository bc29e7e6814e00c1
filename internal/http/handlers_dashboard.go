package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"budgetr/internal/auth"
	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/report"
)

// handleChart returns the chart description for the selected month as JSON.
// The dashboard script hands it to Chart.js.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	q := r.URL.Query()
	sel := ParseMonthParams(q, s.now())
	if _, err := core.MonthStart(sel.Year, sel.Month); err != nil {
		BadRequestError("Please select a month").Write(w)
		return
	}

	c, err := s.charts.Build(r.Context(), auth.IdentityFromContext(r.Context()), q.Get("kind"), sel.Year, sel.Month)
	if err != nil {
		s.serverError(w, r, "Chart build failed", err, applog.OpRead,
			applog.FieldYear, sel.Year, applog.FieldMonth, sel.Month)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Chart encode failed", applog.FieldError, err)
	}
}

// handleExport streams the monthly report as an XLSX or PDF attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := auth.IdentityFromContext(r.Context())
	if !id.Authenticated() {
		StatusResponse(core.NotLoggedIn()).Write(w)
		return
	}

	q := r.URL.Query()
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		BadRequestError("Unsupported export format").Write(w)
		return
	}
	sel := ParseMonthParams(q, s.now())
	if _, err := core.MonthStart(sel.Year, sel.Month); err != nil {
		BadRequestError("Please select a month").Write(w)
		return
	}

	m, err := s.spendings.MonthlyReport(r.Context(), id, sel.Year, sel.Month)
	if err != nil {
		s.serverError(w, r, "Monthly report failed", err, applog.OpExport,
			applog.FieldYear, sel.Year, applog.FieldMonth, sel.Month)
		return
	}
	m.GeneratedAt = s.now()

	var buf bytes.Buffer
	if err := report.Write(&buf, format, m); err != nil {
		s.serverError(w, r, "Report rendering failed", err, applog.OpExport, "format", string(format))
		return
	}

	atomic.AddInt64(&s.appMetrics.exports, 1)
	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).InfoContext(r.Context(), "Report exported",
		applog.FieldUserID, id.UserID,
		applog.FieldYear, sel.Year,
		applog.FieldMonth, sel.Month,
		"format", string(format),
		"bytes", buf.Len())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+m.Filename(format)+`"`)
	_, _ = buf.WriteTo(w)
}
