package http

import (
	"bytes"
	"errors"
	"net/http"

	"budgetr/internal/auth"
	"budgetr/internal/chart"
	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/report"
	"budgetr/internal/store"
)

var errTemplatesMissing = errors.New("templates not loaded")

// NotFoundMessage is the body of every unknown page.
const NotFoundMessage = "404 Page Not Found"

// SidebarVisible reports whether the navigation sidebar is shown on path.
// The welcome and authentication pages hide it.
func SidebarVisible(path string) bool {
	switch path {
	case "/", "/sign_in", "/sign_up":
		return false
	default:
		return true
	}
}

// pageData is what every full page template receives.
type pageData struct {
	Title     string
	Path      string
	Sidebar   bool
	CSRFToken string
	Email     string
	Data      any
}

// render executes a full page template. The output is buffered so a
// template failure still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	token, err := s.csrf.Generate()
	if err != nil {
		s.serverError(w, r, "Failed to issue CSRF token", err, applog.OpRender)
		return
	}
	pd := pageData{
		Title:     title,
		Path:      r.URL.Path,
		Sidebar:   SidebarVisible(r.URL.Path),
		CSRFToken: token,
		Email:     auth.IdentityFromContext(r.Context()).Email,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, pd); err != nil {
		s.serverError(w, r, "Page template execution failed", err, applog.OpRender, "template", name)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderFragment executes a partial template into a builder.
func (s *Server) renderFragment(name string, data any) (*HTMXResponseBuilder, error) {
	if s.templates == nil {
		return nil, errTemplatesMissing
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return NewHTMXResponse().BodyHTML(buf.String()), nil
}

// serverError logs err under the route's component and answers with the
// generic error fragment. args are extra key/value pairs.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, op string, args ...any) {
	logger := applog.FromContext(r.Context())
	fields := applog.NewFields()
	fields[applog.FieldPath] = r.URL.Path
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			fields[k] = args[i+1]
		}
	}
	applog.NewStructuredLogger(logger).LogError(r.Context(), msg, err, logger.Component(), op, fields)
	InternalServerError("Something went wrong. Please try again.").Write(w)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "welcome_page", "Budgetr.", nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found_page", "Not Found", NotFoundMessage)
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "support_page", "Support", nil)
}

type dashboardData struct {
	Months     []monthOption
	Years      []int
	Selected   MonthParams
	ChartKinds []chart.Kind
	Formats    []report.Format
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	now := s.now()
	s.render(w, r, http.StatusOK, "dashboard_page", "Dashboard", dashboardData{
		Months:     monthOptions(),
		Years:      yearOptions(now),
		Selected:   ParseMonthParams(r.URL.Query(), now),
		ChartKinds: chart.Kinds(),
		Formats:    []report.Format{report.XLSX, report.PDF},
	})
}

type recordData struct {
	Today      string
	Categories []string
	Months     []monthOption
	Years      []int
	Selected   MonthParams
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	cats, err := s.spendings.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "Category list error", err, applog.OpList)
		return
	}
	now := s.now()
	s.render(w, r, http.StatusOK, "record_page", "Record Spendings", recordData{
		Today:      now.Format(core.DateLayout),
		Categories: cats,
		Months:     monthOptions(),
		Years:      yearOptions(now),
		Selected:   ParseMonthParams(r.URL.Query(), now),
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	user, err := s.settings.Profile(r.Context(), auth.IdentityFromContext(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		// The account behind the session no longer exists.
		s.endSession(w, r)
		redirect(w, r, "/sign_in")
		return
	}
	if err != nil {
		s.serverError(w, r, "Profile lookup error", err, applog.OpRead)
		return
	}
	s.render(w, r, http.StatusOK, "settings_page", "Settings", user)
}
