// Package http provides the router, page layouts and htmx fragment handlers.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"budgetr/internal/auth"
	"budgetr/internal/cache"
	"budgetr/internal/core"
	"budgetr/internal/events"
	applog "budgetr/internal/log"
	"budgetr/internal/middleware/csrf"
	"budgetr/internal/middleware/ratelimit"
	"budgetr/internal/middleware/security"
	"budgetr/internal/middleware/trace"
	"budgetr/internal/services"
	"budgetr/internal/store"
	appweb "budgetr/web"

	"github.com/shopspring/decimal"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Store     store.Store
	Publisher events.Publisher
	Sessions  *auth.SessionStore
	Passwords services.Passwords
	Logger    *applog.Logger

	RateLimitPerMinute int
	// CacheCleanupInterval is how often expired sessions and CSRF tokens
	// are swept; zero disables the background sweep.
	CacheCleanupInterval time.Duration
	// Now overrides the clock used for default month selections.
	Now func() time.Time
}

type Server struct {
	http.Server
	logger    *applog.Logger
	templates *template.Template
	store     store.Store
	publisher events.Publisher
	sessions  *auth.SessionStore
	csrf      *csrf.Store

	spendings *services.Spendings
	settings  *services.Settings
	accounts  *services.Accounts
	charts    *services.Charts

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	caches           *cache.Manager

	appMetrics   *appMetrics
	now          func() time.Time
	shutdownOnce sync.Once
}

type appMetrics struct {
	transactions  int64
	budgetUpdates int64
	exports       int64
	signIns       int64
	uptime        time.Time
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}
	if deps.Sessions == nil {
		deps.Sessions = auth.NewSessionStore(auth.SessionConfig{})
	}
	if deps.Passwords == nil {
		deps.Passwords = auth.Bcrypt{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:           logger.WithComponent(applog.ComponentHTTP),
		store:            deps.Store,
		publisher:        deps.Publisher,
		sessions:         deps.Sessions,
		csrf:             csrf.NewStore(csrf.DefaultTTL, csrf.DefaultCapacity),
		spendings:        services.NewSpendings(deps.Store, deps.Publisher),
		settings:         services.NewSettings(deps.Store, deps.Passwords),
		accounts:         services.NewAccounts(deps.Store, deps.Passwords),
		charts:           services.NewCharts(deps.Store),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		caches:           cache.NewManager(),
		appMetrics:       &appMetrics{uptime: time.Now()},
		now:              deps.Now,
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ClientIP)

	s.caches.Register("sessions", s.sessions.Cleaner())
	s.caches.Register("csrf", s.csrf.Cleaner())
	if deps.CacheCleanupInterval > 0 {
		s.caches.StartCleanup(deps.CacheCleanupInterval)
	}

	// Parse embedded templates at startup.
	t, err := template.New("budgetr").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	// Route groups log under their own component.
	spendingRoutes := applog.ComponentMiddleware(applog.ComponentSpendings)
	settingsRoutes := applog.ComponentMiddleware(applog.ComponentSettings)
	chartRoutes := applog.ComponentMiddleware(applog.ComponentCharts)
	reportRoutes := applog.ComponentMiddleware(applog.ComponentReport)

	// Pages
	mux.Handle("/", s.page(s.handleRoot))
	mux.Handle("/dashboard", chartRoutes(s.page(s.requireUser(s.handleDashboard))))
	mux.Handle("/record", spendingRoutes(s.page(s.requireUser(s.handleRecord))))
	mux.Handle("/settings", settingsRoutes(s.page(s.requireUser(s.handleSettings))))
	mux.Handle("/support", s.page(s.handleSupport))
	mux.Handle("/sign_in", s.page(s.handleSignIn))
	mux.Handle("/sign_up", s.page(s.handleSignUp))
	mux.Handle("/logout", s.page(s.handleLogout))

	// UI partials
	mux.Handle("/record/transactions", spendingRoutes(s.page(s.handleTransactions)))
	mux.Handle("/record/overview", spendingRoutes(s.page(s.handleBudgetOverview)))
	mux.Handle("/record/budget/total", spendingRoutes(s.page(s.handleUpdateTotalBudget)))
	mux.Handle("/record/budget/category", spendingRoutes(s.page(s.handleUpdateCategoryBudget)))
	mux.Handle("/settings/profile", settingsRoutes(s.page(s.handleUpdateProfile)))
	mux.Handle("/settings/password", settingsRoutes(s.page(s.handleUpdatePassword)))
	mux.Handle("/settings/delete", settingsRoutes(s.page(s.handleDeleteAccount)))
	mux.Handle("/settings/delete/confirm", settingsRoutes(s.page(s.handleDeleteConfirm)))

	// Data endpoints
	mux.Handle("/dashboard/chart", chartRoutes(s.page(s.handleChart)))
	mux.Handle("/dashboard/export", reportRoutes(s.page(s.handleExport)))

	// Operations
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded",
			applog.FieldClientIP, s.securityDetector.ClientIP(r),
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
	})

	var handler http.Handler = applog.ComponentMiddleware(applog.ComponentHTTP)(mux)
	handler = s.sessions.Middleware(handler)
	handler = s.csrf.Middleware(handler)
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

// page marks per-user responses as uncacheable.
func (s *Server) page(h http.HandlerFunc) http.Handler {
	return security.NoStore(h)
}

// requireUser sends anonymous visitors to the sign-in page.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.IdentityFromContext(r.Context()).Authenticated() {
			redirect(w, r, "/sign_in")
			return
		}
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

var templateFuncs = template.FuncMap{
	"dollars": func(d decimal.Decimal) string { return core.Dollars(d) },
	"amount":  func(d decimal.Decimal) string { return core.FormatAmount(d) },
}
