package http

import (
	"net/http"
	"sync/atomic"

	"budgetr/internal/auth"
	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/services"
)

// handleSignIn renders the sign-in form on GET and checks credentials on POST.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, r, http.StatusOK, "sign_in_page", "Sign In", nil)
		return
	case http.MethodPost:
	default:
		MethodNotAllowedError("GET, POST").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user, st, err := s.accounts.SignIn(r.Context(), FormValue(r, "email"), r.PostFormValue("password"))
	if err != nil {
		s.serverError(w, r, "Sign-in failed", err, applog.OpSignIn)
		return
	}
	if !st.OK() {
		StatusResponse(st).Write(w)
		return
	}
	atomic.AddInt64(&s.appMetrics.signIns, 1)
	s.startSession(w, r, user)
	redirect(w, r, "/dashboard")
}

// handleSignUp renders the sign-up form on GET and creates the account on
// POST. A new account is signed in straight away.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, r, http.StatusOK, "sign_up_page", "Create Your Account", nil)
		return
	case http.MethodPost:
	default:
		MethodNotAllowedError("GET, POST").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user, st, err := s.accounts.SignUp(r.Context(), services.SignUpForm{
		Name:     FormValue(r, "name"),
		Email:    FormValue(r, "email"),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	})
	if err != nil {
		s.serverError(w, r, "Sign-up failed", err, applog.OpSignUp)
		return
	}
	if !st.OK() {
		StatusResponse(st).Write(w)
		return
	}
	s.startSession(w, r, user)
	redirect(w, r, "/dashboard")
}

// handleLogout clears the session and returns to the welcome page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	s.endSession(w, r)
	redirect(w, r, "/")
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user core.User) {
	// Drop any session the browser already holds.
	if old, ok := auth.SessionFromContext(r.Context()); ok {
		s.sessions.Destroy(old.ID)
	}
	sess := s.sessions.Create(user.ID, user.Email)
	s.sessions.SetCookie(w, sess)
	applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).InfoContext(r.Context(),
		"Session started", applog.FieldUserID, user.ID)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		s.sessions.Destroy(sess.ID)
		applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).InfoContext(r.Context(),
			"Session ended", applog.FieldUserID, sess.UserID)
	}
	s.sessions.ClearCookie(w)
}
