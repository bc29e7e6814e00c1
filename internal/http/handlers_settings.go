package http

import (
	"net/http"

	"budgetr/internal/auth"
	applog "budgetr/internal/log"
)

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	email := FormValue(r, "email")
	st, err := s.settings.UpdateProfile(r.Context(), auth.IdentityFromContext(r.Context()), FormValue(r, "name"), email)
	if err != nil {
		s.serverError(w, r, "Failed to update profile", err, applog.OpUpdate)
		return
	}
	if st.OK() {
		if sess, ok := auth.SessionFromContext(r.Context()); ok {
			s.sessions.SetEmail(sess.ID, email)
		}
	}
	StatusResponse(st).Write(w)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	st, err := s.settings.UpdatePassword(r.Context(), auth.IdentityFromContext(r.Context()),
		r.PostFormValue("password"), r.PostFormValue("confirm"))
	if err != nil {
		s.serverError(w, r, "Failed to update password", err, applog.OpUpdate)
		return
	}
	StatusResponse(st).Write(w)
}

// handleDeleteAccount removes the user row after a password check and ends
// the session. Transactions and budgets are left in place.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	st, err := s.settings.DeleteAccount(r.Context(), auth.IdentityFromContext(r.Context()), r.PostFormValue("password"))
	if err != nil {
		s.serverError(w, r, "Failed to delete account", err, applog.OpDelete)
		return
	}
	if st.OK() {
		s.endSession(w, r)
	}
	StatusResponse(st).Write(w)
}

// handleDeleteConfirm reveals the password prompt guarding account deletion.
func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	resp, err := s.renderFragment("delete_confirm", nil)
	if err != nil {
		s.serverError(w, r, "Delete confirmation render failed", err, applog.OpRender)
		return
	}
	resp.Write(w)
}
