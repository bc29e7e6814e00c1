package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetr/internal/core"
	applog "budgetr/internal/log"
	"budgetr/internal/store"
)

// Settings edits the signed-in user's profile, password and account. The
// caller owns the session: it refreshes the session email after a profile
// change and destroys the session after a successful deletion.
type Settings struct {
	users     store.UserStore
	passwords Passwords
}

func NewSettings(users store.UserStore, passwords Passwords) *Settings {
	return &Settings{users: users, passwords: passwords}
}

// Profile loads the signed-in user for the settings form.
func (s *Settings) Profile(ctx context.Context, id core.Identity) (core.User, error) {
	if !id.Authenticated() {
		return core.User{}, store.ErrNotFound
	}
	return s.users.GetUser(ctx, id.UserID)
}

// UpdateProfile overwrites the user's name and email.
func (s *Settings) UpdateProfile(ctx context.Context, id core.Identity, name, email string) (core.Status, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return core.Missing(core.MsgFillAllFields), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	existing, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != id.UserID:
		return core.Rejected(core.MsgEmailTaken), nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return core.Status{}, fmt.Errorf("find user by email: %w", err)
	}

	if err := s.users.UpdateUserProfile(ctx, id.UserID, name, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.NotLoggedIn(), nil
		}
		return core.Status{}, fmt.Errorf("update profile: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "Profile updated", applog.FieldUserID, id.UserID)
	return core.Success(core.MsgProfileUpdated), nil
}

// UpdatePassword stores a new password hash. A mismatch is reported before
// the session is consulted.
func (s *Settings) UpdatePassword(ctx context.Context, id core.Identity, password, confirm string) (core.Status, error) {
	if password == "" || confirm == "" {
		return core.Missing(core.MsgFillAllFields), nil
	}
	if password != confirm {
		return core.Rejected(core.MsgPasswordsMismatch), nil
	}
	if core.PasswordTooLong(password) {
		return core.Invalid(core.MsgPasswordTooLong), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return core.Status{}, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, id.UserID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.NotLoggedIn(), nil
		}
		return core.Status{}, fmt.Errorf("update password: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "Password updated", applog.FieldUserID, id.UserID)
	return core.Success(core.MsgPasswordUpdated), nil
}

// DeleteAccount removes the user row after checking the password. The
// user's transactions and budgets are left in place.
func (s *Settings) DeleteAccount(ctx context.Context, id core.Identity, password string) (core.Status, error) {
	if password == "" {
		return core.Missing(core.MsgEnterPassword), nil
	}
	if !id.Authenticated() {
		return core.NotLoggedIn(), nil
	}

	user, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.NotLoggedIn(), nil
		}
		return core.Status{}, fmt.Errorf("get user: %w", err)
	}
	if !s.passwords.Check(user.PasswordHash, password) {
		s.log(ctx).WarnContext(ctx, "Account deletion rejected", applog.FieldUserID, id.UserID)
		return core.Rejected(core.MsgInvalidPassword), nil
	}

	if err := s.users.DeleteUser(ctx, id.UserID); err != nil {
		return core.Status{}, fmt.Errorf("delete user: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "Account deleted", applog.FieldUserID, id.UserID)
	return core.Success(core.MsgAccountDeleted), nil
}

func (s *Settings) log(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentSettings)
}
