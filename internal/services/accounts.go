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

// SignUpForm is the raw sign-up page input.
type SignUpForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Accounts registers and authenticates users.
type Accounts struct {
	users     store.UserStore
	passwords Passwords
}

func NewAccounts(users store.UserStore, passwords Passwords) *Accounts {
	return &Accounts{users: users, passwords: passwords}
}

// SignUp creates the account. On success the returned user carries the
// assigned id so the caller can start a session.
func (a *Accounts) SignUp(ctx context.Context, form SignUpForm) (core.User, core.Status, error) {
	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)
	if blank(name, email, form.Password, form.Confirm) {
		return core.User{}, core.Missing(core.MsgFillAllFields), nil
	}
	if form.Password != form.Confirm {
		return core.User{}, core.Rejected(core.MsgPasswordsMismatch), nil
	}
	if core.PasswordTooLong(form.Password) {
		return core.User{}, core.Invalid(core.MsgPasswordTooLong), nil
	}

	_, err := a.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return core.User{}, core.Rejected(core.MsgEmailTaken), nil
	case !errors.Is(err, store.ErrNotFound):
		return core.User{}, core.Status{}, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := a.passwords.Hash(form.Password)
	if err != nil {
		return core.User{}, core.Status{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.users.CreateUser(ctx, core.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return core.User{}, core.Rejected(core.MsgEmailTaken), nil
		}
		return core.User{}, core.Status{}, fmt.Errorf("create user: %w", err)
	}

	a.log(ctx).InfoContext(ctx, "User signed up",
		applog.FieldUserID, user.ID,
		applog.FieldOperation, applog.OpSignUp)
	return user, core.Success(core.MsgSignedUp), nil
}

// SignIn checks the credentials. Unknown emails and wrong passwords get the
// same rejection.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (core.User, core.Status, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.User{}, core.Missing(core.MsgFillAllFields), nil
	}

	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.User{}, core.Rejected(core.MsgInvalidCredentials), nil
		}
		return core.User{}, core.Status{}, fmt.Errorf("find user by email: %w", err)
	}
	if !a.passwords.Check(user.PasswordHash, password) {
		a.log(ctx).WarnContext(ctx, "Sign-in rejected", applog.FieldUserID, user.ID)
		return core.User{}, core.Rejected(core.MsgInvalidCredentials), nil
	}

	a.log(ctx).InfoContext(ctx, "User signed in",
		applog.FieldUserID, user.ID,
		applog.FieldOperation, applog.OpSignIn)
	return user, core.Success(core.MsgSignedIn), nil
}

func (a *Accounts) log(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentAccounts)
}
