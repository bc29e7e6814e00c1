package services

import (
	"context"
	"strings"
	"testing"

	"budgetr/internal/core"
	"budgetr/internal/store"
	"budgetr/internal/store/tabular"
)

func signedUp(t *testing.T) (*tabular.Store, core.Identity) {
	t.Helper()
	st := newStore(t)
	user, s, err := NewAccounts(st, passwords()).SignUp(context.Background(),
		SignUpForm{Name: "Ann", Email: "ann@example.com", Password: "secret", Confirm: "secret"})
	if err != nil || !s.OK() {
		t.Fatalf("sign up: %+v, %v", s, err)
	}
	return st, core.Identity{UserID: user.ID, Email: user.Email}
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name, newName, newEmail string
		anonymous               bool
		wantKind                core.StatusKind
		wantMsg                 string
	}{
		{"missing name", "", "a@example.com", false, core.StatusMissingField, core.MsgFillAllFields},
		{"missing email", "Ann", " ", false, core.StatusMissingField, core.MsgFillAllFields},
		{"no session", "Ann", "a@example.com", true, core.StatusUnauthenticated, core.MsgNotLoggedIn},
		{"email of another user", "Ann", "bob@example.com", false, core.StatusRejected, core.MsgEmailTaken},
		{"keep own email", "Annie", "ann@example.com", false, core.StatusOK, core.MsgProfileUpdated},
		{"success", "Annie", "annie@example.com", false, core.StatusOK, core.MsgProfileUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st, id := signedUp(t)
			if _, s, _ := NewAccounts(st, passwords()).SignUp(ctx, SignUpForm{Name: "Bob", Email: "bob@example.com", Password: "x", Confirm: "x"}); !s.OK() {
				t.Fatalf("second user: %+v", s)
			}
			if tt.anonymous {
				id = core.Identity{}
			}

			svc := NewSettings(st, passwords())
			got, err := svc.UpdateProfile(ctx, id, tt.newName, tt.newEmail)
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.wantKind || got.Message != tt.wantMsg {
				t.Errorf("status = %v %q, want %v %q", got.Kind, got.Message, tt.wantKind, tt.wantMsg)
			}

			u, err := st.GetUser(ctx, 1)
			if err != nil {
				t.Fatal(err)
			}
			if got.OK() {
				if u.Name != tt.newName || u.Email != tt.newEmail {
					t.Errorf("profile = %q %q", u.Name, u.Email)
				}
			} else if u.Name != "Ann" || u.Email != "ann@example.com" {
				t.Errorf("rejected update modified profile: %q %q", u.Name, u.Email)
			}
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name, password, confirm string
		anonymous               bool
		wantKind                core.StatusKind
		wantMsg                 string
	}{
		{"missing", "", "x", false, core.StatusMissingField, core.MsgFillAllFields},
		{"mismatch", "a", "b", false, core.StatusRejected, core.MsgPasswordsMismatch},
		{"mismatch reported before session", "a", "b", true, core.StatusRejected, core.MsgPasswordsMismatch},
		{"over bcrypt limit", strings.Repeat("a", 80), strings.Repeat("a", 80), false, core.StatusInvalid, core.MsgPasswordTooLong},
		{"no session", "new", "new", true, core.StatusUnauthenticated, core.MsgNotLoggedIn},
		{"success", "new", "new", false, core.StatusOK, core.MsgPasswordUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st, id := signedUp(t)
			if tt.anonymous {
				id = core.Identity{}
			}
			got, err := NewSettings(st, passwords()).UpdatePassword(ctx, id, tt.password, tt.confirm)
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.wantKind || got.Message != tt.wantMsg {
				t.Errorf("status = %v %q, want %v %q", got.Kind, got.Message, tt.wantKind, tt.wantMsg)
			}

			accounts := NewAccounts(st, passwords())
			wantPassword := "secret"
			if got.OK() {
				wantPassword = tt.password
			}
			if _, s, _ := accounts.SignIn(ctx, "ann@example.com", wantPassword); !s.OK() {
				t.Errorf("cannot sign in with %q after update", wantPassword)
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name, password string
		anonymous      bool
		wantKind       core.StatusKind
		wantMsg        string
		wantDeleted    bool
	}{
		{"missing password", "", false, core.StatusMissingField, core.MsgEnterPassword, false},
		{"no session", "secret", true, core.StatusUnauthenticated, core.MsgNotLoggedIn, false},
		{"wrong password", "nope", false, core.StatusRejected, core.MsgInvalidPassword, false},
		{"success", "secret", false, core.StatusOK, core.MsgAccountDeleted, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st, id := signedUp(t)
			spend := NewSpendings(st, nil)
			if s, err := spend.AddTransaction(ctx, id, TransactionForm{Date: "2024-03-01", Amount: "5", Category: "Rent"}); err != nil || !s.OK() {
				t.Fatalf("add: %+v, %v", s, err)
			}
			if tt.anonymous {
				id = core.Identity{}
			}

			got, err := NewSettings(st, passwords()).DeleteAccount(ctx, id, tt.password)
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.wantKind || got.Message != tt.wantMsg {
				t.Errorf("status = %v %q, want %v %q", got.Kind, got.Message, tt.wantKind, tt.wantMsg)
			}

			_, err = st.GetUser(ctx, 1)
			if deleted := err == store.ErrNotFound; deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v (err %v)", deleted, tt.wantDeleted, err)
			}
			// Child rows are never cascaded.
			txs, _ := st.ListTransactions(ctx, 1)
			if len(txs) != 1 {
				t.Errorf("transactions = %d, want 1", len(txs))
			}
		})
	}
}

func TestProfile(t *testing.T) {
	st, id := signedUp(t)
	svc := NewSettings(st, passwords())

	u, err := svc.Profile(context.Background(), id)
	if err != nil || u.Name != "Ann" {
		t.Fatalf("profile = %+v, %v", u, err)
	}
	if _, err := svc.Profile(context.Background(), core.Identity{}); err != store.ErrNotFound {
		t.Errorf("anonymous profile error = %v", err)
	}
}
