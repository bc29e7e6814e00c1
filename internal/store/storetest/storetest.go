// Package storetest holds behaviour checks shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"budgetr/internal/core"
	"budgetr/internal/store"

	"github.com/shopspring/decimal"
)

// Run exercises a fresh, empty store (categories may be seeded).
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("MonthlyBudgets", func(t *testing.T) { testMonthlyBudgets(t, newStore(t)) })
	t.Run("CategoricalBudgets", func(t *testing.T) { testCategoricalBudgets(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, core.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if alice.ID != 1 {
		t.Fatalf("first user id = %d, want 1", alice.ID)
	}
	bob, err := s.CreateUser(ctx, core.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "h2"})
	if err != nil || bob.ID != 2 {
		t.Fatalf("create bob: id=%d err=%v", bob.ID, err)
	}
	if _, err := s.CreateUser(ctx, core.User{Name: "Dup", Email: "ALICE@example.com"}); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := s.FindUserByEmail(ctx, "bob@example.com")
	if err != nil || got.ID != bob.ID || got.PasswordHash != "h2" {
		t.Fatalf("find bob: %+v %v", got, err)
	}
	if _, err := s.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.UpdateUserProfile(ctx, alice.ID, "Alice B", "ab@example.com"); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := s.UpdateUserPassword(ctx, alice.ID, "h3"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, err = s.GetUser(ctx, alice.ID)
	if err != nil || got.Name != "Alice B" || got.Email != "ab@example.com" || got.PasswordHash != "h3" {
		t.Fatalf("get alice: %+v %v", got, err)
	}
	if err := s.UpdateUserProfile(ctx, 99, "x", "y"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing user: %v", err)
	}

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetUser(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
	if _, err := s.GetUser(ctx, bob.ID); err != nil {
		t.Fatalf("bob must survive: %v", err)
	}
	if err := s.DeleteUser(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.AddTransaction(ctx, core.Transaction{
		UserID:      1,
		Date:        core.NewDate(2024, 3, 5),
		Category:    "Groceries",
		Amount:      decimal.RequireFromString("42.50"),
		Description: "weekly shop",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}
	second, err := s.AddTransaction(ctx, core.Transaction{
		UserID: 2, Date: core.NewDate(2024, 3, 6), Category: "Rent", Amount: decimal.NewFromInt(900),
	})
	if err != nil || second.ID != 2 {
		t.Fatalf("second add: id=%d err=%v", second.ID, err)
	}

	list, err := s.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("user 1 sees %d transactions, want 1", len(list))
	}
	tx := list[0]
	if tx.Date.String() != "2024-03-05" || tx.Category != "Groceries" || !tx.Amount.Equal(decimal.RequireFromString("42.5")) || tx.Description != "weekly shop" {
		t.Fatalf("unexpected row: %+v", tx)
	}
}

func testMonthlyBudgets(t *testing.T, s store.Store) {
	ctx := context.Background()
	march := core.NewDate(2024, 3, 1)

	b, err := s.UpsertMonthlyBudget(ctx, 1, march, decimal.NewFromInt(500))
	if err != nil || b.ID != 1 {
		t.Fatalf("insert: %+v %v", b, err)
	}
	b, err = s.UpsertMonthlyBudget(ctx, 1, march, decimal.NewFromInt(650))
	if err != nil || b.ID != 1 {
		t.Fatalf("update: %+v %v", b, err)
	}
	other, err := s.UpsertMonthlyBudget(ctx, 2, march, decimal.NewFromInt(100))
	if err != nil || other.ID != 2 {
		t.Fatalf("other user: %+v %v", other, err)
	}
	april, err := s.UpsertMonthlyBudget(ctx, 1, core.NewDate(2024, 4, 1), decimal.NewFromInt(10))
	if err != nil || april.ID != 3 {
		t.Fatalf("april: %+v %v", april, err)
	}

	list, err := s.ListMonthlyBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d rows for user 1, want 2", len(list))
	}
	var marchRows int
	for _, r := range list {
		if r.Month.Equal(march.Time) {
			marchRows++
			if !r.Total.Equal(decimal.NewFromInt(650)) {
				t.Fatalf("march total = %s, want 650", r.Total)
			}
		}
	}
	if marchRows != 1 {
		t.Fatalf("march rows = %d, want exactly 1", marchRows)
	}
}

func testCategoricalBudgets(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.UpsertCategoricalBudget(ctx, 1, "Groceries", decimal.NewFromInt(200)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.UpsertCategoricalBudget(ctx, 1, "Groceries", decimal.RequireFromString("250.75")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.UpsertCategoricalBudget(ctx, 2, "Groceries", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("other user: %v", err)
	}

	list, err := s.ListCategoricalBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.RequireFromString("250.75")) || list[0].ID != 1 {
		t.Fatalf("unexpected rows: %+v", list)
	}
	list, err = s.ListCategoricalBudgets(ctx, 2)
	if err != nil || len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("user 2 rows: %+v %v", list, err)
	}
}
