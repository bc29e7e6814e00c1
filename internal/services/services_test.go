package services

import (
	"context"
	"errors"
	"testing"

	"budgetr/internal/auth"
	"budgetr/internal/core"
	"budgetr/internal/events"
	"budgetr/internal/store/tabular"

	"golang.org/x/crypto/bcrypt"
)

var (
	ann    = core.Identity{UserID: 1, Email: "ann@example.com"}
	nobody = core.Identity{}
)

func newStore(t *testing.T) *tabular.Store {
	t.Helper()
	st := tabular.New(tabular.NewMemory())
	if err := st.Seed(context.Background(), []string{"Groceries", "Rent", "Transport"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func passwords() Passwords {
	return auth.Bcrypt{Cost: bcrypt.MinCost}
}

// failingPublisher always errors; publishing is best effort so callers
// must still succeed.
type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error { return errors.New("broker down") }
func (failingPublisher) Close() error                                 { return nil }
