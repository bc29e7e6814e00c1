// Package services holds the form-handling logic behind the pages: each
// operation validates raw form input, applies it to the store for the session
// user and reports a user-facing core.Status.
package services

import (
	"context"
	"strings"

	"budgetr/internal/events"
	applog "budgetr/internal/log"
)

// Passwords hashes and verifies account passwords.
type Passwords interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

// publish is best effort: the change is already stored, so a broker failure
// is logged and swallowed.
func publish(ctx context.Context, pub events.Publisher, e events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, e); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentEvents).WarnContext(ctx, "Failed to publish event",
			applog.FieldEvent, e.Type,
			applog.FieldUserID, e.UserID,
			applog.FieldError, err)
	}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
