// Package csrf issues and checks anti-forgery tokens for form posts. Pages
// embed a token; htmx sends it back in the X-CSRF-Token header and plain
// forms in the csrf_token field.
package csrf

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"budgetr/internal/cache"
	applog "budgetr/internal/log"
)

const (
	HeaderName = "X-CSRF-Token"
	FieldName  = "csrf_token"

	DefaultTTL      = 2 * time.Hour
	DefaultCapacity = 50000
)

type contextKey struct{}

// Store remembers issued tokens until they expire. Tokens are not consumed
// on use because one page posts many htmx requests with the same token.
type Store struct {
	tokens *cache.LRUCache[struct{}]
}

// NewStore creates a token store; opts are passed to the backing cache.
func NewStore(ttl time.Duration, capacity int, opts ...cache.Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{tokens: cache.NewLRUCache[struct{}](capacity, ttl, opts...)}
}

// Cleaner exposes the token cache to the cleanup manager.
func (s *Store) Cleaner() cache.Cleaner {
	return s.tokens
}

// Generate issues a new token.
func (s *Store) Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	s.tokens.Set(token, struct{}{})
	return token, nil
}

// Valid reports whether the token was issued and has not expired.
func (s *Store) Valid(token string) bool {
	if token == "" {
		return false
	}
	_, ok := s.tokens.Get(token)
	return ok
}

// Middleware rejects unsafe methods that do not present a valid token.
// Pages issue tokens with Generate when they render a form.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(HeaderName)
		if token == "" {
			token = r.FormValue(FieldName)
		}
		if !s.Valid(token) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentCSRF).
				WarnContext(r.Context(), "Rejected request without valid CSRF token", applog.FieldPath, r.URL.Path)
			http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
	})
}

// WithToken stores the token a request presented.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// Token returns the token the request presented, or "".
func Token(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}
