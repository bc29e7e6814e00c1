package auth

import (
	"context"
	"net/http"
	"time"

	"budgetr/internal/cache"
	"budgetr/internal/core"

	"github.com/google/uuid"
)

// CookieName is the session cookie.
const CookieName = "budgetr_session"

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string
	UserID    int64
	Email     string
	CreatedAt time.Time
}

// Identity returns the user the session belongs to.
func (s Session) Identity() core.Identity {
	return core.Identity{UserID: s.UserID, Email: s.Email}
}

type SessionConfig struct {
	TTL          time.Duration
	Capacity     int
	SecureCookie bool
}

// SessionStore keeps sessions in memory; they do not survive a restart.
// Entries expire after TTL of inactivity.
type SessionStore struct {
	sessions *cache.LRUCache[Session]
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

func NewSessionStore(cfg SessionConfig, opts ...cache.Option) *SessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	return &SessionStore{
		sessions: cache.NewLRUCache[Session](cfg.Capacity, cfg.TTL, append([]cache.Option{cache.WithSlidingExpiry()}, opts...)...),
		ttl:      cfg.TTL,
		secure:   cfg.SecureCookie,
		now:      time.Now,
	}
}

// Cleaner exposes the backing cache for periodic sweeping.
func (s *SessionStore) Cleaner() cache.Cleaner {
	return s.sessions
}

// Create starts a session for the user.
func (s *SessionStore) Create(userID int64, email string) Session {
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		CreatedAt: s.now(),
	}
	s.sessions.Set(sess.ID, sess)
	return sess
}

func (s *SessionStore) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return s.sessions.Get(id)
}

// SetEmail refreshes the email kept in the session after a profile change.
func (s *SessionStore) SetEmail(id, email string) {
	if sess, ok := s.sessions.Get(id); ok {
		sess.Email = email
		s.sessions.Set(id, sess)
	}
}

func (s *SessionStore) Destroy(id string) {
	s.sessions.Delete(id)
}

// FromRequest resolves the session named by the request cookie.
func (s *SessionStore) FromRequest(r *http.Request) (Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	return s.Get(c.Value)
}

func (s *SessionStore) SetCookie(w http.ResponseWriter, sess Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

// Middleware attaches the request's session (if any) to the context.
func (s *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.FromRequest(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFromContext returns the session attached by Middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

// IdentityFromContext returns the signed-in identity, or the zero identity.
func IdentityFromContext(ctx context.Context) core.Identity {
	sess, _ := SessionFromContext(ctx)
	return sess.Identity()
}
