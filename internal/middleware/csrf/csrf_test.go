package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"budgetr/internal/cache"
)

func TestStore_GenerateAndValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Hour, 10, cache.WithClock(func() time.Time { return now }))

	token, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Valid(token) {
		t.Fatal("fresh token rejected")
	}
	if !s.Valid(token) {
		t.Fatal("token must survive repeated use")
	}
	if s.Valid("") || s.Valid("forged") {
		t.Fatal("unknown token accepted")
	}

	now = now.Add(2 * time.Hour)
	if s.Valid(token) {
		t.Fatal("expired token accepted")
	}
}

func TestMiddleware(t *testing.T) {
	s := NewStore(0, 0)
	token, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	var seen string
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Token(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	form := url.Values{FieldName: {token}}.Encode()
	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{"get passes", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/dashboard", nil) }, http.StatusNoContent},
		{"post without token", func() *http.Request { return httptest.NewRequest(http.MethodPost, "/record", nil) }, http.StatusForbidden},
		{"post with header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/record", nil)
			r.Header.Set(HeaderName, token)
			return r
		}, http.StatusNoContent},
		{"post with form field", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/sign_in", strings.NewReader(form))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return r
		}, http.StatusNoContent},
		{"post with forged header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/record", nil)
			r.Header.Set(HeaderName, "forged")
			return r
		}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && tt.name != "get passes" && seen != token {
				t.Errorf("token in context = %q", seen)
			}
		})
	}
}
