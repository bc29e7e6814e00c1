package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentStorage)
	l.Info("table saved", FieldUserID, 3)

	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "user_id=3") {
		t.Errorf("unexpected log line: %s", out)
	}
}

func TestComponentLoggedOnce(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *Logger)
		want string
	}{
		{"bound", func(l *Logger) { l.WithComponent(ComponentAccounts).Info("signed in") }, "component=accounts"},
		{"rebound", func(l *Logger) { l.WithComponent(ComponentHTTP).WithComponent(ComponentSettings).Warn("saved") }, "component=settings"},
		{"explicit field wins", func(l *Logger) { l.Error("ping failed", FieldComponent, ComponentStorage) }, "component=storage"},
		{"structured fields", func(l *Logger) {
			NewStructuredLogger(l.WithComponent(ComponentHTTP)).LogError(context.Background(), "boom", errors.New("x"), ComponentReport, OpExport, nil)
		}, "component=report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newBufferLogger(&buf, ComponentApp))
			out := buf.String()
			if strings.Count(out, "component=") != 1 || !strings.Contains(out, tt.want) {
				t.Errorf("log line = %s, want exactly one %s", out, tt.want)
			}
		})
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentHTTP)

	var got *Logger
	h := Middleware(l)(ComponentMiddleware(ComponentSettings)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/settings", nil))

	if got == nil || got.Component() != ComponentSettings {
		t.Fatalf("expected settings component logger, got %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("missing logger must fall back to the default")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentApp))
	ctx := context.Background()

	sl.LogTransactionAdded(ctx, 1, 7, "Groceries", "42.50")
	sl.LogBudgetChanged(ctx, 1, 2024, 3, "Rent")
	sl.LogError(ctx, "save failed", errors.New("disk full"), ComponentStorage, OpUpsert, nil)

	out := buf.String()
	for _, want := range []string{"transaction_id=7", "category=Rent", "month=3", `error="disk full"`, "operation=upsert"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
