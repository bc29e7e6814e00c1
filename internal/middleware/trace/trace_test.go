package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "budgetr/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Component: "test", Handler: slog.NewTextHandler(&buf, nil)})
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" })

	var ctxID string
	var ctxLogger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		ctxLogger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if !strings.HasPrefix(ctxID, "req_") {
		t.Errorf("request id = %q", ctxID)
	}
	if rec.Header().Get(RequestIDHeader) != ctxID {
		t.Errorf("header id = %q, context id = %q", rec.Header().Get(RequestIDHeader), ctxID)
	}
	if ctxLogger == nil || ctxLogger.Component() != applog.ComponentTrace {
		t.Fatalf("request logger not installed")
	}

	out := buf.String()
	for _, want := range []string{"HTTP request started", "HTTP request completed", "status_code=500", "level=ERROR", ctxID} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	ctxLogger.WithComponent(applog.ComponentSettings).Info("profile saved")
	line := buf.String()
	if !strings.Contains(line, "request_id="+ctxID) {
		t.Errorf("handler log line lacks the request id: %s", line)
	}
	if strings.Count(line, "component=") != 1 || !strings.Contains(line, "component=settings") {
		t.Errorf("handler log line must carry exactly one component: %s", line)
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 1 || metrics.ServerErrors != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
