package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{
			name:      "both values provided",
			query:     url.Values{"year": {"2024"}, "month": {"12"}},
			wantYear:  2024,
			wantMonth: 12,
		},
		{
			name:      "absent values use the current month",
			query:     url.Values{},
			wantYear:  2024,
			wantMonth: 3,
		},
		{
			name:      "only year",
			query:     url.Values{"year": {"2023"}},
			wantYear:  2023,
			wantMonth: 3,
		},
		{
			name:      "blank month means no selection",
			query:     url.Values{"year": {"2024"}, "month": {""}},
			wantYear:  2024,
			wantMonth: 0,
		},
		{
			name:      "non-numeric year means no selection",
			query:     url.Values{"year": {"abc"}, "month": {"5"}},
			wantYear:  0,
			wantMonth: 5,
		},
		{
			name:      "surrounding spaces are ignored",
			query:     url.Values{"year": {" 2022 "}, "month": {" 7"}},
			wantYear:  2022,
			wantMonth: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseMonthParams(tt.query, now)

			if result.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", result.Year, tt.wantYear)
			}
			if result.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", result.Month, tt.wantMonth)
			}
			if want := tt.wantYear != 0 && tt.wantMonth != 0; result.Selected() != want {
				t.Errorf("Selected() = %v, want %v", result.Selected(), want)
			}
		})
	}
}

func TestFormValue(t *testing.T) {
	body := "name=+Ann%00+&email=ann%40example.com"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := FormValue(req, "name"); got != "Ann" {
		t.Errorf("FormValue(name) = %q, want %q", got, "Ann")
	}
	if got := FormValue(req, "email"); got != "ann@example.com" {
		t.Errorf("FormValue(email) = %q", got)
	}
	if got := FormValue(req, "missing"); got != "" {
		t.Errorf("FormValue(missing) = %q, want empty", got)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"GET allowed with multiple", http.MethodGet, []string{http.MethodGet, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOSTAndGET(t *testing.T) {
	postReq := httptest.NewRequest(http.MethodPost, "/test", nil)
	getReq := httptest.NewRequest(http.MethodGet, "/test", nil)

	if RequirePOST(postReq) != nil {
		t.Error("RequirePOST should allow POST requests")
	}
	if RequirePOST(getReq) == nil {
		t.Error("RequirePOST should reject GET requests")
	}
	if RequireGET(getReq) != nil {
		t.Error("RequireGET should allow GET requests")
	}

	w := httptest.NewRecorder()
	RequireGET(postReq).Write(w)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if w.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
}

func TestParseFormOrFail(t *testing.T) {
	body := "field=value"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if result := ParseFormOrFail(req); result != nil {
		t.Error("Expected nil for valid form, got error response")
	}
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}

	bad := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("a=%zz"))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if result := ParseFormOrFail(bad); result == nil {
		t.Error("Expected error response for malformed form")
	}
}
