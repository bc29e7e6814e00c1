package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"budgetr/internal/store"
	"budgetr/internal/store/storetest"
	"budgetr/internal/store/tabular"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets emulates the subset of the Sheets REST API the client uses.
type fakeSheets struct {
	mu     sync.Mutex
	tabs   map[string][][]interface{}
	writes int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{tabs: map[string][][]interface{}{}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/v4/spreadsheets/test-sheet"
	path := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case path == "" && r.Method == http.MethodGet:
		var sheets []map[string]any
		for title := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})

	case path == ":batchUpdate":
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.tabs[rq.AddSheet.Properties.Title] = nil
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{})

	case strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		clear := strings.HasSuffix(rng, ":clear")
		rng = strings.TrimSuffix(rng, ":clear")
		tab, cells, _ := strings.Cut(rng, "!")
		rows, ok := f.tabs[tab]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range"}}`))
			return
		}
		switch {
		case clear:
			start := startRow(cells)
			if start-1 < len(rows) {
				f.tabs[tab] = rows[:start-1]
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})
		case r.Method == http.MethodPut:
			if r.URL.Query().Get("valueInputOption") != "RAW" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			var vr gsheet.ValueRange
			_ = json.NewDecoder(r.Body).Decode(&vr)
			for i, row := range vr.Values {
				if i < len(rows) {
					rows[i] = row
				} else {
					rows = append(rows, row)
				}
			}
			f.tabs[tab] = rows
			f.writes++
			_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": len(vr.Values)})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "majorDimension": "ROWS", "values": rows})
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func startRow(cells string) int {
	first, _, _ := strings.Cut(cells, ":")
	n, err := strconv.Atoi(strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("sheets service: %v", err)
	}
	return NewWithService(svc, "test-sheet")
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x", ServiceAccountFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureTablesAndRoundTrip(t *testing.T) {
	fake := newFakeSheets()
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.EnsureTables(ctx, tabular.Tables()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(fake.tabs) != len(tabular.Tables()) {
		t.Fatalf("tabs = %d, want %d", len(fake.tabs), len(tabular.Tables()))
	}

	records := [][]string{{"categoryid", "name"}, {"1", "Groceries"}, {"2", "Rent"}}
	if err := c.Save(ctx, "categories", records); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Shrinking the table must clear the stale tail.
	if err := c.Save(ctx, "categories", records[:2]); err != nil {
		t.Fatalf("save shorter: %v", err)
	}
	got, err := c.Load(ctx, "categories")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1][1] != "Groceries" {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestStoreOverSheets(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		c := newTestClient(t, newFakeSheets())
		if err := c.EnsureTables(context.Background(), tabular.Tables()); err != nil {
			t.Fatalf("ensure: %v", err)
		}
		return tabular.New(c)
	})
}
