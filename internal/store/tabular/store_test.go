package tabular

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetr/internal/core"
	"budgetr/internal/store"
	"budgetr/internal/store/storetest"

	"github.com/shopspring/decimal"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(NewMemory())
	})
}

func TestCSVStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		io, err := NewCSVDir(t.TempDir())
		if err != nil {
			t.Fatalf("csv dir: %v", err)
		}
		return New(io)
	})
}

func TestCSVReadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// Column order differs from the canonical header and ids use the float form.
	mustWrite("transactions.csv", "userid,transactionid,date,categoryname,amount,description\n"+
		"1,7.0,2024-03-05 00:00:00,Groceries,42.5,milk\n"+
		"2,3,2024-03-06,Rent,900,\n")
	mustWrite("monthlybudgets.csv", "budgetid,userid,totalbudget,budgetmonth\n1,1,500,2024-03-01\n")

	io, err := NewCSVDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := New(io)
	ctx := context.Background()

	list, err := s.ListTransactions(ctx, 1)
	if err != nil || len(list) != 1 || list[0].ID != 7 {
		t.Fatalf("list: %+v %v", list, err)
	}

	tx, err := s.AddTransaction(ctx, core.Transaction{UserID: 1, Date: core.NewDate(2024, 3, 9), Category: "Dining Out", Amount: decimal.NewFromInt(12)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID != 8 {
		t.Fatalf("id = %d, want max+1 = 8", tx.ID)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), raw)
	}
	if lines[0] != "userid,transactionid,date,categoryname,amount,description" {
		t.Fatalf("header must be preserved, got %q", lines[0])
	}
	if lines[3] != "1,8,2024-03-09 00:00:00,Dining Out,12," {
		t.Fatalf("unexpected new row %q", lines[3])
	}

	b, err := s.UpsertMonthlyBudget(ctx, 1, core.NewDate(2024, 3, 1), decimal.NewFromInt(800))
	if err != nil || b.ID != 1 {
		t.Fatalf("upsert existing: %+v %v", b, err)
	}
}

func TestCSVMissingColumn(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.csv"), []byte("userid,name\n1,a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	io, _ := NewCSVDir(dir)
	if _, err := New(io).GetUser(context.Background(), 1); err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestSeedCategories(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory())
	if err := s.Seed(ctx, []string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	// Seeding again must not duplicate.
	if err := s.Seed(ctx, []string{"C"}); err != nil {
		t.Fatal(err)
	}
	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 2 || cats[0].Name != "A" || cats[1].ID != 2 {
		t.Fatalf("unexpected categories: %+v %v", cats, err)
	}
}

func TestReadSeedFile(t *testing.T) {
	dir := t.TempDir()
	if got := ReadSeedFile(filepath.Join(dir, "missing.txt")); len(got) != len(DefaultCategories) {
		t.Fatalf("expected defaults, got %v", got)
	}
	path := filepath.Join(dir, "seed_categories.txt")
	if err := os.WriteFile(path, []byte("# header\nGroceries\nRent\nGroceries\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := ReadSeedFile(path)
	if len(got) != 2 || got[0] != "Groceries" || got[1] != "Rent" {
		t.Fatalf("unexpected seed lines: %v", got)
	}
}
