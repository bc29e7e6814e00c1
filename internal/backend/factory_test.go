package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetr/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("mongo").IsValid() {
		t.Error("mongo should not be valid")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "csv,memory,sheets,sqlite,postgres" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"csv without dir", Config{Type: CSVBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"unknown", Config{Type: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "ftp"}); err == nil {
		t.Fatal("expected error for invalid backend")
	}

	seed := filepath.Join(t.TempDir(), "seed.txt")
	if err := os.WriteFile(seed, []byte("Travel\nPets\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "csv", DataDir: "/tmp/x", SeedCategoriesFile: seed})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != CSVBackend || cfg.DataDirectory != "/tmp/x" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.SeedCategories) != 2 || cfg.SeedCategories[0] != "Travel" {
		t.Errorf("unexpected seed categories: %v", cfg.SeedCategories)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	seed := []string{"Groceries", "Rent"}

	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend, SeedCategories: seed}},
		{"csv", Config{Type: CSVBackend, DataDirectory: t.TempDir(), SeedCategories: seed}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "b.db"), SeedCategories: seed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			if err := res.Store.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			cats, err := res.Store.ListCategories(ctx)
			if err != nil || len(cats) != 2 || cats[1].Name != "Rent" {
				t.Fatalf("categories: %+v %v", cats, err)
			}
		})
	}
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("expected validation error")
	}
}
