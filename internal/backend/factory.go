package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetr/internal/store"
	"budgetr/internal/store/sheets"
	"budgetr/internal/store/sqlstore"
	"budgetr/internal/store/tabular"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend. The category table is
// seeded before the store is returned.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case CSVBackend:
		res, err = f.createCSVBackend(config)
	case MemoryBackend:
		res, err = f.createMemoryBackend()
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		res, err = f.createPostgresBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if s, ok := res.Store.(Seeder); ok && len(config.SeedCategories) > 0 {
		if err := s.Seed(ctx, config.SeedCategories); err != nil {
			if res.Cleanup != nil {
				_ = res.Cleanup()
			}
			return nil, fmt.Errorf("seed categories: %w", err)
		}
	}
	return res, nil
}

func closer(s store.Store) CleanupFunc {
	return s.Close
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	dir, err := tabular.NewCSVDir(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize csv directory: %w", err)
	}
	s := tabular.New(dir)

	f.logger.Info("Initialized csv backend", "data_directory", dir.Dir())

	return &BackendResult{Store: s, Cleanup: closer(s)}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	s := tabular.New(tabular.NewMemory())

	f.logger.Info("Initialized memory backend")

	return &BackendResult{Store: s, Cleanup: closer(s)}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := cli.EnsureTables(ctx, tabular.Tables()); err != nil {
		return nil, fmt.Errorf("failed to prepare spreadsheet tabs: %w", err)
	}
	s := tabular.New(cli)

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &BackendResult{Store: s, Cleanup: closer(s)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	s, err := sqlstore.OpenSQLite(ctx, config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: s, Cleanup: closer(s)}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	s, err := sqlstore.OpenPostgres(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL store: %w", err)
	}

	f.logger.Info("Initialized PostgreSQL backend")

	return &BackendResult{Store: s, Cleanup: closer(s)}, nil
}
