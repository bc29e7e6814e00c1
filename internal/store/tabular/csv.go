package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CSVDir stores each table as <dir>/<table>.csv with a header row.
type CSVDir struct {
	dir string
}

// NewCSVDir creates the directory if needed.
func NewCSVDir(dir string) (*CSVDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &CSVDir{dir: dir}, nil
}

// Dir returns the directory holding the table files.
func (c *CSVDir) Dir() string {
	return c.dir
}

func (c *CSVDir) path(table string) string {
	return filepath.Join(c.dir, table+".csv")
}

func (c *CSVDir) Load(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return records, nil
}

// Save writes to a temporary file and renames it over the table so readers
// never observe a partially written table.
func (c *CSVDir) Save(ctx context.Context, table string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, table+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", table, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", table, err)
	}
	if err := os.Rename(tmp.Name(), c.path(table)); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	return nil
}
