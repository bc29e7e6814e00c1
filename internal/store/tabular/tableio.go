package tabular

import (
	"context"
	"sync"
)

// TableIO reads and replaces whole tables. Records include the header row.
// Load returns no records and no error for a table that does not exist yet.
type TableIO interface {
	Load(ctx context.Context, table string) ([][]string, error)
	Save(ctx context.Context, table string, records [][]string) error
}

// Memory keeps tables in process memory. Used for demos and tests.
type Memory struct {
	mu     sync.Mutex
	tables map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

func (m *Memory) Load(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecords(m.tables[table]), nil
}

func (m *Memory) Save(ctx context.Context, table string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = cloneRecords(records)
	return nil
}

func cloneRecords(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = append([]string(nil), r...)
	}
	return out
}
