package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
)

// Memory is an in-memory store with the same contract as Workbook.
// It backs tests and lets the ingestion core run embedded without a
// workbook on disk. Flush is a no-op beyond counting, since there is
// nothing durable to write.
type Memory struct {
	tables  map[string]*MemTable
	Flushes int
	Closed  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*MemTable)}
}

// AddTable declares a table with the given column order and returns it.
func (m *Memory) AddTable(name string, columns []string) *MemTable {
	t := &MemTable{name: name, columns: columns}
	m.tables[name] = t
	return t
}

// MemOpener returns a StoreOpener handing out the same store on every
// call, mirroring one long-lived destination file.
func (m *Memory) MemOpener() ingest.StoreOpener {
	return func(ctx context.Context) (ingest.Store, error) {
		return m, nil
	}
}

func (m *Memory) Table(name string) (ingest.Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("store has no table %s", name)
	}
	return t, nil
}

func (m *Memory) Flush() error {
	m.Flushes++
	return nil
}

func (m *Memory) Close() error {
	m.Closed = true
	return nil
}

// MemTable is one in-memory table. Rows hold values as appended;
// ColumnCells renders them as strings the way a sheet reader would.
type MemTable struct {
	name    string
	columns []string
	rows    [][]any
}

func (t *MemTable) Name() string { return t.name }

func (t *MemTable) Columns() ([]string, error) {
	return t.columns, nil
}

func (t *MemTable) ColumnCells(index int) ([]string, error) {
	if index < 0 || index >= len(t.columns) {
		return nil, nil
	}
	cells := make([]string, len(t.rows))
	for i, row := range t.rows {
		if index < len(row) && row[index] != nil {
			cells[i] = fmt.Sprint(row[index])
		}
	}
	return cells, nil
}

func (t *MemTable) AppendRow(values []any) error {
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Rows exposes the appended rows for assertions.
func (t *MemTable) Rows() [][]any {
	return t.rows
}
