// Package store provides the destination row stores for ingested
// orders: an xlsx workbook for production and an in-memory
// implementation with the same contract.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Workbook is an open handle on one xlsx file. The file is read into
// memory on Open, mutated there, and written back as a whole on Flush;
// other readers never observe partial writes.
type Workbook struct {
	path string
	f    *excelize.File
}

// Open loads the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, f: f}, nil
}

// Opener returns a StoreOpener acquiring a fresh handle on path for
// each persist call.
func Opener(path string) ingest.StoreOpener {
	return func(ctx context.Context) (ingest.Store, error) {
		return Open(path)
	}
}

// Table returns the named sheet. The sheet must already exist; this
// store never creates schema.
func (w *Workbook) Table(name string) (ingest.Table, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", name, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet %s", w.path, name)
	}
	return &sheet{wb: w, name: name}, nil
}

// Flush writes the workbook back to disk. The content is saved to a
// temporary file in the same directory and renamed over the original
// so a concurrent reader sees either the old file or the new one,
// never a truncated write.
func (w *Workbook) Flush() error {
	dir := filepath.Dir(w.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(w.path), uuid.NewString()[:8]))

	if err := w.f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

// Close releases the handle without writing.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// sheet adapts one worksheet to the ingest.Table contract. Row 1 holds
// the authoritative column order; data rows start at row 2.
type sheet struct {
	wb   *Workbook
	name string
}

func (s *sheet) Name() string { return s.name }

func (s *sheet) Columns() ([]string, error) {
	rows, err := s.wb.f.GetRows(s.name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *sheet) ColumnCells(index int) ([]string, error) {
	cols, err := s.wb.f.GetCols(s.name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.name, err)
	}
	if index < 0 || index >= len(cols) {
		return nil, nil
	}
	col := cols[index]
	if len(col) <= 1 {
		return nil, nil
	}
	return col[1:], nil
}

func (s *sheet) AppendRow(values []any) error {
	rows, err := s.wb.f.GetRows(s.name)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", s.name, err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	if err := s.wb.f.SetSheetRow(s.name, cell, &values); err != nil {
		return fmt.Errorf("append to sheet %s: %w", s.name, err)
	}
	return nil
}
