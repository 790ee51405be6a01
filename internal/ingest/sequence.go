package ingest

import (
	"strconv"
	"strings"
)

// NextID computes the next free integer identifier for a table's id
// column by re-reading current store content; no counter is kept
// between calls, so the result is correct across process restarts but
// only valid for the duration of one persist call.
//
// The scan walks backwards from the last cell to the first non-empty
// value, which equals the true maximum because the tables are strictly
// append-only with monotonically assigned ids. An empty table yields 1.
func NextID(t Table, idColumn string) (int, error) {
	cols, err := t.Columns()
	if err != nil {
		return 0, err
	}

	idx := -1
	for i, c := range cols {
		if c == idColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, &SchemaError{Table: t.Name(), Column: idColumn}
	}

	cells, err := t.ColumnCells(idx)
	if err != nil {
		return 0, err
	}

	for r := len(cells) - 1; r >= 0; r-- {
		cell := strings.TrimSpace(cells[r])
		if cell == "" {
			continue
		}
		id, err := parseID(cell)
		if err != nil {
			return 0, &CorruptIDError{Table: t.Name(), Column: idColumn, Row: r + 1, Value: cells[r]}
		}
		return id + 1, nil
	}

	return 1, nil
}

// parseID accepts plain integers plus the "42.0" form spreadsheet
// cells sometimes round-trip numeric values through.
func parseID(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}
