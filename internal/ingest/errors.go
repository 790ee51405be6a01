package ingest

import "fmt"

// SchemaError reports a destination table missing a column the
// ingestion core requires. It is fatal and raised before any row is
// written.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s does not declare column %s", e.Table, e.Column)
}

// CorruptIDError reports a non-integer value found in an identifier
// column. Identifier integrity is the one hard invariant of the
// system, so the allocator fails loudly instead of skipping the cell.
type CorruptIDError struct {
	Table  string
	Column string
	Row    int // 1-based data row, excluding the header
	Value  string
}

func (e *CorruptIDError) Error() string {
	return fmt.Sprintf("table %s column %s row %d: identifier %q is not an integer",
		e.Table, e.Column, e.Row, e.Value)
}
