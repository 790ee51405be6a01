// Package schema declares the recognized field names for the sales
// order tables. Column order is owned by the destination workbook and
// read at persist time; this package only catalogs which field names
// the ingestion core knows how to populate.
package schema

// FieldType represents the expected data type for a table field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldNumeric
	FieldBool
	FieldDate
)

// FieldSpec describes one recognized field of a destination table.
type FieldSpec struct {
	Name  string    // Column name, case-sensitive, must match the sheet header exactly
	Type  FieldType // Expected data type
	Fixed bool      // Value is constant for every ingested row
}

// Missing returns the recognized field names absent from a declared
// column list.
// The destination schema is authoritative, so a missing recognized
// field is a diagnostic, not an error: the adapter simply has nowhere
// to put that value.
func Missing(declared []string, specs []FieldSpec) []string {
	have := make(map[string]bool, len(declared))
	for _, c := range declared {
		have[c] = true
	}
	var missing []string
	for _, s := range specs {
		if !have[s.Name] {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
