package ingest

// AlignRow positions a sparse field mapping against a table's declared
// column order, producing one value per column. Columns absent from
// the mapping become nil; mapping keys the schema does not declare are
// silently dropped. The destination schema is the single source of
// truth, so neither case is an error.
func AlignRow(columns []string, fields map[string]any) []any {
	row := make([]any, len(columns))
	for i, col := range columns {
		if v, ok := fields[col]; ok {
			row[i] = v
		}
	}
	return row
}
