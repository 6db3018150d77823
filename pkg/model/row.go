package model

// Row maps semantic column names to typed values (int64, float64, string,
// time.Time). A column missing from the map is NULL.
type Row map[string]interface{}

// Table is the union of cleaned rows of one category across years
type Table struct {
	Metadata *TableMetadata
	Rows     []Row
}

// NewTable creates an empty table for the given metadata
func NewTable(metadata *TableMetadata) *Table {
	return &Table{Metadata: metadata, Rows: make([]Row, 0)}
}

// Append adds rows after the existing ones, preserving their order
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}
