// pkg/model/metadata.go
package model

// DataType is the store-independent type of a column. The converter maps it
// to the SQL type of the destination dialect.
type DataType string

const (
	TypeBigInt    DataType = "BIGINT"
	TypeInteger   DataType = "INTEGER"
	TypeFloat     DataType = "FLOAT"
	TypeTimestamp DataType = "TIMESTAMP"
	TypeVarchar   DataType = "VARCHAR" // short codes
	TypeText      DataType = "TEXT"    // labels
)

// TableMetadata contains the structure information for a destination table
type TableMetadata struct {
	Table      string   // Table name
	Columns    []Column // Column definitions, in insert order
	PrimaryKey string   // Column declared as primary key after loading
	RowIndex   bool     // PrimaryKey is the surrogate row index assigned during aggregation
}

// Column represents metadata about a destination column
type Column struct {
	Name         string   // Semantic column name
	DataType     DataType // Store-independent type
	Nullable     bool     // Whether column allows NULL values
	IsPrimaryKey bool     // Whether column is the primary key
}

// ColumnNames returns the column names in insert order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}
