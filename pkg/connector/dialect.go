// pkg/connector/dialect.go
package connector

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/David-Botos/saferoads/pkg/converter"
)

// Dialect holds the SQL differences between the supported stores
type Dialect struct {
	name          string
	driverName    string
	maxBindParams int
}

// Dialects by store name
var (
	MySQL     = Dialect{name: converter.StoreMySQL, driverName: "mysql", maxBindParams: 65535}
	Postgres  = Dialect{name: converter.StorePostgres, driverName: "pgx", maxBindParams: 65535}
	Snowflake = Dialect{name: converter.StoreSnowflake, driverName: "snowflake", maxBindParams: 16384}
	SQLite    = Dialect{name: converter.StoreSQLite, driverName: "sqlite", maxBindParams: 32766}
)

// Name returns the store name, as understood by the converter package
func (d Dialect) Name() string {
	return d.name
}

// DriverName returns the database/sql driver name
func (d Dialect) DriverName() string {
	return d.driverName
}

// MaxBindParams is the number of bind parameters one statement may carry
func (d Dialect) MaxBindParams() int {
	return d.maxBindParams
}

// TransactionalDDL reports whether DROP and RENAME can be rolled back
func (d Dialect) TransactionalDDL() bool {
	return d.name == converter.StorePostgres || d.name == converter.StoreSQLite
}

// Rebind converts a query written with ? placeholders to the driver's
// bind variable syntax
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(d.driverName), query)
}

// QuoteIdentifier quotes a table or column name. Column names contain spaces.
func (d Dialect) QuoteIdentifier(name string) string {
	if d.name == converter.StoreMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(name)
}

// QuoteColumns quotes every name and joins them with commas
func (d Dialect) QuoteColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdentifier(name)
	}
	return strings.Join(quoted, ", ")
}

// TableExistsQuery counts the tables named by its single argument in the
// current database and schema
func (d Dialect) TableExistsQuery() string {
	var query string
	switch d.name {
	case converter.StoreMySQL:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	case converter.StoreSQLite:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	default:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = ?"
	}
	return d.Rebind(query)
}

// CreateTable returns the CREATE TABLE statement for the column definitions
func (d Dialect) CreateTable(table string, columnDefs []string) string {
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		d.QuoteIdentifier(table),
		strings.Join(columnDefs, ",\n\t"))
}

// DropTable returns a DROP TABLE IF EXISTS statement
func (d Dialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdentifier(table)
}

// AddPrimaryKey declares column as the key of table. SQLite cannot alter
// constraints, so a unique index stands in for the primary key.
func (d Dialect) AddPrimaryKey(table, column string) string {
	if d.name == converter.StoreSQLite {
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
			d.QuoteIdentifier(table+"_key"),
			d.QuoteIdentifier(table),
			d.QuoteIdentifier(column))
	}
	return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)",
		d.QuoteIdentifier(table),
		d.QuoteIdentifier(column))
}

// RenameTable returns the statement renaming from to to
func (d Dialect) RenameTable(from, to string) string {
	if d.name == converter.StoreMySQL {
		return fmt.Sprintf("RENAME TABLE %s TO %s", d.QuoteIdentifier(from), d.QuoteIdentifier(to))
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdentifier(from), d.QuoteIdentifier(to))
}

// ReplaceTable returns the statements putting staging in place of an
// existing table, and the statements removing what is left afterwards.
// With TransactionalDDL the swap statements run in one transaction;
// otherwise the swap is a single atomic statement.
func (d Dialect) ReplaceTable(table, staging, backup string) (swap []string, cleanup []string) {
	switch d.name {
	case converter.StoreMySQL:
		swap = []string{fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s",
			d.QuoteIdentifier(table), d.QuoteIdentifier(backup),
			d.QuoteIdentifier(staging), d.QuoteIdentifier(table))}
		cleanup = []string{d.DropTable(backup)}
	case converter.StoreSnowflake:
		swap = []string{fmt.Sprintf("ALTER TABLE %s SWAP WITH %s",
			d.QuoteIdentifier(table), d.QuoteIdentifier(staging))}
		cleanup = []string{d.DropTable(staging)}
	default:
		swap = []string{
			"DROP TABLE " + d.QuoteIdentifier(table),
			d.RenameTable(staging, table),
		}
	}
	return swap, cleanup
}

// InsertSelect copies every row of from into to
func (d Dialect) InsertSelect(to, from string, columns []string) string {
	cols := d.QuoteColumns(columns)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		d.QuoteIdentifier(to), cols, cols, d.QuoteIdentifier(from))
}

// DialectFor returns the dialect of a store name
func DialectFor(name string) (Dialect, error) {
	for _, d := range []Dialect{MySQL, Postgres, Snowflake, SQLite} {
		if d.name == name {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("unsupported store %q", name)
}
