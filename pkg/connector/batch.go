// pkg/connector/batch.go
package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// TableExists reports whether table exists in the current database
func TableExists(ctx context.Context, q sqlx.QueryerContext, dialect Dialect, table string) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, dialect.TableExistsQuery(), table); err != nil {
		return false, fmt.Errorf("failed to check if table %s exists: %w", table, err)
	}
	return count > 0, nil
}

// BatchSize caps requested so one INSERT of columns columns stays within
// the store's bind parameter limit
func BatchSize(dialect Dialect, requested, columns int) int {
	if columns <= 0 {
		return requested
	}
	limit := dialect.MaxBindParams() / columns
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

// BatchInsert performs a bulk insert into a table, one multi-row INSERT per
// batch. It returns the number of rows written before any failure.
func BatchInsert(
	ctx context.Context,
	exec sqlx.ExecerContext,
	dialect Dialect,
	table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}

	batchSize = BatchSize(dialect, batchSize, len(columns))

	// Build the base query
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		dialect.QuoteIdentifier(table), dialect.QuoteColumns(columns))
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var totalRowsInserted int64

	// Process in batches
	for i := 0; i < len(valueRows); i += batchSize {
		end := i + batchSize
		if end > len(valueRows) {
			end = len(valueRows)
		}

		currentBatch := valueRows[i:end]

		placeholders := make([]string, len(currentBatch))
		args := make([]interface{}, 0, len(currentBatch)*len(columns))
		for j, row := range currentBatch {
			if len(row) != len(columns) {
				return totalRowsInserted, fmt.Errorf("row %d has %d values for %d columns", i+j+1, len(row), len(columns))
			}
			placeholders[j] = rowPlaceholder
			args = append(args, row...)
		}

		query := dialect.Rebind(prefix + strings.Join(placeholders, ", "))
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return totalRowsInserted, fmt.Errorf("batch insert of rows %d-%d failed: %w", i+1, end, err)
		}
		totalRowsInserted += int64(len(currentBatch))
	}

	return totalRowsInserted, nil
}
