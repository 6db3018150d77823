package transfer

import (
	"context"
	"sort"

	"github.com/David-Botos/saferoads/pkg/model"
)

// YearCleaner reads and cleans one year of a category
type YearCleaner func(ctx context.Context, year int) ([]model.Row, model.CleaningStats, error)

// Aggregate cleans each requested year in ascending order and concatenates
// the rows into one table. Tables keyed by the row index get a fresh 0-based
// index over the concatenation. Any year failing aborts the aggregation.
func Aggregate(ctx context.Context, meta *model.TableMetadata, years []int, clean YearCleaner) (*model.Table, model.CleaningStats, error) {
	var stats model.CleaningStats
	table := model.NewTable(meta)

	for _, year := range normalizeYears(years) {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		rows, yearStats, err := clean(ctx, year)
		if err != nil {
			return nil, stats, err
		}
		table.Append(rows...)
		stats.Add(yearStats)
	}

	if meta.RowIndex {
		for i, row := range table.Rows {
			row[model.ColIndex] = int64(i)
		}
	}

	return table, stats, nil
}

// normalizeYears returns the years sorted ascending without repeats
func normalizeYears(years []int) []int {
	out := append([]int(nil), years...)
	sort.Ints(out)

	n := 0
	for i, year := range out {
		if i > 0 && year == out[n-1] {
			continue
		}
		out[n] = year
		n++
	}
	return out[:n]
}
