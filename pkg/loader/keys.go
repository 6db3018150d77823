// pkg/loader/keys.go
package loader

import (
	"fmt"
	"strings"

	"github.com/David-Botos/saferoads/pkg/model"
)

// maxReportedViolations bounds the violations listed in an error message
const maxReportedViolations = 10

// KeyViolation is one row whose key cannot be stored
type KeyViolation struct {
	Row    int // 1-based position in the aggregated table
	Key    interface{}
	Reason string
}

// KeyConstraintError lists the rows breaking the primary key of a table
type KeyConstraintError struct {
	Table      string
	Column     string
	Violations []KeyViolation // at most maxReportedViolations
	Total      int
}

func (e *KeyConstraintError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("row %d %v: %s", v.Row, v.Key, v.Reason))
	}
	msg := fmt.Sprintf("%s: %d rows violate key %q: %s",
		model.ErrKeyConstraintViolation, e.Total, e.Column, strings.Join(parts, "; "))
	if e.Total > len(e.Violations) {
		msg += fmt.Sprintf("; and %d more", e.Total-len(e.Violations))
	}
	return msg
}

func (e *KeyConstraintError) Unwrap() error {
	return model.ErrKeyConstraintViolation
}

func (e *KeyConstraintError) add(v KeyViolation) {
	e.Total++
	if len(e.Violations) < maxReportedViolations {
		e.Violations = append(e.Violations, v)
	}
}

// checkKeys verifies every row has a key, no key repeats, and no key is
// already stored in the destination (existing may be nil)
func checkKeys(table *model.Table, existing map[interface{}]struct{}) error {
	column := table.Metadata.PrimaryKey
	violations := &KeyConstraintError{Table: table.Metadata.Table, Column: column}
	seen := make(map[interface{}]int, len(table.Rows))

	for i, row := range table.Rows {
		key, ok := row[column]
		switch {
		case !ok || key == nil:
			violations.add(KeyViolation{Row: i + 1, Reason: "missing key"})
			continue
		case existing != nil:
			if _, found := existing[key]; found {
				violations.add(KeyViolation{Row: i + 1, Key: key, Reason: "already in destination"})
				continue
			}
		}

		if first, dup := seen[key]; dup {
			violations.add(KeyViolation{Row: i + 1, Key: key, Reason: fmt.Sprintf("duplicate of row %d", first)})
			continue
		}
		seen[key] = i + 1
	}

	if violations.Total > 0 {
		return violations
	}
	return nil
}

// offsetIndex shifts the surrogate index of every row by offset
func offsetIndex(rows []model.Row, offset int64) error {
	if offset == 0 {
		return nil
	}
	for i, row := range rows {
		index, ok := row[model.ColIndex].(int64)
		if !ok {
			return fmt.Errorf("row %d: index is %T, not int64", i+1, row[model.ColIndex])
		}
		row[model.ColIndex] = index + offset
	}
	return nil
}
