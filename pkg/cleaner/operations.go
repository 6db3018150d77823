// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"time"

	"github.com/David-Botos/saferoads/pkg/model"
)

// timestampLayout is the two-digit year rule of the extracts: YY-MM-DD HHMM
const timestampLayout = "06-01-02 1504"

// overseasAreaThreshold separates the mainland area ids, which carry a
// spurious trailing digit, from the overseas ones (971, 973, 974, 976).
const overseasAreaThreshold = 970

// combineDateTime builds the accident timestamp from the four date fields
func combineDateTime(an, mois, jour, hrmn *int) (time.Time, error) {
	if an == nil || mois == nil || jour == nil || hrmn == nil {
		return time.Time{}, fmt.Errorf("%w: missing date or time field", model.ErrMalformedTimestamp)
	}

	stringAll := fmt.Sprintf("%02d-%02d-%02d %04d", *an, *mois, *jour, *hrmn)
	t, err := time.Parse(timestampLayout, stringAll)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", model.ErrMalformedTimestamp, stringAll, err)
	}
	return t, nil
}

// correctAreaID removes the trailing digit of mainland area ids.
// It reports whether the value changed.
func correctAreaID(dep int) (int, bool) {
	if dep < overseasAreaThreshold {
		return dep / 10, true
	}
	return dep, false
}

// splitSafetyCode splits the two-digit safety code into gear type (tens)
// and gear worn (units). hasType is false for single-digit codes.
func splitSafetyCode(secu int) (gearType int, hasType bool, gearWorn int, err error) {
	if secu < 0 || secu > 99 {
		return 0, false, 0, fmt.Errorf("invalid safety code %d", secu)
	}
	safetyChar := fmt.Sprintf("%2d", secu)
	if safetyChar[0] != ' ' {
		gearType = int(safetyChar[0] - '0')
		hasType = true
	}
	gearWorn = int(safetyChar[1] - '0')
	return gearType, hasType, gearWorn, nil
}

// firstDuplicate returns the positions of the first repeated accident id
func firstDuplicate(rows []model.Row) (first, dup int, found bool) {
	seen := make(map[interface{}]int, len(rows))
	for i, row := range rows {
		id := row[model.ColAccidentID]
		if prev, ok := seen[id]; ok {
			return prev, i, true
		}
		seen[id] = i
	}
	return 0, 0, false
}

// checkUniqueAccidentIDs enforces one row per accident id within a year
func checkUniqueAccidentIDs(category model.Category, year int, rows []model.Row) error {
	first, dup, found := firstDuplicate(rows)
	if !found {
		return nil
	}
	return rowError(category, year, "verify unique accident id", dup,
		fmt.Errorf("%w: accident id %v already at row %d",
			model.ErrDuplicateKey, rows[dup][model.ColAccidentID], first+1))
}

// Helper functions: absent values leave the column out of the row (NULL)

func setInt(row model.Row, name string, v *int) {
	if v != nil {
		row[name] = int64(*v)
	}
}

func setFloat(row model.Row, name string, v *float64) {
	if v != nil {
		row[name] = *v
	}
}

func setString(row model.Row, name string, v string) {
	if v != "" {
		row[name] = v
	}
}
