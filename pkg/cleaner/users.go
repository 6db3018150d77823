// pkg/cleaner/users.go
package cleaner

import (
	"github.com/David-Botos/saferoads/pkg/model"
)

// CleanUsers cleans one year of users. The safety code is split into gear
// type and gear worn, and the birth year becomes an age relative to year.
// Rows with an absent safety code or birth year are kept with those
// columns NULL.
func (c *DataCleaner) CleanUsers(year int, raws []model.RawUser) ([]model.Row, model.CleaningStats, error) {
	stats := model.CleaningStats{RowsIn: len(raws)}
	rows := make([]model.Row, 0, len(raws))

	for i := range raws {
		raw := &raws[i]
		row, err := userRow(year, raw)
		if err != nil {
			return nil, stats, rowError(model.CategoryUsers, year, "split safety code", i, err)
		}
		if raw.Secu == nil {
			stats.SafetyCodesAbsent++
		}
		if raw.AnNais == nil {
			stats.BirthYearsAbsent++
		}
		rows = append(rows, row)
	}

	stats.RowsOut = len(rows)
	c.logSummary(model.CategoryUsers, year, stats)
	return rows, stats, nil
}

func userRow(year int, raw *model.RawUser) (model.Row, error) {
	row := model.Row{model.ColAccidentID: raw.NumAcc}
	setString(row, model.ColVehicleID, raw.NumVeh)
	setInt(row, "location in vehicle", raw.Place)
	setInt(row, "user type", raw.Catu)
	setInt(row, "severity", raw.Grav)
	setInt(row, "sex", raw.Sexe)
	setInt(row, "journey type", raw.Trajet)
	setInt(row, "pedestrian location", raw.Locp)
	setInt(row, "pedestrian action", raw.Actp)
	setInt(row, "pedestrian company", raw.Etatp)

	if raw.Secu != nil {
		gearType, hasType, gearWorn, err := splitSafetyCode(*raw.Secu)
		if err != nil {
			return nil, err
		}
		if hasType {
			row["safety gear type"] = int64(gearType)
		}
		row["safety gear worn"] = int64(gearWorn)
	}

	if raw.AnNais != nil {
		row["age"] = int64(year - *raw.AnNais)
	}
	return row, nil
}
