// pkg/cleaner/characteristics.go
package cleaner

import (
	"github.com/David-Botos/saferoads/pkg/model"
)

// CleanCharacteristics cleans one year of accident characteristics.
// Address and GPS fields are dropped, the date fields become one datetime
// and mainland area ids lose their trailing digit.
func (c *DataCleaner) CleanCharacteristics(year int, raws []model.RawCharacteristics) ([]model.Row, model.CleaningStats, error) {
	stats := model.CleaningStats{RowsIn: len(raws)}
	rows := make([]model.Row, 0, len(raws))

	for i := range raws {
		row, corrected, err := characteristicsRow(&raws[i])
		if err != nil {
			return nil, stats, rowError(model.CategoryCharacteristics, year, "combine datetime", i, err)
		}
		if corrected {
			stats.AreaIDsCorrected++
		}
		rows = append(rows, row)
	}

	if err := checkUniqueAccidentIDs(model.CategoryCharacteristics, year, rows); err != nil {
		return nil, stats, err
	}

	stats.RowsOut = len(rows)
	c.logSummary(model.CategoryCharacteristics, year, stats)
	return rows, stats, nil
}

func characteristicsRow(raw *model.RawCharacteristics) (model.Row, bool, error) {
	datetime, err := combineDateTime(raw.An, raw.Mois, raw.Jour, raw.Hrmn)
	if err != nil {
		return nil, false, err
	}

	row := model.Row{
		model.ColAccidentID: raw.NumAcc,
		"datetime":          datetime,
	}
	setInt(row, "luminosity", raw.Lum)
	setInt(row, "in city", raw.Agg)
	setInt(row, "intersect type", raw.Int)
	setInt(row, "weather", raw.Atm)
	setInt(row, "collision type", raw.Col)
	setInt(row, "city id", raw.Com)

	corrected := false
	if raw.Dep != nil {
		var areaID int
		areaID, corrected = correctAreaID(*raw.Dep)
		row["area id"] = int64(areaID)
	}
	return row, corrected, nil
}
