// pkg/cleaner/locations.go
package cleaner

import (
	"github.com/David-Botos/saferoads/pkg/model"
)

// CleanLocations cleans one year of accident locations. Road number and
// marker fields are dropped. Accident ids are only required to be unique
// when Options.UniqueLocations is set; otherwise the rows go to the
// index-keyed table returned by Table.
func (c *DataCleaner) CleanLocations(year int, raws []model.RawLocation) ([]model.Row, model.CleaningStats, error) {
	stats := model.CleaningStats{RowsIn: len(raws)}
	rows := make([]model.Row, 0, len(raws))

	for i := range raws {
		rows = append(rows, locationRow(&raws[i]))
	}

	if c.opts.UniqueLocations {
		if err := checkUniqueAccidentIDs(model.CategoryLocations, year, rows); err != nil {
			return nil, stats, err
		}
	}

	stats.RowsOut = len(rows)
	c.logSummary(model.CategoryLocations, year, stats)
	return rows, stats, nil
}

func locationRow(raw *model.RawLocation) model.Row {
	row := model.Row{model.ColAccidentID: raw.NumAcc}
	setInt(row, "road type", raw.Catr)
	setInt(row, "traffic mode", raw.Circ)
	setInt(row, "nb lanes", raw.Nbv)
	setInt(row, "reserved lane", raw.Vosp)
	setInt(row, "road profil", raw.Prof)
	setInt(row, "road alignment", raw.Plan)
	setFloat(row, "central reservation", raw.Lartpc)
	setFloat(row, "road width", raw.Larrout)
	setInt(row, "road surface", raw.Surf)
	setInt(row, "installations", raw.Infra)
	setInt(row, "location", raw.Situ)
	setInt(row, "school distance", raw.Env1)
	return row
}
