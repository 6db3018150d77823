// pkg/cleaner/vehicles.go
package cleaner

import (
	"fmt"
	"sort"

	"github.com/David-Botos/saferoads/pkg/model"
	"github.com/David-Botos/saferoads/pkg/reference"
)

// CleanVehicles cleans one year of vehicles. The direction field is dropped
// and vehicle type codes are replaced by dense codes according to the
// configured VehicleTypeMode.
func (c *DataCleaner) CleanVehicles(year int, raws []model.RawVehicle) ([]model.Row, model.CleaningStats, error) {
	stats := model.CleaningStats{RowsIn: len(raws)}
	rows := make([]model.Row, 0, len(raws))
	mapping := c.vehicleTypeMapping(raws)

	for i := range raws {
		row, remapped, err := vehicleRow(&raws[i], mapping)
		if err != nil {
			return nil, stats, rowError(model.CategoryVehicles, year, "remap vehicle type", i, err)
		}
		if remapped {
			stats.VehicleTypesRemapped++
		}
		rows = append(rows, row)
	}

	stats.RowsOut = len(rows)
	c.logSummary(model.CategoryVehicles, year, stats)
	return rows, stats, nil
}

func (c *DataCleaner) vehicleTypeMapping(raws []model.RawVehicle) map[int]int {
	if c.opts.VehicleTypeMode == VehicleTypesGlobal {
		return reference.SourceVehicleCodes
	}
	return denseRanks(raws)
}

// denseRanks ranks the distinct vehicle type codes of a year, 1 for the
// smallest code
func denseRanks(raws []model.RawVehicle) map[int]int {
	distinct := make(map[int]struct{})
	for i := range raws {
		if raws[i].Catv != nil {
			distinct[*raws[i].Catv] = struct{}{}
		}
	}

	codes := make([]int, 0, len(distinct))
	for code := range distinct {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	ranks := make(map[int]int, len(codes))
	for i, code := range codes {
		ranks[code] = i + 1
	}
	return ranks
}

func vehicleRow(raw *model.RawVehicle, mapping map[int]int) (model.Row, bool, error) {
	row := model.Row{model.ColAccidentID: raw.NumAcc}
	setString(row, model.ColVehicleID, raw.NumVeh)

	remapped := false
	if raw.Catv != nil {
		dense, ok := mapping[*raw.Catv]
		if !ok {
			return nil, false, fmt.Errorf("%w: code %d", model.ErrUnknownVehicleType, *raw.Catv)
		}
		row["vehicle type"] = int64(dense)
		remapped = dense != *raw.Catv
	}

	setInt(row, "fixed obj hit", raw.Obs)
	setInt(row, "moving obj hit", raw.Obsm)
	setInt(row, "impact location", raw.Choc)
	setInt(row, "maneuver", raw.Manv)
	setInt(row, "nb occupants public transit", raw.Occutc)
	return row, remapped, nil
}
