// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/model"
)

// VehicleTypeMode selects how raw vehicle type codes become dense codes
type VehicleTypeMode string

const (
	// VehicleTypesPerYear ranks the distinct codes of each year on its own.
	// The same code can get a different dense code in another year.
	VehicleTypesPerYear VehicleTypeMode = "per-year"
	// VehicleTypesGlobal uses one fixed table for every year
	VehicleTypesGlobal VehicleTypeMode = "global"
)

// ParseVehicleTypeMode validates a mode name
func ParseVehicleTypeMode(s string) (VehicleTypeMode, error) {
	switch VehicleTypeMode(s) {
	case VehicleTypesPerYear, VehicleTypesGlobal:
		return VehicleTypeMode(s), nil
	case "":
		return VehicleTypesPerYear, nil
	default:
		return "", fmt.Errorf("unknown vehicle type mapping %q (want %q or %q)",
			s, VehicleTypesPerYear, VehicleTypesGlobal)
	}
}

// Options are the caller-visible cleaning policies
type Options struct {
	VehicleTypeMode VehicleTypeMode
	// UniqueLocations rejects a year whose locations repeat an accident id
	UniqueLocations bool
}

// DefaultOptions returns the behavior of the historical loader
func DefaultOptions() Options {
	return Options{
		VehicleTypeMode: VehicleTypesPerYear,
		UniqueLocations: false,
	}
}

// DataCleaner turns one year of raw rows into cleaned rows. It holds no
// per-run state; every Clean* call depends only on its arguments.
type DataCleaner struct {
	opts   Options
	logger *zap.Logger
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(opts Options, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	mode, err := ParseVehicleTypeMode(string(opts.VehicleTypeMode))
	if err != nil {
		return nil, err
	}
	opts.VehicleTypeMode = mode

	return &DataCleaner{
		opts:   opts,
		logger: logger.Named("cleaner"),
	}, nil
}

// Options returns the policies in effect
func (c *DataCleaner) Options() Options {
	return c.opts
}

// Table returns the destination definition of the rows cleaned for
// category. Locations are keyed by accident id only when the cleaner
// enforces one location per accident; otherwise by the row index.
func (c *DataCleaner) Table(category model.Category) *model.TableMetadata {
	if category == model.CategoryLocations && !c.opts.UniqueLocations {
		return model.LocationsByIndex
	}
	return category.Metadata()
}

func (c *DataCleaner) logSummary(category model.Category, year int, stats model.CleaningStats) {
	c.logger.Info("Cleaned year",
		zap.String("category", string(category)),
		zap.Int("year", year),
		zap.Int("rowsIn", stats.RowsIn),
		zap.Int("rowsOut", stats.RowsOut),
		zap.Int("areaIdsCorrected", stats.AreaIDsCorrected),
		zap.Int("vehicleTypesRemapped", stats.VehicleTypesRemapped),
		zap.Int("safetyCodesAbsent", stats.SafetyCodesAbsent),
		zap.Int("birthYearsAbsent", stats.BirthYearsAbsent))
}

// rowError locates a failure on a 0-based position of the year's rows
func rowError(category model.Category, year int, step string, pos int, err error) error {
	return &model.StepError{
		Category: string(category),
		Year:     year,
		Step:     step,
		Row:      pos + 1,
		Err:      err,
	}
}
