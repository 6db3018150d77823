// pkg/model/cleaning.go
package model

// CleaningStats counts what a cleaner did to one year of raw rows.
// Absent values are not errors; they are counted so the summary shows them.
type CleaningStats struct {
	RowsIn               int
	RowsOut              int
	AreaIDsCorrected     int // area ids divided by 10
	VehicleTypesRemapped int // vehicle type codes replaced by their dense code
	SafetyCodesAbsent    int // users rows emitted without safety gear fields
	BirthYearsAbsent     int // users rows emitted with a NULL age
}

// Add accumulates other into s
func (s *CleaningStats) Add(other CleaningStats) {
	s.RowsIn += other.RowsIn
	s.RowsOut += other.RowsOut
	s.AreaIDsCorrected += other.AreaIDsCorrected
	s.VehicleTypesRemapped += other.VehicleTypesRemapped
	s.SafetyCodesAbsent += other.SafetyCodesAbsent
	s.BirthYearsAbsent += other.BirthYearsAbsent
}

// Operations returns the number of value-level corrections
func (s CleaningStats) Operations() int {
	return s.AreaIDsCorrected + s.VehicleTypesRemapped
}
