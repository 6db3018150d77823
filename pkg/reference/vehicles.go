// Package reference holds the static vehicle lookup tables. The tables are
// keyed by the dense vehicle type code (1..24) produced by the vehicles
// cleaner.
package reference

import (
	"sort"

	"github.com/David-Botos/saferoads/pkg/model"
)

// VehicleType describes one dense vehicle type code
type VehicleType struct {
	Code     int
	Label    string
	WeightKg int // average mass including the occupant for two-wheelers
}

// VehicleTypes maps the dense code to its label
var VehicleTypes = map[int]string{
	1:  "Bicycle",
	2:  "Moped <50cm3",
	3:  "Motorised quadricycle",
	4:  "Car",
	5:  "Light commercial vehicle",
	6:  "Large goods vehicle alone 3.5T< GVWR <=7.5T",
	7:  "Large goods vehicle alone 7.5T> GVWR",
	8:  "Large goods vehicle +trailer 3.5T> GVWR",
	9:  "Tractor unit alone",
	10: "Tractor unit with trailer",
	11: "Oversize load",
	12: "Agric. tractor",
	13: "Motor scooter <50cm3",
	14: "Motorcycle >50cm3 and <=125cm3",
	15: "Motor scooter >50cm3 and <=125cm3",
	16: "Motorcycle >125cm3",
	17: "Motor scooter >125cm3",
	18: "Quad bike <=50cm3",
	19: "Quad bike >50cm3",
	20: "Bus",
	21: "Coach (bus)",
	22: "Train",
	23: "Tramway",
	24: "Other",
}

// VehicleWeights maps the dense code to an average mass in kg
var VehicleWeights = map[int]int{
	1:  80,  // adult ~70kg + bike
	2:  180, // moped ~90kg + adult
	3:  550,
	4:  1200,
	5:  2500,
	6:  5500,
	7:  9500,
	8:  11000,
	9:  5500,
	10: 15000,
	11: 30000,
	12: 4000,
	13: 160, // scooter 90kg + adult
	14: 220, // motorcycle 150kg + adult
	15: 190, // scooter 120kg + adult
	16: 270, // motorcycle 200kg + adult
	17: 210, // scooter 140kg + adult
	18: 170, // quad ~100kg + adult
	19: 270, // quad ~200kg + adult
	20: 14000,
	21: 17000,
	22: 200000,
	23: 60000,
	24: 5000, // assume the remaining vehicles are rather heavy
}

// SourceVehicleCodes maps the catv codes of the 2010-2014 extracts to the
// dense code. It is the stable alternative to the per-year dense rank.
var SourceVehicleCodes = map[int]int{
	1:  1,
	2:  2,
	3:  3,
	7:  4,
	10: 5,
	13: 6,
	14: 7,
	15: 8,
	16: 9,
	17: 10,
	20: 11,
	21: 12,
	30: 13,
	31: 14,
	32: 15,
	33: 16,
	34: 17,
	35: 18,
	36: 19,
	37: 20,
	38: 21,
	39: 22,
	40: 23,
	99: 24,
}

// Lookup returns the label and weight for a dense code
func Lookup(code int) (VehicleType, bool) {
	label, ok := VehicleTypes[code]
	if !ok {
		return VehicleType{}, false
	}
	return VehicleType{Code: code, Label: label, WeightKg: VehicleWeights[code]}, true
}

// All returns every vehicle type ordered by code
func All() []VehicleType {
	types := make([]VehicleType, 0, len(VehicleTypes))
	for code := range VehicleTypes {
		vt, _ := Lookup(code)
		types = append(types, vt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return types
}

// Table returns the vehicle types as rows of model.VehicleTypes
func Table() *model.Table {
	table := model.NewTable(model.VehicleTypes)
	for _, vt := range All() {
		table.Append(model.Row{
			"code":      int64(vt.Code),
			"label":     vt.Label,
			"weight kg": int64(vt.WeightKg),
		})
	}
	return table
}
