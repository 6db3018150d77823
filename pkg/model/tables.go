package model

// Category names one of the four accident tables
type Category string

const (
	CategoryCharacteristics Category = "characteristics"
	CategoryLocations       Category = "locations"
	CategoryVehicles        Category = "vehicles"
	CategoryUsers           Category = "users"
)

// Categories lists the tables in processing order
var Categories = []Category{
	CategoryCharacteristics,
	CategoryLocations,
	CategoryVehicles,
	CategoryUsers,
}

// Semantic column names shared by several tables
const (
	ColAccidentID = "accident id"
	ColVehicleID  = "vehicle id"
	ColIndex      = "index"
)

// SourceName returns the file stem used by the national extracts
func (c Category) SourceName() string {
	switch c {
	case CategoryCharacteristics:
		return "caracteristiques"
	case CategoryLocations:
		return "lieux"
	case CategoryVehicles:
		return "vehicules"
	case CategoryUsers:
		return "usagers"
	default:
		return string(c)
	}
}

// Metadata returns the destination table definition, nil for unknown categories
func (c Category) Metadata() *TableMetadata {
	switch c {
	case CategoryCharacteristics:
		return Characteristics
	case CategoryLocations:
		return Locations
	case CategoryVehicles:
		return Vehicles
	case CategoryUsers:
		return Users
	default:
		return nil
	}
}

// ParseCategory returns the category with the given table name
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

func key(name string, dataType DataType) Column {
	return Column{Name: name, DataType: dataType, IsPrimaryKey: true}
}

func col(name string, dataType DataType) Column {
	return Column{Name: name, DataType: dataType, Nullable: true}
}

// Characteristics is keyed by accident id
var Characteristics = &TableMetadata{
	Table:      string(CategoryCharacteristics),
	PrimaryKey: ColAccidentID,
	Columns: []Column{
		key(ColAccidentID, TypeBigInt),
		col("luminosity", TypeInteger),
		col("in city", TypeInteger),
		col("intersect type", TypeInteger),
		col("weather", TypeInteger),
		col("collision type", TypeInteger),
		col("city id", TypeInteger),
		col("area id", TypeInteger),
		{Name: "datetime", DataType: TypeTimestamp},
	},
}

var locationColumns = []Column{
	col("road type", TypeInteger),
	col("traffic mode", TypeInteger),
	col("nb lanes", TypeInteger),
	col("reserved lane", TypeInteger),
	col("road profil", TypeInteger),
	col("road alignment", TypeInteger),
	col("central reservation", TypeFloat),
	col("road width", TypeFloat),
	col("road surface", TypeInteger),
	col("installations", TypeInteger),
	col("location", TypeInteger),
	col("school distance", TypeInteger),
}

// Locations is keyed by accident id, one location per accident
var Locations = &TableMetadata{
	Table:      string(CategoryLocations),
	PrimaryKey: ColAccidentID,
	Columns:    append([]Column{key(ColAccidentID, TypeBigInt)}, locationColumns...),
}

// LocationsByIndex is the locations table when an accident may have
// several location rows. It is keyed by the row index like vehicles.
var LocationsByIndex = &TableMetadata{
	Table:      string(CategoryLocations),
	PrimaryKey: ColIndex,
	RowIndex:   true,
	Columns: append([]Column{
		key(ColIndex, TypeBigInt),
		{Name: ColAccidentID, DataType: TypeBigInt},
	}, locationColumns...),
}

// Vehicles holds many rows per accident and is keyed by the row index
var Vehicles = &TableMetadata{
	Table:      string(CategoryVehicles),
	PrimaryKey: ColIndex,
	RowIndex:   true,
	Columns: []Column{
		key(ColIndex, TypeBigInt),
		{Name: ColAccidentID, DataType: TypeBigInt},
		col(ColVehicleID, TypeVarchar),
		col("vehicle type", TypeInteger),
		col("fixed obj hit", TypeInteger),
		col("moving obj hit", TypeInteger),
		col("impact location", TypeInteger),
		col("maneuver", TypeInteger),
		col("nb occupants public transit", TypeInteger),
	},
}

// Users holds many rows per accident and is keyed by the row index
var Users = &TableMetadata{
	Table:      string(CategoryUsers),
	PrimaryKey: ColIndex,
	RowIndex:   true,
	Columns: []Column{
		key(ColIndex, TypeBigInt),
		{Name: ColAccidentID, DataType: TypeBigInt},
		col(ColVehicleID, TypeVarchar),
		col("location in vehicle", TypeInteger),
		col("user type", TypeInteger),
		col("severity", TypeInteger),
		col("sex", TypeInteger),
		col("journey type", TypeInteger),
		col("pedestrian location", TypeInteger),
		col("pedestrian action", TypeInteger),
		col("pedestrian company", TypeInteger),
		col("safety gear type", TypeInteger),
		col("safety gear worn", TypeInteger),
		col("age", TypeInteger),
	},
}

// VehicleTypes is the reference table of dense vehicle type codes
var VehicleTypes = &TableMetadata{
	Table:      "vehicle_types",
	PrimaryKey: "code",
	Columns: []Column{
		key("code", TypeInteger),
		col("label", TypeText),
		col("weight kg", TypeInteger),
	},
}
