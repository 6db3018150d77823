// pkg/converter/mapping.go
package converter

import (
	"fmt"

	"github.com/David-Botos/saferoads/pkg/model"
)

// Store names understood by ConfigFor
const (
	StoreMySQL     = "mysql"
	StorePostgres  = "postgres"
	StoreSnowflake = "snowflake"
	StoreSQLite    = "sqlite"
)

// vehicleIDLength bounds the num_veh codes ("A01", "B02", "Z99"...)
const vehicleIDLength = 16

var typeMappings = map[string]map[model.DataType]string{
	StoreMySQL: {
		model.TypeBigInt:    "BIGINT",
		model.TypeInteger:   "INT",
		model.TypeFloat:     "DOUBLE",
		model.TypeTimestamp: "DATETIME",
		model.TypeVarchar:   fmt.Sprintf("VARCHAR(%d)", vehicleIDLength),
		model.TypeText:      "VARCHAR(255)",
	},
	StorePostgres: {
		model.TypeBigInt:    "BIGINT",
		model.TypeInteger:   "INTEGER",
		model.TypeFloat:     "DOUBLE PRECISION",
		model.TypeTimestamp: "TIMESTAMP",
		model.TypeVarchar:   fmt.Sprintf("VARCHAR(%d)", vehicleIDLength),
		model.TypeText:      "TEXT",
	},
	StoreSnowflake: {
		model.TypeBigInt:    "NUMBER(19,0)",
		model.TypeInteger:   "NUMBER(10,0)",
		model.TypeFloat:     "FLOAT",
		model.TypeTimestamp: "TIMESTAMP_NTZ",
		model.TypeVarchar:   fmt.Sprintf("VARCHAR(%d)", vehicleIDLength),
		model.TypeText:      "VARCHAR",
	},
	// SQLite type affinity; declared names still drive time.Time scanning
	StoreSQLite: {
		model.TypeBigInt:    "INTEGER",
		model.TypeInteger:   "INTEGER",
		model.TypeFloat:     "REAL",
		model.TypeTimestamp: "TIMESTAMP",
		model.TypeVarchar:   "TEXT",
		model.TypeText:      "TEXT",
	},
}

// ConfigFor returns the type configuration of a store
func ConfigFor(store string) (TypeConverterConfig, error) {
	types, ok := typeMappings[store]
	if !ok {
		return TypeConverterConfig{}, fmt.Errorf("no type mapping for store %q", store)
	}

	cfg := DefaultConfig()
	cfg.Store = store
	cfg.Types = types
	return cfg, nil
}
