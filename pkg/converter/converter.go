// pkg/converter/converter.go
package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/model"
)

// TypeConverter handles mapping and conversion of data types and values
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Store the types are written for
	Store string
	// SQL type of each generic column type
	Types map[model.DataType]string
	// Whether to treat empty strings as NULL
	EmptyStringAsNull bool
}

// DefaultConfig returns the default configuration, with no type table
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		EmptyStringAsNull: true,
	}
}

// NewTypeConverter creates a TypeConverter for the named store
func NewTypeConverter(logger *zap.Logger, store string) (*TypeConverter, error) {
	config, err := ConfigFor(store)
	if err != nil {
		return nil, err
	}
	return NewTypeConverterWithConfig(logger, config), nil
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// SQLType returns the store type of a generic column type
func (c *TypeConverter) SQLType(dataType model.DataType) (string, error) {
	sqlType, ok := c.config.Types[dataType]
	if !ok {
		return "", fmt.Errorf("no %s type for %s", c.config.Store, dataType)
	}
	return sqlType, nil
}

// GenerateColumnDefinitions creates column definitions for CREATE TABLE.
// quote escapes identifiers for the store.
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata, quote func(string) string) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns))

	for _, col := range metadata.Columns {
		sqlType, err := c.SQLType(col.DataType)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		nullability := "NULL"
		if col.IsPrimaryKey || !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			quote(col.Name),
			sqlType,
			nullability))
	}

	return definitions, nil
}

// ConvertRow returns the values of row ordered like the metadata columns,
// converted for the store
func (c *TypeConverter) ConvertRow(metadata *model.TableMetadata, row model.Row) ([]interface{}, error) {
	values := make([]interface{}, len(metadata.Columns))
	for i, col := range metadata.Columns {
		v, err := c.ConvertValue(row[col.Name], col.DataType, col.Name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
