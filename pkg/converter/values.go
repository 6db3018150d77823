// pkg/converter/values.go
package converter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/David-Botos/saferoads/pkg/model"
)

// ConvertValue converts a cleaned value to the Go type the store driver
// expects for the column type. nil stays nil (NULL).
func (c *TypeConverter) ConvertValue(value interface{}, dataType model.DataType, colName string) (interface{}, error) {
	// Handle NULL values
	if value == nil {
		return nil, nil
	}

	var (
		converted interface{}
		err       error
	)
	switch dataType {
	case model.TypeBigInt, model.TypeInteger:
		converted, err = c.convertToInteger(value)
	case model.TypeFloat:
		converted, err = c.convertToFloat(value)
	case model.TypeTimestamp:
		converted, err = c.convertToTimestamp(value)
	case model.TypeVarchar, model.TypeText:
		converted, err = c.convertToText(value)
	default:
		err = fmt.Errorf("unknown column type %s", dataType)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", colName, err)
	}
	return converted, nil
}

// convertToInteger converts a value to int64
func (c *TypeConverter) convertToInteger(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("cannot convert %v to integer without loss", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string '%s' to integer", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", value)
	}
}

// convertToFloat converts a value to float64
func (c *TypeConverter) convertToFloat(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string '%s' to float", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", value)
	}
}

// convertToTimestamp converts a value to a UTC time. Timestamps carry no
// zone in the extracts.
func (c *TypeConverter) convertToTimestamp(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case time.Time:
		if c.config.Store == StoreSQLite {
			// stored as text; a fixed layout keeps ordering and scanning stable
			return v.UTC().Format("2006-01-02 15:04:05"), nil
		}
		return v.UTC(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to timestamp", value)
	}
}

// convertToText converts a value to text/string
func (c *TypeConverter) convertToText(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if v == "" && c.config.EmptyStringAsNull {
			return nil, nil
		}
		return v, nil
	case []byte:
		return string(v), nil
	case int, int64, float64:
		return fmt.Sprintf("%v", v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to text", value)
	}
}
