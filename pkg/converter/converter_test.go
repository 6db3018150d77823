package converter

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/model"
)

func newConverter(t *testing.T, store string) *TypeConverter {
	t.Helper()
	c, err := NewTypeConverter(zap.NewNop(), store)
	require.NoError(t, err)
	return c
}

func TestUnknownStore(t *testing.T) {
	_, err := NewTypeConverter(zap.NewNop(), "oracle")
	assert.Error(t, err)
}

func TestEveryStoreMapsEveryType(t *testing.T) {
	types := []model.DataType{model.TypeBigInt, model.TypeInteger, model.TypeFloat, model.TypeTimestamp, model.TypeVarchar, model.TypeText}
	for _, store := range []string{StoreMySQL, StorePostgres, StoreSnowflake, StoreSQLite} {
		c := newConverter(t, store)
		for _, dt := range types {
			sqlType, err := c.SQLType(dt)
			assert.NoError(t, err, "%s %s", store, dt)
			assert.NotEmpty(t, sqlType)
		}
	}
}

func TestGenerateColumnDefinitions(t *testing.T) {
	c := newConverter(t, StoreMySQL)
	defs, err := c.GenerateColumnDefinitions(model.Vehicles, func(s string) string { return "`" + s + "`" })
	require.NoError(t, err)
	require.Len(t, defs, len(model.Vehicles.Columns))

	assert.Equal(t, "`index` BIGINT NOT NULL", defs[0])
	assert.Equal(t, "`accident id` BIGINT NOT NULL", defs[1])
	assert.Equal(t, "`vehicle id` VARCHAR(16) NULL", defs[2])
	assert.Equal(t, "`vehicle type` INT NULL", defs[3])
}

func TestConvertValue(t *testing.T) {
	c := newConverter(t, StorePostgres)
	when := time.Date(2012, 1, 12, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		value    interface{}
		dataType model.DataType
		want     interface{}
		wantErr  bool
	}{
		{nil, model.TypeInteger, nil, false},
		{int64(7), model.TypeInteger, int64(7), false},
		{7, model.TypeBigInt, int64(7), false},
		{float64(3), model.TypeInteger, int64(3), false},
		{3.5, model.TypeInteger, nil, true},
		{"42", model.TypeInteger, int64(42), false},
		{"x", model.TypeInteger, nil, true},
		{int64(58), model.TypeFloat, float64(58), false},
		{2.5, model.TypeFloat, 2.5, false},
		{when, model.TypeTimestamp, when, false},
		{"2012-01-12", model.TypeTimestamp, nil, true},
		{"A01", model.TypeVarchar, "A01", false},
		{"", model.TypeVarchar, nil, false},
		{struct{}{}, model.TypeVarchar, nil, true},
	}

	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, err := c.ConvertValue(tt.value, tt.dataType, "col")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertTimestampForSQLite(t *testing.T) {
	c := newConverter(t, StoreSQLite)
	got, err := c.ConvertValue(time.Date(2010, 7, 14, 17, 45, 0, 0, time.UTC), model.TypeTimestamp, "datetime")
	require.NoError(t, err)
	assert.Equal(t, "2010-07-14 17:45:00", got)
}

func TestConvertRow(t *testing.T) {
	c := newConverter(t, StoreMySQL)
	row := model.Row{
		model.ColIndex:      int64(0),
		model.ColAccidentID: int64(201000000001),
		"vehicle type":      int64(4),
	}
	values, err := c.ConvertRow(model.Vehicles, row)
	require.NoError(t, err)
	require.Len(t, values, len(model.Vehicles.Columns))
	assert.Equal(t, int64(0), values[0])
	assert.Equal(t, int64(201000000001), values[1])
	assert.Nil(t, values[2])
	assert.Equal(t, int64(4), values[3])
}
