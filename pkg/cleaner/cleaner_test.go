package cleaner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/model"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func newCleaner(t *testing.T, opts Options) *DataCleaner {
	t.Helper()
	c, err := NewDataCleaner(opts, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewDataCleaner(t *testing.T) {
	_, err := NewDataCleaner(DefaultOptions(), nil)
	assert.Error(t, err)

	_, err = NewDataCleaner(Options{VehicleTypeMode: "yearly"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewDataCleaner(Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, VehicleTypesPerYear, c.Options().VehicleTypeMode)
}

func TestCombineDateTime(t *testing.T) {
	tests := []struct {
		name                 string
		an, mois, jour, hrmn int
		want                 time.Time
	}{
		{"midnight", 12, 1, 1, 0, time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"afternoon", 10, 7, 14, 1745, time.Date(2010, 7, 14, 17, 45, 0, 0, time.UTC)},
		{"end of year", 14, 12, 31, 2359, time.Date(2014, 12, 31, 23, 59, 0, 0, time.UTC)},
		{"leap day", 12, 2, 29, 930, time.Date(2012, 2, 29, 9, 30, 0, 0, time.UTC)},
		{"nineteen hundreds", 99, 3, 5, 5, time.Date(1999, 3, 5, 0, 5, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := combineDateTime(intp(tt.an), intp(tt.mois), intp(tt.jour), intp(tt.hrmn))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestCombineDateTimeMalformed(t *testing.T) {
	tests := []struct {
		name                 string
		an, mois, jour, hrmn *int
	}{
		{"month 13", intp(12), intp(13), intp(1), intp(1200)},
		{"day 32", intp(12), intp(1), intp(32), intp(1200)},
		{"february 30", intp(13), intp(2), intp(30), intp(1200)},
		{"hour 25", intp(12), intp(1), intp(1), intp(2500)},
		{"minute 60", intp(12), intp(1), intp(1), intp(1060)},
		{"four digit year", intp(2012), intp(1), intp(1), intp(1200)},
		{"missing month", intp(12), nil, intp(1), intp(1200)},
		{"missing time", intp(12), intp(1), intp(1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := combineDateTime(tt.an, tt.mois, tt.jour, tt.hrmn)
			assert.ErrorIs(t, err, model.ErrMalformedTimestamp)
		})
	}
}

func TestCorrectAreaID(t *testing.T) {
	tests := []struct {
		in        int
		want      int
		corrected bool
	}{
		{590, 59, true},
		{750, 75, true},
		{201, 20, true},
		{10, 1, true},
		{969, 96, true},
		{970, 970, false},
		{971, 971, false},
		{973, 973, false},
		{974, 974, false},
		{976, 976, false},
	}

	for _, tt := range tests {
		got, corrected := correctAreaID(tt.in)
		assert.Equal(t, tt.want, got, "area id %d", tt.in)
		assert.Equal(t, tt.corrected, corrected, "area id %d", tt.in)
	}
}

func TestSplitSafetyCode(t *testing.T) {
	gearType, hasType, worn, err := splitSafetyCode(21)
	require.NoError(t, err)
	assert.True(t, hasType)
	assert.Equal(t, 2, gearType)
	assert.Equal(t, 1, worn)

	_, hasType, worn, err = splitSafetyCode(9)
	require.NoError(t, err)
	assert.False(t, hasType)
	assert.Equal(t, 9, worn)

	_, _, _, err = splitSafetyCode(-1)
	assert.Error(t, err)

	_, _, _, err = splitSafetyCode(123)
	assert.Error(t, err)
}

func TestCleanCharacteristics(t *testing.T) {
	c := newCleaner(t, DefaultOptions())
	raws := []model.RawCharacteristics{
		{
			NumAcc: 201200000001, An: intp(12), Mois: intp(1), Jour: intp(12), Hrmn: intp(1830),
			Lum: intp(5), Agg: intp(2), Int: intp(1), Atm: intp(1), Col: intp(3),
			Com: intp(11), Dep: intp(590), Adr: "RUE DE LA GARE", Gps: "M", Lat: "5055737", Long: "294992",
		},
		{
			NumAcc: 201200000002, An: intp(12), Mois: intp(2), Jour: intp(3), Hrmn: intp(745),
			Lum: intp(1), Dep: intp(974),
		},
	}

	rows, stats, err := c.CleanCharacteristics(2012, raws)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, int64(201200000001), first[model.ColAccidentID])
	assert.Equal(t, time.Date(2012, 1, 12, 18, 30, 0, 0, time.UTC), first["datetime"])
	assert.Equal(t, int64(5), first["luminosity"])
	assert.Equal(t, int64(2), first["in city"])
	assert.Equal(t, int64(1), first["intersect type"])
	assert.Equal(t, int64(1), first["weather"])
	assert.Equal(t, int64(3), first["collision type"])
	assert.Equal(t, int64(11), first["city id"])
	assert.Equal(t, int64(59), first["area id"])
	for _, dropped := range []string{"adr", "gps", "lat", "long", "an", "mois", "jour", "hrmn"} {
		assert.NotContains(t, first, dropped)
	}

	second := rows[1]
	assert.Equal(t, int64(974), second["area id"])
	assert.NotContains(t, second, "weather")

	assert.Equal(t, 2, stats.RowsIn)
	assert.Equal(t, 2, stats.RowsOut)
	assert.Equal(t, 1, stats.AreaIDsCorrected)
}

func TestCleanCharacteristicsRejectsBadRows(t *testing.T) {
	c := newCleaner(t, DefaultOptions())

	t.Run("duplicate accident id", func(t *testing.T) {
		raws := []model.RawCharacteristics{
			{NumAcc: 1, An: intp(12), Mois: intp(1), Jour: intp(1), Hrmn: intp(100)},
			{NumAcc: 2, An: intp(12), Mois: intp(1), Jour: intp(1), Hrmn: intp(100)},
			{NumAcc: 1, An: intp(12), Mois: intp(1), Jour: intp(1), Hrmn: intp(100)},
		}
		_, _, err := c.CleanCharacteristics(2012, raws)
		require.ErrorIs(t, err, model.ErrDuplicateKey)

		var stepErr *model.StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, "characteristics", stepErr.Category)
		assert.Equal(t, 2012, stepErr.Year)
		assert.Equal(t, 3, stepErr.Row)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		raws := []model.RawCharacteristics{
			{NumAcc: 1, An: intp(12), Mois: intp(13), Jour: intp(1), Hrmn: intp(100)},
		}
		_, _, err := c.CleanCharacteristics(2012, raws)
		require.ErrorIs(t, err, model.ErrMalformedTimestamp)
		assert.Contains(t, err.Error(), "characteristics 2012: combine datetime (row 1)")
	})
}

func TestCleanLocations(t *testing.T) {
	raws := []model.RawLocation{
		{
			NumAcc: 7, Catr: intp(3), Voie: "41", V1: "0", V2: "B", Circ: intp(2), Nbv: intp(2),
			Pr: "12", Pr1: "350", Vosp: intp(0), Prof: intp(1), Plan: intp(3),
			Lartpc: floatp(0), Larrout: floatp(58), Surf: intp(1), Infra: intp(0), Situ: intp(1), Env1: intp(99),
		},
		{NumAcc: 7, Catr: intp(4)},
	}

	t.Run("duplicates allowed by default", func(t *testing.T) {
		rows, stats, err := newCleaner(t, DefaultOptions()).CleanLocations(2010, raws)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, stats.RowsOut)

		row := rows[0]
		assert.Equal(t, model.Row{
			model.ColAccidentID:   int64(7),
			"road type":           int64(3),
			"traffic mode":        int64(2),
			"nb lanes":            int64(2),
			"reserved lane":       int64(0),
			"road profil":         int64(1),
			"road alignment":      int64(3),
			"central reservation": float64(0),
			"road width":          float64(58),
			"road surface":        int64(1),
			"installations":       int64(0),
			"location":            int64(1),
			"school distance":     int64(99),
		}, row)
	})

	t.Run("unique option rejects duplicates", func(t *testing.T) {
		opts := DefaultOptions()
		opts.UniqueLocations = true
		_, _, err := newCleaner(t, opts).CleanLocations(2010, raws)
		assert.ErrorIs(t, err, model.ErrDuplicateKey)
	})
}

func TestCleanerTable(t *testing.T) {
	lenient := newCleaner(t, DefaultOptions())
	assert.Same(t, model.LocationsByIndex, lenient.Table(model.CategoryLocations))
	assert.Equal(t, model.ColIndex, lenient.Table(model.CategoryLocations).PrimaryKey)
	assert.Same(t, model.Vehicles, lenient.Table(model.CategoryVehicles))

	opts := DefaultOptions()
	opts.UniqueLocations = true
	strict := newCleaner(t, opts)
	assert.Same(t, model.Locations, strict.Table(model.CategoryLocations))
	assert.Equal(t, model.ColAccidentID, strict.Table(model.CategoryLocations).PrimaryKey)

	assert.Nil(t, strict.Table("weather"))
}

func TestCleanVehiclesPerYear(t *testing.T) {
	raws := []model.RawVehicle{
		{NumAcc: 1, Catv: intp(9), NumVeh: "A01", Senc: intp(1), Obs: intp(0), Obsm: intp(2), Choc: intp(1), Manv: intp(15), Occutc: intp(0)},
		{NumAcc: 1, Catv: intp(2), NumVeh: "B01"},
		{NumAcc: 2, Catv: intp(5), NumVeh: "A01"},
		{NumAcc: 3, Catv: intp(9)},
		{NumAcc: 4},
	}

	rows, stats, err := newCleaner(t, DefaultOptions()).CleanVehicles(2011, raws)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	var got []interface{}
	for _, row := range rows {
		got = append(got, row["vehicle type"])
	}
	assert.Equal(t, []interface{}{int64(3), int64(1), int64(2), int64(3), nil}, got)

	first := rows[0]
	assert.Equal(t, "A01", first[model.ColVehicleID])
	assert.Equal(t, int64(0), first["fixed obj hit"])
	assert.Equal(t, int64(2), first["moving obj hit"])
	assert.Equal(t, int64(1), first["impact location"])
	assert.Equal(t, int64(15), first["maneuver"])
	assert.Equal(t, int64(0), first["nb occupants public transit"])
	assert.NotContains(t, first, "senc")
	assert.NotContains(t, rows[3], model.ColVehicleID)

	assert.Equal(t, 4, stats.VehicleTypesRemapped)
}

func TestCleanVehiclesRanksAreYearLocal(t *testing.T) {
	c := newCleaner(t, DefaultOptions())

	year1, _, err := c.CleanVehicles(2010, []model.RawVehicle{{Catv: intp(7)}, {Catv: intp(33)}})
	require.NoError(t, err)
	year2, _, err := c.CleanVehicles(2011, []model.RawVehicle{{Catv: intp(1)}, {Catv: intp(7)}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), year1[0]["vehicle type"])
	assert.Equal(t, int64(2), year2[1]["vehicle type"])
}

func TestCleanVehiclesGlobal(t *testing.T) {
	opts := DefaultOptions()
	opts.VehicleTypeMode = VehicleTypesGlobal
	c := newCleaner(t, opts)

	rows, _, err := c.CleanVehicles(2010, []model.RawVehicle{{Catv: intp(7)}, {Catv: intp(99)}, {}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows[0]["vehicle type"])
	assert.Equal(t, int64(24), rows[1]["vehicle type"])
	assert.NotContains(t, rows[2], "vehicle type")

	_, _, err = c.CleanVehicles(2010, []model.RawVehicle{{Catv: intp(8)}})
	assert.ErrorIs(t, err, model.ErrUnknownVehicleType)
}

func TestCleanUsers(t *testing.T) {
	raws := []model.RawUser{
		{
			NumAcc: 1, NumVeh: "A01", Place: intp(1), Catu: intp(1), Grav: intp(3), Sexe: intp(1),
			Trajet: intp(5), Secu: intp(21), Locp: intp(0), Actp: intp(0), Etatp: intp(0), AnNais: intp(1980),
		},
		{NumAcc: 1, NumVeh: "A01", Secu: intp(9)},
		{NumAcc: 2, NumVeh: "B01", AnNais: intp(1995)},
	}

	rows, stats, err := newCleaner(t, DefaultOptions()).CleanUsers(2012, raws)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, int64(2), first["safety gear type"])
	assert.Equal(t, int64(1), first["safety gear worn"])
	assert.Equal(t, int64(32), first["age"])
	assert.Equal(t, int64(1), first["location in vehicle"])
	assert.Equal(t, int64(1), first["user type"])
	assert.Equal(t, int64(3), first["severity"])
	assert.Equal(t, int64(1), first["sex"])
	assert.Equal(t, int64(5), first["journey type"])
	assert.Equal(t, int64(0), first["pedestrian location"])
	assert.Equal(t, int64(0), first["pedestrian action"])
	assert.Equal(t, int64(0), first["pedestrian company"])
	assert.NotContains(t, first, "an_nais")
	assert.NotContains(t, first, "secu")

	second := rows[1]
	assert.NotContains(t, second, "safety gear type")
	assert.Equal(t, int64(9), second["safety gear worn"])
	assert.NotContains(t, second, "age")

	third := rows[2]
	assert.NotContains(t, third, "safety gear type")
	assert.NotContains(t, third, "safety gear worn")
	assert.Equal(t, int64(17), third["age"])

	assert.Equal(t, 1, stats.SafetyCodesAbsent)
	assert.Equal(t, 1, stats.BirthYearsAbsent)
	assert.Equal(t, 3, stats.RowsOut)
}
