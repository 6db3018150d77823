package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/saferoads/pkg/model"
)

func TestCheckKeys(t *testing.T) {
	table := model.NewTable(model.Characteristics)
	table.Append(
		model.Row{model.ColAccidentID: int64(1)},
		model.Row{},
		model.Row{model.ColAccidentID: int64(1)},
		model.Row{model.ColAccidentID: int64(9)},
	)

	err := checkKeys(table, map[interface{}]struct{}{int64(9): {}})
	require.ErrorIs(t, err, model.ErrKeyConstraintViolation)

	keyErr := err.(*KeyConstraintError)
	assert.Equal(t, 3, keyErr.Total)
	assert.Equal(t, "missing key", keyErr.Violations[0].Reason)
	assert.Equal(t, "duplicate of row 1", keyErr.Violations[1].Reason)
	assert.Equal(t, "already in destination", keyErr.Violations[2].Reason)

	table = model.NewTable(model.Characteristics)
	table.Append(model.Row{model.ColAccidentID: int64(1)}, model.Row{model.ColAccidentID: int64(2)})
	assert.NoError(t, checkKeys(table, nil))
}

func TestCheckKeysCapsReport(t *testing.T) {
	table := model.NewTable(model.Characteristics)
	for i := 0; i < 25; i++ {
		table.Append(model.Row{model.ColAccidentID: int64(7)})
	}

	err := checkKeys(table, nil)
	require.Error(t, err)
	keyErr := err.(*KeyConstraintError)
	assert.Equal(t, 24, keyErr.Total)
	assert.Len(t, keyErr.Violations, maxReportedViolations)
	assert.Contains(t, err.Error(), "and 14 more")
}

func TestOffsetIndex(t *testing.T) {
	rows := []model.Row{{model.ColIndex: int64(0)}, {model.ColIndex: int64(1)}}
	require.NoError(t, offsetIndex(rows, 5))
	assert.Equal(t, int64(5), rows[0][model.ColIndex])
	assert.Equal(t, int64(6), rows[1][model.ColIndex])

	assert.Error(t, offsetIndex([]model.Row{{model.ColIndex: 1}}, 1))
}
