package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/config"
	"github.com/David-Botos/saferoads/pkg/connector"
	"github.com/David-Botos/saferoads/pkg/model"
)

func openStore(t *testing.T) connector.DatabaseConnector {
	t.Helper()
	conn, err := connector.NewSQLiteConnector(context.Background(),
		&config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "roads.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newLoader(t *testing.T, conn connector.DatabaseConnector, chunkSize int) *Loader {
	t.Helper()
	l, err := NewLoader(conn, chunkSize, zap.NewNop())
	require.NoError(t, err)
	return l
}

func accident(id int64, areaID int64) model.Row {
	return model.Row{
		model.ColAccidentID: id,
		"datetime":          time.Date(2012, 1, 12, 18, 30, 0, 0, time.UTC),
		"area id":           areaID,
	}
}

func characteristics(rows ...model.Row) *model.Table {
	table := model.NewTable(model.Characteristics)
	table.Append(rows...)
	return table
}

func vehicles(ids ...int64) *model.Table {
	table := model.NewTable(model.Vehicles)
	for i, id := range ids {
		table.Append(model.Row{
			model.ColIndex:      int64(i),
			model.ColAccidentID: id,
			model.ColVehicleID:  "A01",
			"vehicle type":      int64(4),
		})
	}
	return table
}

func accidentIDs(t *testing.T, conn connector.DatabaseConnector) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, conn.QueryWithTimeout(context.Background(), &ids,
		`SELECT "accident id" FROM "characteristics" ORDER BY "accident id"`, time.Second))
	return ids
}

func tableNames(t *testing.T, conn connector.DatabaseConnector) []string {
	t.Helper()
	var names []string
	require.NoError(t, conn.QueryWithTimeout(context.Background(), &names,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`, time.Second))
	return names
}

func TestLoadReplaceCreatesTable(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 2)

	result, err := l.Load(ctx, characteristics(accident(3, 59), accident(1, 75), accident(2, 974)), ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, result.Mode)
	assert.Equal(t, int64(3), result.RowsWritten)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.OK())

	assert.Equal(t, []int64{1, 2, 3}, accidentIDs(t, conn))
	assert.Equal(t, []string{"characteristics"}, tableNames(t, conn))

	// the key is enforced by the store
	_, err = conn.ExecWithTimeout(ctx,
		`INSERT INTO "characteristics" ("accident id", "datetime") VALUES (1, '2012-01-01 00:00:00')`, time.Second)
	assert.Error(t, err)
}

func TestLoadReplaceSwapsExistingTable(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 100)

	_, err := l.Load(ctx, characteristics(accident(1, 1), accident(2, 2), accident(3, 3)), ModeReplace)
	require.NoError(t, err)

	_, err = l.Load(ctx, characteristics(accident(7, 1), accident(8, 2)), ModeReplace)
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 8}, accidentIDs(t, conn))
	assert.Equal(t, []string{"characteristics"}, tableNames(t, conn))
}

func TestLoadDuplicateKeyLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 100)

	_, err := l.Load(ctx, characteristics(accident(1, 1), accident(2, 2)), ModeReplace)
	require.NoError(t, err)

	_, err = l.Load(ctx, characteristics(accident(5, 1), accident(6, 2), accident(5, 3)), ModeReplace)
	require.ErrorIs(t, err, model.ErrKeyConstraintViolation)

	var keyErr *KeyConstraintError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, 1, keyErr.Total)
	assert.Equal(t, 3, keyErr.Violations[0].Row)
	assert.Equal(t, int64(5), keyErr.Violations[0].Key)

	assert.Equal(t, []int64{1, 2}, accidentIDs(t, conn))
	assert.Equal(t, []string{"characteristics"}, tableNames(t, conn))
}

func TestLoadStoreFailureLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 1)

	_, err := l.Load(ctx, characteristics(accident(1, 1), accident(2, 2)), ModeReplace)
	require.NoError(t, err)

	// datetime is NOT NULL: the third chunk is rejected by the store
	broken := model.Row{model.ColAccidentID: int64(12)}
	_, err = l.Load(ctx, characteristics(accident(10, 1), accident(11, 2), broken, accident(13, 3)), ModeReplace)
	require.ErrorIs(t, err, model.ErrStoreWriteFailure)

	var stepErr *model.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "write staging table", stepErr.Step)

	assert.Equal(t, []int64{1, 2}, accidentIDs(t, conn))
	assert.Equal(t, []string{"characteristics"}, tableNames(t, conn))
}

func TestAppendOffsetsIndex(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 100)

	_, err := l.Load(ctx, vehicles(10, 10), ModeReplace)
	require.NoError(t, err)

	result, err := l.Load(ctx, vehicles(11, 12, 12), ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, result.Mode)
	assert.Equal(t, int64(2), result.IndexOffset)

	var rows []struct {
		Index      int64 `db:"index"`
		AccidentID int64 `db:"accident id"`
	}
	require.NoError(t, conn.QueryWithTimeout(ctx, &rows,
		`SELECT "index", "accident id" FROM "vehicles" ORDER BY "index"`, time.Second))
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, int64(i), row.Index)
	}
	assert.Equal(t, int64(11), rows[2].AccidentID)
	assert.Equal(t, []string{"vehicles"}, tableNames(t, conn))
}

func TestAppendRejectsStoredKeys(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 100)

	_, err := l.Load(ctx, characteristics(accident(1, 1), accident(2, 2)), ModeReplace)
	require.NoError(t, err)

	_, err = l.Load(ctx, characteristics(accident(3, 1), accident(2, 2)), ModeAppend)
	require.ErrorIs(t, err, model.ErrKeyConstraintViolation)
	assert.Contains(t, err.Error(), "already in destination")
	assert.Equal(t, []int64{1, 2}, accidentIDs(t, conn))

	_, err = l.Load(ctx, characteristics(accident(3, 1), accident(4, 2)), ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, accidentIDs(t, conn))
}

func TestAppendIntoMissingTableReplaces(t *testing.T) {
	conn := openStore(t)
	result, err := newLoader(t, conn, 100).Load(context.Background(), vehicles(1), ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, result.Mode)
	assert.Equal(t, int64(0), result.IndexOffset)
}

func TestLoadReference(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)

	result, err := newLoader(t, conn, 100).LoadReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(24), result.RowsWritten)

	var labels []string
	require.NoError(t, conn.QueryWithTimeout(ctx, &labels,
		`SELECT "label" FROM "vehicle_types" WHERE "code" = 4`, time.Second))
	assert.Equal(t, []string{"Car"}, labels)
}

func TestUnknownMode(t *testing.T) {
	_, err := newLoader(t, openStore(t), 100).Load(context.Background(), vehicles(1), Mode("upsert"))
	assert.Error(t, err)
}

func TestCheckStagedCountsRows(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	l := newLoader(t, conn, 100)

	_, err := l.Load(ctx, characteristics(accident(1, 1), accident(2, 2), accident(3, 3)), ModeReplace)
	require.NoError(t, err)

	require.NoError(t, l.checkStaged(ctx, model.Characteristics, "characteristics", 3))

	err = l.checkStaged(ctx, model.Characteristics, "characteristics", 4)
	require.ErrorIs(t, err, model.ErrStoreWriteFailure)
	var stepErr *model.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "verify staging table", stepErr.Step)
	assert.ErrorContains(t, err, "expected 4 rows")
}

func TestWithTimeout(t *testing.T) {
	l := newLoader(t, openStore(t), 100)
	assert.Equal(t, connector.DefaultTimeout, l.timeout)

	l.WithTimeout(30 * time.Second)
	assert.Equal(t, 30*time.Second, l.timeout)
	assert.Equal(t, 30*time.Second, l.verifier.timeout)

	l.WithTimeout(0)
	assert.Equal(t, 30*time.Second, l.timeout)
}
