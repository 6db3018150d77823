package connector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/saferoads/pkg/config"
)

func TestSQLiteConnector(t *testing.T) {
	ctx := context.Background()
	conn, err := NewSQLiteConnector(ctx, &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "roads.db")})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Validate(ctx))
	dialect := conn.Dialect()
	db := conn.DB()

	exists, err := TableExists(ctx, db, dialect, "vehicle types")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = conn.ExecWithTimeout(ctx,
		dialect.CreateTable("vehicle types", []string{`"code" INTEGER NOT NULL`, `"label" TEXT NULL`}),
		time.Second)
	require.NoError(t, err)

	exists, err = TableExists(ctx, db, dialect, "vehicle types")
	require.NoError(t, err)
	assert.True(t, exists)

	rows := [][]interface{}{{int64(1), "Bicycle"}, {int64(2), nil}, {int64(3), "Motorised quadricycle"}}
	n, err := BatchInsert(ctx, db, dialect, "vehicle types", []string{"code", "label"}, rows, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var codes []int
	require.NoError(t, conn.QueryWithTimeout(ctx, &codes, `SELECT "code" FROM "vehicle types" ORDER BY "code"`, time.Second))
	assert.Equal(t, []int{1, 2, 3}, codes)

	_, err = conn.ExecWithTimeout(ctx, dialect.AddPrimaryKey("vehicle types", "code"), time.Second)
	require.NoError(t, err)

	n, err = BatchInsert(ctx, db, dialect, "vehicle types", []string{"code", "label"}, [][]interface{}{{int64(4), "Car"}, {int64(1), "dup"}}, 1)
	assert.Error(t, err)
	assert.Equal(t, int64(1), n)
}
