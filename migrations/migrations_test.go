package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestFS_ListsBaselineForEachDialect(t *testing.T) {
	for _, d := range []Dialect{DialectPostgres, DialectSQLite} {
		fsys, err := FS(d)
		require.NoError(t, err)
		names, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		require.Equal(t, []string{"00001_territory_baseline.sql"}, names, "dialect %s", d)
	}

	_, err := FS(Dialect("mysql"))
	require.Error(t, err)
}

func TestUp_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "territory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	applied, err := Up(ctx, db, DialectSQLite)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, applied)

	v, err := Version(ctx, db, DialectSQLite)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	applied, err = Up(ctx, db, DialectSQLite)
	require.NoError(t, err)
	require.Empty(t, applied)

	for _, table := range []string{"regions", "districts", "orp", "municipalities"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}
}
