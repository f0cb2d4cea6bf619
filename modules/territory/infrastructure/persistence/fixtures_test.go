package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

func scenarioRows() []territory.Row {
	base := territory.Row{
		DistrictName:   "Benešov",
		DistrictCode:   "CZ0201",
		RegionName:     "Středočeský kraj",
		RegionCode:     "27",
		RegionNUTSCode: "CZ020",
	}
	rows := make([]territory.Row, 3)
	for i, m := range []struct{ name, code, office, officeCode, pou string }{
		{"Benešov", "529303", "Benešov", "2101", "210101"},
		{"Bystřice", "529451", "Benešov", "2101", "210102"},
		{"Vlašim", "530824", "Vlašim", "2117", "211701"},
	} {
		r := base
		r.Line = i + 2
		r.MunicipalityName, r.MunicipalityCode, r.SubOfficeCode = m.name, m.code, m.pou
		r.OfficeName, r.OfficeCode = m.office, m.officeCode
		rows[i] = r
	}
	return rows
}

func openSQLiteBackend(t *testing.T) *Backend {
	t.Helper()

	ctx := context.Background()
	b, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "cr.db"), 0)
	require.NoError(t, err)
	t.Cleanup(b.Close)

	_, err = b.Migrate(ctx)
	require.NoError(t, err)
	return b
}

func countRows(tb testing.TB, b *Backend, table string) int64 {
	tb.Helper()

	var n int64
	require.NoError(tb, b.DB.QueryRowContext(context.Background(), "SELECT count(*) FROM "+table).Scan(&n))
	return n
}
