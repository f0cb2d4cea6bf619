package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestImportMetrics(t *testing.T) {
	m := NewImportMetrics()
	m.ObserveInserted("region", 14)
	m.ObserveInserted("municipality", 6258)
	m.ObserveFailure("parse")
	m.ObserveDuration(1500 * time.Millisecond)
	m.MarkSuccess(time.Unix(1735689600, 0))

	require.Equal(t, float64(14), testutil.ToFloat64(m.inserted.WithLabelValues("region")))
	require.Equal(t, float64(6258), testutil.ToFloat64(m.inserted.WithLabelValues("municipality")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("parse")))
	require.Equal(t, float64(1735689600), testutil.ToFloat64(m.lastSuccess))

	path := filepath.Join(t.TempDir(), "cr_import.prom")
	require.NoError(t, m.WriteTextfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `cr_import_records_inserted_total{level="region"} 14`)
	require.Contains(t, string(raw), "cr_import_duration_seconds_count 1")
}
