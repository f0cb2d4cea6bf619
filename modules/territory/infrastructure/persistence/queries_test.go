package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuestionMarks(t *testing.T) {
	require.Equal(t,
		"SELECT id FROM orp WHERE region_id = ? AND slug = ?",
		questionMarks("SELECT id FROM orp WHERE region_id = $1 AND slug = $2"))
	require.NotContains(t, questionMarks(insertMunicipalityQuery), "$")
}

func TestTimestampScan(t *testing.T) {
	var ts timestamp

	require.NoError(t, ts.Scan("2025-03-01 12:30:00"))
	require.Equal(t, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC), ts.Time)

	now := time.Now()
	require.NoError(t, ts.Scan(now))
	require.True(t, now.Equal(ts.Time))

	require.NoError(t, ts.Scan([]byte("2025-03-01T12:30:00Z")))
	require.Equal(t, 2025, ts.Year())

	require.NoError(t, ts.Scan(nil))
	require.True(t, ts.IsZero())

	require.Error(t, ts.Scan("yesterday"))
	require.Error(t, ts.Scan(42))
}
