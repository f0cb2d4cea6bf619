package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteJSON_IOFailuresAreNotDatabaseErrors(t *testing.T) {
	err := writeJSONLine(failingWriter{}, map[string]int{"regions": 1})
	require.Error(t, err)
	require.Equal(t, exitIO, exitCode(err))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err = writeJSONFile(filepath.Join(blocker, "sub", "m.json"), struct{}{})
	require.Error(t, err)
	require.Equal(t, exitIO, exitCode(err))
}
