package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), exitIO},
		{"explicit", withCode(exitDB, errors.New("db")), exitDB},
		{"configuration", &territory.ImportError{Kind: territory.KindConfiguration, Err: errNoDatabaseURL}, exitUsage},
		{"parse", &territory.ImportError{Kind: territory.KindParse, Line: 3, Err: territory.ErrEmptyField}, exitValidation},
		{"referential", &territory.ImportError{Kind: territory.KindReferential, Level: territory.LevelOffice}, exitValidation},
		{"slug", &territory.ImportError{Kind: territory.KindSlugConflict, Err: territory.ErrSlugConflict}, exitValidation},
		{"commit", &territory.ImportError{Kind: territory.KindPersistence, Err: errors.New("commit: closed")}, exitDB},
		{"insert", &territory.ImportError{Kind: territory.KindPersistence, Level: territory.LevelMunicipality, Code: "529303"}, exitDBWrite},
		{"wrapped", fmt.Errorf("run: %w", &territory.ImportError{Kind: territory.KindParse}), exitValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}
