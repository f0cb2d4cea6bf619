package territory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportError_Message(t *testing.T) {
	err := &ImportError{
		Kind:  KindPersistence,
		Level: LevelRegion,
		Line:  7,
		Name:  "Kraj Vysočina",
		Code:  "108",
		Err:   errors.New("connection reset"),
	}
	require.Equal(t, `line 7: region "Kraj Vysočina" (108): connection reset`, err.Error())

	parse := &ImportError{Kind: KindParse, Line: 3, Err: ErrEmptyField}
	require.Equal(t, "line 3: required field is empty", parse.Error())
}

func TestKindOf(t *testing.T) {
	inner := &ImportError{Kind: KindReferential, Err: ErrUnresolvedParent}
	wrapped := fmt.Errorf("import: %w", inner)

	require.Equal(t, KindReferential, KindOf(wrapped))
	require.ErrorIs(t, wrapped, ErrUnresolvedParent)
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Equal(t, "slug_conflict", KindSlugConflict.String())
}

func TestLevelParent(t *testing.T) {
	p, ok := LevelMunicipality.Parent()
	require.True(t, ok)
	require.Equal(t, LevelOffice, p)

	_, ok = LevelRegion.Parent()
	require.False(t, ok)

	c := Counts{Regions: 1, Districts: 2, Offices: 3, Municipalities: 4}
	require.Equal(t, 10, c.Total())
	require.Equal(t, 3, c.Of(LevelOffice))
}
