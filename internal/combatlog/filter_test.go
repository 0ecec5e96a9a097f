package combatlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

func TestCompileFilter_Empty(t *testing.T) {
	f, err := CompileFilter("   ")
	require.NoError(t, err)
	assert.Nil(t, f)

	ok, err := f.Match(FilterEnv{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", f.String())
}

func TestCompileFilter_Invalid(t *testing.T) {
	_, err := CompileFilter("DifficultyID ==")
	assert.ErrorIs(t, err, rrerrors.ErrInvalidFilter)

	_, err = CompileFilter("UnknownField > 3")
	assert.ErrorIs(t, err, rrerrors.ErrInvalidFilter)

	_, err = CompileFilter(`Name + "x"`)
	assert.ErrorIs(t, err, rrerrors.ErrInvalidFilter, "non-bool expressions are rejected")
}

func TestFilter_Match(t *testing.T) {
	f, err := CompileFilter(`Kind == "dungeon" || (DifficultyID in [15, 16] && BossID != 2902)`)
	require.NoError(t, err)

	tests := []struct {
		name string
		env  FilterEnv
		want bool
	}{
		{"heroic other boss", FilterEnv{Kind: "encounter", BossID: 2917, DifficultyID: 15}, true},
		{"excluded boss", FilterEnv{Kind: "encounter", BossID: 2902, DifficultyID: 16}, false},
		{"normal", FilterEnv{Kind: "encounter", BossID: 2917, DifficultyID: 14}, false},
		{"dungeon", FilterEnv{Kind: "dungeon", KeystoneLevel: 10}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := f.Match(tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}
