package watcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WoWCombatLog-101424_200000.txt")
	appendLines(t, path, "one", "two", "three")

	var got []string
	require.NoError(t, ReadFile(context.Background(), path, func(l Line) {
		got = append(got, l.Text)
		assert.Equal(t, path, l.Source)
	}))
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), func(Line) {})
	assert.Error(t, err)
}
