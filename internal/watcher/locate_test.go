package watcher

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

var testPattern = regexp.MustCompile(`WoWCombatLog-\d{6}_\d{6}\.txt$`)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "WoWCombatLog-101224_190000.txt"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "WoWCombatLog-101424_200000.txt"), now.Add(-time.Minute))
	touch(t, filepath.Join(dir, "WoWCombatLog.txt"), now)
	touch(t, filepath.Join(dir, "notes.txt"), now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "WoWCombatLog-999999_999999.txt"), 0755))

	path, err := Locate(dir, testPattern)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "WoWCombatLog-101424_200000.txt"), path)
}

func TestLocateNoLog(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "other.txt"), time.Now())

	_, err := Locate(dir, testPattern)
	assert.ErrorIs(t, err, rrerrors.ErrNoLogFile)
}

func TestLocateMissingDir(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "missing"), testPattern)
	assert.ErrorIs(t, err, rrerrors.ErrLogDirNotFound)
}
