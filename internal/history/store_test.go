package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "raidrec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)

	recs := []SessionRecord{
		{ID: "a", Kind: "encounter", Name: "Ulgrax", BossID: 2902, DifficultyID: 16, Difficulty: "Mythic",
			Outcome: "wipe", StartedAt: base, EndedAt: base.Add(4 * time.Minute), Action: "renamed",
			RecordingFile: "2026-10-14_20-00-00_Ulgrax_Mythic.mp4"},
		{ID: "b", Kind: "encounter", Name: "Ulgrax", BossID: 2902, DifficultyID: 16, Difficulty: "Mythic",
			Outcome: "kill", StartedAt: base.Add(10 * time.Minute), EndedAt: base.Add(15 * time.Minute)},
		{ID: "c", Kind: "dungeon", Name: "Ara-Kara, City of Echoes", DungeonID: 503, DifficultyID: 8,
			Difficulty: "M+12", KeystoneLevel: 12, Outcome: "completed",
			StartedAt: base.Add(time.Hour), EndedAt: base.Add(90 * time.Minute)},
	}
	for _, r := range recs {
		require.NoError(t, store.Save(ctx, r))
	}

	got, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
	assert.Equal(t, 12, got[0].KeystoneLevel)
	assert.True(t, recs[0].StartedAt.Equal(got[2].StartedAt))
	assert.Equal(t, 4*time.Minute, got[2].Duration())
	assert.Equal(t, "renamed", got[2].Action)

	got, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestSaveReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rec := SessionRecord{ID: "a", Kind: "encounter", Name: "Ulgrax", StartedAt: time.Now(), EndedAt: time.Now()}
	require.NoError(t, store.Save(ctx, rec))

	rec.Action = "deleted"
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "deleted", got[0].Action)
}

func TestSaveRequiresID(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Save(context.Background(), SessionRecord{}))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raidrec.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), SessionRecord{ID: "a", Kind: "encounter", Name: "x", StartedAt: time.Now(), EndedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDisabled(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, rrerrors.ErrHistoryDisabled)

	var store *Store
	assert.ErrorIs(t, store.Save(context.Background(), SessionRecord{ID: "a"}), rrerrors.ErrHistoryDisabled)
	_, err = store.List(context.Background(), 0)
	assert.ErrorIs(t, err, rrerrors.ErrHistoryDisabled)
	assert.NoError(t, store.Close())
}
