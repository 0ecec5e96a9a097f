package encounter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livp123/raidrec/internal/config"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WoWCombatLog-101426_200000.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestReplay(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulties.RecordNormal = false
	path := writeLog(t,
		`10/14 20:30:11.123  ENCOUNTER_START,2902,"Ulgrax the Devourer",16,20,2657`,
		`10/14 20:31:00.000  SPELL_DAMAGE,Player-1,"A",0x511,0x0`,
		`10/14 20:35:11.123  ENCOUNTER_END,2902,"Ulgrax the Devourer",16,20,1,300000`,
		`10/14 20:40:00.000  ENCOUNTER_START,2917,"The Bloodbound Horror",14,20,2657`,
		`10/14 20:44:00.000  ENCOUNTER_END,2917,"The Bloodbound Horror",14,20,0,240000`,
		`10/14 21:00:00.000  CHALLENGE_MODE_START,"Ara-Kara, City of Echoes",2660,503,12,[10,9,147]`,
	)

	sessions, err := Replay(context.Background(), config.NewManagerWith("test.ini", cfg), path)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, "Ulgrax the Devourer", sessions[0].Name)
	assert.Equal(t, OutcomeKill, sessions[0].Outcome)
	assert.True(t, sessions[0].Recorded)
	assert.Equal(t, 5*time.Minute, sessions[0].Duration())

	assert.Equal(t, OutcomeWipe, sessions[1].Outcome)
	assert.False(t, sessions[1].Recorded)
	assert.NotEmpty(t, sessions[1].SkipReason)

	assert.Equal(t, KindDungeon, sessions[2].Kind)
	assert.Empty(t, sessions[2].Outcome, "run still open at end of file")
}

func TestReplayDungeonTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Recording.DungeonTimeoutSeconds = 60
	path := writeLog(t,
		`10/14 21:00:00.000  CHALLENGE_MODE_START,"Ara-Kara, City of Echoes",2660,503,12,[10,9,147]`,
		`10/14 21:00:30.000  SPELL_DAMAGE,Player-1,"A",0x511,0x0`,
		`10/14 21:05:00.000  SPELL_DAMAGE,Player-1,"A",0x511,0x0`,
	)

	sessions, err := Replay(context.Background(), config.NewManagerWith("test.ini", cfg), path)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, OutcomeTimeout, sessions[0].Outcome)
}

func TestReplayMissingFile(t *testing.T) {
	_, err := Replay(context.Background(), config.NewManagerWith("test.ini", config.Default()), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
