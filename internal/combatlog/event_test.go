package combatlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ok       bool
		ts       string
		typ      string
		numField int
	}{
		{
			name:     "encounter start",
			line:     `9/22/2024 20:15:32.1234-4  ENCOUNTER_START,2902,"Ulgrax the Devourer",16,20,2657` + "\r\n",
			ok:       true,
			ts:       "9/22/2024 20:15:32.1234-4",
			typ:      TypeEncounterStart,
			numField: 6,
		},
		{
			name:     "lower case type",
			line:     `9/22 20:15:32.123  zone_change,2657,"Nerub-ar Palace",16`,
			ok:       true,
			ts:       "9/22 20:15:32.123",
			typ:      TypeZoneChange,
			numField: 4,
		},
		{
			name: "no separator",
			line: "garbage line",
		},
		{
			name: "empty payload",
			line: "9/22 20:15:32.123  ",
		},
		{
			name: "empty",
			line: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := Parse(tc.line)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.ts, ev.Timestamp)
			assert.Equal(t, tc.typ, ev.Type)
			assert.Len(t, ev.Fields, tc.numField)
			assert.True(t, ev.IsInteresting())
		})
	}
}

func TestParse_QuotedCommas(t *testing.T) {
	ev, ok := Parse(`1/2 03:04:05.000  ENCOUNTER_START,2687,"The Vigilant Steward, Zskarn",15,20,2569`)
	require.True(t, ok)

	boss, ok := ev.BossInfo()
	require.True(t, ok)
	assert.Equal(t, BossInfo{BossID: 2687, Name: "The Vigilant Steward, Zskarn", DifficultyID: 15, GroupSize: 20, InstanceID: 2569}, boss)
}

func TestBossInfo_Invalid(t *testing.T) {
	for _, line := range []string{
		`1/2 03:04:05.000  ENCOUNTER_START,2687,"Short"`,
		`1/2 03:04:05.000  ENCOUNTER_START,abc,"Name",15,20,2569`,
		`1/2 03:04:05.000  ENCOUNTER_END,2687,"Name",15,20,1`,
	} {
		ev, ok := Parse(line)
		require.True(t, ok)
		_, ok = ev.BossInfo()
		assert.False(t, ok, line)
	}
}

func TestEncounterEnd(t *testing.T) {
	ev, ok := Parse(`9/22 20:20:01.000  ENCOUNTER_END,2902,"Ulgrax the Devourer",16,20,1,329000`)
	require.True(t, ok)
	end, ok := ev.EncounterEnd()
	require.True(t, ok)
	assert.True(t, end.Kill)
	assert.Equal(t, 2902, end.BossID)
	assert.Equal(t, 329000, end.FightTimeMS)

	ev, _ = Parse(`9/22 20:20:01.000  ENCOUNTER_END,2902,"Ulgrax the Devourer",16,20,0,120000`)
	end, ok = ev.EncounterEnd()
	require.True(t, ok)
	assert.False(t, end.Kill)
}

func TestDungeonEvents(t *testing.T) {
	ev, ok := Parse(`9/22 21:00:00.000  CHALLENGE_MODE_START,"The Stonevault",2652,501,12,[9,10,147]`)
	require.True(t, ok)
	info, ok := ev.DungeonInfo()
	require.True(t, ok)
	assert.Equal(t, DungeonInfo{Name: "The Stonevault", InstanceID: 2652, DungeonID: 501, KeystoneLevel: 12}, info)

	ev, ok = Parse(`9/22 21:30:00.000  CHALLENGE_MODE_END,2652,1,12,1712345,3000.5,255.3`)
	require.True(t, ok)
	end, ok := ev.DungeonEnd()
	require.True(t, ok)
	assert.True(t, end.Success)
	assert.Equal(t, 12, end.KeystoneLevel)

	ev, ok = Parse(`9/22 21:31:00.000  ZONE_CHANGE,2552,"Dornogal",0`)
	require.True(t, ok)
	zone, ok := ev.ZoneChange()
	require.True(t, ok)
	assert.Equal(t, "Dornogal", zone.Name)
	assert.Equal(t, 2552, zone.InstanceID)
}

func TestIsInteresting(t *testing.T) {
	ev, ok := Parse(`9/22 20:15:33.000  SPELL_DAMAGE,Player-1-0001,"Someone",0x511,0x0`)
	require.True(t, ok)
	assert.False(t, ev.IsInteresting())
	assert.Equal(t, "SPELL_DAMAGE at 9/22 20:15:33.000", ev.String())
}
