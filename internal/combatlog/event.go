// Package combatlog parses World of Warcraft combat log lines into typed
// encounter and Mythic+ events.
package combatlog

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// Event types the detector reacts to.
const (
	TypeEncounterStart     = "ENCOUNTER_START"
	TypeEncounterEnd       = "ENCOUNTER_END"
	TypeChallengeModeStart = "CHALLENGE_MODE_START"
	TypeChallengeModeEnd   = "CHALLENGE_MODE_END"
	TypeZoneChange         = "ZONE_CHANGE"
)

// Event is one parsed combat log line.
type Event struct {
	Timestamp string
	Type      string
	Fields    []string
	Raw       string
}

// BossInfo is carried by ENCOUNTER_START.
type BossInfo struct {
	BossID       int
	Name         string
	DifficultyID int
	GroupSize    int
	InstanceID   int
}

// EncounterEnd is carried by ENCOUNTER_END.
type EncounterEnd struct {
	BossID       int
	Name         string
	DifficultyID int
	GroupSize    int
	Kill         bool
	FightTimeMS  int
}

// DungeonInfo is carried by CHALLENGE_MODE_START.
type DungeonInfo struct {
	Name          string
	InstanceID    int
	DungeonID     int
	KeystoneLevel int
}

// DungeonEnd is carried by CHALLENGE_MODE_END.
type DungeonEnd struct {
	InstanceID    int
	Success       bool
	KeystoneLevel int
	TotalTimeMS   int
}

// ZoneChange is carried by ZONE_CHANGE.
type ZoneChange struct {
	InstanceID   int
	Name         string
	DifficultyID int
}

// Parse splits a raw line into timestamp and CSV payload. Lines without the
// double-space separator or without a payload are rejected.
func Parse(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	ts, rest, found := strings.Cut(line, "  ")
	if !found || strings.TrimSpace(rest) == "" {
		return Event{}, false
	}

	r := csv.NewReader(strings.NewReader(rest))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil || len(fields) == 0 {
		return Event{}, false
	}

	eventType := strings.ToUpper(strings.TrimSpace(fields[0]))
	if eventType == "" {
		return Event{}, false
	}
	return Event{
		Timestamp: strings.TrimSpace(ts),
		Type:      eventType,
		Fields:    fields,
		Raw:       line,
	}, true
}

// IsInteresting reports whether the event type drives the state machine.
// Everything else only counts as activity.
func (e Event) IsInteresting() bool {
	switch e.Type {
	case TypeEncounterStart, TypeEncounterEnd, TypeChallengeModeStart, TypeChallengeModeEnd, TypeZoneChange:
		return true
	}
	return false
}

func (e Event) field(i int) string {
	if i >= len(e.Fields) {
		return ""
	}
	return strings.TrimSpace(e.Fields[i])
}

func (e Event) intField(i int) (int, bool) {
	v, err := strconv.Atoi(e.field(i))
	if err != nil {
		return 0, false
	}
	return v, true
}

// BossInfo extracts ENCOUNTER_START,encounterID,name,difficultyID,groupSize,instanceID.
func (e Event) BossInfo() (BossInfo, bool) {
	if e.Type != TypeEncounterStart || len(e.Fields) < 6 {
		return BossInfo{}, false
	}
	bossID, ok1 := e.intField(1)
	difficulty, ok2 := e.intField(3)
	instance, ok3 := e.intField(5)
	if !ok1 || !ok2 || !ok3 {
		return BossInfo{}, false
	}
	groupSize, _ := e.intField(4)
	return BossInfo{
		BossID:       bossID,
		Name:         e.field(2),
		DifficultyID: difficulty,
		GroupSize:    groupSize,
		InstanceID:   instance,
	}, true
}

// EncounterEnd extracts ENCOUNTER_END,encounterID,name,difficultyID,groupSize,success,fightTime.
func (e Event) EncounterEnd() (EncounterEnd, bool) {
	if e.Type != TypeEncounterEnd || len(e.Fields) < 2 {
		return EncounterEnd{}, false
	}
	bossID, _ := e.intField(1)
	difficulty, _ := e.intField(3)
	groupSize, _ := e.intField(4)
	fightTime, _ := e.intField(6)
	return EncounterEnd{
		BossID:       bossID,
		Name:         e.field(2),
		DifficultyID: difficulty,
		GroupSize:    groupSize,
		Kill:         e.field(5) == "1",
		FightTimeMS:  fightTime,
	}, true
}

// DungeonInfo extracts CHALLENGE_MODE_START,zoneName,instanceID,challengeModeID,keystoneLevel.
func (e Event) DungeonInfo() (DungeonInfo, bool) {
	if e.Type != TypeChallengeModeStart || len(e.Fields) < 5 {
		return DungeonInfo{}, false
	}
	instance, ok1 := e.intField(2)
	dungeon, ok2 := e.intField(3)
	level, ok3 := e.intField(4)
	if !ok1 || !ok2 || !ok3 {
		return DungeonInfo{}, false
	}
	return DungeonInfo{
		Name:          e.field(1),
		InstanceID:    instance,
		DungeonID:     dungeon,
		KeystoneLevel: level,
	}, true
}

// DungeonEnd extracts CHALLENGE_MODE_END,instanceID,success,keystoneLevel,totalTime.
func (e Event) DungeonEnd() (DungeonEnd, bool) {
	if e.Type != TypeChallengeModeEnd || len(e.Fields) < 2 {
		return DungeonEnd{}, false
	}
	instance, _ := e.intField(1)
	level, _ := e.intField(3)
	total, _ := e.intField(4)
	return DungeonEnd{
		InstanceID:    instance,
		Success:       e.field(2) == "1",
		KeystoneLevel: level,
		TotalTimeMS:   total,
	}, true
}

// ZoneChange extracts ZONE_CHANGE,instanceID,zoneName,difficultyID.
func (e Event) ZoneChange() (ZoneChange, bool) {
	if e.Type != TypeZoneChange || len(e.Fields) < 3 {
		return ZoneChange{}, false
	}
	instance, _ := e.intField(1)
	difficulty, _ := e.intField(3)
	return ZoneChange{
		InstanceID:   instance,
		Name:         e.field(2),
		DifficultyID: difficulty,
	}, true
}

func (e Event) String() string {
	return e.Type + " at " + e.Timestamp
}
