// Package encounter turns combat log events into recording sessions and
// tells a Recorder when to start and stop.
package encounter

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/livp123/raidrec/internal/combatlog"
)

// State of the detector.
type State string

const (
	StateIdle        State = "IDLE"
	StateInEncounter State = "IN_ENCOUNTER"
	StateInDungeon   State = "IN_DUNGEON"
)

// Kind of session.
type Kind string

const (
	KindEncounter Kind = "encounter"
	KindDungeon   Kind = "dungeon"
)

// Outcome of a finished session.
type Outcome string

const (
	OutcomeKill       Outcome = "kill"
	OutcomeWipe       Outcome = "wipe"
	OutcomeCompleted  Outcome = "completed"
	OutcomeDepleted   Outcome = "depleted"
	OutcomeZoneChange Outcome = "zone_change"
	OutcomeTimeout    Outcome = "timeout"
)

// DungeonDifficultyID is the Mythic Keystone difficulty.
const DungeonDifficultyID = 8

// Session is one boss encounter or Mythic+ run.
type Session struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	BossID        int       `json:"boss_id,omitempty"`
	DungeonID     int       `json:"dungeon_id,omitempty"`
	Name          string    `json:"name"`
	DifficultyID  int       `json:"difficulty_id"`
	Difficulty    string    `json:"difficulty"`
	InstanceID    int       `json:"instance_id"`
	GroupSize     int       `json:"group_size,omitempty"`
	KeystoneLevel int       `json:"keystone_level,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at,omitzero"`
	LogTimestamp  string    `json:"log_timestamp"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	Recorded      bool      `json:"recorded"`
	SkipReason    string    `json:"skip_reason,omitempty"`
}

func newEncounterSession(info combatlog.BossInfo, ts string, now time.Time) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Kind:         KindEncounter,
		BossID:       info.BossID,
		Name:         info.Name,
		DifficultyID: info.DifficultyID,
		Difficulty:   combatlog.DifficultyName(info.DifficultyID),
		InstanceID:   info.InstanceID,
		GroupSize:    info.GroupSize,
		StartedAt:    now,
		LogTimestamp: ts,
	}
}

func newDungeonSession(info combatlog.DungeonInfo, ts string, now time.Time) *Session {
	return &Session{
		ID:            uuid.NewString(),
		Kind:          KindDungeon,
		DungeonID:     info.DungeonID,
		Name:          info.Name,
		DifficultyID:  DungeonDifficultyID,
		Difficulty:    "M+" + strconv.Itoa(info.KeystoneLevel),
		InstanceID:    info.InstanceID,
		KeystoneLevel: info.KeystoneLevel,
		StartedAt:     now,
		LogTimestamp:  ts,
	}
}

// Duration is the wall-clock length of the session, or the time since it
// started while it is active.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Suffix is the last token of the recording file name: the difficulty name
// for encounters, "M+<level>" for dungeons.
func (s Session) Suffix() string {
	if s.Kind == KindDungeon {
		return "M+" + strconv.Itoa(s.KeystoneLevel)
	}
	return s.Difficulty
}

// FilterEnv is what user filter expressions see.
func (s Session) FilterEnv() combatlog.FilterEnv {
	return combatlog.FilterEnv{
		Kind:          string(s.Kind),
		BossID:        s.BossID,
		Name:          s.Name,
		DifficultyID:  s.DifficultyID,
		Difficulty:    s.Difficulty,
		InstanceID:    s.InstanceID,
		GroupSize:     s.GroupSize,
		KeystoneLevel: s.KeystoneLevel,
	}
}
