package api

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livp123/raidrec/internal/encounter"
)

func TestEventLogRing(t *testing.T) {
	log := NewEventLog(3)
	assert.Empty(t, log.Entries())

	for i := range 5 {
		log.Add(LogEntry{Type: "T", Message: strconv.Itoa(i)})
	}
	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Message)
	assert.Equal(t, "4", entries[2].Message)
}

func TestEventLogDefaultSize(t *testing.T) {
	log := NewEventLog(0)
	for i := range DefaultEventLogSize + 10 {
		log.Add(LogEntry{Message: strconv.Itoa(i)})
	}
	entries := log.Entries()
	require.Len(t, entries, DefaultEventLogSize)
	assert.Equal(t, "10", entries[0].Message)
}

func TestEntryFromEvent(t *testing.T) {
	s := encounter.Session{Name: "Ara-Kara, City of Echoes", Difficulty: "M+12"}
	tests := []struct {
		ev   encounter.Event
		want string
	}{
		{encounter.Event{Type: encounter.EventDungeonStart, Session: s}, "Dungeon started: Ara-Kara, City of Echoes (M+12)"},
		{encounter.Event{Type: encounter.EventDungeonEnd, Session: s, Message: "completed"}, "Dungeon ended: Ara-Kara, City of Echoes (completed)"},
		{encounter.Event{Type: encounter.EventRecordingSkipped, Session: s, Message: "M+ recording disabled"}, "Not recording Ara-Kara, City of Echoes: M+ recording disabled"},
		{encounter.Event{Type: encounter.EventStopIssued, Session: s}, "Recording stopped after Ara-Kara, City of Echoes"},
	}
	for _, tc := range tests {
		t.Run(string(tc.ev.Type), func(t *testing.T) {
			tc.ev.Time = time.Now()
			entry := entryFromEvent(tc.ev)
			assert.Equal(t, tc.want, entry.Message)
			assert.Equal(t, string(tc.ev.Type), entry.Type)
			require.NotNil(t, entry.Session)
		})
	}
}

func TestErrorList(t *testing.T) {
	err := errors.Join(errors.New("a"), fmt.Errorf("wrapped: %w", errors.New("b")))
	assert.Equal(t, []string{"a", "wrapped: b"}, errorList(err))
	assert.Equal(t, []string{"single"}, errorList(errors.New("single")))
}
