package api

import (
	"sync"
	"time"

	"github.com/livp123/raidrec/internal/encounter"
)

// DefaultEventLogSize is how many events the dashboard keeps.
const DefaultEventLogSize = 50

// LogEntry is one line of the dashboard event log.
type LogEntry struct {
	Time      time.Time          `json:"time"`
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Timestamp string             `json:"timestamp,omitempty"`
	Session   *encounter.Session `json:"session,omitempty"`
}

// EventLog is a fixed-size ring of the most recent entries.
// EventLog 保存最近的若干条事件。
type EventLog struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewEventLog creates a ring holding size entries.
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	return &EventLog{entries: make([]LogEntry, size)}
}

// Add appends e, dropping the oldest entry when full.
func (l *EventLog) Add(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the entries oldest first.
func (l *EventLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.full {
		return append([]LogEntry(nil), l.entries[:l.next]...)
	}
	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	return append(out, l.entries[:l.next]...)
}

// entryFromEvent renders a detector event for the dashboard.
func entryFromEvent(ev encounter.Event) LogEntry {
	s := ev.Session
	var msg string
	switch ev.Type {
	case encounter.EventEncounterStart:
		msg = "Encounter started: " + s.Name + " (" + s.Difficulty + ")"
	case encounter.EventEncounterEnd:
		msg = "Encounter ended: " + s.Name + " (" + ev.Message + ")"
	case encounter.EventDungeonStart:
		msg = "Dungeon started: " + s.Name + " (" + s.Difficulty + ")"
	case encounter.EventDungeonEnd:
		msg = "Dungeon ended: " + s.Name + " (" + ev.Message + ")"
	case encounter.EventRecordingSkipped:
		msg = "Not recording " + s.Name + ": " + ev.Message
	case encounter.EventStopScheduled:
		msg = "Recording of " + s.Name + " " + ev.Message
	case encounter.EventStopCanceled:
		msg = "Pending stop canceled, " + ev.Message
	case encounter.EventStopIssued:
		msg = "Recording stopped after " + s.Name
	default:
		msg = ev.Message
	}
	return LogEntry{
		Time:      ev.Time,
		Type:      string(ev.Type),
		Message:   msg,
		Timestamp: ev.Timestamp,
		Session:   &s,
	}
}
