package encounter

import "time"

// EventType names a detector transition.
type EventType string

const (
	EventEncounterStart   EventType = "ENCOUNTER_START"
	EventEncounterEnd     EventType = "ENCOUNTER_END"
	EventDungeonStart     EventType = "DUNGEON_START"
	EventDungeonEnd       EventType = "DUNGEON_END"
	EventRecordingSkipped EventType = "RECORDING_SKIPPED"
	EventStopScheduled    EventType = "STOP_SCHEDULED"
	EventStopCanceled     EventType = "STOP_CANCELED"
	EventStopIssued       EventType = "STOP_ISSUED"
)

// Event is published for every transition.
type Event struct {
	Type      EventType `json:"type"`
	Time      time.Time `json:"time"`
	Timestamp string    `json:"timestamp"`
	Session   Session   `json:"session"`
	Message   string    `json:"message,omitempty"`
}

// Listener receives detector events. It is called with the detector lock
// held and must not call back into the detector.
type Listener func(Event)
