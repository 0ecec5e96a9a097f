package api

import (
	"context"
	"time"

	"github.com/livp123/raidrec/internal/encounter"
	"github.com/livp123/raidrec/internal/recorder"
	"github.com/livp123/raidrec/internal/version"
	"github.com/livp123/raidrec/internal/watcher"
)

// DefaultStatusInterval is how often the status is pushed to dashboards.
const DefaultStatusInterval = 500 * time.Millisecond

// RecorderStatus is the recorder half of the dashboard status.
type RecorderStatus struct {
	State             encounter.State `json:"state"`
	Recording         bool            `json:"recording"`
	EncounterActive   bool            `json:"encounter_active"`
	BossName          string          `json:"boss_name,omitempty"`
	BossID            int             `json:"boss_id,omitempty"`
	DifficultyID      int             `json:"difficulty_id,omitempty"`
	Difficulty        string          `json:"difficulty,omitempty"`
	EncounterDuration float64         `json:"encounter_duration"`
	RecordingDuration float64         `json:"recording_duration"`
	DungeonActive     bool            `json:"dungeon_active"`
	DungeonName       string          `json:"dungeon_name,omitempty"`
	DungeonID         int             `json:"dungeon_id,omitempty"`
	KeystoneLevel     int             `json:"keystone_level,omitempty"`
	PendingStop       bool            `json:"pending_stop"`
}

// MonitorStatus is the log monitor half of the dashboard status.
type MonitorStatus struct {
	IsMonitoring bool   `json:"is_monitoring"`
	IsTailing    bool   `json:"is_tailing"`
	CurrentLog   string `json:"current_log"`
	Directory    string `json:"directory"`
	LastError    string `json:"last_error,omitempty"`
}

// Status is what GET /api/status returns and what the broadcaster pushes.
type Status struct {
	Recorder        RecorderStatus `json:"recorder"`
	LogMonitor      MonitorStatus  `json:"log_monitor"`
	OBSConnected    bool           `json:"obs_connected"`
	RecorderRunning bool           `json:"recorder_running"`
	Version         string         `json:"version"`
}

// statusKey is the part of Status whose change triggers a push.
type statusKey struct {
	state        encounter.State
	recording    bool
	bossName     string
	dungeonName  string
	pendingStop  bool
	tailing      bool
	currentLog   string
	obsConnected bool
}

func (st Status) key() statusKey {
	return statusKey{
		state:        st.Recorder.State,
		recording:    st.Recorder.Recording,
		bossName:     st.Recorder.BossName,
		dungeonName:  st.Recorder.DungeonName,
		pendingStop:  st.Recorder.PendingStop,
		tailing:      st.LogMonitor.IsTailing,
		currentLog:   st.LogMonitor.CurrentLog,
		obsConnected: st.OBSConnected,
	}
}

// Status assembles the current status from every attached component.
func (s *Server) Status() Status {
	st := Status{
		Version: version.Version,
		Recorder: RecorderStatus{
			State: encounter.StateIdle,
		},
	}

	if s.detector != nil {
		st.RecorderRunning = true
		snap := s.detector.Snapshot()
		st.Recorder.State = snap.State
		st.Recorder.PendingStop = snap.PendingStop != nil
		if a := snap.Active; a != nil {
			switch a.Kind {
			case encounter.KindDungeon:
				st.Recorder.DungeonActive = true
				st.Recorder.DungeonName = a.Name
				st.Recorder.DungeonID = a.DungeonID
				st.Recorder.KeystoneLevel = a.KeystoneLevel
			default:
				st.Recorder.EncounterActive = true
				st.Recorder.BossName = a.Name
				st.Recorder.BossID = a.BossID
			}
			st.Recorder.DifficultyID = a.DifficultyID
			st.Recorder.Difficulty = a.Difficulty
			st.Recorder.EncounterDuration = a.Duration().Seconds()
		}
	}

	if s.recorder != nil {
		rs := s.recorder.Status()
		st.Recorder.Recording = rs.Recording
		st.Recorder.RecordingDuration = rs.Duration().Seconds()
	}

	if s.monitor != nil {
		ms := s.monitor.Status()
		st.LogMonitor = monitorStatus(ms)
	} else {
		st.LogMonitor.Directory = s.config.Get().General.LogDir
	}

	if s.obs != nil {
		st.OBSConnected = s.obs.Connected()
	}
	return st
}

func monitorStatus(ms watcher.Status) MonitorStatus {
	return MonitorStatus{
		IsMonitoring: ms.Monitoring,
		IsTailing:    ms.Tailing,
		CurrentLog:   ms.CurrentLog,
		Directory:    ms.Directory,
		LastError:    ms.LastError,
	}
}

// broadcastStatus pushes the status every interval while it changes or
// while a recording is running.
func (s *Server) broadcastStatus(ctx context.Context) {
	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	var last statusKey
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.Len() == 0 {
				continue
			}
			st := s.Status()
			key := st.key()
			if first || key != last || st.Recorder.Recording {
				s.hub.Broadcast(Message{Type: MessageStatus, Data: st})
				last = key
				first = false
			}
		}
	}
}

// RecorderView reports the recorder controller state. *recorder.Controller
// implements it.
type RecorderView interface {
	Status() recorder.Status
}
