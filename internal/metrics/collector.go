package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Combat log metrics
	LogLinesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raidrec_log_lines_total",
			Help: "Total combat log lines read",
		},
	)
	LogRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raidrec_log_rotations_total",
			Help: "Times the tailer switched to a newer combat log",
		},
	)

	// Encounter metrics
	Encounters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidrec_encounters_total",
			Help: "Finished encounters and dungeon runs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// Recording metrics
	RecordingActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidrec_recording_active",
			Help: "1 while OBS is recording on our behalf",
		},
	)
	PostProcess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidrec_postprocess_total",
			Help: "Post-processing actions on finished recordings",
		},
		[]string{"action"},
	)

	// OBS metrics
	OBSRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidrec_obs_requests_total",
			Help: "OBS WebSocket requests by type and result",
		},
		[]string{"type", "result"},
	)
	OBSConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidrec_obs_connected",
			Help: "1 while the OBS WebSocket session is identified",
		},
	)

	// Web metrics
	WebClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidrec_web_clients",
			Help: "Connected live-update WebSocket clients",
		},
	)
)

// Post-processing action labels.
const (
	ActionRenamed    = "renamed"
	ActionDeleted    = "deleted"
	ActionKept       = "kept"
	ActionRenameFail = "rename_failed"
)
