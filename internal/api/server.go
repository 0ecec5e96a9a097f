// Package api serves the web dashboard, its JSON API and the live
// WebSocket feed.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/encounter"
	"github.com/livp123/raidrec/internal/history"
	"github.com/livp123/raidrec/internal/recordings"
	"github.com/livp123/raidrec/internal/utils/logger"
	"github.com/livp123/raidrec/internal/watcher"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// ConfigStore is the live configuration. *config.Manager implements it.
type ConfigStore interface {
	Get() *config.Config
	Update(next *config.Config) error
	Path() string
}

// DetectorView reports the encounter state. *encounter.Detector implements it.
type DetectorView interface {
	Snapshot() encounter.Snapshot
}

// MonitorView reports the log monitor state. *watcher.Monitor implements it.
type MonitorView interface {
	Status() watcher.Status
}

// OBSView reports the OBS connection. *obs.Client implements it.
type OBSView interface {
	Connected() bool
}

// HistoryReader lists stored sessions. *history.Store implements it.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]history.SessionRecord, error)
}

// Options wires the server to the rest of the process. Only Config is
// required; the others are nil when the recorder is not running.
type Options struct {
	Config     ConfigStore
	Recordings *recordings.Manager
	History    HistoryReader
	Detector   DetectorView
	Monitor    MonitorView
	Recorder   RecorderView
	OBS        OBSView

	StatusInterval time.Duration
	EventLogSize   int
}

// Server is the web control surface.
// Server 提供 Web 控制界面和 API。
type Server struct {
	config     ConfigStore
	recordings *recordings.Manager
	history    HistoryReader
	detector   DetectorView
	monitor    MonitorView
	recorder   RecorderView
	obs        OBSView

	statusInterval time.Duration
	events         *EventLog
	hub            *Hub
	startOnce      sync.Once
}

// NewServer creates a server. Nothing runs until Serve.
func NewServer(opts Options) *Server {
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = DefaultStatusInterval
	}
	return &Server{
		config:         opts.Config,
		recordings:     opts.Recordings,
		history:        opts.History,
		detector:       opts.Detector,
		monitor:        opts.Monitor,
		recorder:       opts.Recorder,
		obs:            opts.OBS,
		statusInterval: opts.StatusInterval,
		events:         NewEventLog(opts.EventLogSize),
		hub:            NewHub(),
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleUI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleUpdateConfig)
	mux.HandleFunc("GET /api/recordings", s.handleListRecordings)
	mux.HandleFunc("DELETE /api/recordings/{name}", s.handleDeleteRecording)
	mux.HandleFunc("GET /video/{name}", s.handleVideo)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// start launches the hub and the status broadcaster once.
func (s *Server) start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.hub.Run(ctx)
		go s.broadcastStatus(ctx)
	})
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Get(ctx)
	s.start(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[WEB] 🌐 Web GUI listening on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("[WEB] Graceful shutdown failed: %v", err)
		return srv.Close()
	}
	log.Infof("[WEB] Web server stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Publish records a detector event and pushes it to dashboards. It is
// safe to use as an encounter.Listener.
func (s *Server) Publish(ev encounter.Event) {
	entry := entryFromEvent(ev)
	s.events.Add(entry)
	s.hub.Broadcast(Message{Type: MessageCombatEvent, Data: entry})
}

// Log adds a free-form entry to the event log.
func (s *Server) Log(kind, message string) {
	entry := LogEntry{Time: time.Now(), Type: kind, Message: message}
	s.events.Add(entry)
	s.hub.Broadcast(Message{Type: MessageCombatEvent, Data: entry})
}

// NotifyRecordingsUpdated tells dashboards to reload the recording list.
func (s *Server) NotifyRecordingsUpdated() {
	s.hub.Broadcast(Message{Type: MessageRecordingsUpdated})
}

// Events returns the event log, oldest first.
func (s *Server) Events() []LogEntry {
	return s.events.Entries()
}
