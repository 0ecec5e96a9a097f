package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fsnotify/fsnotify"

	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/utils/logger"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// Status describes what the monitor is currently doing.
type Status struct {
	Directory  string `json:"directory"`
	Monitoring bool   `json:"monitoring"`
	Tailing    bool   `json:"tailing"`
	CurrentLog string `json:"current_log"`
	LastError  string `json:"last_error,omitempty"`
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithFromStart makes the first located log be read from its beginning.
func WithFromStart() Option {
	return func(m *Monitor) { m.fromStart = true }
}

// WithRetryInterval sets the initial and maximum retry delay.
func WithRetryInterval(initial, max time.Duration) Option {
	return func(m *Monitor) {
		m.retryInitial = initial
		m.retryMax = max
	}
}

// WithBuffer sets the capacity of the line channel.
func WithBuffer(n int) Option {
	return func(m *Monitor) { m.buffer = n }
}

// Monitor follows the newest combat log in a directory and switches to a
// newer file when the game rotates its log.
// Monitor 跟踪目录中最新的战斗日志，并在游戏轮转日志时切换到新文件。
type Monitor struct {
	dir       string
	pattern   *regexp.Regexp
	fromStart bool
	buffer    int

	retryInitial time.Duration
	retryMax     time.Duration

	positions *Positions
	lines     chan Line

	mu     sync.RWMutex
	status Status
	tailer *Tailer
}

// NewMonitor creates a monitor for dir. Call Run to start it.
func NewMonitor(dir string, pattern *regexp.Regexp, opts ...Option) *Monitor {
	m := &Monitor{
		dir:          dir,
		pattern:      pattern,
		buffer:       1024,
		retryInitial: time.Second,
		retryMax:     30 * time.Second,
		positions:    NewPositions(),
		status:       Status{Directory: dir},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lines = make(chan Line, m.buffer)
	return m
}

// Lines returns the stream of lines from the current log. It is closed when Run returns.
func (m *Monitor) Lines() <-chan Line {
	return m.lines
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) setStatus(fn func(*Status)) {
	m.mu.Lock()
	fn(&m.status)
	m.mu.Unlock()
}

// Run watches the directory until ctx ends. Directory or file problems are
// logged and retried, never returned. The returned error is ctx's.
// Run 持续监控目录直到 ctx 结束，目录或文件错误只记录并重试。
func (m *Monitor) Run(ctx context.Context) error {
	log := logger.Get(ctx)
	defer close(m.lines)
	defer m.stopTailer()
	defer m.setStatus(func(s *Status) {
		s.Monitoring = false
		s.Tailing = false
	})

	for ctx.Err() == nil {
		w, err := backoff.Retry(ctx, m.watchDir,
			backoff.WithBackOff(m.newBackOff()),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, next time.Duration) {
				m.setStatus(func(s *Status) { s.LastError = err.Error() })
				log.Warnf("[WATCHER] %v, retrying in %s", err, next.Round(time.Millisecond))
			}),
		)
		if err != nil {
			break
		}

		log.Infof("[WATCHER] 👀 Watching %s", m.dir)
		m.setStatus(func(s *Status) {
			s.Monitoring = true
			s.LastError = ""
		})
		err = m.follow(ctx, w)
		_ = w.Close()
		m.stopTailer()
		m.setStatus(func(s *Status) {
			s.Monitoring = false
			s.Tailing = false
		})
		if err != nil && ctx.Err() == nil {
			log.Warnf("[WATCHER] Watch on %s lost: %v", m.dir, err)
		}
	}
	return ctx.Err()
}

func (m *Monitor) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.retryInitial
	b.MaxInterval = m.retryMax
	return b
}

func (m *Monitor) watchDir() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if err := w.Add(m.dir); err != nil {
		_ = w.Close()
		return nil, rrerrors.NewLogDirError(m.dir)
	}
	return w, nil
}

var errDirGone = errors.New("log directory removed")

// follow tails the newest log and reacts to directory events until the
// watch breaks or ctx ends.
func (m *Monitor) follow(ctx context.Context, w *fsnotify.Watcher) error {
	log := logger.Get(ctx)

	if path, err := Locate(m.dir, m.pattern); err == nil {
		m.switchTo(ctx, path, m.fromStart)
	} else {
		log.Infof("[WATCHER] No combat log in %s yet, waiting for one", m.dir)
	}

	// Files that fail to open are retried on the next tick.
	retry := time.NewTicker(m.retryInitial)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return errors.New("watch closed")
			}
			if filepath.Clean(event.Name) == filepath.Clean(m.dir) &&
				event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				return errDirGone
			}
			if !m.pattern.MatchString(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if event.Op == fsnotify.Write && event.Name == m.Status().CurrentLog {
				continue
			}
			m.relocate(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watch closed")
			}
			log.Warnf("[WATCHER] fsnotify error: %v", err)

		case <-retry.C:
			if !m.Status().Tailing {
				m.relocate(ctx)
			}
		}
	}
}

// relocate switches to the newest log when it differs from the current one.
// A log that appears while monitoring is read from its start.
func (m *Monitor) relocate(ctx context.Context) {
	path, err := Locate(m.dir, m.pattern)
	if err != nil {
		return
	}
	m.mu.RLock()
	current := m.status.CurrentLog
	tailing := m.status.Tailing
	m.mu.RUnlock()
	if path == current && tailing {
		return
	}
	if current != "" && path != current {
		metrics.LogRotations.Inc()
		logger.Get(ctx).Infof("[WATCHER] 🔄 Combat log rotated: %s", filepath.Base(path))
	}
	m.switchTo(ctx, path, path != current || current == "")
}

func (m *Monitor) switchTo(ctx context.Context, path string, fromStart bool) {
	log := logger.Get(ctx)
	m.stopTailer()

	t := NewTailer(path, fromStart, m.positions)
	if err := t.Start(ctx, m.lines); err != nil {
		log.Warnf("[WATCHER] Failed to tail %s: %v", path, err)
		m.setStatus(func(s *Status) {
			s.Tailing = false
			s.CurrentLog = path
			s.LastError = err.Error()
		})
		return
	}
	log.Infof("[WATCHER] 📄 Tailing %s", filepath.Base(path))

	m.mu.Lock()
	m.tailer = t
	m.status.Tailing = true
	m.status.CurrentLog = path
	m.status.LastError = ""
	m.mu.Unlock()
}

func (m *Monitor) stopTailer() {
	m.mu.Lock()
	t := m.tailer
	m.tailer = nil
	m.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}
