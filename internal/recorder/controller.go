// Package recorder turns detector commands into OBS requests and cleans up
// the finished files.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/encounter"
	"github.com/livp123/raidrec/internal/history"
	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/obs"
	"github.com/livp123/raidrec/internal/recordings"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// OBS is the part of the OBS client the controller needs.
type OBS interface {
	StartRecord(ctx context.Context) error
	StopRecord(ctx context.Context) (string, error)
	RecordStatus(ctx context.Context) (obs.RecordStatus, error)
}

// HistorySink stores finished sessions. *history.Store implements it.
type HistorySink interface {
	Save(ctx context.Context, rec history.SessionRecord) error
}

// ErrStopped is returned for commands sent after Shutdown.
var ErrStopped = errors.New("recorder controller stopped")

// stableChecks bounds how often a growing file is re-checked before renaming.
const stableChecks = 5

// Status is a point-in-time view of the controller.
type Status struct {
	Recording bool                `json:"recording"`
	StartedAt time.Time           `json:"started_at,omitzero"`
	Sessions  []encounter.Session `json:"sessions,omitempty"`
}

// Duration is how long the current recording has run.
func (s Status) Duration() time.Duration {
	if !s.Recording || s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory stores every finished recording's sessions.
func WithHistory(h HistorySink) Option {
	return func(c *Controller) { c.history = h }
}

// WithOnUpdated is called after a finished recording was post-processed.
func WithOnUpdated(fn func()) Option {
	return func(c *Controller) { c.onUpdated = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
)

type command struct {
	ctx     context.Context
	kind    commandKind
	session encounter.Session
	result  chan error
}

// finished is one stopped recording waiting for post-processing.
type finished struct {
	path     string
	duration time.Duration
	sessions []encounter.Session
}

// Controller implements encounter.Recorder on top of OBS. Commands run one
// at a time on a worker goroutine; post-processing runs in the background
// and is drained by Shutdown.
// Controller 串行执行录制命令，录像后处理在后台进行。
type Controller struct {
	cfg       config.Provider
	obs       OBS
	files     *recordings.Manager
	history   HistorySink
	onUpdated func()
	now       func() time.Time

	commands chan command
	quit     chan struct{}
	worker   sync.WaitGroup
	post     sync.WaitGroup
	stopOnce sync.Once

	mu        sync.RWMutex
	recording bool
	startedAt time.Time
	sessions  []encounter.Session
}

// NewController creates a controller and starts its worker.
func NewController(cfg config.Provider, client OBS, files *recordings.Manager, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		obs:      client,
		files:    files,
		now:      time.Now,
		commands: make(chan command),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.worker.Add(1)
	go c.run()
	return c
}

// Start begins recording s. While already recording, s joins the current
// recording.
func (c *Controller) Start(ctx context.Context, s encounter.Session) error {
	return c.submit(ctx, cmdStart, s)
}

// Stop ends the current recording. Stopping while idle is a no-op.
func (c *Controller) Stop(ctx context.Context, s encounter.Session) error {
	return c.submit(ctx, cmdStop, s)
}

func (c *Controller) submit(ctx context.Context, kind commandKind, s encounter.Session) error {
	cmd := command{ctx: ctx, kind: kind, session: s, result: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-c.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) run() {
	defer c.worker.Done()
	for {
		select {
		case <-c.quit:
			return
		case cmd := <-c.commands:
			var err error
			switch cmd.kind {
			case cmdStart:
				err = c.start(cmd.ctx, cmd.session)
			case cmdStop:
				err = c.stop(cmd.ctx, cmd.session)
			}
			cmd.result <- err
		}
	}
}

// Status returns the current recording state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Recording: c.recording,
		StartedAt: c.startedAt,
		Sessions:  append([]encounter.Session(nil), c.sessions...),
	}
}

func (c *Controller) start(ctx context.Context, s encounter.Session) error {
	log := logger.Get(ctx)

	c.mu.Lock()
	if c.recording {
		c.sessions = append(c.sessions, s)
		c.mu.Unlock()
		log.Infof("[RECORDER] Recording continues with %s", s.Name)
		return nil
	}
	c.mu.Unlock()

	status, err := c.obs.RecordStatus(ctx)
	if err == nil && status.OutputActive {
		log.Infof("[RECORDER] OBS is already recording, adopting it for %s", s.Name)
	} else {
		if err != nil {
			log.Debugf("[RECORDER] Could not read OBS record status: %v", err)
		}
		if err := c.obs.StartRecord(ctx); err != nil && !isCode(err, obs.CodeOutputRunning) {
			return fmt.Errorf("start recording: %w", err)
		}
		log.Infof("[RECORDER] 🔴 Recording started: %s (%s)", s.Name, s.Difficulty)
	}

	c.mu.Lock()
	c.recording = true
	c.startedAt = c.now()
	c.sessions = []encounter.Session{s}
	c.mu.Unlock()
	metrics.RecordingActive.Set(1)
	return nil
}

func (c *Controller) stop(ctx context.Context, s encounter.Session) error {
	log := logger.Get(ctx)

	c.mu.RLock()
	recording := c.recording
	c.mu.RUnlock()
	if !recording {
		log.Debugf("[RECORDER] Stop for %s while idle, nothing to do", s.Name)
		return nil
	}

	var path string
	status, err := c.obs.RecordStatus(ctx)
	if err == nil && !status.OutputActive {
		log.Warnf("[RECORDER] OBS stopped recording on its own")
	} else {
		path, err = c.obs.StopRecord(ctx)
		if err != nil && !isCode(err, obs.CodeOutputNotRunning) {
			return fmt.Errorf("stop recording: %w", err)
		}
	}

	c.mu.Lock()
	done := finished{
		path:     path,
		duration: c.now().Sub(c.startedAt),
		sessions: mergeSession(c.sessions, s),
	}
	c.recording = false
	c.startedAt = time.Time{}
	c.sessions = nil
	c.mu.Unlock()
	metrics.RecordingActive.Set(0)
	log.Infof("[RECORDER] ⏹️ Recording stopped after %s", done.duration.Round(time.Second))

	c.post.Add(1)
	go func() {
		defer c.post.Done()
		c.postProcess(context.WithoutCancel(ctx), done)
	}()
	return nil
}

// mergeSession replaces the stored copy of s with its finished version.
func mergeSession(sessions []encounter.Session, s encounter.Session) []encounter.Session {
	out := append([]encounter.Session(nil), sessions...)
	for i := range out {
		if out[i].ID == s.ID {
			out[i] = s
			return out
		}
	}
	return append(out, s)
}

func isCode(err error, code int) bool {
	var reqErr *obs.RequestError
	return errors.As(err, &reqErr) && reqErr.Code == code
}

// postProcess deletes a short recording or renames it after its last
// session, then stores the sessions.
func (c *Controller) postProcess(ctx context.Context, done finished) {
	log := logger.Get(ctx)
	cfg := c.cfg.Get()

	short := done.duration < cfg.MinDuration()
	if !short && !cfg.Recording.AutoRename {
		c.finish(ctx, done, done.path, metrics.ActionKept)
		return
	}
	if short && !cfg.Recording.DeleteShortRecordings {
		log.Infof("[RECORDER] Recording shorter than %s kept", cfg.MinDuration())
		c.finish(ctx, done, done.path, metrics.ActionKept)
		return
	}

	if !c.wait(ctx, cfg.RenameDelay()) {
		return
	}
	path, err := c.resolve(ctx, done.path)
	if err != nil {
		log.Errorf("[RECORDER] Could not find the finished recording: %v", err)
		c.finish(ctx, done, "", metrics.ActionRenameFail)
		return
	}

	if short {
		if err := c.files.Delete(ctx, path, "shorter than "+cfg.MinDuration().String()); err != nil {
			log.Errorf("[RECORDER] Failed to delete short recording %s: %v", filepath.Base(path), err)
			c.finish(ctx, done, path, metrics.ActionKept)
			return
		}
		c.finish(ctx, done, path, metrics.ActionDeleted)
		return
	}

	if !c.waitStable(ctx, path) {
		log.Warnf("[RECORDER] %s is still being written, renaming anyway", filepath.Base(path))
	}
	last := done.sessions[len(done.sessions)-1]
	renamed, err := c.files.Rename(ctx, path, last.Name, last.Suffix(), cfg.Recording.MaxRenameAttempts)
	if err != nil {
		log.Errorf("[RECORDER] Failed to rename %s: %v", filepath.Base(path), err)
		c.finish(ctx, done, path, metrics.ActionRenameFail)
		return
	}
	c.finish(ctx, done, renamed, metrics.ActionRenamed)
}

func (c *Controller) resolve(ctx context.Context, path string) (string, error) {
	if path != "" {
		return path, nil
	}
	latest, err := c.files.Latest(ctx)
	if err != nil {
		return "", err
	}
	return latest.Path, nil
}

func (c *Controller) waitStable(ctx context.Context, path string) bool {
	for range stableChecks {
		stable, err := c.files.Stable(ctx, path)
		if err != nil {
			return false
		}
		if stable {
			return true
		}
	}
	return false
}

func (c *Controller) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) finish(ctx context.Context, done finished, path, action string) {
	metrics.PostProcess.WithLabelValues(action).Inc()

	if c.history != nil {
		for _, s := range done.sessions {
			rec := history.SessionRecord{
				ID:            s.ID,
				Kind:          string(s.Kind),
				Name:          s.Name,
				BossID:        s.BossID,
				DungeonID:     s.DungeonID,
				DifficultyID:  s.DifficultyID,
				Difficulty:    s.Difficulty,
				KeystoneLevel: s.KeystoneLevel,
				Outcome:       string(s.Outcome),
				StartedAt:     s.StartedAt,
				EndedAt:       s.EndedAt,
				Action:        action,
			}
			if path != "" {
				rec.RecordingFile = filepath.Base(path)
			}
			if err := c.history.Save(ctx, rec); err != nil {
				logger.Get(ctx).Warnf("[RECORDER] Failed to save session %s: %v", s.Name, err)
			}
		}
	}

	if c.onUpdated != nil {
		c.onUpdated()
	}
}

// Shutdown stops an active recording, stops the worker and waits for
// post-processing until ctx ends.
// Shutdown 停止当前录制并等待后处理完成。
func (c *Controller) Shutdown(ctx context.Context) error {
	status := c.Status()
	if status.Recording {
		last := status.Sessions[len(status.Sessions)-1]
		if err := c.Stop(ctx, last); err != nil {
			logger.Get(ctx).Warnf("[RECORDER] Failed to stop recording on shutdown: %v", err)
		}
	}

	c.stopOnce.Do(func() { close(c.quit) })
	c.worker.Wait()

	drained := make(chan struct{})
	go func() {
		c.post.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
