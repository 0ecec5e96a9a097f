package encounter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/livp123/raidrec/internal/combatlog"
	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/utils/logger"
	"github.com/livp123/raidrec/internal/watcher"
)

// DefaultCheckInterval is how often dungeon inactivity is checked.
const DefaultCheckInterval = 5 * time.Second

// Option configures a Detector.
type Option func(*Detector)

// WithListener sets the transition listener.
func WithListener(l Listener) Option {
	return func(d *Detector) { d.listener = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithCheckInterval sets the dungeon inactivity check period.
func WithCheckInterval(interval time.Duration) Option {
	return func(d *Detector) { d.checkInterval = interval }
}

// WithStopDelay overrides the configured stop grace period.
func WithStopDelay(delay time.Duration) Option {
	return func(d *Detector) { d.stopDelay = &delay }
}

// Snapshot is a point-in-time view of the detector.
type Snapshot struct {
	State        State     `json:"state"`
	Active       *Session  `json:"active,omitempty"`
	PendingStop  *Session  `json:"pending_stop,omitempty"`
	LastActivity time.Time `json:"last_activity,omitzero"`
}

// command is a recorder call decided under the state lock and run after it
// is released.
type command struct {
	ctx     context.Context
	stop    bool
	session Session
}

type pendingStop struct {
	session Session
	gen     uint64
	timer   *time.Timer
}

// Detector is the encounter state machine. It holds at most one active
// session and stops recording only after the grace period passed without a
// new recorded start.
// Detector 是遭遇战状态机，同一时刻最多只有一个活动会话。
type Detector struct {
	cfg           config.Provider
	rec           Recorder
	listener      Listener
	now           func() time.Time
	checkInterval time.Duration
	stopDelay     *time.Duration
	policy        policy

	mu           sync.Mutex
	ctx          context.Context
	state        State
	active       *Session
	pending      *pendingStop
	gen          uint64
	lastActivity time.Time
	queue        []command

	// cmdMu serializes recorder calls in the order they were queued. It is
	// never held together with mu while a call runs.
	cmdMu sync.Mutex
}

// NewDetector creates a detector that reads its settings from cfg on every
// decision, so configuration changes apply to the next session.
func NewDetector(cfg config.Provider, rec Recorder, opts ...Option) *Detector {
	if rec == nil {
		rec = NopRecorder{}
	}
	d := &Detector{
		cfg:           cfg,
		rec:           rec,
		now:           time.Now,
		checkInterval: DefaultCheckInterval,
		state:         StateIdle,
		ctx:           context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run feeds lines into the detector and checks dungeon inactivity until ctx
// ends or lines is closed. A stop still in its grace period is issued on exit.
// Run 处理日志行并检查地下城超时，直到 ctx 结束或 lines 关闭。
func (d *Detector) Run(ctx context.Context, lines <-chan watcher.Line) error {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()
	defer d.Flush(context.WithoutCancel(ctx))

	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			d.HandleLine(ctx, line.Text)
		case <-ticker.C:
			d.CheckIdle(ctx)
		}
	}
}

// HandleLine parses and applies one raw combat log line.
func (d *Detector) HandleLine(ctx context.Context, line string) {
	ev, ok := combatlog.Parse(line)
	if !ok {
		return
	}
	d.HandleEvent(ctx, ev)
}

// HandleEvent applies one parsed event.
func (d *Detector) HandleEvent(ctx context.Context, ev combatlog.Event) {
	if !ev.IsInteresting() {
		d.withLock(func() {
			if d.state == StateInDungeon {
				d.lastActivity = d.now()
			}
		})
		return
	}
	d.withLock(func() { d.handle(ctx, ev) })
}

// withLock runs fn under mu, then runs the recorder calls fn queued.
func (d *Detector) withLock(fn func()) {
	d.mu.Lock()
	fn()
	queued := len(d.queue) > 0
	d.mu.Unlock()
	if queued {
		d.drain()
	}
}

// drain runs queued recorder calls in order without holding mu, so status
// readers are not blocked by slow OBS requests.
func (d *Detector) drain() {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		c := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		if c.stop {
			if err := d.rec.Stop(c.ctx, c.session); err != nil {
				logger.Get(c.ctx).Errorf("[DETECTOR] Failed to stop recording for %s: %v", c.session.Name, err)
			}
			continue
		}
		if err := d.rec.Start(c.ctx, c.session); err != nil {
			logger.Get(c.ctx).Errorf("[DETECTOR] Failed to start recording for %s: %v", c.session.Name, err)
		}
	}
}

// handle applies ev. Callers hold d.mu.
func (d *Detector) handle(ctx context.Context, ev combatlog.Event) {
	if d.state == StateInDungeon {
		d.lastActivity = d.now()
	}

	switch ev.Type {
	case combatlog.TypeChallengeModeStart:
		info, ok := ev.DungeonInfo()
		if !ok {
			logger.Get(ctx).Warnf("[DETECTOR] Could not parse dungeon info from: %s", ev.Raw)
			return
		}
		d.begin(ctx, newDungeonSession(info, ev.Timestamp, d.now()))

	case combatlog.TypeChallengeModeEnd:
		if d.state != StateInDungeon {
			return
		}
		end, _ := ev.DungeonEnd()
		outcome := OutcomeDepleted
		if end.Success {
			outcome = OutcomeCompleted
		}
		d.end(ctx, ev.Timestamp, outcome)

	case combatlog.TypeZoneChange:
		if d.state != StateInDungeon {
			return
		}
		zone, ok := ev.ZoneChange()
		if !ok {
			return
		}
		if !strings.Contains(strings.ToLower(zone.Name), strings.ToLower(d.active.Name)) {
			logger.Get(ctx).Infof("[DETECTOR] Zone changed from dungeon to: %s", zone.Name)
			d.end(ctx, ev.Timestamp, OutcomeZoneChange)
		}

	case combatlog.TypeEncounterStart:
		// Boss fights inside a key belong to the run.
		if d.state == StateInDungeon {
			return
		}
		info, ok := ev.BossInfo()
		if !ok {
			logger.Get(ctx).Warnf("[DETECTOR] Could not parse boss info from: %s", ev.Raw)
			return
		}
		d.begin(ctx, newEncounterSession(info, ev.Timestamp, d.now()))

	case combatlog.TypeEncounterEnd:
		if d.state != StateInEncounter {
			return
		}
		end, _ := ev.EncounterEnd()
		if end.BossID != 0 && end.BossID != d.active.BossID {
			logger.Get(ctx).Debugf("[DETECTOR] ENCOUNTER_END for %d while tracking %d", end.BossID, d.active.BossID)
		}
		outcome := OutcomeWipe
		if end.Kill {
			outcome = OutcomeKill
		}
		d.end(ctx, ev.Timestamp, outcome)
	}
}

// begin handles a start marker. Callers hold d.mu.
func (d *Detector) begin(ctx context.Context, s *Session) {
	log := logger.Get(ctx)
	if d.active != nil && d.active.Recorded {
		log.Debugf("[DETECTOR] Ignoring %s start while recording %s", s.Kind, d.active.Name)
		return
	}

	cfg := d.cfg.Get()
	if s.Kind == KindEncounter {
		if name, ok := cfg.BossName(s.BossID); ok {
			s.Name = name
		}
	}

	startType := EventEncounterStart
	nextState := StateInEncounter
	if s.Kind == KindDungeon {
		startType = EventDungeonStart
		nextState = StateInDungeon
	}

	d.active = s
	d.state = nextState
	d.lastActivity = d.now()
	d.emit(startType, s, s.LogTimestamp, "")
	log.Infof("[DETECTOR] 🏁 %s started: %s (%s)", s.Kind, s.Name, s.Difficulty)

	ok, reason := d.policy.decide(cfg, s)
	if !ok {
		s.SkipReason = reason
		d.emit(EventRecordingSkipped, s, s.LogTimestamp, reason)
		log.Infof("[DETECTOR] Not recording %s: %s", s.Name, reason)
		return
	}

	s.Recorded = true
	if d.pending != nil {
		d.pending.timer.Stop()
		d.emit(EventStopCanceled, &d.pending.session, s.LogTimestamp, "recording continues into "+s.Name)
		log.Infof("[DETECTOR] ⏯️ Pending stop canceled, recording continues into %s", s.Name)
		d.pending = nil
	}
	d.queue = append(d.queue, command{ctx: ctx, session: *s})
}

// end closes the active session. Callers hold d.mu.
func (d *Detector) end(ctx context.Context, timestamp string, outcome Outcome) {
	s := d.active
	s.EndedAt = d.now()
	s.Outcome = outcome
	d.active = nil
	d.state = StateIdle
	d.lastActivity = time.Time{}

	endType := EventEncounterEnd
	if s.Kind == KindDungeon {
		endType = EventDungeonEnd
	}
	d.emit(endType, s, timestamp, string(outcome))
	metrics.Encounters.WithLabelValues(string(s.Kind), string(outcome)).Inc()
	logger.Get(ctx).Infof("[DETECTOR] 🏳️ %s ended: %s (%s, %s)", s.Kind, s.Name, outcome, s.Duration().Round(time.Second))

	if s.Recorded {
		d.scheduleStop(ctx, *s)
	}
}

// scheduleStop arms the grace timer. Callers hold d.mu.
func (d *Detector) scheduleStop(ctx context.Context, s Session) {
	delay := d.cfg.Get().StopDelay()
	if d.stopDelay != nil {
		delay = *d.stopDelay
	}
	if delay <= 0 {
		d.issueStop(ctx, s)
		return
	}

	d.gen++
	gen := d.gen
	d.pending = &pendingStop{session: s, gen: gen}
	d.pending.timer = time.AfterFunc(delay, func() { d.fireStop(gen) })
	d.emit(EventStopScheduled, &s, "", fmt.Sprintf("stopping in %s", delay))
}

func (d *Detector) fireStop(gen uint64) {
	d.withLock(func() {
		if d.pending == nil || d.pending.gen != gen {
			return
		}
		s := d.pending.session
		d.pending = nil
		d.issueStop(d.ctx, s)
	})
}

// issueStop queues the recorder stop. Callers hold d.mu.
func (d *Detector) issueStop(ctx context.Context, s Session) {
	d.emit(EventStopIssued, &s, "", "")
	d.queue = append(d.queue, command{ctx: ctx, stop: true, session: s})
}

// CheckIdle ends a dungeon run that has seen no log activity for the
// configured timeout.
func (d *Detector) CheckIdle(ctx context.Context) {
	d.withLock(func() { d.checkIdle(ctx) })
}

func (d *Detector) checkIdle(ctx context.Context) {
	if d.state != StateInDungeon || d.lastActivity.IsZero() {
		return
	}
	timeout := d.cfg.Get().DungeonTimeout()
	if timeout <= 0 {
		return
	}
	if idle := d.now().Sub(d.lastActivity); idle > timeout {
		logger.Get(ctx).Infof("[DETECTOR] ⏱️ Dungeon idle for %s, ending run", idle.Round(time.Second))
		d.end(ctx, "", OutcomeTimeout)
	}
}

// Flush issues a pending stop immediately.
func (d *Detector) Flush(ctx context.Context) {
	d.withLock(func() {
		if d.pending == nil {
			return
		}
		d.pending.timer.Stop()
		s := d.pending.session
		d.pending = nil
		d.issueStop(ctx, s)
	})
}

// Snapshot returns the current state.
func (d *Detector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := Snapshot{State: d.state, LastActivity: d.lastActivity}
	if d.active != nil {
		s := *d.active
		snap.Active = &s
	}
	if d.pending != nil {
		s := d.pending.session
		snap.PendingStop = &s
	}
	return snap
}

func (d *Detector) emit(t EventType, s *Session, timestamp, msg string) {
	if d.listener == nil {
		return
	}
	d.listener(Event{Type: t, Time: d.now(), Timestamp: timestamp, Session: *s, Message: msg})
}
