package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/nxadm/tail"

	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// Line is one line appended to a combat log.
type Line struct {
	Text   string
	Source string
	Time   time.Time
}

// Tailer streams lines appended to a single file.
type Tailer struct {
	path      string
	fromStart bool
	positions *Positions

	mu      sync.Mutex
	tail    *tail.Tail
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewTailer creates a tailer for path. Nothing is opened until Start.
// When fromStart is false, content present at Start is skipped.
func NewTailer(path string, fromStart bool, positions *Positions) *Tailer {
	if positions == nil {
		positions = NewPositions()
	}
	return &Tailer{path: path, fromStart: fromStart, positions: positions}
}

// Path returns the followed file.
func (t *Tailer) Path() string { return t.path }

// Running reports whether the tailer is following its file.
func (t *Tailer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start begins following the file and sends lines to out until Stop is
// called or ctx ends. Starting a running tailer is a no-op.
func (t *Tailer) Start(ctx context.Context, out chan<- Line) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	config := tail.Config{
		Location:  t.positions.SeekInfo(t.path, t.fromStart),
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	}
	tailer, err := tail.TailFile(t.path, config)
	if err != nil {
		return err
	}

	t.tail = tailer
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.forward(ctx, tailer, t.stop, t.done, out)
	return nil
}

func (t *Tailer) forward(ctx context.Context, tailer *tail.Tail, stop, done chan struct{}, out chan<- Line) {
	defer close(done)
	log := logger.Get(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case line, ok := <-tailer.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				log.Warnf("[WATCHER] Error reading %s: %v", t.path, line.Err)
				continue
			}
			t.positions.Update(t.path, line.SeekInfo.Offset)
			metrics.LogLinesRead.Inc()
			select {
			case out <- Line{Text: line.Text, Source: t.path, Time: line.Time}:
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}
}

// Stop stops following. The read position is kept, so a later Start resumes.
func (t *Tailer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	tailer, stop, done := t.tail, t.stop, t.done
	t.mu.Unlock()

	close(stop)
	_ = tailer.Stop()
	<-done
}
