package encounter

import (
	"context"
	"os"
	"time"

	"github.com/livp123/raidrec/internal/combatlog"
	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/watcher"
)

// Replay runs a finished combat log through a detector whose clock follows
// the line timestamps, and returns every session it saw in order. A session
// still open at the end of the file is returned without an outcome.
// Nothing is recorded; stops are issued without a grace period.
// Replay 离线回放战斗日志并返回检测到的全部会话。
func Replay(ctx context.Context, cfg config.Provider, path string) ([]Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	year := info.ModTime().Year()

	var (
		clock    time.Time
		sessions []Session
	)
	d := NewDetector(cfg, nil,
		WithClock(func() time.Time { return clock }),
		WithStopDelay(0),
		WithListener(func(e Event) {
			if e.Type == EventEncounterEnd || e.Type == EventDungeonEnd {
				sessions = append(sessions, e.Session)
			}
		}),
	)

	err = watcher.ReadFile(ctx, path, func(l watcher.Line) {
		ev, ok := combatlog.Parse(l.Text)
		if !ok {
			return
		}
		if t, ok := combatlog.ParseTimestamp(ev.Timestamp, year); ok {
			clock = t
		}
		d.CheckIdle(ctx)
		d.HandleEvent(ctx, ev)
	})
	if err != nil {
		return sessions, err
	}

	if active := d.Snapshot().Active; active != nil {
		sessions = append(sessions, *active)
	}
	return sessions, nil
}
