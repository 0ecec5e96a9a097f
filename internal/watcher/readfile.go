package watcher

import (
	"context"
	"fmt"

	"github.com/nxadm/tail"
)

// ReadFile calls fn for every line of path from the start, without
// following it, until the end of the file or ctx ends.
func ReadFile(ctx context.Context, path string, fn func(Line)) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()
	defer func() { _ = t.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				return fmt.Errorf("read %s: %w", path, line.Err)
			}
			fn(Line{Text: line.Text, Source: path, Time: line.Time})
		}
	}
}
