package encounter

import "context"

// Recorder is driven by the detector. Implementations must tolerate a Start
// while already recording and a Stop while idle.
type Recorder interface {
	Start(ctx context.Context, s Session) error
	Stop(ctx context.Context, s Session) error
}

// NopRecorder ignores every command.
type NopRecorder struct{}

func (NopRecorder) Start(context.Context, Session) error { return nil }
func (NopRecorder) Stop(context.Context, Session) error  { return nil }
