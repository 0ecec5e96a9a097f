package obs

import (
	"fmt"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// ErrNotConnected is returned when OBS cannot be reached.
var ErrNotConnected = rrerrors.ErrOBSNotConnected

// RequestError is a request OBS answered with a failed status.
type RequestError struct {
	Type    string
	Code    int
	Comment string
}

func (e *RequestError) Error() string {
	if e.Comment != "" {
		return fmt.Sprintf("OBS %s failed: code %d: %s", e.Type, e.Code, e.Comment)
	}
	return fmt.Sprintf("OBS %s failed: code %d", e.Type, e.Code)
}

// Is matches rrerrors.ErrOBSRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == rrerrors.ErrOBSRequestFailed
}

// Codes OBS returns for recording state conflicts.
const (
	CodeOutputRunning    = 500
	CodeOutputNotRunning = 501
)
