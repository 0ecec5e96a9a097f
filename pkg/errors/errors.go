package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound     = errors.New("config not found")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrLogDirNotFound     = errors.New("log directory not found")
	ErrNoLogFile          = errors.New("no combat log file found")
	ErrRecordingDirNotSet = errors.New("recording directory not available")
	ErrRecordingNotFound  = errors.New("recording not found")
	ErrInvalidFilePath    = errors.New("invalid file path")
	ErrOBSNotConnected    = errors.New("not connected to OBS")
	ErrOBSAuthFailed      = errors.New("OBS authentication failed")
	ErrOBSRequestFailed   = errors.New("OBS request failed")
	ErrInvalidFilter      = errors.New("invalid filter expression")
	ErrHistoryDisabled    = errors.New("history store disabled")
	ErrTimeout            = errors.New("operation timeout")
	ErrCanceled           = errors.New("operation canceled")
)

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

func NewFileError(path string, reason error) error {
	return fmt.Errorf("%w: %s: %v", ErrRecordingNotFound, path, reason)
}

func NewPathError(path string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFilePath, path)
}

func NewLogDirError(dir string) error {
	return fmt.Errorf("%w: %s", ErrLogDirNotFound, dir)
}

func NewFilterError(expression string, reason error) error {
	return fmt.Errorf("%w: %q: %v", ErrInvalidFilter, expression, reason)
}
