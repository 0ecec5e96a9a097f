package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/livp123/raidrec/internal/combatlog"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// Validate reports every problem found in the configuration, joined.
// Validate 返回配置中发现的全部问题（合并为一个错误）。
func (c *Config) Validate() error {
	var errs []error

	if c.General.LogDir == "" {
		errs = append(errs, rrerrors.NewConfigError("General.log_dir", ""))
	} else if info, err := os.Stat(c.General.LogDir); err != nil || !info.IsDir() {
		errs = append(errs, rrerrors.NewLogDirError(c.General.LogDir))
	}
	if _, err := c.LogPatternRegexp(); err != nil {
		errs = append(errs, fmt.Errorf("%w: field=General.log_pattern: %v", rrerrors.ErrConfigInvalid, err))
	}
	if ext := c.General.RecordingExtension; !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		errs = append(errs, rrerrors.NewConfigError("General.recording_extension", ext))
	}
	if _, err := combatlog.CompileFilter(c.General.Filter); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.OBS.Host) == "" {
		errs = append(errs, rrerrors.NewConfigError("OBS.host", c.OBS.Host))
	}
	if c.OBS.Port <= 0 || c.OBS.Port > 65535 {
		errs = append(errs, rrerrors.NewConfigError("OBS.port", c.OBS.Port))
	}
	if c.OBS.Timeout <= 0 {
		errs = append(errs, rrerrors.NewConfigError("OBS.timeout", c.OBS.Timeout))
	}

	for _, f := range []struct {
		name  string
		value int
	}{
		{"Recording.stop_delay", c.Recording.StopDelay},
		{"Recording.rename_delay", c.Recording.RenameDelay},
		{"Recording.min_recording_duration", c.Recording.MinRecordingDuration},
		{"Recording.dungeon_timeout_seconds", c.Recording.DungeonTimeoutSeconds},
	} {
		if f.value < 0 {
			errs = append(errs, rrerrors.NewConfigError(f.name, f.value))
		}
	}
	if c.Recording.MaxRenameAttempts < 1 {
		errs = append(errs, rrerrors.NewConfigError("Recording.max_rename_attempts", c.Recording.MaxRenameAttempts))
	}

	return errors.Join(errs...)
}
