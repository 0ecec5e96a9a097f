package recordings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/livp123/raidrec/internal/combatlog"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// TimeLayout is the date-time prefix of renamed recordings.
const TimeLayout = "2006-01-02_15-04-05"

// FileName builds "YYYY-MM-DD_HH-MM-SS_<Name>_<Suffix><ext>". An attempt
// above zero is appended to the name as "_attemptN".
func FileName(at time.Time, name, suffix, ext string, attempt int) string {
	label := combatlog.SanitizeName(name)
	if label == "" {
		label = "Recording"
	}
	if attempt > 0 {
		label += "_attempt" + strconv.Itoa(attempt)
	}
	base := at.Format(TimeLayout) + "_" + label
	if suffix != "" {
		base += "_" + combatlog.SanitizeName(suffix)
	}
	return base + ext
}

// ErrNameTaken is returned when every candidate name already exists.
var ErrNameTaken = errors.New("all rename attempts taken")

// Rename moves path to a name built from the session label, timestamped
// with the file's modification time. Up to maxAttempts "_attemptN" variants
// are tried when the name is taken. The source extension is kept.
func (m *Manager) Rename(ctx context.Context, path, name, suffix string, maxAttempts int) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)

	for attempt := 0; attempt <= maxAttempts; attempt++ {
		target := filepath.Join(dir, FileName(info.ModTime(), name, suffix, ext, attempt))
		if target == path {
			return path, nil
		}
		if _, err := os.Stat(target); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err := os.Rename(path, target); err != nil {
			return "", err
		}
		logger.Get(ctx).Infof("[FILE] ✏️ Renamed to: %s", filepath.Base(target))
		return target, nil
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrNameTaken, filepath.Base(path), maxAttempts)
}
