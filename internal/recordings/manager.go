// Package recordings manages the video files OBS writes: finding them,
// naming them after the encounter, and deleting them.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/utils/fileutil"
	"github.com/livp123/raidrec/internal/utils/logger"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// VideoExtensions are the file types considered recordings when looking
// for the newest file.
var VideoExtensions = []string{".mp4", ".mkv", ".flv", ".mov", ".ts", ".m3u8", ".avi", ".wmv"}

// IsVideo reports whether name has a known video extension.
func IsVideo(name string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(name)))
}

// DirectorySource reports where OBS records. *obs.Client implements it.
type DirectorySource interface {
	RecordDirectory(ctx context.Context) (string, error)
}

// Recording is one file in the recording directory.
type Recording struct {
	Name     string    `json:"name"`
	Path     string    `json:"-"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Manager resolves the recording directory and operates on its files.
// Manager 负责定位录像目录并管理其中的文件。
type Manager struct {
	cfg config.Provider
	obs DirectorySource

	// StabilityInterval is how long the file size must stay unchanged.
	StabilityInterval time.Duration
}

// NewManager creates a manager. obs may be nil, in which case only the
// fallback directory is used.
func NewManager(cfg config.Provider, obs DirectorySource) *Manager {
	return &Manager{cfg: cfg, obs: obs, StabilityInterval: time.Second}
}

// Directory returns the directory OBS records into, or the configured
// fallback (created if missing).
func (m *Manager) Directory(ctx context.Context) (string, error) {
	log := logger.Get(ctx)
	if m.obs != nil {
		dir, err := m.obs.RecordDirectory(ctx)
		if err == nil && dir != "" {
			if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
				return dir, nil
			}
			log.Debugf("[FILE] OBS recording directory %s is not accessible", dir)
		} else if err != nil {
			log.Debugf("[FILE] OBS recording directory unavailable: %v", err)
		}
	}

	fallback := m.cfg.Get().Recording.RecordingPathFallback
	if fallback == "" {
		return "", rrerrors.ErrRecordingDirNotSet
	}
	if err := os.MkdirAll(fallback, 0755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", rrerrors.ErrRecordingDirNotSet, fallback, err)
	}
	return fallback, nil
}

// Latest returns the newest video file of any known type.
func (m *Manager) Latest(ctx context.Context) (Recording, error) {
	dir, err := m.Directory(ctx)
	if err != nil {
		return Recording{}, err
	}
	path, info, err := fileutil.LatestMatching(dir, IsVideo)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Recording{}, fmt.Errorf("%w: no video files in %s", rrerrors.ErrRecordingNotFound, dir)
		}
		return Recording{}, err
	}
	return fromInfo(path, info), nil
}

// List returns recordings with the configured extension, newest first.
func (m *Manager) List(ctx context.Context) (string, []Recording, error) {
	dir, err := m.Directory(ctx)
	if err != nil {
		return "", nil, err
	}
	ext := strings.ToLower(m.cfg.Get().General.RecordingExtension)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir, nil, err
	}
	out := make([]Recording, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, fromInfo(filepath.Join(dir, entry.Name()), info))
	}
	slices.SortFunc(out, func(a, b Recording) int {
		return b.Modified.Compare(a.Modified)
	})
	return dir, out, nil
}

// Stable reports whether OBS has finished writing path.
func (m *Manager) Stable(ctx context.Context, path string) (bool, error) {
	return fileutil.IsStable(ctx, path, m.StabilityInterval)
}

// Resolve maps a user-supplied file name to a path inside the recording
// directory, rejecting anything that escapes it.
func (m *Manager) Resolve(ctx context.Context, name string) (string, error) {
	dir, err := m.Directory(ctx)
	if err != nil {
		return "", err
	}
	return resolveIn(dir, name)
}

func resolveIn(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.ContainsRune(name, 0) {
		return "", rrerrors.NewPathError(name)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", rrerrors.NewPathError(name)
	}
	return path, nil
}

// Delete removes path. A file that is already gone is not an error.
func (m *Manager) Delete(ctx context.Context, path, reason string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Get(ctx).Infof("[FILE] File already gone: %s", filepath.Base(path))
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	if reason != "" {
		reason = " (" + reason + ")"
	}
	logger.Get(ctx).Infof("[FILE] 🗑️ Deleted recording%s: %s (%.2fMB)", reason, filepath.Base(path), float64(info.Size())/(1<<20))
	return nil
}

func fromInfo(path string, info os.FileInfo) Recording {
	return Recording{
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		Modified: info.ModTime(),
	}
}
