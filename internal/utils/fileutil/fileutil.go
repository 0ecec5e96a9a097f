package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// AtomicWriteFile writes data to a temporary file and then renames it to the target file.
// AtomicWriteFile 将数据写入临时文件，然后将其重命名为目标文件。
func AtomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename) // #nosec G703 // Safe: filepath.Dir cleans the path preventing traversal
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "atomic-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name()) // Clean up if something fails

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), filename) // #nosec G703 // filename is validated by caller
}

// LatestMatching returns the most recently modified regular file in dir whose
// base name satisfies match. It returns os.ErrNotExist when nothing matches.
// LatestMatching 返回 dir 中名称满足 match 且修改时间最新的普通文件。
func LatestMatching(dir string, match func(name string) bool) (string, os.FileInfo, error) {
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return "", nil, err
	}

	var (
		bestPath string
		bestInfo os.FileInfo
	)
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if bestInfo == nil || info.ModTime().After(bestInfo.ModTime()) {
			bestPath = filepath.Join(dir, entry.Name())
			bestInfo = info
		}
	}
	if bestInfo == nil {
		return "", nil, os.ErrNotExist
	}
	return bestPath, bestInfo, nil
}

// IsStable reports whether the file size is unchanged across interval.
// A writer that is still flushing shows a growing size.
// IsStable 判断文件大小在 interval 内是否保持不变。
func IsStable(ctx context.Context, path string, interval time.Duration) (bool, error) {
	before, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
	}

	after, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return before.Size() == after.Size(), nil
}
