package watcher

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/livp123/raidrec/internal/utils/fileutil"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// Locate returns the most recently modified file in dir whose name matches pattern.
// Locate 返回目录中名称匹配且修改时间最新的日志文件。
func Locate(dir string, pattern *regexp.Regexp) (string, error) {
	path, _, err := fileutil.LatestMatching(dir, pattern.MatchString)
	if err == nil {
		return path, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		if _, statErr := os.Stat(dir); statErr != nil {
			return "", rrerrors.NewLogDirError(dir)
		}
		return "", fmt.Errorf("%w in %s", rrerrors.ErrNoLogFile, dir)
	}
	return "", fmt.Errorf("scan %s: %w", dir, err)
}
