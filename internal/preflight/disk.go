package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/docker/go-units"
)

// MinDiskSpaceBytes is the free space below which the tag databases may not
// fit (50MB).
const MinDiskSpaceBytes = 50 * 1024 * 1024

// CheckDiskSpace checks the free space where the databases will be written.
// Low space is a warning; small trees need little.
func (c *Checker) CheckDiskSpace(dir string) CheckResult {
	result := CheckResult{Name: "disk_space"}

	path := dir
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Dir(filepath.Clean(dir))
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (recommended: %s)",
		units.BytesSize(float64(available)), units.BytesSize(MinDiskSpaceBytes))
	if available < MinDiskSpaceBytes {
		result.Status = StatusWarn
		return result
	}

	result.Status = StatusPass
	return result
}
