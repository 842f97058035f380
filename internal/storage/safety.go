package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manav03panchal/tidytodo/internal/errors"
)

// DiskSpaceInfo contains information about available disk space.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// FreePercent returns the percentage of free space.
func (d *DiskSpaceInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}

// GetDiskSpace reports disk space for the file system holding path. The
// store may not exist yet, so missing components are walked up to the
// nearest existing directory.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	info, err := statDisk(path)
	if err != nil {
		return nil, err
	}
	info.UsedBytes = info.TotalBytes - info.FreeBytes
	return info, nil
}

// CheckDiskSpaceWarning returns a warning message when free space at path is
// below threshold bytes, or an empty string.
func CheckDiskSpaceWarning(path string, threshold uint64) string {
	info, err := GetDiskSpace(path)
	if err != nil {
		return ""
	}

	if info.FreeBytes < threshold {
		return fmt.Sprintf("Warning: Low disk space (%d MB free)", info.FreeBytes/(1024*1024))
	}
	return ""
}

// wrapWriteError turns a disk-full failure into a SystemError.
func wrapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDiskFullError(err) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return errors.Wrap(err, op)
}
