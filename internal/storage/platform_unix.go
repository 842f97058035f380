//go:build !windows

package storage

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func lockFile(file *os.File) error {
	err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EWOULDBLOCK):
		return ErrLockAlreadyHeld
	default:
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
}

func unlockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}

// isProcessRunning probes pid with signal 0. EPERM means the process exists
// but belongs to another user.
func isProcessRunning(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func statDisk(path string) (*DiskSpaceInfo, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(stat.Bsize)
	return &DiskSpaceInfo{
		Path:       path,
		TotalBytes: uint64(stat.Blocks) * bsize,
		FreeBytes:  uint64(stat.Bavail) * bsize,
	}, nil
}

func isDiskFullError(err error) bool {
	return errors.Is(err, unix.ENOSPC)
}
