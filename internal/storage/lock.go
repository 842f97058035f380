package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/manav03panchal/tidytodo/internal/errors"
)

// LockFileName is the lock file created next to an on-disk store.
const LockFileName = "tidytodo.lock"

var (
	// ErrLockAcquireFailed is returned when the lock file cannot be created or locked.
	ErrLockAcquireFailed = errors.New("failed to acquire store lock")
	// ErrLockAlreadyHeld is returned when another process holds the lock.
	ErrLockAlreadyHeld = errors.New("store is locked by another process")
)

// FileLock keeps two tidytodo processes, for example a dashboard and a
// one-shot command, from opening the same on-disk store. The holder writes
// its PID into the file.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock returns an unacquired lock for the store in dir.
func NewFileLock(dir string) *FileLock {
	return &FileLock{path: filepath.Join(dir, LockFileName)}
}

// Acquire takes the lock without blocking. A lock file whose recorded
// process no longer runs is removed first. Failures are *LockError.
func (l *FileLock) Acquire() error {
	if pid := l.holderPID(); pid > 0 && !isProcessRunning(pid) {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return &LockError{Err: fmt.Errorf("%w: remove stale lock: %v", ErrLockAcquireFailed, err)}
		}
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return &LockError{Err: fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)}
	}

	if err := lockFile(file); err != nil {
		file.Close()
		lockErr := &LockError{Err: err}
		if errors.Is(err, ErrLockAlreadyHeld) {
			lockErr.PID = l.holderPID()
		}
		return lockErr
	}

	if err := stampPID(file); err != nil {
		unlockFile(file)
		file.Close()
		return &LockError{Err: fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)}
	}

	l.file = file
	return nil
}

func stampPID(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		return err
	}
	return file.Sync()
}

// Release unlocks and removes the lock file. Releasing twice is a no-op.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil

	err := errors.Join(unlockFile(file), file.Close())
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
		err = errors.Join(err, rmErr)
	}
	return err
}

// holderPID returns the PID recorded in the lock file, or 0.
func (l *FileLock) holderPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// LockError reports why an on-disk store could not be opened.
type LockError struct {
	Err error
	PID int
}

func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("cannot open local store: another tidytodo instance (PID %d) is running", e.PID)
	}
	return fmt.Sprintf("cannot open local store: %v", e.Err)
}

// Unwrap exposes ErrLockHeld for contended locks so the CLI can suggest a fix.
func (e *LockError) Unwrap() []error {
	if errors.Is(e.Err, ErrLockAlreadyHeld) {
		return []error{e.Err, apperrors.ErrLockHeld}
	}
	return []error{e.Err}
}
