package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LockFileName is the file BuildLock holds inside the locked directory.
const LockFileName = ".kosh-build.lock"

// ErrLocked reports that another build holds the lock.
var ErrLocked = errors.New("another build is in progress")

// BuildLock is an exclusive advisory lock on a build directory.
type BuildLock struct {
	file *os.File
	path string
}

// AcquireBuildLock locks dir for the calling process, creating it if needed.
// It fails immediately with ErrLocked when the lock is already held.
func AcquireBuildLock(dir string) (*BuildLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, LockFileName)
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := tryLock(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w (lock file: %s)", ErrLocked, lockPath)
	}

	_ = file.Truncate(0)
	_, _ = fmt.Fprintf(file, "%d\n%s\n", os.Getpid(), time.Now().Format(time.RFC3339))

	return &BuildLock{file: file, path: lockPath}, nil
}

// Path returns the lock file path.
func (l *BuildLock) Path() string { return l.path }

// Release unlocks and removes the lock file. It is safe to call twice.
func (l *BuildLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = unlock(l.file)
	err := l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
	return err
}
