// Package lock keeps two scope runs from writing the same tag databases.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	scerrors "github.com/Aman-CERP/scope/internal/errors"
)

// FileName is the lock file created in the output directory.
const FileName = ".scope.lock"

// RunLock is a cross-process lock on an output directory.
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a lock for dir. Nothing is locked until TryLock.
func New(dir string) *RunLock {
	path := filepath.Join(dir, FileName)
	return &RunLock{
		path:  path,
		flock: flock.New(path),
	}
}

// TryLock takes the lock without blocking and records this process's pid in
// the lock file. It returns ErrCodeLockHeld when another process holds it.
func (l *RunLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return scerrors.New(scerrors.ErrCodeWalkFailed, "failed to create output directory", err).
			WithDetail("path", filepath.Dir(l.path))
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return scerrors.InternalError("failed to acquire run lock", err).WithDetail("path", l.path)
	}
	if !acquired {
		e := scerrors.New(scerrors.ErrCodeLockHeld, "another scope run is writing to this output directory", nil).
			WithDetail("path", l.path).
			WithSuggestion("wait for the other run to finish or use a different --output-dir")
		if pid := l.holder(); pid > 0 {
			e = e.WithDetail("pid", strconv.Itoa(pid))
		}
		return e
	}

	l.locked = true
	_ = os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
	return nil
}

// holder returns the pid recorded by the current owner, or 0.
func (l *RunLock) holder() int {
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

// Unlock releases the lock. It is safe to call on an unlocked RunLock.
func (l *RunLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}
