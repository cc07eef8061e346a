package dispatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock enforces a single dispatcher per experiments root. Two concurrent
// runs would race on classification and quarantine moves.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock builds a lock stored inside the experiments root.
func NewRunLock(experimentsRoot string) *RunLock {
	path := filepath.Join(experimentsRoot, "sweeper.lock")
	return &RunLock{path: path, lock: flock.New(path)}
}

// Acquire takes the lock without blocking; a held lock is an error.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("prepare lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return errors.New("another sweeper run is already active for this experiments root")
	}
	return nil
}

// Release frees the lock.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *RunLock) Path() string { return l.path }
