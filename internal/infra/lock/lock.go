// Package lock implements the advisory process lock that guards against two
// orchestrator instances sharing one record store.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// Info is the lock file payload.
type Info struct {
	Acquired time.Time `json:"acquired"`
	Kind     string    `json:"kind"` // Process kind (cli, mcp, web)
	PID      int       `json:"pid"`
}

// Lock is an advisory pid-file lock. The store tolerates concurrent readers,
// so a live foreign lock produces a warning for the caller rather than a
// hard block.
type Lock struct {
	path string
	held bool
}

// New creates a lock handle for the given path. Nothing is acquired yet.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Acquire writes this process's lock file. A stale lock (owner no longer
// running) is reclaimed silently. A live foreign lock is reported in the
// returned warning and its file is left in place, so later instances can
// still run their staleness check against the real owner's record; this
// process proceeds without the lock.
func (l *Lock) Acquire(kind string, now time.Time) (warning string, err error) {
	existing, readErr := l.read()
	if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
		return "", fmt.Errorf("read lock file: %w", readErr)
	}

	if existing != nil && existing.PID != os.Getpid() && processAlive(existing.PID) {
		return fmt.Sprintf("another %s process (pid %d, since %s) holds the lock",
			existing.Kind, existing.PID, existing.Acquired.Format(time.RFC3339)), nil
	}
	// Absent, our own, or a dead owner's stale file: take it.

	info := Info{PID: os.Getpid(), Kind: kind, Acquired: now}
	data, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("marshal lock info: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o640); err != nil { //nolint:gosec // Lock file readable by owner and group
		return "", fmt.Errorf("write lock file: %w", err)
	}
	l.held = true
	return warning, nil
}

// Release removes the lock file if this process wrote it.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func (l *Lock) read() (*Info, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		// A corrupt lock file is treated as stale.
		return nil, nil
	}
	return &info, nil
}

// processAlive reports whether a process with the given pid exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes for existence without delivering anything.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
