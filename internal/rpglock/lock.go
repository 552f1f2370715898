//go:build !windows

// Package rpglock provides an exclusive, process-level lock on a repository's
// .rpg directory so at most one Evolver owns the graph store during a pass
// (per the concurrency model's "shared resources" rule).
package rpglock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFile = "evolve.lock"

// Lock represents an exclusive lock on a repository's .rpg directory.
type Lock struct {
	path string
	file *os.File
}

// Acquire attempts to acquire an exclusive lock under rpgDir. Returns an
// error if another process (another Evolver pass) already holds it.
func Acquire(rpgDir string) (*Lock, error) {
	if err := os.MkdirAll(rpgDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating .rpg directory: %w", err)
	}

	path := filepath.Join(rpgDir, lockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if content, readErr := os.ReadFile(path); readErr == nil && len(content) > 0 {
			pid := strings.TrimSpace(string(content))
			return nil, fmt.Errorf("graph is locked by another process (PID %s); another evolution may be running", pid)
		}
		return nil, fmt.Errorf("graph is locked by another process; another evolution may be running")
	}

	if err := file.Truncate(0); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("truncating lock file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("seeking lock file: %w", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release releases the lock and removes the lock file. Safe on a nil Lock.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
}
