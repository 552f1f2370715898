//go:build windows

package rpglock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockFile = "evolve.lock"

// Lock represents an exclusive lock on a repository's .rpg directory.
// On Windows, Acquire only writes the current PID into the lock file; it
// does not check for or exclude another holder.
type Lock struct {
	path string
	file *os.File
}

// Acquire attempts to acquire an exclusive lock under rpgDir.
func Acquire(rpgDir string) (*Lock, error) {
	if err := os.MkdirAll(rpgDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating .rpg directory: %w", err)
	}

	path := filepath.Join(rpgDir, lockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release releases the lock and removes the lock file. Safe on a nil Lock.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	l.file.Close()
	os.Remove(l.path)
}
