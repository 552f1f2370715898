//go:build !windows

package rpglock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	tmpDir := t.TempDir()

	lock, err := Acquire(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, lock)

	lockPath := filepath.Join(tmpDir, lockFile)
	content, err := os.ReadFile(lockPath)
	require.NoError(t, err)

	pid, err := strconv.Atoi(string(content))
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)

	lock.Release()

	_, err = os.Stat(lockPath)
	require.True(t, os.IsNotExist(err))
}

func TestAcquire_AlreadyLocked(t *testing.T) {
	tmpDir := t.TempDir()

	lock1, err := Acquire(tmpDir)
	require.NoError(t, err)
	defer lock1.Release()

	lock2, err := Acquire(tmpDir)
	require.Error(t, err)
	require.Nil(t, lock2)
}

func TestAcquire_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	rpgDir := filepath.Join(tmpDir, ".rpg")

	_, err := os.Stat(rpgDir)
	require.True(t, os.IsNotExist(err))

	lock, err := Acquire(rpgDir)
	require.NoError(t, err)
	defer lock.Release()

	_, err = os.Stat(rpgDir)
	require.NoError(t, err)
}

func TestRelease_NilSafe(t *testing.T) {
	var lock *Lock
	lock.Release()
}
