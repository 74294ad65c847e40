package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annolab/margin/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPidFileAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.pid")

	require.NoError(t, AcquirePidFile(path))

	pid, err := ReadPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	// This process holds the file, so a second acquire must fail.
	err = AcquirePidFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyRunning, errors.GetCode(err))

	running, pid, err := IsRunning(path)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, ReleasePidFile(path))

	running, _, err = IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)
}

func TestPidFileReplacesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.pid")

	// A PID that cannot be a live process.
	require.NoError(t, os.WriteFile(path, []byte("99999999"), 0644))

	require.NoError(t, AcquirePidFile(path))
	pid, err := ReadPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}
