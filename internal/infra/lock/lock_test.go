package lock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "trackd.lock")
}

func TestAcquireRelease(t *testing.T) {
	path := lockPath(t)
	l := New(path)

	warning, err := l.Acquire("cli", time.Now())
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.FileExists(t, path)

	var info Info
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "cli", info.Kind)

	require.NoError(t, l.Release())
	assert.NoFileExists(t, path)
}

func TestAcquire_ReclaimsStaleLock(t *testing.T) {
	path := lockPath(t)

	// A pid that cannot be running: pid_max on Linux caps well below this.
	stale := Info{PID: 1 << 22, Kind: "cli", Acquired: time.Now().Add(-time.Hour)}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o640))

	warning, err := New(path).Acquire("cli", time.Now())
	require.NoError(t, err)
	assert.Empty(t, warning, "stale lock must be reclaimed silently")
}

func TestAcquire_WarnsOnLiveForeignLock(t *testing.T) {
	path := lockPath(t)

	// pid 1 is always alive and never us.
	live := Info{PID: 1, Kind: "web", Acquired: time.Now().Add(-time.Minute)}
	data, err := json.Marshal(live)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o640))

	l := New(path)
	warning, err := l.Acquire("cli", time.Now())
	require.NoError(t, err, "live foreign lock warns, never hard-blocks")
	assert.Contains(t, warning, "web")
	assert.Contains(t, warning, "pid 1")

	// The live owner's record stays intact for later staleness checks,
	// and Release must not remove a file this process never wrote.
	var info Info
	read, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(read, &info))
	assert.Equal(t, 1, info.PID)
	assert.Equal(t, "web", info.Kind)

	require.NoError(t, l.Release())
	assert.FileExists(t, path)
}

func TestAcquire_CorruptLockTreatedAsStale(t *testing.T) {
	path := lockPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o640))

	warning, err := New(path).Acquire("cli", time.Now())
	require.NoError(t, err)
	assert.Empty(t, warning)
}

func TestRelease_WithoutAcquireIsNoop(t *testing.T) {
	l := New(lockPath(t))
	require.NoError(t, l.Release())
}
