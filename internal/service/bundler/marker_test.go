package bundler

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunMarker_BlocksLiveOwner ensures a marker held by a live process
// refuses a second run.
func TestRunMarker_BlocksLiveOwner(t *testing.T) {
	testChdir(t, t.TempDir())

	ctx := context.Background()

	marker, err := acquireRunMarker(ctx)
	require.NoError(t, err)

	_, err = acquireRunMarker(ctx)
	require.ErrorIs(t, err, errAlreadyRunning)

	marker.release(ctx)

	_, err = os.Stat(MarkerFilename)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRunMarker_ReclaimsStaleMarker ensures a marker whose owner is gone is reclaimed.
func TestRunMarker_ReclaimsStaleMarker(t *testing.T) {
	testChdir(t, t.TempDir())

	ctx := context.Background()

	// A pid far beyond pid_max cannot belong to a live process.
	stale := []byte(strconv.Itoa(1 << 30))
	require.NoError(t, os.WriteFile(MarkerFilename, stale, markerFileMode))

	marker, err := acquireRunMarker(ctx)
	require.NoError(t, err)

	contents, err := os.ReadFile(MarkerFilename)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(contents))

	marker.release(ctx)
}

// TestIsProcessAlive covers the pid edge cases.
func TestIsProcessAlive(t *testing.T) {
	t.Parallel()

	require.True(t, isProcessAlive(os.Getpid()))
	require.False(t, isProcessAlive(0))
	require.False(t, isProcessAlive(-1))
	require.False(t, isProcessAlive(1<<30))
}
