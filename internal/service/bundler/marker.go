package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/mpetrenko/wine-bundler/internal/logger"
)

// MarkerFilename guards against two concurrent runs clobbering the same output.
// The file holds the pid of the owning process.
const MarkerFilename = "wine-bundler.lock"

// markerFileMode restricts the marker to the owning user.
const markerFileMode os.FileMode = 0o600

// errAlreadyRunning indicates another bundler run owns the marker.
var errAlreadyRunning = errors.New("another bundler run is in progress")

// runMarker is the acquired concurrency guard; release removes it.
type runMarker struct {
	path string
}

// acquireRunMarker claims the run marker, reclaiming it when the recorded
// owner process is gone.
func acquireRunMarker(ctx context.Context) (*runMarker, error) {
	if contents, err := os.ReadFile(MarkerFilename); err == nil {
		pid, _ := strconv.Atoi(strings.TrimSpace(string(contents)))
		if isProcessAlive(pid) {
			return nil, fmt.Errorf("pid %d: %w", pid, errAlreadyRunning)
		}

		logger.InfoKV(ctx, "Removing stale run marker", "pid", pid)

		if err = os.Remove(MarkerFilename); err != nil {
			return nil, fmt.Errorf("remove stale run marker: %w", err)
		}
	}

	pid := []byte(strconv.Itoa(os.Getpid()))
	if err := os.WriteFile(MarkerFilename, pid, markerFileMode); err != nil {
		return nil, fmt.Errorf("write run marker: %w", err)
	}

	return &runMarker{path: MarkerFilename}, nil
}

// release removes the marker. Best effort; a failure only warrants a warning.
func (m *runMarker) release(ctx context.Context) {
	if m == nil {
		return
	}

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove run marker", "error", err)
	}
}

// isProcessAlive reports whether a process with the given pid still exists.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := ps.FindProcess(pid)

	return err == nil && process != nil
}
