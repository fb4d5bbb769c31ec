package archive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// listArchive returns all entry names of a gzip tarball.
func listArchive(t *testing.T, archivePath string) []string {
	t.Helper()

	inputFile, err := os.Open(archivePath)
	require.NoError(t, err)

	defer func() {
		_ = inputFile.Close()
	}()

	gzReader, err := gzip.NewReader(inputFile)
	require.NoError(t, err)

	var names []string

	tarReader := tar.NewReader(gzReader)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
		names = append(names, header.Name)
	}

	sort.Strings(names)

	return names
}

// TestPack_RootListing verifies the archive root holds exactly the payload
// entries with no wrapper directory.
func TestPack_RootListing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")

	for _, sub := range []string{"wine", "dxvk", "winetricks"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dist, sub), 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dist, "wine", "bin"), []byte("x"), 0o755))

	outPath := filepath.Join(dir, "bundle.tar.gz")
	require.NoError(t, Pack(dist, outPath))

	names := listArchive(t, outPath)
	require.Equal(t, []string{"dxvk/", "wine/", "wine/bin", "winetricks/"}, names)
}

// TestPack_OverwritesExistingOutput ensures a prior artifact is replaced.
func TestPack_OverwritesExistingOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "wine"), 0o755))

	outPath := filepath.Join(dir, "bundle.tar.gz")
	require.NoError(t, os.WriteFile(outPath, []byte("old archive"), 0o600))

	require.NoError(t, Pack(dist, outPath))

	names := listArchive(t, outPath)
	require.Equal(t, []string{"wine/"}, names)

	// No staging leftovers beside the output.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		require.NotContains(t, entry.Name(), ".tar.gz.")
	}
}

// TestPack_RoundTrip extracts a packed archive and compares file contents.
func TestPack_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "winetricks"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dist, "winetricks", "verbs.txt"), []byte("verbs"), 0o644))

	outPath := filepath.Join(dir, "bundle.tar.gz")
	require.NoError(t, Pack(dist, outPath))

	unpacked := filepath.Join(dir, "unpacked")
	require.NoError(t, Extract(outPath, unpacked, 0))

	contents, err := os.ReadFile(filepath.Join(unpacked, "winetricks", "verbs.txt"))
	require.NoError(t, err)
	require.Equal(t, "verbs", string(contents))
}
