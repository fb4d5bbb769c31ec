package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mpetrenko/wine-bundler/internal/logger"
)

// ErrBadStatus is returned on non-2xx responses.
var ErrBadStatus = errors.New("unexpected http status")

// ExecutableFileMode marks downloaded scripts as runnable.
const ExecutableFileMode os.FileMode = 0o755

// Download fetches url into dest, overwriting any existing file.
// The body is streamed to disk, never buffered whole in memory.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	response, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s, %s: %w", url, response.Status, ErrBadStatus)
	}

	outputFile, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	written, err := io.Copy(outputFile, response.Body)
	if err != nil {
		_ = outputFile.Close()

		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	logger.DebugKV(ctx, "Downloaded file", "url", url, "path", dest, "bytes", written)

	return nil
}

// DownloadExecutable fetches url into dest like Download and marks the result executable.
func DownloadExecutable(ctx context.Context, client *http.Client, url, dest string) error {
	if err := Download(ctx, client, url, dest); err != nil {
		return err
	}

	if err := os.Chmod(dest, ExecutableFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}

	return nil
}
