package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpetrenko/wine-bundler/internal/fetch"
	"github.com/mpetrenko/wine-bundler/internal/logger"
)

const (
	// winetricksScriptName is the file name of the shipped winetricks script.
	winetricksScriptName = "winetricks"
	// winetricksVerbsName is the file name of the shipped verbs catalog.
	winetricksVerbsName = "verbs.txt"
)

// assembleWinetricks builds dist/winetricks from two fixed raw URLs.
// No release resolution is involved.
func (b *bundler) assembleWinetricks(ctx context.Context) error {
	dist, err := b.tree.Dist()
	if err != nil {
		return err
	}

	dir := filepath.Join(dist, "winetricks")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create winetricks directory: %w", err)
	}

	logger.InfoKV(ctx, "Downloading winetricks", "url", b.cfg.WinetricksURL)

	scriptPath := filepath.Join(dir, winetricksScriptName)
	if err = fetch.DownloadExecutable(ctx, b.httpClient, b.cfg.WinetricksURL, scriptPath); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Downloading winetricks verbs", "url", b.cfg.WinetricksVerbsURL)

	verbsPath := filepath.Join(dir, winetricksVerbsName)

	return fetch.Download(ctx, b.httpClient, b.cfg.WinetricksVerbsURL, verbsPath)
}
