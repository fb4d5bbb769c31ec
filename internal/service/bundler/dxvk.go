package bundler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mpetrenko/wine-bundler/internal/archive"
	"github.com/mpetrenko/wine-bundler/internal/fetch"
	"github.com/mpetrenko/wine-bundler/internal/github"
	"github.com/mpetrenko/wine-bundler/internal/logger"
)

// dxvkStripComponents flattens the single wrapping directory of the upstream tarball.
const dxvkStripComponents = 1

// assembleDXVK builds dist/dxvk from the latest DXVK-macOS release.
func (b *bundler) assembleDXVK(ctx context.Context) error {
	logger.Info(ctx, "Resolving DXVK release")

	asset, err := b.releases.ResolveAsset(
		ctx, b.cfg.DXVKRepo, github.LatestVersion, github.TagTemplate(b.cfg.DXVKAsset))
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Resolved release", "dxvk", asset.Tag)

	scratch, err := b.tree.Scratch("dxvk")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	archivePath := filepath.Join(scratch, asset.Name)

	logger.InfoKV(ctx, "Downloading DXVK", "asset", asset.Name)

	if err = fetch.Download(ctx, b.httpClient, asset.URL, archivePath); err != nil {
		return err
	}

	dist, err := b.tree.Dist()
	if err != nil {
		return err
	}

	if err = archive.Extract(archivePath, filepath.Join(dist, "dxvk"), dxvkStripComponents); err != nil {
		return err
	}

	_ = os.Remove(archivePath)

	return nil
}
