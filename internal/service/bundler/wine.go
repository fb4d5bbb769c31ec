package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	cp "github.com/otiai10/copy"

	"github.com/mpetrenko/wine-bundler/internal/archive"
	"github.com/mpetrenko/wine-bundler/internal/fetch"
	"github.com/mpetrenko/wine-bundler/internal/github"
	"github.com/mpetrenko/wine-bundler/internal/logger"
)

const (
	// winePayloadPath is where the upstream app bundle keeps the actual
	// wine tree inside the extracted archive.
	winePayloadPath = "Wine Devel.app/Contents/Resources/wine"

	// wineLibDir is the library directory of the relocated wine tree.
	wineLibDir = "lib"

	// moltenVKDylibPath locates the fresh library inside the MoltenVK archive.
	moltenVKDylibPath = "MoltenVK/dylib/macOS/libMoltenVK.dylib"

	// moltenVKDylibName is the library file replaced inside the wine tree.
	moltenVKDylibName = "libMoltenVK.dylib"
)

var (
	// errWinePayloadMissing indicates the Wine archive layout changed upstream.
	errWinePayloadMissing = errors.New("wine payload not found in extracted archive")
	// errPatchesNotDirectory indicates the configured patch overlay path is not a directory.
	errPatchesNotDirectory = errors.New("patch overlay path is not a directory")
)

// assembleWine builds dist/wine: the relocated Wine payload with a freshly
// extracted libMoltenVK.dylib and the local patch overlay merged in.
func (b *bundler) assembleWine(ctx context.Context) error {
	logger.Info(ctx, "Resolving Wine and MoltenVK releases")

	wineAsset, err := b.releases.ResolveAsset(
		ctx, b.cfg.WineRepo, github.LatestVersion, github.TagTemplate(b.cfg.WineAsset))
	if err != nil {
		return err
	}

	moltenVKAsset, err := b.releases.ResolveAsset(
		ctx, b.cfg.MoltenVKRepo, github.LatestVersion, github.ExactName(b.cfg.MoltenVKAsset))
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Resolved releases",
		"wine", wineAsset.Tag, "moltenvk", moltenVKAsset.Tag)

	scratch, err := b.tree.Scratch("wine")
	if err != nil {
		return err
	}

	// Scratch space is removed as soon as the stage is done with it.
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	wineDir, err := b.relocateWine(ctx, scratch, wineAsset)
	if err != nil {
		return err
	}

	if err = b.refreshMoltenVK(ctx, scratch, moltenVKAsset, wineDir); err != nil {
		return err
	}

	return b.applyPatchOverlay(ctx, filepath.Join(wineDir, wineLibDir))
}

// relocateWine downloads and extracts the Wine archive, then moves its
// embedded payload into the dist tree. Intermediate artifacts are deleted
// right after use to bound peak disk usage.
func (b *bundler) relocateWine(
	ctx context.Context,
	scratch string,
	asset *github.ResolvedAsset,
) (string, error) {
	archivePath := filepath.Join(scratch, asset.Name)

	logger.InfoKV(ctx, "Downloading Wine", "asset", asset.Name)

	if err := fetch.Download(ctx, b.httpClient, asset.URL, archivePath); err != nil {
		return "", err
	}

	extracted := filepath.Join(scratch, "wine-extracted")
	if err := archive.Extract(archivePath, extracted, 0); err != nil {
		return "", err
	}

	_ = os.Remove(archivePath)

	payload := filepath.Join(extracted, filepath.FromSlash(winePayloadPath))
	if _, err := os.Stat(payload); err != nil {
		return "", fmt.Errorf("%s: %w", winePayloadPath, errWinePayloadMissing)
	}

	dist, err := b.tree.Dist()
	if err != nil {
		return "", err
	}

	wineDir := filepath.Join(dist, "wine")
	if err = os.Rename(payload, wineDir); err != nil {
		return "", fmt.Errorf("relocate wine payload: %w", err)
	}

	_ = os.RemoveAll(extracted)

	return wineDir, nil
}

// refreshMoltenVK extracts the MoltenVK archive and overwrites the dylib
// bundled with Wine by the freshly released one.
func (b *bundler) refreshMoltenVK(
	ctx context.Context,
	scratch string,
	asset *github.ResolvedAsset,
	wineDir string,
) error {
	archivePath := filepath.Join(scratch, asset.Name)

	logger.InfoKV(ctx, "Downloading MoltenVK", "asset", asset.Name)

	if err := fetch.Download(ctx, b.httpClient, asset.URL, archivePath); err != nil {
		return err
	}

	extracted := filepath.Join(scratch, "moltenvk-extracted")
	if err := archive.Extract(archivePath, extracted, 0); err != nil {
		return err
	}

	_ = os.Remove(archivePath)

	dylib := filepath.Join(extracted, filepath.FromSlash(moltenVKDylibPath))
	target := filepath.Join(wineDir, wineLibDir, moltenVKDylibName)

	logger.InfoKV(ctx, "Replacing bundled MoltenVK library", "target", target)

	if err := replaceLibrary(dylib, target); err != nil {
		return err
	}

	_ = os.RemoveAll(extracted)

	return nil
}

// replaceLibrary atomically swaps the target library for the source file.
// No checksum is involved; downloads are trusted as-is.
func replaceLibrary(sourcePath, targetPath string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return fmt.Errorf("open replacement library: %w", err)
	}

	defer func() {
		_ = source.Close()
	}()

	if _, err = os.Stat(targetPath); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.Create(filepath.Clean(targetPath))
		if createErr != nil {
			return fmt.Errorf("create %s: %w", targetPath, createErr)
		}

		_ = placeholder.Close()
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: fetch.ExecutableFileMode,
	}

	if err = goupdate.Apply(source, options); err != nil {
		return fmt.Errorf("replace %s: %w", targetPath, err)
	}

	oldName := targetPath + ".old"
	if _, err = os.Stat(oldName); err == nil {
		_ = os.Remove(oldName)
	}

	return nil
}

// applyPatchOverlay merge-copies the local patch directory onto the assembled
// library path; incoming files win on collision. A missing overlay directory
// is tolerated so a bare checkout still produces a bundle.
func (b *bundler) applyPatchOverlay(ctx context.Context, targetDir string) error {
	info, err := os.Stat(b.cfg.PatchesDir)
	if errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Patch directory not found, skipping overlay", "path", b.cfg.PatchesDir)
		return nil
	}

	if err != nil {
		return fmt.Errorf("stat patch directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", b.cfg.PatchesDir, errPatchesNotDirectory)
	}

	logger.InfoKV(ctx, "Applying patch overlay", "source", b.cfg.PatchesDir, "target", targetDir)

	if err = cp.Copy(b.cfg.PatchesDir, targetDir); err != nil {
		return fmt.Errorf("overlay patches: %w", err)
	}

	return nil
}
