package bundler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mpetrenko/wine-bundler/internal/archive"
	"github.com/mpetrenko/wine-bundler/internal/config"
	"github.com/mpetrenko/wine-bundler/internal/github"
	"github.com/mpetrenko/wine-bundler/internal/logger"
	"github.com/mpetrenko/wine-bundler/internal/worktree"
)

// workTreePattern names the temporary directory of a run.
const workTreePattern = "wine-bundler-"

// Options contains inputs for the bundler entry point.
type Options struct {
	// ConfigPath is an optional path to a settings file;
	// empty means built-in defaults.
	ConfigPath string
}

// bundler holds the state of a single assembly run.
// Callers go through Run, which encapsulates setup and cleanup.
type bundler struct {
	// cfg holds upstream sources and output settings.
	cfg *config.Config
	// releases resolves release assets through the GitHub API.
	releases *github.Client
	// httpClient performs asset and raw-file downloads.
	httpClient *http.Client
	// marker guards against concurrent runs.
	marker *runMarker
	// tree is the transient assembly directory, owned for the run's duration.
	tree *worktree.Tree
}

// Run executes the whole bundling workflow: resolve, fetch, assemble, package.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "wine-bundler")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	b, err := newBundler(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize bundler: %w", err)
	}

	defer b.cleanup(ctx)

	if err = b.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Bundle run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Bundler completed successfully")

	return nil
}

// newBundler acquires the run marker and wires the HTTP collaborators.
func newBundler(ctx context.Context, cfg *config.Config) (*bundler, error) {
	marker, err := acquireRunMarker(ctx)
	if err != nil {
		return nil, err
	}

	// A zero timeout keeps calls unbounded.
	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &bundler{
		cfg: cfg,
		releases: github.NewClient(
			github.WithBaseURL(cfg.APIBaseURL),
			github.WithHTTPClient(httpClient),
		),
		httpClient: httpClient,
		marker:     marker,
	}, nil
}

// Run assembles the three payload subtrees and packages them into one archive.
// The stages touch disjoint subpaths of the working tree, so their order does
// not affect the final result; they run sequentially all the same.
func (b *bundler) Run(ctx context.Context) error {
	tree, err := worktree.New(workTreePattern)
	if err != nil {
		return err
	}

	b.tree = tree

	logger.InfoKV(ctx, "Assembling bundle", "work_tree", tree.Root())

	if err = b.assembleWine(ctx); err != nil {
		return fmt.Errorf("wine stage: %w", err)
	}

	if err = b.assembleDXVK(ctx); err != nil {
		return fmt.Errorf("dxvk stage: %w", err)
	}

	if err = b.assembleWinetricks(ctx); err != nil {
		return fmt.Errorf("winetricks stage: %w", err)
	}

	dist, err := tree.Dist()
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Packaging bundle", "output", b.cfg.Output)

	if err = archive.Pack(dist, b.cfg.Output); err != nil {
		return fmt.Errorf("package bundle: %w", err)
	}

	return nil
}

// cleanup removes the working tree and the run marker on every exit path.
func (b *bundler) cleanup(ctx context.Context) {
	if b.tree != nil {
		if err := b.tree.Close(); err != nil {
			logger.WarnKV(ctx, "Unable to remove working tree", "error", err)
		}
	}

	b.marker.release(ctx)

	logger.Info(ctx, "The bundler has been stopped")
}
