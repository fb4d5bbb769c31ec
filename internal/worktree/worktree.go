package worktree

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// distName is the subtree that becomes the archive payload.
	distName = "dist"
	// scratchName holds intermediate downloads and extraction directories.
	scratchName = "scratch"
	// dirMode is used for every directory the tree creates.
	dirMode os.FileMode = 0o755
)

// Tree is the transient directory hierarchy used to assemble the bundle.
// It is exclusively owned by one run and must be released with Close,
// typically via defer so cleanup covers every exit path.
type Tree struct {
	root string
}

// New creates a working tree under the system temporary directory.
func New(pattern string) (*Tree, error) {
	root, err := os.MkdirTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("create working tree: %w", err)
	}

	return &Tree{root: root}, nil
}

// Root returns the tree's base directory.
func (t *Tree) Root() string {
	return t.root
}

// Dist returns the payload directory, creating it if needed.
func (t *Tree) Dist() (string, error) {
	return t.ensure(distName)
}

// DistPath returns a path inside the payload directory without creating it.
func (t *Tree) DistPath(parts ...string) string {
	return filepath.Join(append([]string{t.root, distName}, parts...)...)
}

// Scratch returns a named intermediate directory, creating it if needed.
// Stages remove their scratch space as soon as they are done with it
// to bound peak disk usage.
func (t *Tree) Scratch(name string) (string, error) {
	return t.ensure(scratchName, name)
}

// Close deletes the whole tree. It is safe to call more than once.
func (t *Tree) Close() error {
	if err := os.RemoveAll(t.root); err != nil {
		return fmt.Errorf("remove working tree: %w", err)
	}

	return nil
}

// ensure creates and returns a subdirectory of the tree root.
func (t *Tree) ensure(parts ...string) (string, error) {
	dir := filepath.Join(append([]string{t.root}, parts...)...)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	return dir, nil
}
