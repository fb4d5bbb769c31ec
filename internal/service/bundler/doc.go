// Package bundler assembles the distributable Wine bundle.
//
// A run resolves the latest Wine, MoltenVK and DXVK releases, downloads and
// extracts their assets into a transient working tree, replaces the bundled
// MoltenVK library, merges the local patch overlay, fetches winetricks, and
// packages the result into a single compressed archive. Any stage failure
// aborts the run; the working tree is removed on every exit path.
package bundler
