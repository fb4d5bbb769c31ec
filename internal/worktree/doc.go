// Package worktree owns the transient directory hierarchy of a bundle run.
//
// A Tree exposes the dist payload subtree and named scratch directories and
// guarantees removal of everything through Close, on success and on failure.
package worktree
