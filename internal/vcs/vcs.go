// Package vcs defines the narrow driver contract vcspull uses to talk
// to git, hg, and svn, and a registry through which each concrete
// implementation attaches itself at init time.
//
// # Architecture
//
// Every VCS a repository can declare implements Driver — three
// methods, deliberately narrow: clone, update (fetch + fast-forward),
// and read the current revision. Higher-level behaviour (status
// probing, sync planning, worktree management) is built in terms of
// these three primitives plus the driver's own exported helpers where
// a caller genuinely needs more (see internal/vcs/git for the extra
// read-only helpers the Status Probe calls directly).
//
// # Implementations
//
//   - internal/vcs/git
//   - internal/vcs/hg
//   - internal/vcs/svn
package vcs

import "context"

// Driver is the operation set every VCS backend must provide.
type Driver interface {
	// Clone creates a new working copy at targetPath from url. rev, if
	// non-empty, checks out that revision/branch/tag after cloning.
	Clone(ctx context.Context, url, targetPath, rev string) error

	// Update brings an existing working copy at path up to date with
	// its remote. rev, if non-empty, pins the update to that revision
	// instead of the remote's latest (svn reads this from the
	// manifest's declared rev, including any URL "@rev" suffix the
	// normalizer lifted out). When setRemotes is true, git fetches from
	// every configured remote instead of origin only; hg and svn ignore
	// it. Drivers do not add or repoint remotes here; internal/sync does
	// that before calling Update.
	Update(ctx context.Context, path, rev string, setRemotes bool) error

	// CurrentRevision returns the working copy's current revision
	// identifier (commit hash, hg node id, svn revision number).
	CurrentRevision(ctx context.Context, path string) (string, error)
}
