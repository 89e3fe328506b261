package sync

import (
	"context"
	"os"
	"path/filepath"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/plan"
	"github.com/steveyegge/vcspull/internal/vcs"
)

// fetcher is implemented by internal/vcs/git.Driver; refreshing
// remote-tracking refs ahead of a probe is a git-only concept (spec
// section 4.5's decision table is itself git-path specific).
type fetcher interface {
	Fetch(ctx context.Context, path string) error
}

// maybeFetch performs spec section 4.5's best-effort git fetch ahead
// of probing a repository, when Fetch is requested and Offline does
// not forbid it. A fetch failure is swallowed: it's best-effort, not
// a precondition — the planner still decides from whatever ahead/
// behind state the probe reads afterward, same as before the fetch
// was attempted.
func maybeFetch(ctx context.Context, repo manifest.Repository, opts plan.Options) {
	if opts.Offline || !opts.Fetch {
		return
	}
	if repo.VCS != manifest.Git {
		return
	}
	if _, err := os.Lstat(filepath.Join(repo.Path, ".git")); err != nil {
		return
	}

	d, err := vcs.Get(repo.VCS)
	if err != nil {
		return
	}
	f, ok := d.(fetcher)
	if !ok {
		return
	}
	_ = f.Fetch(ctx, repo.Path)
}
