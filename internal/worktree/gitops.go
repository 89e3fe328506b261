package worktree

import (
	"context"
	"strings"
	"time"

	"github.com/steveyegge/vcspull/internal/vcs"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

const gitTimeout = 2 * time.Minute

// gitRunner issues the raw `git worktree`/plumbing subcommands that
// the narrow vcs.Driver interface has no room for; it shells out the
// same way internal/vcs/git.Driver does, via vcs.ExecContext.
type gitRunner struct{}

func (g *gitRunner) run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := vcs.ExecContext(ctx, gitTimeout, dir, "git", args...)
	return vcs.TrimOutput(out), err
}

func isDirty(ctx context.Context, g *gitRunner, dir string) (bool, error) {
	out, err := g.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(out)) > 0, nil
}

func currentRevision(ctx context.Context, g *gitRunner, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return out, nil
}

// resolveRef tries, in order: exact local ref, remote-tracking ref
// (origin/<ref>), commit prefix. It resolves against repoPath since a
// not-yet-created worktree has nowhere else to ask.
func resolveRef(ctx context.Context, g *gitRunner, repoPath, ref string) (string, error) {
	if sha, err := g.run(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}"); err == nil {
		return sha, nil
	}
	if sha, err := g.run(ctx, repoPath, "rev-parse", "--verify", "--quiet", "origin/"+ref+"^{commit}"); err == nil {
		return sha, nil
	}
	if sha, err := g.run(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref); err == nil {
		return sha, nil
	}
	return "", vcserrors.ErrRefNotResolved
}
