// Package git implements the git backend of internal/vcs.Driver, and
// exposes the extra read-only introspection the Status Probe's
// detailed mode needs beyond Clone/Update/CurrentRevision.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/vcs"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

func init() {
	vcs.Register(manifest.Git, func() vcs.Driver { return New() })
}

const defaultTimeout = 2 * time.Minute

// Driver implements vcs.Driver for git repositories.
type Driver struct {
	timeout time.Duration
}

// New returns a git Driver with the package default timeout.
func New() *Driver {
	return &Driver{timeout: defaultTimeout}
}

func (d *Driver) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	out, err := vcs.ExecContext(ctx, d.timeout, dir, "git", args...)
	if err != nil {
		// ExecContext appends stderr to the *exec.ExitError's own text;
		// split it back out so classify reads git's diagnostics.
		cause, stderr := err, ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cause = exitErr
			stderr = strings.TrimPrefix(strings.TrimPrefix(err.Error(), exitErr.Error()), ": ")
		}
		return out, classify(args[0], cause, stderr)
	}
	return out, nil
}

// classify wraps a git CLI failure into a vcserrors.DriverError,
// reading the kind out of git's own diagnostic text — the same
// substring-sniffing idiom the teacher's internal/vcs/git/remote.go
// uses to tell push rejection from a merge conflict.
func classify(op string, cause error, stderr string) error {
	if vcs.IsExitError(cause) {
		lower := strings.ToLower(stderr)
		switch {
		case strings.Contains(lower, "could not resolve host"),
			strings.Contains(lower, "connection timed out"),
			strings.Contains(lower, "network is unreachable"):
			return &vcserrors.DriverError{Kind: vcserrors.NetworkError, Op: op, Cause: cause, Stderr: stderr}
		case strings.Contains(lower, "authentication failed"),
			strings.Contains(lower, "permission denied"),
			strings.Contains(lower, "could not read username"):
			return &vcserrors.DriverError{Kind: vcserrors.AuthRequired, Op: op, Cause: cause, Stderr: stderr}
		default:
			return &vcserrors.DriverError{Kind: vcserrors.NonZeroExit, Op: op, Cause: cause, Stderr: stderr}
		}
	}
	if vcs.LookPath("git") != nil {
		return &vcserrors.DriverError{Kind: vcserrors.NotInstalled, Op: op, Cause: cause, Stderr: stderr}
	}
	return &vcserrors.DriverError{Kind: vcserrors.NonZeroExit, Op: op, Cause: cause, Stderr: stderr}
}

// Clone clones url into targetPath, checking out rev if non-empty.
//
// Grounded on the teacher's internal/vcs/git/workspace.go worktree-add
// sequence (create, then checkout as a separate step), applied here to
// a plain clone.
func (d *Driver) Clone(ctx context.Context, url, targetPath, rev string) error {
	args := []string{"clone", "--origin", "origin", url, targetPath}
	if _, err := d.run(ctx, "", args...); err != nil {
		return fmt.Errorf("clone: %w", err)
	}
	if rev == "" {
		return nil
	}
	if _, err := d.run(ctx, targetPath, "checkout", rev); err != nil {
		return fmt.Errorf("checkout %s: %w", rev, err)
	}
	return nil
}

// Update fetches from the existing working copy's remote(s) and
// fast-forwards the current branch. setRemotes selects "fetch every
// configured remote" (git fetch --all) over "fetch origin only" — the
// reconciliation a repository with additional declared remotes (spec
// section 4.2's "remotes" mapping) needs to keep all of them current;
// the remotes themselves are added or repointed by internal/sync after
// Clone and before each Update (see SetRemote below).
//
// Grounded on the teacher's internal/vcs/git/remote.go Pull, adapted
// from merge-pull to an explicit fetch + fast-forward-only merge so a
// diverged local branch surfaces as an error rather than silently
// merging (spec.md 4.6's Update step never rewrites local commits).
// rev is accepted for interface symmetry with hg/svn; git repositories
// are pinned to a rev at clone time via Clone's checkout and tracked
// thereafter by branch, not re-pinned on every Update.
func (d *Driver) Update(ctx context.Context, path, rev string, setRemotes bool) error {
	fetchArgs := []string{"fetch", "--prune", "origin"}
	if setRemotes {
		fetchArgs = []string{"fetch", "--prune", "--all"}
	}
	if _, err := d.run(ctx, path, fetchArgs...); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	branch, err := d.currentBranch(ctx, path)
	if err != nil {
		return fmt.Errorf("current branch: %w", err)
	}
	if branch == "" {
		// detached HEAD: nothing to fast-forward
		return nil
	}

	upstream, err := d.upstream(ctx, path, branch)
	if err != nil || upstream == "" {
		// no upstream configured: nothing to update against
		return nil
	}

	if _, err := d.run(ctx, path, "merge", "--ff-only", upstream); err != nil {
		return fmt.Errorf("fast-forward %s onto %s: %w", branch, upstream, err)
	}
	return nil
}

// Fetch refreshes path's remote-tracking refs against origin without
// touching the working tree or merging anything — the network step
// spec section 4.5's planner config describes as "a best-effort git
// fetch ... to refresh ahead/behind counts", kept separate from
// Update so the probe's divergence read always sees freshly-fetched
// remote refs without itself performing any fast-forward.
func (d *Driver) Fetch(ctx context.Context, path string) error {
	if _, err := d.run(ctx, path, "fetch", "--prune", "origin"); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

// SetRemote adds or repoints a named remote. internal/sync calls this
// once per declared remote (spec section 4.2) right after Clone, and
// again before every Update, so a changed declared URL is picked up.
func (d *Driver) SetRemote(ctx context.Context, path, name, url string) error {
	if _, err := d.run(ctx, path, "remote", "get-url", name); err != nil {
		if _, addErr := d.run(ctx, path, "remote", "add", name, url); addErr != nil {
			return fmt.Errorf("remote add %s: %w", name, addErr)
		}
		return nil
	}
	if _, err := d.run(ctx, path, "remote", "set-url", name, url); err != nil {
		return fmt.Errorf("remote set-url %s: %w", name, err)
	}
	return nil
}

// CurrentRevision returns the current HEAD commit hash.
func (d *Driver) CurrentRevision(ctx context.Context, path string) (string, error) {
	out, err := d.run(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("rev-parse HEAD: %w", err)
	}
	return vcs.TrimOutput(out), nil
}

func (d *Driver) currentBranch(ctx context.Context, path string) (string, error) {
	out, err := d.run(ctx, path, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if de, ok := err.(*vcserrors.DriverError); ok && de.Kind == vcserrors.NonZeroExit {
			return "", nil // detached HEAD
		}
		return "", err
	}
	return vcs.TrimOutput(out), nil
}

func (d *Driver) upstream(ctx context.Context, path, branch string) (string, error) {
	out, err := d.run(ctx, path, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return "", nil // no upstream configured
	}
	return vcs.TrimOutput(out), nil
}
