// Package probe implements the Status Probe: reading a single on-disk
// repository's existence, VCS-kind presence, and (git only, detailed
// mode) full branch/divergence/cleanliness state, without ever
// mutating the working copy.
package probe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/vcs/git"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

// Mode selects how much the probe reads.
type Mode int

const (
	Fast Mode = iota
	Detailed
)

// Status is the probe's output. Only the fields relevant to the
// requested Mode and the repository's VCS kind are populated.
type Status struct {
	Exists bool
	IsVCS  bool // a VCS metadata directory/file exists at Path

	// Detailed (git only):
	Branch       string
	RemoteBranch string
	CurrentRev   string
	Ahead        int
	Behind       int
	HasUpstream  bool
	Dirty        bool
}

// Probe reads repo's on-disk status in the requested mode.
//
// Grounded on the teacher's internal/vcs/git/refs.go (CurrentRef,
// HasDivergence) and repo.go's porcelain-status cleanliness check,
// recomposed here into a single read-only call; spec.md 4.4 requires
// the probe never mutate the repository, so only read-only git
// subcommands are ever invoked.
func Probe(ctx context.Context, repo manifest.Repository, mode Mode) (Status, error) {
	var st Status

	info, err := os.Stat(repo.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err // permission error and similar surface as-is
	}
	if !info.IsDir() {
		return st, nil
	}
	st.Exists = true

	st.IsVCS = vcsMarkerExists(repo)
	if mode == Fast || !st.IsVCS {
		return st, nil
	}

	switch repo.VCS {
	case manifest.Git:
		return probeGitDetailed(ctx, repo.Path, st)
	default:
		// detailed mode is git-only per spec.md 4.4; other kinds stop
		// at the fast-mode fields.
		return st, nil
	}
}

func vcsMarkerExists(repo manifest.Repository) bool {
	var marker string
	switch repo.VCS {
	case manifest.Git:
		marker = ".git"
	case manifest.Hg:
		marker = ".hg"
	case manifest.Svn:
		marker = ".svn"
	}
	if marker == "" {
		return false
	}
	_, err := os.Lstat(filepath.Join(repo.Path, marker))
	return err == nil
}

func probeGitDetailed(ctx context.Context, path string, st Status) (Status, error) {
	d := git.New()
	detail, err := d.Inspect(ctx, path)
	if err != nil {
		if de, ok := err.(*vcserrors.DriverError); ok && de.Kind == vcserrors.NotInstalled {
			return st, vcserrors.ErrNotInstalled
		}
		return st, err
	}

	st.Branch = detail.Branch
	st.RemoteBranch = detail.RemoteBranch
	st.CurrentRev = detail.CurrentRev
	st.Ahead = detail.Ahead
	st.Behind = detail.Behind
	st.HasUpstream = detail.HasUpstream
	st.Dirty = detail.Dirty
	return st, nil
}
