// Package plan implements the Sync Planner: a pure function turning a
// declared Repository plus its probed Status into a PlanEntry, per the
// decision table in spec section 4.5. The planner never writes to
// disk or invokes a VCS driver itself.
package plan

import (
	"fmt"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/probe"
)

// Action is the decided disposition for one repository.
type Action string

const (
	Clone     Action = "CLONE"
	Update    Action = "UPDATE"
	Unchanged Action = "UNCHANGED"
	Blocked   Action = "BLOCKED"
	Error     Action = "ERROR"
)

// Options carries the two planner knobs from spec section 4.5.
type Options struct {
	Fetch   bool // a best-effort fetch is permitted to refresh ahead/behind
	Offline bool // forbid any network call; overrides Fetch
}

// Entry is the scheduler's diff between declared and observed state.
type Entry struct {
	Name           string
	Path           string
	WorkspaceLabel string
	Action         Action
	Detail         string

	Branch       string
	RemoteBranch string
	CurrentRev   string
	TargetRev    string
	Ahead        int
	Behind       int
	Dirty        bool

	URL   string // present on CLONE
	Error error  // present on ERROR
}

// Plan produces an Entry from repo's declared state and its probed
// Status, applying the decision table from spec section 4.5.
func Plan(repo manifest.Repository, st probe.Status, opts Options) Entry {
	e := Entry{
		Name:           repo.Name,
		Path:           repo.Path,
		WorkspaceLabel: repo.WorkspaceLabel.String(),
		TargetRev:      repo.Rev,
	}

	if !st.Exists {
		e.Action = Clone
		e.Detail = "missing"
		e.URL = repo.URL
		return e
	}

	if !st.IsVCS {
		e.Action = Update
		e.Detail = "non-git VCS (detailed plan n/a)"
		return e
	}

	e.Branch = st.Branch
	e.RemoteBranch = st.RemoteBranch
	e.CurrentRev = st.CurrentRev
	e.Dirty = st.Dirty
	e.Ahead = st.Ahead
	e.Behind = st.Behind

	if st.Dirty {
		e.Action = Blocked
		e.Detail = "working tree has local changes"
		return e
	}

	if !st.HasUpstream {
		e.Action = unknownRemoteStateAction(opts)
		e.Detail = unknownRemoteStateDetail(opts)
		return e
	}

	switch {
	case st.Ahead > 0 && st.Behind > 0:
		e.Action = Blocked
		e.Detail = fmt.Sprintf("diverged (ahead %d, behind %d)", st.Ahead, st.Behind)
	case st.Ahead > 0:
		e.Action = Blocked
		e.Detail = fmt.Sprintf("ahead by %d", st.Ahead)
	case st.Behind > 0:
		e.Action = Update
		e.Detail = fmt.Sprintf("behind %d", st.Behind)
	default:
		e.Action = Unchanged
		e.Detail = "up to date"
	}
	return e
}

func unknownRemoteStateAction(opts Options) Action {
	return Update
}

// unknownRemoteStateDetail is keyed only on Offline: whether Fetch was
// requested, the caller already attempted its best-effort git fetch
// before Plan was ever called (see internal/sync's maybeFetch), so by
// the time the decision table runs, "fetch permitted but state still
// unknown" and "fetch forbidden" read identically to the operator.
func unknownRemoteStateDetail(opts Options) string {
	if opts.Offline {
		return "remote state unknown (offline)"
	}
	return "remote state unknown; use --fetch"
}
