// Package worktree implements the Worktree Planner & Executor: a
// second planner/executor pair, scoped to one repository's `worktrees`
// sub-manifest, that brings a set of git worktrees siblings of the
// repository into conformance with the declared WorktreeSpec list,
// including pruning orphans.
//
// Grounded on the teacher's internal/vcs/git/workspace.go (worktree
// add/list/remove lifecycle) and
// other_examples/836e0be1_alekspetrov-pilot's prune/orphan-cleanup
// idiom for the Prune entry point.
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steveyegge/vcspull/internal/vcserrors"
)

// Action is the decided disposition for one WorktreeSpec.
type Action string

const (
	Create    Action = "CREATE"
	Update    Action = "UPDATE"
	Unchanged Action = "UNCHANGED"
	Blocked   Action = "BLOCKED"
	Error     Action = "ERROR"
)

// Spec is the planner's narrow view of a manifest WorktreeSpec, so
// this package does not import internal/manifest directly;
// internal/sync adapts manifest.WorktreeSpec into this shape.
type Spec struct {
	Dir        string // absolute
	RefKind    string // "tag", "branch", or "commit"
	Ref        string
	Detached   bool
	Lock       bool
	LockReason string
}

// Entry is the worktree planner's diff between a declared Spec and its
// observed on-disk state, mirroring plan.Entry's shape for the
// repository-level planner.
type Entry struct {
	Dir    string
	Action Action
	Detail string
	Error  error
}

// Plan inspects repoPath's sibling directory spec.Dir and decides what
// action brings it into conformance with spec, per the decision table.
func Plan(ctx context.Context, repoPath string, spec Spec) Entry {
	e := Entry{Dir: spec.Dir}

	info, err := os.Lstat(spec.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.Action = Create
			e.Detail = fmt.Sprintf("create %s %s", spec.RefKind, spec.Ref)
			return e
		}
		e.Action = Error
		e.Error = err
		e.Detail = err.Error()
		return e
	}

	gitMarker := filepath.Join(spec.Dir, ".git")
	gitInfo, err := os.Lstat(gitMarker)
	if err != nil || gitInfo.IsDir() {
		e.Action = Error
		e.Error = vcserrors.ErrNotAWorktree
		e.Detail = "path exists and is not a worktree"
		return e
	}
	_ = info

	d := driver()

	dirty, err := isDirty(ctx, d, spec.Dir)
	if err != nil {
		e.Action = Error
		e.Error = err
		e.Detail = err.Error()
		return e
	}
	if dirty {
		e.Action = Blocked
		e.Detail = "uncommitted changes"
		return e
	}

	resolved, err := resolveRef(ctx, d, repoPath, spec.Ref)
	if err != nil {
		e.Action = Error
		e.Error = vcserrors.ErrRefNotResolved
		e.Detail = fmt.Sprintf("ref %s not found", spec.Ref)
		return e
	}

	head, err := currentRevision(ctx, d, spec.Dir)
	if err != nil {
		e.Action = Error
		e.Error = err
		e.Detail = err.Error()
		return e
	}

	if head == resolved {
		e.Action = Unchanged
		return e
	}

	e.Action = Update
	if spec.RefKind == "branch" {
		e.Detail = fmt.Sprintf("pull %s", spec.Ref)
	} else {
		e.Detail = fmt.Sprintf("checkout %s", spec.Ref)
	}
	return e
}

func driver() *gitRunner {
	return &gitRunner{}
}
