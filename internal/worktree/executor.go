package worktree

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Execute carries out e against repoPath, per the Executor actions
// table: CREATE adds a new worktree, UPDATE fast-forwards (branch) or
// checks out detached (tag/commit). UNCHANGED/BLOCKED/ERROR entries
// are returned unmodified — the caller already has everything it
// needs to report them.
func Execute(ctx context.Context, repoPath string, spec Spec, e Entry) Entry {
	g := driver()

	switch e.Action {
	case Create:
		args := []string{"worktree", "add"}
		if spec.Detached {
			args = append(args, "--detach")
		}
		if spec.Lock {
			if spec.LockReason != "" {
				args = append(args, "--lock", "--reason", spec.LockReason)
			} else {
				args = append(args, "--lock")
			}
		}
		args = append(args, spec.Dir, spec.Ref)
		if _, err := g.run(ctx, repoPath, args...); err != nil {
			e.Action = Error
			e.Error = fmt.Errorf("worktree add: %w", err)
			e.Detail = e.Error.Error()
		}
		return e

	case Update:
		if spec.RefKind == "branch" {
			if _, err := g.run(ctx, spec.Dir, "pull", "--ff-only"); err != nil {
				e.Action = Error
				e.Error = fmt.Errorf("pull: %w", err)
				e.Detail = e.Error.Error()
			}
			return e
		}
		if _, err := g.run(ctx, spec.Dir, "checkout", "--detach", spec.Ref); err != nil {
			e.Action = Error
			e.Error = fmt.Errorf("checkout: %w", err)
			e.Detail = e.Error.Error()
		}
		return e

	default:
		return e
	}
}

// Prune enumerates the repository's on-disk worktrees, compares them
// to declared (the configured Spec list), and removes any sibling
// worktree not present in declared via `git worktree remove`. A
// removal failure leaves that worktree in place and is reported as an
// ERROR entry; successful removals are reported as UPDATE entries so
// callers can render them alongside sync-plan output.
//
// Ownership note: only directories already registered with git as
// worktrees of repoPath are ever touched; Prune never walks the
// filesystem outside what `git worktree list` reports.
func Prune(ctx context.Context, repoPath string, declared []Spec) ([]Entry, error) {
	g := driver()

	out, err := g.run(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("worktree list: %w", err)
	}

	keep := make(map[string]bool, len(declared))
	for _, s := range declared {
		abs, _ := filepath.Abs(s.Dir)
		keep[abs] = true
	}
	repoAbs, _ := filepath.Abs(repoPath)

	var onDisk []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "worktree ") {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, "worktree "))
		abs, _ := filepath.Abs(path)
		if abs == repoAbs {
			continue // the repository's own primary working copy
		}
		onDisk = append(onDisk, abs)
	}

	var entries []Entry
	for _, path := range onDisk {
		if keep[path] {
			continue
		}
		e := Entry{Dir: path}
		if _, err := g.run(ctx, repoPath, "worktree", "remove", path, "--force"); err != nil {
			e.Action = Error
			e.Error = fmt.Errorf("worktree remove: %w", err)
			e.Detail = e.Error.Error()
		} else {
			e.Action = Update
			e.Detail = "pruned orphan worktree"
		}
		entries = append(entries, e)
	}

	_, _ = g.run(ctx, repoPath, "worktree", "prune")
	return entries, nil
}
