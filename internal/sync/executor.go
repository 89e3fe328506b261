// Package sync implements the Sync Executor: the bounded-concurrency
// consumer that turns each Repository into a PlanEntry and, outside
// dry-run, carries out CLONE/UPDATE against the matching VCS driver.
//
// Grounded on other_examples/f0e62f49_yejune-git-multirepo's
// errgroup.WithContext + channel-semaphore worker pool (cmd/sync.go's
// processWorkspacesParallelWithWorkers), the closest concrete analog in
// the retrieval pack to spec section 4.6/5's bounded-parallel model.
package sync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/output"
	"github.com/steveyegge/vcspull/internal/plan"
	"github.com/steveyegge/vcspull/internal/probe"
	"github.com/steveyegge/vcspull/internal/vcs"
	"github.com/steveyegge/vcspull/internal/vcserrors"
	"github.com/steveyegge/vcspull/internal/worktree"
)

// Options configures one Run.
type Options struct {
	Plan             plan.Options
	MaxConcurrent    int
	DryRun           bool
	ExitOnError      bool
	IncludeWorktrees bool
}

// Run drives repos (already filtered, in manifest order) to
// conformance, emitting every PlanEntry to sink and returning the
// run's PlanSummary. The returned error is non-nil only when the run
// was aborted by ExitOnError; individual repository failures are
// captured as ERROR PlanEntries, not Go errors.
func Run(ctx context.Context, repos []manifest.Repository, opts Options, sink *output.Sink) (plan.Snapshot, error) {
	var summary plan.Summary

	if opts.DryRun {
		entries := planAll(ctx, repos, opts.Plan, opts.MaxConcurrent)
		for i, e := range entries {
			summary.Record(e)
			sink.Emit(e, output.Planned)

			if opts.IncludeWorktrees && len(repos[i].Worktrees) > 0 && e.Action != plan.Error {
				runWorktrees(ctx, repos[i], sink, true)
			}
		}
		snap := summary.Snapshot()
		sink.Summary(snap)
		return snap, nil
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var aborted atomic.Bool
	var abortOnce sync.Once

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrent)

	for _, repo := range repos {
		repo := repo
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				e := cancelledEntry(repo)
				summary.Record(e)
				sink.Emit(e, output.Result)
				return nil
			}
			defer func() { <-sem }()

			if aborted.Load() {
				e := cancelledEntry(repo)
				summary.Record(e)
				sink.Emit(e, output.Result)
				return nil
			}

			e := runOne(egCtx, repo, opts)
			summary.Record(e)
			sink.Emit(e, output.Result)

			if opts.IncludeWorktrees && len(repo.Worktrees) > 0 && e.Action != plan.Error {
				runWorktrees(egCtx, repo, sink, false)
			}

			if e.Action == plan.Error && opts.ExitOnError {
				abortOnce.Do(func() {
					aborted.Store(true)
					cancel()
				})
			}
			return nil
		})
	}

	_ = eg.Wait()

	snap := summary.Snapshot()
	sink.Summary(snap)

	if aborted.Load() {
		return snap, vcserrors.ErrCancelled
	}
	return snap, nil
}

func cancelledEntry(repo manifest.Repository) plan.Entry {
	return plan.Entry{
		Name:           repo.Name,
		Path:           repo.Path,
		WorkspaceLabel: repo.WorkspaceLabel.String(),
		Action:         plan.Error,
		Detail:         "cancelled",
		Error:          vcserrors.ErrCancelled,
	}
}

// runOne probes, plans, and (per the decision) executes a single
// repository. It is the one logical task per spec section 5: a small
// number of blocking subprocesses run serially within it.
func runOne(ctx context.Context, repo manifest.Repository, opts Options) plan.Entry {
	mode := probe.Fast
	if repo.VCS == manifest.Git {
		mode = probe.Detailed
		maybeFetch(ctx, repo, opts.Plan)
	}

	st, err := probe.Probe(ctx, repo, mode)
	if err != nil {
		return errorEntry(repo, err)
	}

	e := plan.Plan(repo, st, opts.Plan)

	switch e.Action {
	case plan.Clone:
		if err := doClone(ctx, repo); err != nil {
			e.Action = plan.Error
			e.Error = err
			e.Detail = err.Error()
			return e
		}
		runShellCommandAfter(ctx, repo)
	case plan.Update:
		d, err := vcs.Get(repo.VCS)
		if err != nil {
			e.Action = plan.Error
			e.Error = err
			e.Detail = err.Error()
			return e
		}
		if rs, ok := d.(remoteSetter); ok && st.IsVCS {
			for name, remote := range repo.Remotes {
				if name == "origin" {
					continue
				}
				if err := rs.SetRemote(ctx, repo.Path, name, remote.FetchURL); err != nil {
					e.Action = plan.Error
					e.Error = fmt.Errorf("set remote %s: %w", name, err)
					e.Detail = e.Error.Error()
					return e
				}
			}
		}
		if err := d.Update(ctx, repo.Path, repo.Rev, true); err != nil {
			e.Action = plan.Error
			e.Error = err
			e.Detail = err.Error()
			return e
		}
		runShellCommandAfter(ctx, repo)
	}

	return e
}

func doClone(ctx context.Context, repo manifest.Repository) error {
	if err := os.MkdirAll(filepath.Dir(repo.Path), 0o755); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	d, err := vcs.Get(repo.VCS)
	if err != nil {
		return err
	}
	if err := d.Clone(ctx, repo.URL, repo.Path, repo.Rev); err != nil {
		return err
	}
	if repo.VCS != manifest.Git {
		return nil
	}
	gitDriver, ok := d.(remoteSetter)
	if !ok {
		return nil
	}
	for name, remote := range repo.Remotes {
		if name == "origin" {
			continue
		}
		if err := gitDriver.SetRemote(ctx, repo.Path, name, remote.FetchURL); err != nil {
			return fmt.Errorf("set remote %s: %w", name, err)
		}
	}
	return nil
}

// remoteSetter is implemented by internal/vcs/git.Driver and used after
// CLONE and before UPDATE to add or repoint declared extra remotes; it is not
// part of the narrow vcs.Driver interface since only git has a
// multi-remote concept in this spec.
type remoteSetter interface {
	SetRemote(ctx context.Context, path, name, url string) error
}

func errorEntry(repo manifest.Repository, err error) plan.Entry {
	return plan.Entry{
		Name:           repo.Name,
		Path:           repo.Path,
		WorkspaceLabel: repo.WorkspaceLabel.String(),
		Action:         plan.Error,
		Detail:         err.Error(),
		Error:          err,
	}
}

// runShellCommandAfter runs repo.ShellCommandAfter in order with
// cwd = repo.Path, inherited environment, no timeout, per spec.md
// 9's resolution of that open question. A failing command stops the
// remaining sequence but does not turn a successful CLONE/UPDATE into
// an ERROR entry; spec.md does not name shell-hook failure as a
// planner action, only a best-effort post-step.
func runShellCommandAfter(ctx context.Context, repo manifest.Repository) {
	for _, line := range repo.ShellCommandAfter {
		cmd := exec.CommandContext(ctx, "sh", "-c", line)
		cmd.Dir = repo.Path
		cmd.Env = os.Environ()
		if err := cmd.Run(); err != nil {
			return
		}
	}
}

// runWorktrees plans (and, outside dry-run, executes) the worktree
// sub-planner for one repository. dryRun mirrors spec section 4.8/9's
// dry-run semantics at the repository level: the planner always runs
// and every entry is still emitted, but neither worktree.Execute nor
// the Prune step (which removes orphans immediately, with no
// plan-only variant) ever runs.
func runWorktrees(ctx context.Context, repo manifest.Repository, sink *output.Sink, dryRun bool) {
	specs := make([]worktree.Spec, 0, len(repo.Worktrees))
	for _, ws := range repo.Worktrees {
		dir := ws.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(repo.Path), dir)
		}
		specs = append(specs, worktree.Spec{
			Dir:        dir,
			RefKind:    ws.RefKind(),
			Ref:        ws.Ref(),
			Detached:   ws.Detached(),
			Lock:       ws.Lock,
			LockReason: ws.LockReason,
		})
	}

	for _, spec := range specs {
		e := worktree.Plan(ctx, repo.Path, spec)
		if !dryRun && (e.Action == worktree.Create || e.Action == worktree.Update) {
			e = worktree.Execute(ctx, repo.Path, spec, e)
		}
		sink.EmitWorktree(e.Dir, string(e.Action), e.Detail)
	}

	if dryRun {
		return
	}

	pruned, err := worktree.Prune(ctx, repo.Path, specs)
	if err != nil {
		return
	}
	for _, e := range pruned {
		sink.EmitWorktree(e.Dir, string(e.Action), e.Detail)
	}
}
