package sync

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/plan"
	"github.com/steveyegge/vcspull/internal/probe"
)

// planAll probes and plans every repo, bounded by maxConcurrent, and
// returns the resulting entries in repos' original order — probing is
// read-only so the concurrency here carries no ordering requirement
// beyond what the caller does with the returned slice.
func planAll(ctx context.Context, repos []manifest.Repository, opts plan.Options, maxConcurrent int) []plan.Entry {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	entries := make([]plan.Entry, len(repos))
	sem := make(chan struct{}, maxConcurrent)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				entries[i] = cancelledEntry(repo)
				return nil
			}
			defer func() { <-sem }()

			mode := probe.Fast
			if repo.VCS == manifest.Git {
				mode = probe.Detailed
				maybeFetch(egCtx, repo, opts)
			}
			st, err := probe.Probe(egCtx, repo, mode)
			if err != nil {
				entries[i] = errorEntry(repo, err)
				return nil
			}
			entries[i] = plan.Plan(repo, st, opts)
			return nil
		})
	}

	_ = eg.Wait()
	return entries
}
