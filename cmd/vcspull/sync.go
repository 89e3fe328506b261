package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/vcspull/internal/filter"
	"github.com/steveyegge/vcspull/internal/label"
	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/output"
	"github.com/steveyegge/vcspull/internal/plan"
	"github.com/steveyegge/vcspull/internal/settings"
	"github.com/steveyegge/vcspull/internal/sync"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

var syncCmd = &cobra.Command{
	Use:   "sync [repo-terms...]",
	Short: "Clone or update every repository matching the given terms",
	RunE:  runSync,
}

var (
	flagWorkspace        string
	flagExitOnError      bool
	flagFetch            bool
	flagNoFetch          bool
	flagOffline          bool
	flagDryRun           bool
	flagMaxConcurrent    int
	flagIncludeWorktrees bool
	flagJSON             bool
	flagNDJSON           bool
)

func init() {
	registerSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

// registerSyncFlags is shared between syncCmd and planCmd, the
// latter being sync with DryRun forced on.
func registerSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagWorkspace, "workspace", "w", "", "restrict to repositories under this workspace label")
	cmd.Flags().BoolVarP(&flagExitOnError, "exit-on-error", "x", false, "stop scheduling new work on the first repository error")
	cmd.Flags().BoolVar(&flagFetch, "fetch", true, "permit the planner to refresh remote state")
	cmd.Flags().BoolVar(&flagNoFetch, "no-fetch", false, "forbid the planner from refreshing remote state")
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "forbid any network call; overrides --fetch")
	cmd.Flags().IntVar(&flagMaxConcurrent, "max-concurrent", 4, "worker pool size")
	cmd.Flags().BoolVar(&flagIncludeWorktrees, "include-worktrees", false, "run the worktree sub-planner for each repository")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit a single JSON array of records")
	cmd.Flags().BoolVar(&flagNDJSON, "ndjson", false, "stream newline-delimited JSON records")
}

func init() {
	syncCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the plan without executing it")
}

func runSync(cmd *cobra.Command, args []string) error {
	return runSyncOrPlan(cmd, args, flagDryRun)
}

// runSyncOrPlan is the shared body for `sync` and `plan`: load, filter,
// resolve settings, run the executor, and translate the result into
// the process exit codes spec.md section 6 names.
func runSyncOrPlan(cmd *cobra.Command, args []string, dryRun bool) error {
	repos, err := loadRepos()
	if err != nil {
		return exitWith(3, err)
	}

	if flagWorkspace != "" {
		ws, err := label.Canonicalize(flagWorkspace, "")
		if err != nil {
			return exitWith(3, err)
		}
		var filtered []manifest.Repository
		for _, r := range repos {
			if r.WorkspaceLabel == ws {
				filtered = append(filtered, r)
			}
		}
		repos = filtered
	}

	matched, err := filter.Apply(repos, filter.NewQuery(args...))
	if err != nil {
		return exitWith(3, err)
	}

	v := bindViper(cmd)
	cfg, err := settings.Resolve(v)
	if err != nil {
		return exitWith(3, err)
	}

	mode := output.Human
	switch {
	case flagNDJSON:
		mode = output.NDJSON
	case flagJSON:
		mode = output.JSONArray
	}
	sink := output.New(os.Stdout, mode)

	opts := sync.Options{
		Plan: plan.Options{
			Fetch:   cfg.Fetch && !flagNoFetch,
			Offline: cfg.Offline || flagOffline,
		},
		MaxConcurrent:    cfg.MaxConcurrent,
		DryRun:           dryRun,
		ExitOnError:      cfg.ExitOnError || flagExitOnError,
		IncludeWorktrees: cfg.IncludeWorktrees || flagIncludeWorktrees,
	}

	snap, err := sync.Run(context.Background(), matched, opts, sink)
	if err != nil {
		if errors.Is(err, vcserrors.ErrCancelled) {
			return exitWith(2, fmt.Errorf("aborted: %w", err))
		}
		return exitWith(1, err)
	}
	if snap.Errors > 0 {
		return exitWith(1, fmt.Errorf("%d repository error(s)", snap.Errors))
	}
	return nil
}

// loadRepos resolves the manifest (explicit -c/--config wins over
// discovery) and expands it into the normalised Repository list.
func loadRepos() ([]manifest.Repository, error) {
	var rm manifest.RawManifest
	var err error

	if flagConfig != "" {
		rm, err = manifest.LoadFile(flagConfig)
	} else {
		rm, err = manifest.LoadDiscovered()
	}
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return manifest.Normalize(rm, cwd)
}
