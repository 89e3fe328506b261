package worktree

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

func initRepoWithTag(t *testing.T) (repoPath, tag string) {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "init")
	run(t, dir, "config", "user.name", "Test")
	run(t, dir, "config", "user.email", "test@example.com")
	run(t, dir, "commit", "--allow-empty", "-m", "init")
	run(t, dir, "tag", "v1.0.0")
	return dir, "v1.0.0"
}

func TestPlanMissingYieldsCreate(t *testing.T) {
	requireGit(t)
	repoPath, tag := initRepoWithTag(t)
	dir := filepath.Join(t.TempDir(), "proj-v1")
	spec := Spec{Dir: dir, RefKind: "tag", Ref: tag, Detached: true}

	e := Plan(context.Background(), repoPath, spec)
	if e.Action != Create {
		t.Fatalf("got %+v", e)
	}
}

// Scenario #5: worktree create.
func TestExecuteCreateDetachedAtTag(t *testing.T) {
	requireGit(t)
	repoPath, tag := initRepoWithTag(t)
	dir := filepath.Join(filepath.Dir(repoPath), "proj-v1")
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	spec := Spec{Dir: dir, RefKind: "tag", Ref: tag, Detached: true}

	e := Plan(context.Background(), repoPath, spec)
	if e.Action != Create {
		t.Fatalf("plan: got %+v", e)
	}
	e = Execute(context.Background(), repoPath, spec, e)
	if e.Action == Error {
		t.Fatalf("execute: %v", e.Error)
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("expected worktree at %s: %v", dir, err)
	}
	head := run(t, dir, "rev-parse", "HEAD")
	tagRev := run(t, repoPath, "rev-parse", tag)
	if head != tagRev {
		t.Errorf("HEAD = %q, want tag rev %q", head, tagRev)
	}
	symCmd := exec.Command("git", "symbolic-ref", "-q", "HEAD")
	symCmd.Dir = dir
	if out, err := symCmd.CombinedOutput(); err == nil {
		t.Errorf("expected detached HEAD, got branch %q", out)
	}
}

func TestPlanExistingWorktreeUnchanged(t *testing.T) {
	requireGit(t)
	repoPath, tag := initRepoWithTag(t)
	dir := filepath.Join(filepath.Dir(repoPath), "proj-v1")
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	spec := Spec{Dir: dir, RefKind: "tag", Ref: tag, Detached: true}

	e := Plan(context.Background(), repoPath, spec)
	e = Execute(context.Background(), repoPath, spec, e)
	if e.Action == Error {
		t.Fatalf("setup execute: %v", e.Error)
	}

	e = Plan(context.Background(), repoPath, spec)
	if e.Action != Unchanged {
		t.Fatalf("got %+v", e)
	}
}

func TestPlanNotAWorktreeYieldsError(t *testing.T) {
	requireGit(t)
	repoPath, tag := initRepoWithTag(t)
	plainDir := t.TempDir()
	spec := Spec{Dir: plainDir, RefKind: "tag", Ref: tag}

	e := Plan(context.Background(), repoPath, spec)
	if e.Action != Error {
		t.Fatalf("got %+v", e)
	}
}

// Scenario #6: worktree prune.
func TestPruneRemovesUndeclaredWorktree(t *testing.T) {
	requireGit(t)
	repoPath, tag := initRepoWithTag(t)
	wtA := filepath.Join(filepath.Dir(repoPath), "wt-a")
	wtB := filepath.Join(filepath.Dir(repoPath), "wt-b")
	t.Cleanup(func() {
		_ = os.RemoveAll(wtA)
		_ = os.RemoveAll(wtB)
	})

	for _, dir := range []string{wtA, wtB} {
		spec := Spec{Dir: dir, RefKind: "tag", Ref: tag, Detached: true}
		e := Plan(context.Background(), repoPath, spec)
		e = Execute(context.Background(), repoPath, spec, e)
		if e.Action == Error {
			t.Fatalf("setup execute %s: %v", dir, e.Error)
		}
	}

	declared := []Spec{{Dir: wtA, RefKind: "tag", Ref: tag}}
	entries, err := Prune(context.Background(), repoPath, declared)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one pruned entry, got %+v", entries)
	}
	prunedAbs, _ := filepath.Abs(wtB)
	if entries[0].Dir != prunedAbs {
		t.Errorf("pruned %q, want %q", entries[0].Dir, prunedAbs)
	}
	if _, err := os.Stat(wtA); err != nil {
		t.Errorf("wt-a should remain untouched: %v", err)
	}
	if _, err := os.Stat(wtB); !os.IsNotExist(err) {
		t.Errorf("wt-b should have been removed")
	}
}
