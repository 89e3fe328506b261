package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
)

// requireGit skips the test when the git binary isn't on PATH, rather
// than failing — these tests shell out to real git, following the
// teacher's git_test.go pattern of exercising the actual CLI.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func initBareRemote(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := exec.Command("git", "init", "--bare", dir).Run(); err != nil {
		t.Fatalf("git init --bare: %v", err)
	}
	return dir
}

func seedRemote(t *testing.T, remote string) {
	t.Helper()
	work := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = work
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test")
	run("config", "user.email", "test@example.com")
	if err := exec.Command("git", "-C", work, "commit", "--allow-empty", "-m", "init").Run(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	run("remote", "add", "origin", remote)
	run("push", "origin", "HEAD:refs/heads/main")
}

func TestDriverCloneAndCurrentRevision(t *testing.T) {
	requireGit(t)
	remote := initBareRemote(t)
	seedRemote(t, remote)

	d := New()
	target := filepath.Join(t.TempDir(), "work")
	if err := d.Clone(context.Background(), remote, target, ""); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	rev, err := d.CurrentRevision(context.Background(), target)
	if err != nil {
		t.Fatalf("CurrentRevision: %v", err)
	}
	if rev == "" {
		t.Error("expected a non-empty revision")
	}
}

func TestDriverUpdateFastForwards(t *testing.T) {
	requireGit(t)
	remote := initBareRemote(t)
	seedRemote(t, remote)

	d := New()
	target := filepath.Join(t.TempDir(), "work")
	if err := d.Clone(context.Background(), remote, target, ""); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	before, err := d.CurrentRevision(context.Background(), target)
	if err != nil {
		t.Fatalf("CurrentRevision: %v", err)
	}

	// advance the remote
	other := t.TempDir()
	for _, args := range [][]string{
		{"clone", remote, other},
		{"-C", other, "config", "user.name", "Test"},
		{"-C", other, "config", "user.email", "test@example.com"},
	} {
		if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	if err := exec.Command("git", "-C", other, "commit", "--allow-empty", "-m", "advance").Run(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if out, err := exec.Command("git", "-C", other, "push", "origin", "HEAD:main").CombinedOutput(); err != nil {
		t.Fatalf("push: %v\n%s", err, out)
	}

	if err := d.Update(context.Background(), target, "", false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, err := d.CurrentRevision(context.Background(), target)
	if err != nil {
		t.Fatalf("CurrentRevision: %v", err)
	}
	if after == before {
		t.Error("expected revision to advance after Update")
	}
}

func TestDriverInspectCleanRepo(t *testing.T) {
	requireGit(t)
	remote := initBareRemote(t)
	seedRemote(t, remote)

	d := New()
	target := filepath.Join(t.TempDir(), "work")
	if err := d.Clone(context.Background(), remote, target, ""); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	status, err := d.Inspect(context.Background(), target)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if status.Dirty {
		t.Error("freshly cloned repo should not be dirty")
	}
	if status.Branch == "" {
		t.Error("expected a current branch")
	}
}
