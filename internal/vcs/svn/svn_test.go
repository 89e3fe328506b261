package svn

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireSvn(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("svn"); err != nil {
		t.Skip("svn not installed")
	}
	if _, err := exec.LookPath("svnadmin"); err != nil {
		t.Skip("svnadmin not installed")
	}
}

func TestDriverCloneAndCurrentRevision(t *testing.T) {
	requireSvn(t)

	repoDir := filepath.Join(t.TempDir(), "repo")
	if out, err := exec.Command("svnadmin", "create", repoDir).CombinedOutput(); err != nil {
		t.Fatalf("svnadmin create: %v\n%s", err, out)
	}
	url := "file://" + repoDir

	d := New()
	target := filepath.Join(t.TempDir(), "work")
	if err := d.Clone(context.Background(), url, target, ""); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	rev, err := d.CurrentRevision(context.Background(), target)
	if err != nil {
		t.Fatalf("CurrentRevision: %v", err)
	}
	if rev == "" {
		t.Error("expected a non-empty revision number")
	}
}
