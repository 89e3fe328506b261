package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/steveyegge/vcspull/internal/manifest"
)

func TestProbeFastModeMissingPath(t *testing.T) {
	repo := manifest.Repository{Path: filepath.Join(t.TempDir(), "nope"), VCS: manifest.Git}
	st, err := Probe(context.Background(), repo, Fast)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if st.Exists {
		t.Error("expected Exists=false for a missing path")
	}
}

func TestProbeFastModeExistsNotVCS(t *testing.T) {
	dir := t.TempDir()
	repo := manifest.Repository{Path: dir, VCS: manifest.Git}
	st, err := Probe(context.Background(), repo, Fast)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !st.Exists {
		t.Error("expected Exists=true")
	}
	if st.IsVCS {
		t.Error("expected IsVCS=false for a plain directory")
	}
}

func TestProbeDetailedCleanRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test")
	run("config", "user.email", "test@example.com")
	run("commit", "--allow-empty", "-m", "init")

	repo := manifest.Repository{Path: dir, VCS: manifest.Git}
	st, err := Probe(context.Background(), repo, Detailed)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !st.Exists || !st.IsVCS {
		t.Fatalf("expected exists+isVCS, got %+v", st)
	}
	if st.Dirty {
		t.Error("expected a clean working tree")
	}
	if st.CurrentRev == "" {
		t.Error("expected a current revision")
	}
	if st.HasUpstream {
		t.Error("expected no upstream in a solo local repo")
	}
}

func TestProbeFastModeHgMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".hg"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	repo := manifest.Repository{Path: dir, VCS: manifest.Hg}
	st, err := Probe(context.Background(), repo, Fast)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !st.IsVCS {
		t.Error("expected IsVCS=true with a .hg directory present")
	}
}
