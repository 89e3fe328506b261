package label

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizeCollapsesEquivalentForms(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"tilde no slash", "~/code"},
		{"tilde trailing slash", "~/code/"},
		{"absolute form", filepath.Join(home, "code")},
	}

	var canon WorkspaceLabel
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.raw, home)
			if err != nil {
				t.Fatalf("Canonicalize(%q): %v", tt.raw, err)
			}
			if i == 0 {
				canon = got
			}
			if got != canon {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.raw, got, canon)
			}
		})
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	first, err := Canonicalize("~/code", home)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	second, err := Canonicalize(first.String(), home)
	if err != nil {
		t.Fatalf("Canonicalize (second pass): %v", err)
	}
	if first != second {
		t.Errorf("canonicalization not idempotent: %q != %q", first, second)
	}
}

func TestExpandRelativeAgainstCwd(t *testing.T) {
	got, err := Expand("proj", "/base/dir")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := filepath.Join("/base/dir", "proj")
	if got != want {
		t.Errorf("Expand(proj, /base/dir) = %q, want %q", got, want)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("VCSPULL_TEST_DIR", "/env/dir")
	got, err := Expand("$VCSPULL_TEST_DIR/repo", "/base")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := filepath.Join("/env/dir", "repo")
	if got != want {
		t.Errorf("Expand with env var = %q, want %q", got, want)
	}
}

func TestContractRoundTrip(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	abs := filepath.Join(home, "code", "flask")
	got := Contract(abs)
	want := filepath.Join("~", "code", "flask")
	if got != want {
		t.Errorf("Contract(%q) = %q, want %q", abs, got, want)
	}
}

func TestContractOutsideHomeUnchanged(t *testing.T) {
	got := Contract("/var/lib/somewhere")
	if got != "/var/lib/somewhere" {
		t.Errorf("Contract should not rewrite paths outside $HOME, got %q", got)
	}
}
