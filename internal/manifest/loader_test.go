package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFileDuplicateWorkspaceKeyMerges(t *testing.T) {
	// scenario 4 from spec section 8: "~/code/:" twice, flask under the
	// first, django under the second — both must survive the load.
	path := writeTemp(t, "manifest.yaml", `
~/code/:
  flask: "git+https://example.test/flask.git"
~/code/:
  django: "git+https://example.test/django.git"
`)

	rm, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(rm.Workspaces) != 1 {
		t.Fatalf("expected one merged workspace, got %d", len(rm.Workspaces))
	}
	ws := rm.Workspaces[0]
	if len(ws.Repos) != 2 {
		t.Fatalf("expected 2 repos after merge, got %d", len(ws.Repos))
	}
	names := map[string]bool{}
	for _, r := range ws.Repos {
		names[r.Name] = true
	}
	if !names["flask"] || !names["django"] {
		t.Errorf("expected both flask and django present, got %v", names)
	}
}

func TestLoadFileDuplicateRepoKeepsFirst(t *testing.T) {
	path := writeTemp(t, "manifest.yaml", `
~/code/:
  flask: "git+https://example.test/flask-v1.git"
  flask: "git+https://example.test/flask-v2.git"
`)

	rm, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	ws := rm.Workspaces[0]
	if len(ws.Repos) != 1 {
		t.Fatalf("expected duplicate repo name collapsed to one entry, got %d", len(ws.Repos))
	}
	if ws.Repos[0].Entry != "git+https://example.test/flask-v1.git" {
		t.Errorf("expected first definition to win, got %v", ws.Repos[0].Entry)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "manifest.toml", "not a real manifest")
	if _, err := LoadFile(path); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestLoadFileMalformedYAML(t *testing.T) {
	path := writeTemp(t, "manifest.yaml", "~/code/: [this is not a mapping")
	if _, err := LoadFile(path); err == nil {
		t.Error("expected a parse error for malformed yaml")
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTemp(t, "manifest.json", `{"~/code/": {"flask": "git+https://example.test/flask.git"}}`)
	rm, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(rm.Workspaces) != 1 || len(rm.Workspaces[0].Repos) != 1 {
		t.Fatalf("unexpected shape: %+v", rm)
	}
}

func TestMergeAcrossFilesKeepsFirstOnConflict(t *testing.T) {
	a := RawManifest{Workspaces: []RawWorkspace{
		{Label: "~/code/", Repos: []RawRepo{{Name: "flask", Entry: "url-a"}}},
	}}
	b := RawManifest{Workspaces: []RawWorkspace{
		{Label: "~/code/", Repos: []RawRepo{
			{Name: "flask", Entry: "url-b"},
			{Name: "django", Entry: "url-c"},
		}},
	}}

	merged := Merge(a, b)
	if len(merged.Workspaces) != 1 {
		t.Fatalf("expected one workspace, got %d", len(merged.Workspaces))
	}
	ws := merged.Workspaces[0]
	if len(ws.Repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(ws.Repos))
	}
	for _, r := range ws.Repos {
		if r.Name == "flask" && r.Entry != "url-a" {
			t.Errorf("expected first-file flask entry to win, got %v", r.Entry)
		}
	}
}
