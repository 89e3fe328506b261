package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/vcspull/internal/vcserrors"
	"github.com/steveyegge/vcspull/internal/vcslog"
)

// LoadFile reads a single manifest file and returns its raw,
// duplicate-aware-merged form. Format is discriminated by extension.
func LoadFile(path string) (RawManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawManifest{}, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return loadYAML(data, path)
	case ".json":
		return loadJSON(data, path)
	default:
		return RawManifest{}, fmt.Errorf("%w: %s", vcserrors.ErrConfigFormat, path)
	}
}

// loadYAML implements the duplicate-aware two-pass loader: pass one
// parses into a *yaml.Node tree (gopkg.in/yaml.v3 exposes the raw node
// graph so repeated mapping keys are visible instead of silently
// overwritten by Unmarshal into a struct or map); pass two folds
// repeated workspace-label sections together and repeated repository
// names within a section with a left-precedent policy, logging a
// warning for every dropped duplicate.
func loadYAML(data []byte, path string) (RawManifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawManifest{}, fmt.Errorf("%w: %s: %v", vcserrors.ErrConfigParse, path, err)
	}
	if len(doc.Content) == 0 {
		return RawManifest{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return RawManifest{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return RawManifest{}, fmt.Errorf("%w: %s: manifest root must be a mapping", vcserrors.ErrConfigSchema, path)
	}

	buckets, order := foldWorkspaceNodes(root, path)

	rm := RawManifest{Workspaces: make([]RawWorkspace, 0, len(order))}
	for _, wsKey := range order {
		bucket := buckets[wsKey]
		ws := RawWorkspace{Label: wsKey, Repos: make([]RawRepo, 0, len(bucket.order))}
		for _, rName := range bucket.order {
			var entry any
			if err := bucket.repos[rName].Decode(&entry); err != nil {
				return RawManifest{}, fmt.Errorf("%w: %s: workspace %q repo %q: %v",
					vcserrors.ErrConfigParse, path, wsKey, rName, err)
			}
			ws.Repos = append(ws.Repos, RawRepo{Name: rName, Entry: entry})
		}
		rm.Workspaces = append(rm.Workspaces, ws)
	}
	return rm, nil
}

// workspaceBucket accumulates the merged repo set for one (possibly
// repeated) workspace label, preserving first-seen order.
type workspaceBucket struct {
	order []string
	repos map[string]*yaml.Node
}

func foldWorkspaceNodes(root *yaml.Node, path string) (map[string]*workspaceBucket, []string) {
	buckets := make(map[string]*workspaceBucket)
	var order []string

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		wsKey := keyNode.Value

		bucket, seen := buckets[wsKey]
		if !seen {
			bucket = &workspaceBucket{repos: make(map[string]*yaml.Node)}
			buckets[wsKey] = bucket
			order = append(order, wsKey)
		} else {
			vcslog.Warnf("%s: workspace key %q repeated; merging its repositories into the first occurrence", path, wsKey)
		}

		if valNode.Kind != yaml.MappingNode {
			vcslog.Warnf("%s: workspace key %q value is not a mapping; skipping", path, wsKey)
			continue
		}

		for j := 0; j+1 < len(valNode.Content); j += 2 {
			rKeyNode, rValNode := valNode.Content[j], valNode.Content[j+1]
			rName := rKeyNode.Value

			if _, dup := bucket.repos[rName]; dup {
				vcslog.Warnf("%s: repository %q under workspace %q repeated; keeping first definition", path, rName, wsKey)
				continue
			}
			bucket.repos[rName] = rValNode
			bucket.order = append(bucket.order, rName)
		}
	}
	return buckets, order
}

// loadJSON loads a JSON manifest. JSON has no syntactic representation
// of a duplicate mapping key distinct from "the parser kept the last
// one" (encoding/json's own map decoding already silently overwrites
// duplicates the same way standard YAML does) — there is no
// duplicate-preservation invariant to uphold here, only the ordinary
// JSON object semantics, so a direct decode into a map, followed by
// sorting its keys, is sufficient.
func loadJSON(data []byte, path string) (RawManifest, error) {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawManifest{}, fmt.Errorf("%w: %s: %v", vcserrors.ErrConfigParse, path, err)
	}

	// encoding/json does not expose source key order; JSON manifests
	// therefore sort workspace and repo keys for determinism instead
	// of claiming an order the format cannot represent.
	wsKeys := make([]string, 0, len(raw))
	for k := range raw {
		wsKeys = append(wsKeys, k)
	}
	sortStrings(wsKeys)

	rm := RawManifest{Workspaces: make([]RawWorkspace, 0, len(wsKeys))}
	for _, wsKey := range wsKeys {
		repoMap := raw[wsKey]
		names := make([]string, 0, len(repoMap))
		for n := range repoMap {
			names = append(names, n)
		}
		sortStrings(names)

		ws := RawWorkspace{Label: wsKey, Repos: make([]RawRepo, 0, len(names))}
		for _, n := range names {
			ws.Repos = append(ws.Repos, RawRepo{Name: n, Entry: repoMap[n]})
		}
		rm.Workspaces = append(rm.Workspaces, ws)
	}
	return rm, nil
}

func sortStrings(s []string) {
	// small insertion sort avoids importing "sort" for a handful of
	// keys per manifest and keeps this file's import list minimal.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Merge combines multiple loaded manifests in order, applying the
// same left-precedent, merge-children policy LoadFile's duplicate-key
// folding applies within one file. This is how multiple discovered
// config files (home + XDG) are combined into one effective manifest.
func Merge(manifests ...RawManifest) RawManifest {
	order := make([]string, 0)
	byLabel := make(map[string]*RawWorkspace)

	for _, m := range manifests {
		for _, ws := range m.Workspaces {
			existing, seen := byLabel[ws.Label]
			if !seen {
				cp := ws
				cp.Repos = append([]RawRepo(nil), ws.Repos...)
				byLabel[ws.Label] = &cp
				order = append(order, ws.Label)
				continue
			}
			seenNames := make(map[string]bool, len(existing.Repos))
			for _, r := range existing.Repos {
				seenNames[r.Name] = true
			}
			for _, r := range ws.Repos {
				if seenNames[r.Name] {
					vcslog.Warnf("workspace %q repository %q repeated across manifests; keeping first definition", ws.Label, r.Name)
					continue
				}
				existing.Repos = append(existing.Repos, r)
				seenNames[r.Name] = true
			}
		}
	}

	rm := RawManifest{Workspaces: make([]RawWorkspace, 0, len(order))}
	for _, label := range order {
		rm.Workspaces = append(rm.Workspaces, *byLabel[label])
	}
	return rm
}
