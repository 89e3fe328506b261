package manifest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/steveyegge/vcspull/internal/label"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

// sshShorthand matches git's scp-like syntax, e.g.
// "git@github.com:user/repo.git".
var sshShorthand = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+:.+`)

// Normalize expands the raw manifest produced by the Loader into an
// ordered Repository list, applying the shorthand table from spec
// section 4.2 and the cross-repository duplicate-path invariant.
//
// Grounded on original_source/src/vcspull/config.py:extract_repos,
// carried into Go field-for-field.
func Normalize(rm RawManifest, cwd string) ([]Repository, error) {
	var repos []Repository
	seenPaths := make(map[string]Repository)

	for _, ws := range rm.Workspaces {
		wsLabel, err := label.Canonicalize(ws.Label, cwd)
		if err != nil {
			return nil, fmt.Errorf("%w: workspace %q: %v", vcserrors.ErrConfigSchema, ws.Label, err)
		}

		for _, raw := range ws.Repos {
			repo, err := normalizeOne(wsLabel, raw.Name, raw.Entry, cwd)
			if err != nil {
				return nil, fmt.Errorf("%w: workspace %q repo %q: %v", vcserrors.ErrConfigSchema, ws.Label, raw.Name, err)
			}

			if existing, dup := seenPaths[repo.Path]; dup {
				if existing.URL == repo.URL && existing.VCS == repo.VCS {
					// identical (path, url, vcs): collapse silently
					continue
				}
				return nil, fmt.Errorf("%w: %q claimed by both %q and %q",
					vcserrors.ErrDuplicatePath, repo.Path, existing.Name, repo.Name)
			}
			seenPaths[repo.Path] = repo
			repos = append(repos, repo)
		}
	}

	return repos, nil
}

func normalizeOne(wsLabel label.WorkspaceLabel, name string, entry any, cwd string) (Repository, error) {
	conf := asConfigMap(entry)

	if repoURL, ok := conf["repo"]; ok {
		if _, hasURL := conf["url"]; !hasURL {
			conf["url"] = repoURL
		}
		delete(conf, "repo")
	}

	rawURL, _ := conf["url"].(string)
	if rawURL == "" {
		return Repository{}, fmt.Errorf("missing url")
	}

	vcsKind, cleanURL, err := resolveVCS(conf["vcs"], rawURL)
	if err != nil {
		return Repository{}, err
	}

	repoPath, err := resolvePath(conf["path"], wsLabel, name, cwd)
	if err != nil {
		return Repository{}, err
	}

	remotes, err := normalizeRemotes(conf["remotes"])
	if err != nil {
		return Repository{}, err
	}

	shellCmds := normalizeShellCommandAfter(conf["shell_command_after"])

	worktrees, err := normalizeWorktrees(conf["worktrees"])
	if err != nil {
		return Repository{}, err
	}

	rev, _ := conf["rev"].(string)
	if vcsKind == Svn && rev == "" {
		if stripped, pegRev, ok := stripSvnPegRev(cleanURL); ok {
			cleanURL = stripped
			rev = pegRev
		}
	}

	return Repository{
		Name:              name,
		WorkspaceLabel:    wsLabel,
		Path:              repoPath,
		URL:               cleanURL,
		VCS:               vcsKind,
		Remotes:           remotes,
		Rev:               rev,
		ShellCommandAfter: shellCmds,
		Worktrees:         worktrees,
	}, nil
}

// asConfigMap normalises a raw repo entry — a bare URL string, or a
// full mapping — into a map[string]any, the string-shorthand
// expansion from spec section 4.2's table.
func asConfigMap(entry any) map[string]any {
	switch v := entry.(type) {
	case string:
		return map[string]any{"url": v}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case map[any]any:
		// yaml.v3's node.Decode into `any` for a mapping with
		// non-string keys would produce this; vcspull manifests only
		// ever use string keys, so coerce defensively.
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out
	default:
		return map[string]any{}
	}
}

// resolveVCS infers the VCS kind from an explicit "vcs" field or from
// the URL's scheme/prefix, and returns the URL with any "<vcs>+"
// prefix stripped (the clean form a VCS driver's clone command wants).
func resolveVCS(explicit any, rawURL string) (VCSKind, string, error) {
	if s, ok := explicit.(string); ok && s != "" {
		kind := VCSKind(strings.ToLower(s))
		switch kind {
		case Git, Hg, Svn:
			return kind, stripVCSPrefix(rawURL), nil
		default:
			return "", "", fmt.Errorf("unrecognised vcs kind %q", s)
		}
	}

	for _, prefix := range []struct {
		p string
		k VCSKind
	}{
		{"git+", Git}, {"hg+", Hg}, {"svn+", Svn},
	} {
		if strings.HasPrefix(rawURL, prefix.p) {
			return prefix.k, rawURL[len(prefix.p):], nil
		}
	}

	if sshShorthand.MatchString(rawURL) {
		return Git, rawURL, nil
	}

	// No explicit kind, no "<vcs>+" prefix, not SSH shorthand: default
	// to git, the overwhelmingly common unprefixed case
	// ("https://host/user/repo.git").
	return Git, rawURL, nil
}

// svnPegRevRe matches svn's trailing peg-revision syntax, e.g.
// "https://host/repo/trunk@1234" or "...@HEAD". Checked out as a
// "rev" value, then stripped from the URL svn itself is given.
var svnPegRevRe = regexp.MustCompile(`^(.*)@(\d+|HEAD|BASE|COMMITTED|PREV)$`)

// stripSvnPegRev splits url's trailing "@rev" suffix, if present, per
// spec section 4.7's "SVN's update reads revision options from the
// URL's @rev suffix if present".
func stripSvnPegRev(url string) (strippedURL, rev string, ok bool) {
	m := svnPegRevRe.FindStringSubmatch(url)
	if m == nil {
		return url, "", false
	}
	return m[1], m[2], true
}

func stripVCSPrefix(url string) string {
	for _, prefix := range []string{"git+", "hg+", "svn+"} {
		if strings.HasPrefix(url, prefix) {
			return url[len(prefix):]
		}
	}
	return url
}

func resolvePath(explicit any, wsLabel label.WorkspaceLabel, name string, cwd string) (string, error) {
	if s, ok := explicit.(string); ok && s != "" {
		return label.Expand(s, cwd)
	}
	return filepath.Join(wsLabel.String(), name), nil
}

func normalizeRemotes(raw any) (map[string]Remote, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		if m2, ok2 := raw.(map[any]any); ok2 {
			m = make(map[string]any, len(m2))
			for k, v := range m2 {
				m[fmt.Sprintf("%v", k)] = v
			}
		} else {
			return nil, nil
		}
	}

	remotes := make(map[string]Remote, len(m))
	for name, v := range m {
		switch val := v.(type) {
		case string:
			remotes[name] = Remote{Name: name, FetchURL: val, PushURL: val}
		case map[string]any:
			fetch, _ := val["fetch_url"].(string)
			push, _ := val["push_url"].(string)
			if fetch == "" || push == "" {
				return nil, fmt.Errorf("remote %q requires both fetch_url and push_url", name)
			}
			remotes[name] = Remote{Name: name, FetchURL: fetch, PushURL: push}
		default:
			return nil, fmt.Errorf("remote %q has an unrecognised value", name)
		}
	}
	return remotes, nil
}

func normalizeShellCommandAfter(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func normalizeWorktrees(raw any) ([]WorktreeSpec, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	specs := make([]WorktreeSpec, 0, len(items))
	for _, item := range items {
		m := asConfigMap(item)

		dir, _ := m["dir"].(string)
		if dir == "" {
			return nil, fmt.Errorf("%w: worktree missing \"dir\"", vcserrors.ErrWorktreeConfig)
		}

		spec := WorktreeSpec{Dir: dir}
		refCount := 0
		if tag, ok := m["tag"].(string); ok && tag != "" {
			spec.Tag = tag
			refCount++
		}
		if branch, ok := m["branch"].(string); ok && branch != "" {
			spec.Branch = branch
			refCount++
		}
		if commit, ok := m["commit"].(string); ok && commit != "" {
			spec.Commit = commit
			refCount++
		}
		if refCount != 1 {
			return nil, fmt.Errorf("%w: worktree %q must declare exactly one of tag/branch/commit, got %d",
				vcserrors.ErrWorktreeConfig, dir, refCount)
		}

		if lock, ok := m["lock"].(bool); ok {
			spec.Lock = lock
		}
		if reason, ok := m["lock_reason"].(string); ok {
			spec.LockReason = reason
		}
		if detach, ok := m["detach"].(bool); ok {
			spec.Detach = &detach
		}

		specs = append(specs, spec)
	}
	return specs, nil
}
