// Package manifest implements the vcspull Manifest Loader and
// Normaliser: reading YAML/JSON manifest files with duplicate-aware
// merging, then expanding shorthand into an ordered Repository list.
package manifest

import "github.com/steveyegge/vcspull/internal/label"

// VCSKind is one of the three version-control systems vcspull drives.
type VCSKind string

const (
	Git VCSKind = "git"
	Hg  VCSKind = "hg"
	Svn VCSKind = "svn"
)

// Remote is a named push/fetch URL pair, declared under a Repository's
// "remotes" mapping.
type Remote struct {
	Name     string
	FetchURL string
	PushURL  string
}

// WorktreeSpec is one entry of a repository's worktree sub-manifest.
// Exactly one of Tag, Branch, Commit is set.
type WorktreeSpec struct {
	Dir        string // resolved to an absolute path once the parent is known
	Tag        string
	Branch     string
	Commit     string
	Lock       bool
	LockReason string
	Detach     *bool // nil means "use the ref-kind default"
}

// RefKind reports which of Tag/Branch/Commit is populated.
func (w WorktreeSpec) RefKind() string {
	switch {
	case w.Tag != "":
		return "tag"
	case w.Branch != "":
		return "branch"
	default:
		return "commit"
	}
}

// Ref returns the one populated ref value, regardless of kind.
func (w WorktreeSpec) Ref() string {
	switch {
	case w.Tag != "":
		return w.Tag
	case w.Branch != "":
		return w.Branch
	default:
		return w.Commit
	}
}

// DefaultDetach reports the detach behaviour implied by the ref kind
// alone (tag/commit -> detached, branch -> attached), used when a
// WorktreeSpec does not override it explicitly.
func (w WorktreeSpec) DefaultDetach() bool {
	return w.RefKind() != "branch"
}

// Detached resolves the effective detach setting: the explicit
// override if present, else the ref-kind default.
func (w WorktreeSpec) Detached() bool {
	if w.Detach != nil {
		return *w.Detach
	}
	return w.DefaultDetach()
}

// Repository is the fully-expanded declaration of one repository.
type Repository struct {
	Name              string
	WorkspaceLabel    label.WorkspaceLabel
	Path              string // absolute
	URL               string
	VCS               VCSKind
	Remotes           map[string]Remote
	Rev               string
	ShellCommandAfter []string
	Worktrees         []WorktreeSpec
}

// RawManifest is the Loader's output: an ordered sequence of raw
// workspace entries, each holding an ordered sequence of raw
// repository entries, produced by the duplicate-aware merge. It is
// the Normaliser's sole input. Order is preserved end to end so that
// PlanEntries are later produced "in the manifest's declared order".
type RawManifest struct {
	Workspaces []RawWorkspace
}

// RawWorkspace is one (possibly merged) workspace-label section.
type RawWorkspace struct {
	Label string // as written in the manifest, not yet canonicalised
	Repos []RawRepo
}

// RawRepo is one repository entry as decoded from YAML/JSON: Entry is
// either a string (URL shorthand) or a map[string]any (full form).
type RawRepo struct {
	Name  string
	Entry any
}
