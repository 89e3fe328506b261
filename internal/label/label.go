// Package label normalises filesystem paths and canonicalises
// workspace-root labels, so "~/code", "~/code/", and the expanded
// absolute form all collapse to one key.
package label

import (
	"os"
	"path/filepath"
	"strings"
)

// WorkspaceLabel is the canonical form of a manifest top-level key.
// Two labels are equivalent iff their canonical forms compare equal.
type WorkspaceLabel string

// Canonicalize expands environment variables and a leading "~", then
// resolves the result against cwd if it is not already absolute, and
// terminates it with the platform path separator.
//
// cwd is the directory relative paths are resolved against; pass "."
// or os.Getwd() for the common case.
func Canonicalize(raw string, cwd string) (WorkspaceLabel, error) {
	expanded, err := Expand(raw, cwd)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(expanded, string(filepath.Separator)) {
		expanded += string(filepath.Separator)
	}
	return WorkspaceLabel(expanded), nil
}

// Expand performs environment-variable and "~" expansion on dir, then
// resolves it to an absolute path against cwd if it is still relative.
// It does not add a trailing separator — use Canonicalize for that.
func Expand(dir string, cwd string) (string, error) {
	dir = os.ExpandEnv(dir)
	dir = expandHome(dir)
	dir = filepath.Clean(dir)

	if filepath.IsAbs(dir) {
		return dir, nil
	}

	if cwd == "" || cwd == "." {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		cwd = wd
	}
	return filepath.Clean(filepath.Join(cwd, dir)), nil
}

// expandHome expands a leading "~" or "~/" to the current user's home
// directory. "~otheruser" forms are left untouched, matching the
// shell-glob scope the rest of this package cares about.
func expandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Contract returns a home-relative "~/..." form of an absolute path
// when it lives under the user's home directory, and the path
// unchanged otherwise.
func Contract(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	home = filepath.Clean(home)
	path = filepath.Clean(path)

	if path == home {
		return "~"
	}
	prefix := home + string(filepath.Separator)
	if strings.HasPrefix(path, prefix) {
		return "~" + string(filepath.Separator) + strings.TrimPrefix(path, prefix)
	}
	return path
}

// String returns the canonical form as a plain string.
func (l WorkspaceLabel) String() string { return string(l) }
