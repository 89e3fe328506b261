// Package filter implements the Filter Engine: selecting repositories
// by glob predicates on name, url, and path, with the same term
// classification shared by CLI argument parsing and shell completion.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/steveyegge/vcspull/internal/manifest"
)

// Kind is one of the three predicate classes a term can be classified
// into.
type Kind int

const (
	KindName Kind = iota
	KindPath
	KindURL
)

// Predicate is a single glob constraint against one Repository field.
type Predicate struct {
	Kind    Kind
	Pattern string
}

// Query is a conjunction of predicates: a repository matches only if
// every supplied predicate matches (spec section 4.3: "ALL supplied
// predicates").
type Query struct {
	Predicates []Predicate
}

// Classify infers a predicate's Kind from an unqualified term, per the
// heuristic table in spec section 4.3: leading "./", "/", "~", or
// "$HOME" selects a path glob; leading "http", "git", "svn", "hg"
// selects a url glob; anything else selects a name glob.
//
// Grounded on original_source/src/vcspull/cli/sync.py's positional
// argument handling, which performs the identical classification
// before calling filter_repos.
func Classify(term string) Kind {
	switch {
	case strings.HasPrefix(term, "./"),
		strings.HasPrefix(term, "/"),
		strings.HasPrefix(term, "~"),
		strings.HasPrefix(term, "$HOME"):
		return KindPath
	case strings.HasPrefix(term, "http"),
		strings.HasPrefix(term, "git"),
		strings.HasPrefix(term, "svn"),
		strings.HasPrefix(term, "hg"):
		return KindURL
	default:
		return KindName
	}
}

// NewQuery builds a Query from unqualified terms, classifying each one
// independently. Multiple terms of the same Kind are ANDed together,
// same as explicitly qualified predicates.
func NewQuery(terms ...string) Query {
	q := Query{Predicates: make([]Predicate, 0, len(terms))}
	for _, t := range terms {
		q.Predicates = append(q.Predicates, Predicate{Kind: Classify(t), Pattern: t})
	}
	return q
}

// Apply returns the subset of repos satisfying every predicate in q.
// An empty Query matches everything.
//
// Grounded on original_source/src/vcspull/config.py:filter_repos,
// rendered with path/filepath.Match — the stdlib shell-glob matcher is
// used deliberately here (see DESIGN.md): no third-party glob library
// appears anywhere in the example pack, and filepath.Match implements
// exactly the "*", "?", "[...]" class spec section 4.3 calls for.
func Apply(repos []manifest.Repository, q Query) ([]manifest.Repository, error) {
	if len(q.Predicates) == 0 {
		out := make([]manifest.Repository, len(repos))
		copy(out, repos)
		return out, nil
	}

	var out []manifest.Repository
	for _, r := range repos {
		matchAll := true
		for _, p := range q.Predicates {
			ok, err := matches(r, p)
			if err != nil {
				return nil, err
			}
			if !ok {
				matchAll = false
				break
			}
		}
		if matchAll {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r manifest.Repository, p Predicate) (bool, error) {
	var subject string
	switch p.Kind {
	case KindName:
		subject = r.Name
	case KindPath:
		subject = r.Path
	case KindURL:
		subject = r.URL
	}
	// filepath.Match's "*" stops at "/", fnmatch's does not: swap "/"
	// out of both sides so "*" spans it, as in fnmatch.
	const sep = "\x00"
	return filepath.Match(strings.ReplaceAll(p.Pattern, "/", sep), strings.ReplaceAll(subject, "/", sep))
}
