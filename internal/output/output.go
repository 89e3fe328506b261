// Package output implements the Output Sink: a single-writer emitter
// with three encoders (human-readable, buffered JSON array, streamed
// NDJSON), serialising emission internally behind one mutex. The
// Executor's workers call it while still holding their concurrency
// permit; the permit is released only when a worker's task returns.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/steveyegge/vcspull/internal/plan"
)

const formatVersion = "1"

// Mode selects the encoding.
type Mode int

const (
	Human Mode = iota
	JSONArray
	NDJSON
)

// Phase marks whether an Entry is being reported before or after
// execution, per spec.md 4.6's "planned"/"result" line distinction.
type Phase int

const (
	Planned Phase = iota
	Result
)

// record is the wire shape shared by both the "operation" and
// "summary" JSON records. Every field except format_version and type
// is omitempty, so a summary counter that is zero (total included) is
// left out of the encoded summary record.
type record struct {
	FormatVersion string `json:"format_version"`
	Type          string `json:"type"`

	Name          string `json:"name,omitempty"`
	Path          string `json:"path,omitempty"`
	WorkspaceRoot string `json:"workspace_root,omitempty"`
	Action        string `json:"action,omitempty"`
	Detail        string `json:"detail,omitempty"`
	URL           string `json:"url,omitempty"`
	Branch        string `json:"branch,omitempty"`
	RemoteBranch  string `json:"remote_branch,omitempty"`
	CurrentRev    string `json:"current_rev,omitempty"`
	TargetRev     string `json:"target_rev,omitempty"`
	Ahead         *int   `json:"ahead,omitempty"`
	Behind        *int   `json:"behind,omitempty"`
	Dirty         *bool  `json:"dirty,omitempty"`
	Error         string `json:"error,omitempty"`

	Total      int   `json:"total,omitempty"`
	Clone      int   `json:"clone,omitempty"`
	Update     int   `json:"update,omitempty"`
	Unchanged  int   `json:"unchanged,omitempty"`
	Blocked    int   `json:"blocked,omitempty"`
	Errors     int   `json:"errors,omitempty"`
	DurationMS int64 `json:"duration_ms,omitempty"`
}

// Sink is the single-writer emitter. All methods are safe for
// concurrent use; emission is serialised behind mu so array mode can
// buffer and NDJSON mode can stream without interleaving records.
type Sink struct {
	mode Mode
	w    io.Writer

	mu      sync.Mutex
	buf     []record // JSONArray mode only
	encoder *json.Encoder
}

// New constructs a Sink writing to w in the requested mode.
func New(w io.Writer, mode Mode) *Sink {
	s := &Sink{mode: mode, w: w}
	if mode == NDJSON {
		s.encoder = json.NewEncoder(w)
	}
	return s
}

// Emit reports one PlanEntry in the given phase.
func (s *Sink) Emit(e plan.Entry, phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case Human:
		s.emitHuman(e, phase)
	case JSONArray:
		s.buf = append(s.buf, entryRecord(e))
	case NDJSON:
		_ = s.encoder.Encode(entryRecord(e))
	}
}

// EmitWorktree reports one worktree.Entry-shaped result, rendered
// through the same three encoders; worktree entries carry no
// Ahead/Behind/Dirty fields so they are folded into "detail" text in
// JSON modes rather than widening the wire schema per-field.
func (s *Sink) EmitWorktree(dir, action, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{
		FormatVersion: formatVersion,
		Type:          "operation",
		Path:          dir,
		Action:        action,
		Detail:        detail,
	}

	switch s.mode {
	case Human:
		fmt.Fprintf(s.w, "%s %s: %s\n", worktreeGlyph(action), dir, detail)
	case JSONArray:
		s.buf = append(s.buf, rec)
	case NDJSON:
		_ = s.encoder.Encode(rec)
	}
}

// Summary emits the run's PlanSummary. It is always called, even on
// abort, and in JSONArray mode it finalises (writes) the array.
func (s *Sink) Summary(snap plan.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{
		FormatVersion: formatVersion,
		Type:          "summary",
		Total:         snap.Total,
		Clone:         snap.Clone,
		Update:        snap.Update,
		Unchanged:     snap.Unchanged,
		Blocked:       snap.Blocked,
		Errors:        snap.Errors,
		DurationMS:    snap.DurationMS,
	}

	switch s.mode {
	case Human:
		s.emitHumanSummary(snap)
	case JSONArray:
		s.buf = append(s.buf, rec)
		s.flushArray()
	case NDJSON:
		_ = s.encoder.Encode(rec)
	}
}

// flushArray writes the buffered records as one JSON array, valid
// even when empty ("[]"), satisfying spec.md 4.6's partial-but-valid
// requirement for process termination.
func (s *Sink) flushArray() {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	if s.buf == nil {
		s.buf = []record{}
	}
	_ = enc.Encode(s.buf)
}

func entryRecord(e plan.Entry) record {
	rec := record{
		FormatVersion: formatVersion,
		Type:          "operation",
		Name:          e.Name,
		Path:          e.Path,
		WorkspaceRoot: e.WorkspaceLabel,
		Action:        string(e.Action),
		Detail:        e.Detail,
		URL:           e.URL,
		Branch:        e.Branch,
		RemoteBranch:  e.RemoteBranch,
		CurrentRev:    e.CurrentRev,
		TargetRev:     e.TargetRev,
	}
	if e.Ahead != 0 {
		rec.Ahead = &e.Ahead
	}
	if e.Behind != 0 {
		rec.Behind = &e.Behind
	}
	if e.Dirty {
		rec.Dirty = &e.Dirty
	}
	if e.Error != nil {
		rec.Error = e.Error.Error()
	}
	return rec
}

var (
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorRed    = color.New(color.FgRed)
	colorCyan   = color.New(color.FgCyan)
	colorFaint  = color.New(color.Faint)
)

func glyph(a plan.Action) (string, *color.Color) {
	switch a {
	case plan.Clone:
		return "+", colorGreen
	case plan.Update:
		return "~", colorCyan
	case plan.Unchanged:
		return "=", colorFaint
	case plan.Blocked:
		return "!", colorYellow
	case plan.Error:
		return "x", colorRed
	default:
		return "?", colorFaint
	}
}

func worktreeGlyph(action string) string {
	switch action {
	case "CREATE":
		return "+"
	case "UPDATE":
		return "~"
	case "ERROR":
		return "x"
	case "BLOCKED":
		return "!"
	default:
		return "="
	}
}

func (s *Sink) emitHuman(e plan.Entry, phase Phase) {
	g, c := glyph(e.Action)
	label := fmt.Sprintf("%s %s", g, e.Name)
	if phase == Planned {
		fmt.Fprintf(s.w, "%s (planned: %s)\n", label, e.Detail)
		return
	}
	if e.Detail != "" {
		c.Fprintf(s.w, "%s: %s\n", label, e.Detail)
	} else {
		c.Fprintf(s.w, "%s\n", label)
	}
}

func (s *Sink) emitHumanSummary(snap plan.Snapshot) {
	colorCyan.Fprintf(s.w, "\n%d total: ", snap.Total)
	colorGreen.Fprintf(s.w, "%d cloned, ", snap.Clone)
	colorCyan.Fprintf(s.w, "%d updated, ", snap.Update)
	colorFaint.Fprintf(s.w, "%d unchanged, ", snap.Unchanged)
	colorYellow.Fprintf(s.w, "%d blocked, ", snap.Blocked)
	colorRed.Fprintf(s.w, "%d errors\n", snap.Errors)
}
