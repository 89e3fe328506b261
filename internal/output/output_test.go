package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/steveyegge/vcspull/internal/plan"
)

func TestJSONArrayModeEmptyStillValid(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, JSONArray)
	s.Summary(plan.Snapshot{})

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("expected a valid JSON array, got %q: %v", buf.String(), err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly the summary record, got %d", len(records))
	}
	if records[0]["type"] != "summary" {
		t.Errorf("type = %v", records[0]["type"])
	}
}

func TestJSONArrayModeAccumulatesEntries(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, JSONArray)
	s.Emit(plan.Entry{Name: "flask", Action: plan.Clone, Detail: "missing", URL: "https://example.test/flask.git"}, Result)
	s.Emit(plan.Entry{Name: "django", Action: plan.Unchanged, Detail: "up to date"}, Result)
	s.Summary(plan.Snapshot{Total: 2, Clone: 1, Unchanged: 1})

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0]["format_version"] != "1" {
		t.Errorf("format_version = %v", records[0]["format_version"])
	}
	if records[2]["type"] != "summary" || records[2]["total"].(float64) != 2 {
		t.Errorf("summary record = %v", records[2])
	}
}

func TestNDJSONModeStreamsOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, NDJSON)
	s.Emit(plan.Entry{Name: "flask", Action: plan.Clone, Detail: "missing"}, Result)
	s.Summary(plan.Snapshot{Total: 1, Clone: 1})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %q did not parse: %v", line, err)
		}
	}
}

func TestHumanModeRendersNameAndDetail(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, Human)
	s.Emit(plan.Entry{Name: "flask", Action: plan.Blocked, Detail: "working tree has local changes"}, Result)

	out := buf.String()
	if !strings.Contains(out, "flask") || !strings.Contains(out, "working tree has local changes") {
		t.Errorf("output = %q", out)
	}
}

func TestEntryRecordOmitsZeroAheadBehind(t *testing.T) {
	rec := entryRecord(plan.Entry{Name: "flask", Action: plan.Unchanged})
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"ahead"`) || strings.Contains(string(data), `"behind"`) {
		t.Errorf("expected ahead/behind omitted when zero, got %s", data)
	}
}
