package plan

import "sync/atomic"

// Summary aggregates PlanEntry action counts over a run. Its counters
// are updated via atomics (spec section 5 permits either a mutex or
// atomics; atomics avoid lock contention across the Executor's worker
// pool without adding a dependency).
type Summary struct {
	Clone     atomic.Int64
	Update    atomic.Int64
	Unchanged atomic.Int64
	Blocked   atomic.Int64
	Errors    atomic.Int64
	DurationMS atomic.Int64
}

// Record increments the counter matching e.Action.
func (s *Summary) Record(e Entry) {
	switch e.Action {
	case Clone:
		s.Clone.Add(1)
	case Update:
		s.Update.Add(1)
	case Unchanged:
		s.Unchanged.Add(1)
	case Blocked:
		s.Blocked.Add(1)
	case Error:
		s.Errors.Add(1)
	}
}

// Snapshot is an immutable point-in-time read of a Summary, the shape
// the Output Sink serialises.
type Snapshot struct {
	Clone, Update, Unchanged, Blocked, Errors, Total int
	DurationMS                                       int64
}

// Snapshot reads the current counter values.
func (s *Summary) Snapshot() Snapshot {
	snap := Snapshot{
		Clone:      int(s.Clone.Load()),
		Update:     int(s.Update.Load()),
		Unchanged:  int(s.Unchanged.Load()),
		Blocked:    int(s.Blocked.Load()),
		Errors:     int(s.Errors.Load()),
		DurationMS: s.DurationMS.Load(),
	}
	snap.Total = snap.Clone + snap.Update + snap.Unchanged + snap.Blocked + snap.Errors
	return snap
}
