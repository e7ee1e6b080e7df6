// Package timing records per-stage wall-clock durations for one invocation.
package timing

import (
	"slices"
	"time"

	"idproof/internal/proofing"
)

// Entry is one recorded stage duration.
type Entry struct {
	Stage    proofing.Stage
	Duration time.Duration
}

// Millis returns the duration in fractional milliseconds.
func (e Entry) Millis() float64 {
	return float64(e.Duration) / float64(time.Millisecond)
}

// Timer accumulates stage durations in first-recorded order. A Timer belongs
// to a single invocation and is not safe for concurrent use.
type Timer struct {
	entries []Entry
	now     func() time.Time
}

// New returns an empty timer.
func New() *Timer {
	return &Timer{now: time.Now}
}

// Record stores d for stage. A stage recorded twice keeps its first position
// and takes the newer duration.
func (t *Timer) Record(stage proofing.Stage, d time.Duration) {
	if d < 0 {
		d = 0
	}
	for i := range t.entries {
		if t.entries[i].Stage == stage {
			t.entries[i].Duration = d
			return
		}
	}
	t.entries = append(t.entries, Entry{Stage: stage, Duration: d})
}

// Results returns a snapshot of the recorded entries.
func (t *Timer) Results() []Entry {
	return slices.Clone(t.entries)
}

// Duration returns the recorded duration of stage.
func (t *Timer) Duration(stage proofing.Stage) (time.Duration, bool) {
	for _, e := range t.entries {
		if e.Stage == stage {
			return e.Duration, true
		}
	}
	return 0, false
}

// Time runs op and records its duration under stage, whether or not it
// fails. The operation's result and error are returned unchanged.
func Time[T any](t *Timer, stage proofing.Stage, op func() (T, error)) (T, error) {
	start := t.now()
	defer func() {
		t.Record(stage, t.now().Sub(start))
	}()
	return op()
}
