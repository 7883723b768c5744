package rest

import "time"

type Kind string

const (
	// KindSet is the rest between two sets of the same exercise.
	KindSet Kind = "set"
	// KindTransition is the rest after finishing an exercise, before the next one.
	KindTransition Kind = "transition"
)

// Interval is one planned rest countdown. It only changes through Tick.
type Interval struct {
	Kind      Kind      `json:"kind"`
	Planned   int       `json:"plannedSeconds"`
	Remaining int       `json:"remainingSeconds"`
	StartedAt time.Time `json:"startedAt"`
}

func NewInterval(kind Kind, plannedSeconds int, now time.Time) Interval {
	if plannedSeconds < 0 {
		plannedSeconds = 0
	}
	return Interval{
		Kind:      kind,
		Planned:   plannedSeconds,
		Remaining: plannedSeconds,
		StartedAt: now,
	}
}

// Elapsed is planned - remaining, clamped to [0, planned].
func (i Interval) Elapsed() int {
	elapsed := i.Planned - i.Remaining
	if elapsed < 0 {
		return 0
	}
	if elapsed > i.Planned {
		return i.Planned
	}
	return elapsed
}

func (i Interval) Expired() bool {
	return i.Remaining <= 0
}

// Tick counts one second down and reports whether the interval just ran out.
func (i *Interval) Tick() bool {
	if i.Remaining <= 0 {
		return false
	}
	i.Remaining--
	return i.Remaining == 0
}

// Finalized is the accounting result of a stopped or expired interval.
type Finalized struct {
	Kind    Kind `json:"kind"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Timer holds at most one running interval. It is not safe for concurrent
// use; the owner serializes Start, Stop, Tick and Forfeit.
type Timer struct {
	running *Interval
}

func (t *Timer) Running() (Interval, bool) {
	if t.running == nil {
		return Interval{}, false
	}
	return *t.running, true
}

// Start begins a new interval. A running one is finalized first and returned.
func (t *Timer) Start(kind Kind, plannedSeconds int, now time.Time) (Finalized, bool) {
	finalized, had := t.Stop()
	interval := NewInterval(kind, plannedSeconds, now)
	t.running = &interval
	return finalized, had
}

// Stop ends the running interval early, counting only the elapsed part.
func (t *Timer) Stop() (Finalized, bool) {
	if t.running == nil {
		return Finalized{}, false
	}
	finalized := Finalized{
		Kind:    t.running.Kind,
		Seconds: t.running.Elapsed(),
		Expired: t.running.Expired(),
	}
	t.running = nil
	return finalized, true
}

// Tick advances the running interval. On natural expiry the full planned
// duration is returned as finalized and the timer becomes idle.
func (t *Timer) Tick() (Finalized, bool) {
	if t.running == nil {
		return Finalized{}, false
	}
	if !t.running.Tick() && !t.running.Expired() {
		return Finalized{}, false
	}
	finalized := Finalized{
		Kind:    t.running.Kind,
		Seconds: t.running.Planned,
		Expired: true,
	}
	t.running = nil
	return finalized, true
}

// Forfeit drops the running interval without accounting for it.
func (t *Timer) Forfeit() (Interval, bool) {
	if t.running == nil {
		return Interval{}, false
	}
	dropped := *t.running
	t.running = nil
	return dropped, true
}
