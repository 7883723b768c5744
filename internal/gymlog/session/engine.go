package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/gymlog/rest"
	"github.com/2beens/gymlog/internal/gymlog/stats"
	"github.com/2beens/gymlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

type ExerciseState string

const (
	ExerciseEmpty      ExerciseState = "empty"
	ExerciseInProgress ExerciseState = "in_progress"
	ExerciseResting    ExerciseState = "resting"
)

type Draft struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
	Note     string  `json:"note"`
}

type currentExercise struct {
	name        string
	sets        int
	restSeconds int
	startTime   time.Time
}

// Workout is the context of the active session: the exercise being logged,
// the rest timer and the entries persisted so far. All mutation, including
// the once-per-second tick, happens under mu.
type Workout struct {
	mu sync.Mutex

	session   repo.Session
	note      string
	exercises []repo.Exercise

	current      *currentExercise
	draft        Draft
	draftTouched bool

	timer                 rest.Timer
	transitionRestSeconds int
	closed                bool
	ticker                *rest.Ticker

	store       exerciseStore
	tracker     statsTracker
	metrics     *metrics.Manager
	clock       func() time.Time
	newID       func() string
	restSeconds int
}

type workoutParams struct {
	session      repo.Session
	exercises    []repo.Exercise
	store        exerciseStore
	tracker      statsTracker
	metrics      *metrics.Manager
	clock        func() time.Time
	newID        func() string
	restSeconds  int
	tickInterval time.Duration
}

func newWorkout(params workoutParams) *Workout {
	exercises := make([]repo.Exercise, len(params.exercises))
	copy(exercises, params.exercises)

	w := &Workout{
		session:     params.session,
		note:        params.session.Note,
		exercises:   exercises,
		store:       params.store,
		tracker:     params.tracker,
		metrics:     params.metrics,
		clock:       params.clock,
		newID:       params.newID,
		restSeconds: params.restSeconds,
	}

	// resuming: carry the last logged values over as the draft
	if n := len(exercises); n > 0 {
		w.draft.Reps = exercises[n-1].Reps
		w.draft.WeightKg = exercises[n-1].WeightKg
		w.draftTouched = true
	}

	if params.tickInterval > 0 {
		w.ticker = rest.NewTicker(params.tickInterval, w.Tick)
	}
	return w
}

// StartExercise begins a new exercise. It needs a non-blank name and no
// exercise in progress. A running rest interval is finalized first.
func (w *Workout) StartExercise(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	var lastTime *repo.LatestExercise
	if w.tracker != nil {
		latest, err := w.tracker.LastTime(ctx, name)
		if err != nil {
			log.Warnf("workout %s: last time lookup for %s: %s", w.session.ID, name, err)
		}
		lastTime = latest
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.current != nil {
		return false
	}

	if finalized, had := w.timer.Stop(); had {
		w.settle(finalized)
	}

	if !w.draftTouched && lastTime != nil {
		w.draft.Reps = lastTime.Reps
		w.draft.WeightKg = lastTime.WeightKg
	}

	w.current = &currentExercise{
		name:      name,
		startTime: w.clock(),
	}
	return true
}

// SetDraft edits the reps, weight and note the next finish will persist.
func (w *Workout) SetDraft(reps int, weightKg float64, note string) bool {
	if reps < 0 || weightKg < 0 {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	w.draft = Draft{
		Reps:     reps,
		WeightKg: weightKg,
		Note:     strings.TrimSpace(note),
	}
	w.draftTouched = true
	return true
}

// SaveSet counts one set and starts a set rest. Outside an exercise it does nothing.
func (w *Workout) SaveSet() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.current == nil {
		return false
	}

	w.current.sets++
	if finalized, had := w.timer.Start(rest.KindSet, w.restSeconds, w.clock()); had {
		w.settle(finalized)
	}
	if w.metrics != nil {
		w.metrics.CounterSetsSaved.Inc()
	}
	return true
}

// CancelRest stops the running rest early, keeping only the elapsed part.
func (w *Workout) CancelRest() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	finalized, had := w.timer.Stop()
	if had {
		w.settle(finalized)
	}
	return had
}

// FinishExercise persists the current exercise and starts a transition rest.
// Returns false with no error when there is nothing to finish. On a store
// error the exercise stays in progress, with its set rest still running, so
// the caller can retry.
func (w *Workout) FinishExercise(ctx context.Context) (repo.Exercise, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.current == nil || w.current.sets == 0 {
		return repo.Exercise{}, false, nil
	}

	// the running set rest is counted in, but only stopped once the entry is stored
	restSeconds := w.current.restSeconds
	if interval, running := w.timer.Running(); running && interval.Kind == rest.KindSet {
		restSeconds += interval.Elapsed()
	}

	now := w.clock()
	entry := repo.Exercise{
		ID:          w.newID(),
		SessionID:   w.session.ID,
		Name:        w.current.name,
		Sets:        w.current.sets,
		Reps:        w.draft.Reps,
		WeightKg:    w.draft.WeightKg,
		RestSeconds: restSeconds,
		StartTime:   w.current.startTime,
		EndTime:     now,
		Note:        w.draft.Note,
		CreatedAt:   now,
	}
	if err := w.store.InsertExercise(ctx, entry); err != nil {
		return repo.Exercise{}, false, fmt.Errorf("insert exercise: %w", err)
	}

	if finalized, had := w.timer.Stop(); had {
		w.settle(finalized)
	}
	w.exercises = append(w.exercises, entry)
	w.current = nil
	w.draft.Note = ""
	w.timer.Start(rest.KindTransition, w.restSeconds, now)

	if w.tracker != nil {
		w.tracker.Invalidate(entry.Name)
	}
	if w.metrics != nil {
		w.metrics.CounterExercisesLogged.Inc()
	}
	log.Debugf("workout %s: logged %s, %d sets, %ds rest", w.session.ID, entry.Name, entry.Sets, entry.RestSeconds)

	return entry, true, nil
}

// Tick advances the rest countdown by one second.
func (w *Workout) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if finalized, expired := w.timer.Tick(); expired {
		w.settle(finalized)
	}
}

// settle books a finalized interval: set rest goes to the exercise in
// progress, anything else to the session's transition rest. Caller holds mu.
func (w *Workout) settle(finalized rest.Finalized) {
	if w.metrics != nil {
		w.metrics.HistRestSeconds.WithLabelValues(string(finalized.Kind)).Observe(float64(finalized.Seconds))
	}
	if finalized.Kind == rest.KindSet && w.current != nil {
		w.current.restSeconds += finalized.Seconds
		return
	}
	w.transitionRestSeconds += finalized.Seconds
}

// forfeitRest drops the running interval without booking it.
func (w *Workout) forfeitRest() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dropped, ok := w.timer.Forfeit(); ok {
		log.Debugf("workout %s: forfeited %ds of %s rest", w.session.ID, dropped.Elapsed(), dropped.Kind)
	}
}

func (w *Workout) setNote(note string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.note = note
}

// close stops the ticker and forfeits any running rest. Idempotent.
func (w *Workout) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.timer.Forfeit()
	w.mu.Unlock()

	if w.ticker != nil {
		w.ticker.Stop()
	}
}

func (w *Workout) Session() repo.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workout) Note() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.note
}

func (w *Workout) Exercises() []repo.Exercise {
	w.mu.Lock()
	defer w.mu.Unlock()
	exercises := make([]repo.Exercise, len(w.exercises))
	copy(exercises, w.exercises)
	return exercises
}

type CurrentExerciseView struct {
	Name        string    `json:"name"`
	Sets        int       `json:"sets"`
	RestSeconds int       `json:"restSeconds"`
	StartTime   time.Time `json:"startTime"`
}

type WorkoutView struct {
	Session               repo.Session         `json:"session"`
	Note                  string               `json:"note"`
	ExerciseState         ExerciseState        `json:"exerciseState"`
	Current               *CurrentExerciseView `json:"current"`
	Draft                 Draft                `json:"draft"`
	Rest                  *rest.Interval       `json:"rest"`
	TransitionRestSeconds int                  `json:"transitionRestSeconds"`
	Exercises             []repo.Exercise      `json:"exercises"`
	Aggregates            stats.Aggregates     `json:"aggregates"`
}

// View is a consistent snapshot of the workout for presentation.
func (w *Workout) View() WorkoutView {
	w.mu.Lock()
	defer w.mu.Unlock()

	exercises := make([]repo.Exercise, len(w.exercises))
	copy(exercises, w.exercises)

	view := WorkoutView{
		Session:               w.session,
		Note:                  w.note,
		ExerciseState:         ExerciseEmpty,
		Draft:                 w.draft,
		TransitionRestSeconds: w.transitionRestSeconds,
		Exercises:             exercises,
		Aggregates:            stats.SessionAggregates(w.session, exercises, w.clock()),
	}
	if w.current != nil {
		view.ExerciseState = ExerciseInProgress
		view.Current = &CurrentExerciseView{
			Name:        w.current.name,
			Sets:        w.current.sets,
			RestSeconds: w.current.restSeconds,
			StartTime:   w.current.startTime,
		}
	}
	if interval, running := w.timer.Running(); running {
		view.Rest = &interval
		if w.current != nil && interval.Kind == rest.KindSet {
			view.ExerciseState = ExerciseResting
		}
	}
	return view
}
