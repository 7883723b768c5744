package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/labels"
	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultRestSeconds = 90

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=session_test

type exerciseStore interface {
	InsertExercise(ctx context.Context, exercise repo.Exercise) error
}

type sessionStore interface {
	exerciseStore
	InsertSession(ctx context.Context, session repo.Session) error
	GetSession(ctx context.Context, id string) (*repo.Session, error)
	GetOpenSessions(ctx context.Context) ([]repo.Session, error)
	GetExercisesForSession(ctx context.Context, sessionID string) ([]repo.Exercise, error)
	UpdateSessionOnEnd(ctx context.Context, id string, endTime time.Time, note string, labels []string) error
	InsertManualSession(ctx context.Context, session repo.Session, exercises []repo.Exercise) error
}

type statsTracker interface {
	LastTime(ctx context.Context, name string) (*repo.LatestExercise, error)
	Invalidate(name string)
}

type Params struct {
	Store   sessionStore
	Tracker statsTracker
	Lookup  labels.Lookup
	Metrics *metrics.Manager
	Clock   func() time.Time
	NewID   func() string
	// planned rest per interval; DefaultRestSeconds when not positive
	RestSeconds int
	// 0 disables the background ticker; ticks are then driven by the caller
	TickInterval time.Duration
}

// Manager runs the session lifecycle. It keeps no current session of its
// own: callers hold the State and pass it back in.
type Manager struct {
	store        sessionStore
	tracker      statsTracker
	lookup       labels.Lookup
	metrics      *metrics.Manager
	clock        func() time.Time
	newID        func() string
	restSeconds  int
	tickInterval time.Duration
}

func NewManager(params Params) *Manager {
	m := &Manager{
		store:        params.Store,
		tracker:      params.Tracker,
		lookup:       params.Lookup,
		metrics:      params.Metrics,
		clock:        params.Clock,
		newID:        params.NewID,
		restSeconds:  params.RestSeconds,
		tickInterval: params.TickInterval,
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.restSeconds <= 0 {
		m.restSeconds = DefaultRestSeconds
	}
	if m.lookup == nil {
		m.lookup = labels.MapLookup{}
	}
	return m
}

func (m *Manager) countTransition(transition string) {
	if m.metrics != nil {
		m.metrics.CounterSessions.WithLabelValues(transition).Inc()
	}
}

// Load reads the store: Pending when an open session exists, Idle otherwise.
// With several open sessions the most recent one wins; the rest are left alone.
func (m *Manager) Load(ctx context.Context) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	open, err := m.store.GetOpenSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("get open sessions: %w", err)
	}
	if len(open) == 0 {
		return Idle{}, nil
	}

	if len(open) > 1 {
		others := make([]string, 0, len(open)-1)
		for _, s := range open[1:] {
			others = append(others, s.ID)
		}
		log.Warnf("found %d open sessions, using %s, ignoring %v", len(open), open[0].ID, others)
		if m.metrics != nil {
			m.metrics.CounterOpenSessionAnomaly.Inc()
		}
	}

	return Pending{Session: open[0]}, nil
}

// Reconcile checks the state against the store. A live workout whose session
// was ended or deleted elsewhere is closed and the state is loaded afresh;
// any other state is simply reloaded.
func (m *Manager) Reconcile(ctx context.Context, state State) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.reconcile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, live := WorkoutOf(state)
	if !live {
		return m.Load(ctx)
	}
	span.SetAttributes(attribute.String("session.id", workout.Session().ID))

	stored, err := m.store.GetSession(ctx, workout.Session().ID)
	switch {
	case errors.Is(err, repo.ErrSessionNotFound):
	case err != nil:
		return state, fmt.Errorf("get session: %w", err)
	case stored.IsOpen():
		return state, nil
	}
	return m.abandon(ctx, workout)
}

// closedInStore reports whether a store error means the workout's session is
// no longer open there.
func closedInStore(err error) bool {
	return errors.Is(err, repo.ErrSessionClosed) || errors.Is(err, repo.ErrSessionNotFound)
}

// abandon drops a workout whose session the store no longer holds open.
func (m *Manager) abandon(ctx context.Context, workout *Workout) (State, error) {
	workout.close()
	m.countTransition("abandoned")
	log.Warnf("session %s was closed outside the workout, reloading", workout.Session().ID)
	return m.Load(ctx)
}

// Start opens a new live session. The store must not hold an open one.
func (m *Manager) Start(ctx context.Context, state State) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	switch state.(type) {
	case Idle, Ended, Discarded:
	default:
		return state, invalidTransition(state, KindActive)
	}

	open, err := m.store.GetOpenSessions(ctx)
	if err != nil {
		return state, fmt.Errorf("get open sessions: %w", err)
	}
	if len(open) > 0 {
		return state, ErrOpenSessionExists
	}

	session := repo.Session{
		ID:        m.newID(),
		StartTime: m.clock(),
		Labels:    []string{},
		Source:    repo.SourceLive,
	}
	if err := m.store.InsertSession(ctx, session); err != nil {
		return state, fmt.Errorf("insert session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	m.countTransition("started")
	log.Infof("session %s started", session.ID)

	return Active{Workout: m.workout(session, nil)}, nil
}

// Resume turns the pending session into the active one, with its already
// persisted exercises. Nothing is written.
func (m *Manager) Resume(ctx context.Context, state State) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.resume")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	pending, ok := state.(Pending)
	if !ok {
		return state, invalidTransition(state, KindActive)
	}
	span.SetAttributes(attribute.String("session.id", pending.Session.ID))

	exercises, err := m.store.GetExercisesForSession(ctx, pending.Session.ID)
	if err != nil {
		return state, fmt.Errorf("get session exercises: %w", err)
	}

	m.countTransition("resumed")
	log.Infof("session %s resumed with %d exercises", pending.Session.ID, len(exercises))

	return Active{Workout: m.workout(pending.Session, exercises)}, nil
}

func (m *Manager) workout(session repo.Session, exercises []repo.Exercise) *Workout {
	return newWorkout(workoutParams{
		session:      session,
		exercises:    exercises,
		store:        m.store,
		tracker:      m.tracker,
		metrics:      m.metrics,
		clock:        m.clock,
		newID:        m.newID,
		restSeconds:  m.restSeconds,
		tickInterval: m.tickInterval,
	})
}

// DiscardPending closes the pending session as discarded.
func (m *Manager) DiscardPending(ctx context.Context, state State) (State, error) {
	pending, ok := state.(Pending)
	if !ok {
		return state, invalidTransition(state, KindDiscarded)
	}

	discarded, err := m.discard(ctx, pending.Session)
	if err != nil {
		return state, err
	}
	return Discarded{Session: discarded}, nil
}

func (m *Manager) discard(ctx context.Context, session repo.Session) (_ repo.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.discard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))

	now := m.clock()
	if err := m.store.UpdateSessionOnEnd(ctx, session.ID, now, repo.DiscardedNote, []string{}); err != nil {
		return session, fmt.Errorf("discard session: %w", err)
	}

	session.EndTime = &now
	session.Note = repo.DiscardedNote
	session.Labels = []string{}

	m.countTransition("discarded")
	log.Infof("session %s discarded", session.ID)
	return session, nil
}

// SetNote keeps the session note in memory until the session is confirmed.
func (m *Manager) SetNote(state State, note string) error {
	workout, ok := WorkoutOf(state)
	if !ok {
		return invalidTransition(state, KindActive)
	}
	note = strings.TrimSpace(note)
	if note == repo.DiscardedNote {
		return ErrReservedNote
	}
	workout.setNote(note)
	return nil
}

// RequestEnd moves to label review. A running rest is forfeited and the
// labels are inferred from the exercises persisted in this session.
func (m *Manager) RequestEnd(state State) (State, error) {
	active, ok := state.(Active)
	if !ok || active.Workout == nil {
		return state, invalidTransition(state, KindLabelConfirmation)
	}

	active.Workout.forfeitRest()

	exercises := active.Workout.Exercises()
	names := make([]string, 0, len(exercises))
	for _, e := range exercises {
		names = append(names, e.Name)
	}

	return LabelConfirmation{
		Workout:      active.Workout,
		Confirmation: labels.NewConfirmation(labels.Infer(m.lookup, names)),
	}, nil
}

// Back leaves label review; label edits are dropped.
func (m *Manager) Back(state State) (State, error) {
	confirming, ok := state.(LabelConfirmation)
	if !ok {
		return state, invalidTransition(state, KindActive)
	}
	return Active{Workout: confirming.Workout}, nil
}

// Confirm ends the session with the selected labels and the session note.
// On a store error the state is returned unchanged, unless the store already
// closed the session: then the workout is dropped and the store reloaded.
func (m *Manager) Confirm(ctx context.Context, state State) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.confirm")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	confirming, ok := state.(LabelConfirmation)
	if !ok || confirming.Workout == nil || confirming.Confirmation == nil {
		return state, invalidTransition(state, KindEnded)
	}
	if !confirming.Confirmation.CanConfirm() {
		return state, ErrNoLabelsSelected
	}

	session := confirming.Workout.Session()
	note := confirming.Workout.Note()
	if note == repo.DiscardedNote {
		return state, ErrReservedNote
	}
	selected := confirming.Confirmation.Selected()
	span.SetAttributes(attribute.String("session.id", session.ID))

	now := m.clock()
	if err := m.store.UpdateSessionOnEnd(ctx, session.ID, now, note, selected); err != nil {
		if closedInStore(err) {
			return m.abandon(ctx, confirming.Workout)
		}
		return state, fmt.Errorf("end session: %w", err)
	}

	confirming.Workout.close()

	session.EndTime = &now
	session.Note = note
	session.Labels = selected

	m.countTransition("ended")
	log.Infof("session %s ended, labels %v", session.ID, selected)

	return Ended{Session: session}, nil
}

// Discard ends the session from label review as discarded.
func (m *Manager) Discard(ctx context.Context, state State) (State, error) {
	confirming, ok := state.(LabelConfirmation)
	if !ok || confirming.Workout == nil {
		return state, invalidTransition(state, KindDiscarded)
	}

	discarded, err := m.discard(ctx, confirming.Workout.Session())
	if err != nil {
		if closedInStore(err) {
			return m.abandon(ctx, confirming.Workout)
		}
		return state, err
	}
	confirming.Workout.close()

	return Discarded{Session: discarded}, nil
}

// Shutdown stops the scheduled tasks of the state's workout, if any.
func (m *Manager) Shutdown(state State) {
	if workout, ok := WorkoutOf(state); ok {
		workout.close()
	}
}
