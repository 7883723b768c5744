package session_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/gymlog/session"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startSession(t *testing.T, env *testEnv) session.Active {
	t.Helper()
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	env.store.EXPECT().InsertSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s repo.Session) error {
			assert.Equal(t, repo.SourceLive, s.Source)
			assert.Nil(t, s.EndTime)
			assert.Empty(t, s.Labels)
			assert.Empty(t, s.Note)
			return nil
		},
	)

	state, err := env.manager.Start(context.Background(), session.Idle{})
	require.NoError(t, err)
	active, ok := state.(session.Active)
	require.True(t, ok)
	return active
}

func TestManager_EndToEnd(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	w := active.Workout
	assert.Equal(t, session.KindActive, active.Kind())
	assert.True(t, t0.Equal(w.Session().StartTime))

	require.True(t, w.StartExercise(ctx, "Squat"))
	require.True(t, w.SetDraft(5, 100, ""))
	require.True(t, w.SaveSet())
	env.tick(w, 60)
	require.True(t, w.SaveSet()) // finalizes 60s
	env.tick(w, 45)
	env.clock.Advance(10*time.Minute - 105*time.Second)

	var persisted repo.Exercise
	env.store.EXPECT().InsertExercise(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e repo.Exercise) error {
			persisted = e
			return nil
		},
	)
	entry, finished, err := w.FinishExercise(ctx)
	require.NoError(t, err)
	require.True(t, finished)
	assert.Equal(t, entry, persisted)

	assert.Equal(t, "Squat", persisted.Name)
	assert.Equal(t, 2, persisted.Sets)
	assert.Equal(t, 5, persisted.Reps)
	assert.Equal(t, 100.0, persisted.WeightKg)
	assert.True(t, t0.Equal(persisted.StartTime))
	assert.True(t, t0.Add(10*time.Minute).Equal(persisted.EndTime))
	assert.Equal(t, 105, persisted.RestSeconds)
	assert.Equal(t, w.Session().ID, persisted.SessionID)

	// finishing starts a transition rest
	view := w.View()
	assert.Equal(t, session.ExerciseEmpty, view.ExerciseState)
	require.NotNil(t, view.Rest)
	assert.EqualValues(t, "transition", view.Rest.Kind)

	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)
	confirming, ok := state.(session.LabelConfirmation)
	require.True(t, ok)
	assert.Equal(t, []string{"Legs"}, confirming.Confirmation.Inferred())
	assert.Nil(t, w.View().Rest)

	endAt := env.clock.Now()
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), w.Session().ID, endAt, "", []string{"Legs"}).Return(nil)

	state, err = env.manager.Confirm(ctx, confirming)
	require.NoError(t, err)
	ended, ok := state.(session.Ended)
	require.True(t, ok)
	require.NotNil(t, ended.Session.EndTime)
	assert.Equal(t, []string{"Legs"}, ended.Session.Labels)
	assert.False(t, ended.Session.IsDiscarded())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterSessions.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterSessions.WithLabelValues("ended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterExercisesLogged))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CounterSetsSaved))

	// the workout is closed: no more logging against it
	assert.False(t, w.StartExercise(ctx, "Lunge"))
}

func TestManager_Load(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	state, err := env.manager.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.KindIdle, state.Kind())

	open := []repo.Session{
		{ID: "newest", StartTime: t0},
		{ID: "older", StartTime: t0.Add(-time.Hour)},
	}
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return(open, nil)
	state, err = env.manager.Load(ctx)
	require.NoError(t, err)
	pending, ok := state.(session.Pending)
	require.True(t, ok)
	assert.Equal(t, "newest", pending.Session.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterOpenSessionAnomaly))

	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return(nil, errors.New("db gone"))
	_, err = env.manager.Load(ctx)
	assert.ErrorContains(t, err, "db gone")
}

func TestManager_Start_Refusals(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{{ID: "open", StartTime: t0}}, nil)
	state, err := env.manager.Start(ctx, session.Idle{})
	assert.ErrorIs(t, err, session.ErrOpenSessionExists)
	assert.Equal(t, session.KindIdle, state.Kind())

	_, err = env.manager.Start(ctx, session.Pending{})
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	assert.ErrorContains(t, err, "pending -> active")

	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	env.store.EXPECT().InsertSession(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	state, err = env.manager.Start(ctx, session.Idle{})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, session.KindIdle, state.Kind())
}

func TestManager_Resume(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	pending := session.Pending{Session: repo.Session{ID: "s1", StartTime: t0.Add(-30 * time.Minute)}}
	logged := []repo.Exercise{{
		ID: "e1", SessionID: "s1", Name: "Romanian Deadlift", Sets: 3, Reps: 8, WeightKg: 80,
		StartTime: t0.Add(-25 * time.Minute), EndTime: t0.Add(-15 * time.Minute), CreatedAt: t0.Add(-15 * time.Minute),
	}}
	env.store.EXPECT().GetExercisesForSession(gomock.Any(), "s1").Return(logged, nil)

	state, err := env.manager.Resume(ctx, pending)
	require.NoError(t, err)
	active, ok := state.(session.Active)
	require.True(t, ok)
	defer env.manager.Shutdown(active)

	view := active.Workout.View()
	assert.Equal(t, "s1", view.Session.ID)
	require.Len(t, view.Exercises, 1)
	// the draft carries the last logged values
	assert.Equal(t, 8, view.Draft.Reps)
	assert.Equal(t, 80.0, view.Draft.WeightKg)
	assert.Equal(t, 30*time.Minute, view.Aggregates.SessionElapsed)

	state, err = env.manager.RequestEnd(active)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hamstrings"}, state.(session.LabelConfirmation).Confirmation.Inferred())

	_, err = env.manager.Resume(ctx, session.Idle{})
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestManager_DiscardPending(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	pending := session.Pending{Session: repo.Session{ID: "s1", StartTime: t0.Add(-time.Hour)}}
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), "s1", t0, repo.DiscardedNote, []string{}).Return(nil)

	state, err := env.manager.DiscardPending(ctx, pending)
	require.NoError(t, err)
	discarded, ok := state.(session.Discarded)
	require.True(t, ok)
	assert.True(t, discarded.Session.IsDiscarded())
	assert.Empty(t, discarded.Session.Labels)
	require.NotNil(t, discarded.Session.EndTime)
	assert.True(t, t0.Equal(*discarded.Session.EndTime))

	_, err = env.manager.DiscardPending(ctx, session.Idle{})
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestManager_Confirmation_Rules(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	require.NoError(t, env.manager.SetNote(active, "  felt strong "))
	assert.ErrorIs(t, env.manager.SetNote(active, repo.DiscardedNote), session.ErrReservedNote)
	assert.ErrorIs(t, env.manager.SetNote(session.Idle{}, "x"), session.ErrInvalidTransition)

	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)
	confirming := state.(session.LabelConfirmation)
	// nothing logged, nothing inferred: confirm is blocked
	assert.Empty(t, confirming.Confirmation.Inferred())
	state, err = env.manager.Confirm(ctx, confirming)
	assert.ErrorIs(t, err, session.ErrNoLabelsSelected)
	assert.Equal(t, session.KindLabelConfirmation, state.Kind())

	// back drops the label edits
	confirming.Confirmation.Add("Cardio")
	state, err = env.manager.Back(confirming)
	require.NoError(t, err)
	require.Equal(t, session.KindActive, state.Kind())
	state, err = env.manager.RequestEnd(state)
	require.NoError(t, err)
	confirming = state.(session.LabelConfirmation)
	assert.False(t, confirming.Confirmation.CanConfirm())

	confirming.Confirmation.Toggle("Cardio")
	sessionID := confirming.Workout.Session().ID

	// store failure keeps the confirmation state for a retry
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), sessionID, t0, "felt strong", []string{"Cardio"}).Return(errors.New("locked"))
	state, err = env.manager.Confirm(ctx, confirming)
	assert.ErrorContains(t, err, "locked")
	assert.Equal(t, session.KindLabelConfirmation, state.Kind())

	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), sessionID, t0, "felt strong", []string{"Cardio"}).Return(nil)
	state, err = env.manager.Confirm(ctx, state)
	require.NoError(t, err)
	ended := state.(session.Ended)
	assert.Equal(t, "felt strong", ended.Session.Note)

	_, err = env.manager.Back(ended)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	_, err = env.manager.RequestEnd(ended)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestManager_DiscardFromConfirmation(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	w := active.Workout
	require.True(t, w.StartExercise(ctx, "Squat"))
	require.True(t, w.SaveSet())
	env.tick(w, 10)

	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)

	sessionID := w.Session().ID
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), sessionID, t0.Add(10*time.Second), repo.DiscardedNote, []string{}).Return(nil)
	state, err = env.manager.Discard(ctx, state)
	require.NoError(t, err)
	discarded := state.(session.Discarded)
	assert.True(t, discarded.Session.IsDiscarded())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterSessions.WithLabelValues("discarded")))

	// a new session may start afterwards
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	env.store.EXPECT().InsertSession(gomock.Any(), gomock.Any()).Return(nil)
	state, err = env.manager.Start(ctx, discarded)
	require.NoError(t, err)
	env.manager.Shutdown(state)
}

func TestManager_BackgroundTicker(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMocksessionStore(ctrl)
	manager := session.NewManager(session.Params{
		Store:        store,
		RestSeconds:  1,
		TickInterval: time.Millisecond,
	})

	store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	store.EXPECT().InsertSession(gomock.Any(), gomock.Any()).Return(nil)
	state, err := manager.Start(context.Background(), session.Idle{})
	require.NoError(t, err)

	w := state.(session.Active).Workout
	require.True(t, w.StartExercise(context.Background(), "Plank"))
	require.True(t, w.SaveSet())

	assert.Eventually(t, func() bool {
		view := w.View()
		return view.Rest == nil && view.Current.RestSeconds == 1
	}, time.Second, time.Millisecond)

	manager.Shutdown(state)
	manager.Shutdown(state)
}

func TestManager_Reconcile(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	w := active.Workout
	sessionID := w.Session().ID
	require.True(t, w.StartExercise(ctx, "Squat"))

	// still open in the store: the live workout is kept
	env.store.EXPECT().GetSession(gomock.Any(), sessionID).Return(&repo.Session{ID: sessionID, StartTime: t0}, nil)
	state, err := env.manager.Reconcile(ctx, active)
	require.NoError(t, err)
	assert.Same(t, w, state.(session.Active).Workout)

	env.store.EXPECT().GetSession(gomock.Any(), sessionID).Return(nil, errors.New("disk I/O error"))
	state, err = env.manager.Reconcile(ctx, active)
	require.Error(t, err)
	assert.Equal(t, active, state)

	// ended elsewhere: the workout is dropped and the store read again
	end := t0.Add(time.Hour)
	env.store.EXPECT().GetSession(gomock.Any(), sessionID).Return(&repo.Session{ID: sessionID, StartTime: t0, EndTime: &end}, nil)
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	state, err = env.manager.Reconcile(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, session.Idle{}, state)
	assert.False(t, w.SaveSet())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterSessions.WithLabelValues("abandoned")))

	pending := repo.Session{ID: "other", StartTime: t0}
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{pending}, nil)
	state, err = env.manager.Reconcile(ctx, session.Idle{})
	require.NoError(t, err)
	assert.Equal(t, session.Pending{Session: pending}, state)
}

func TestManager_Reconcile_SessionDeleted(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)

	env.store.EXPECT().GetSession(gomock.Any(), active.Workout.Session().ID).Return(nil, repo.ErrSessionNotFound)
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	state, err = env.manager.Reconcile(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, session.KindIdle, state.Kind())
}

func TestManager_ConfirmAfterExternalEnd(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	w := active.Workout
	require.True(t, w.StartExercise(ctx, "Squat"))
	require.True(t, w.SaveSet())
	env.store.EXPECT().InsertExercise(gomock.Any(), gomock.Any()).Return(nil)
	_, finished, err := w.FinishExercise(ctx)
	require.NoError(t, err)
	require.True(t, finished)

	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)

	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), w.Session().ID, gomock.Any(), "", []string{"Legs"}).
		Return(repo.ErrSessionClosed)
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	state, err = env.manager.Confirm(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, session.Idle{}, state)
	assert.Zero(t, testutil.ToFloat64(env.metrics.CounterSessions.WithLabelValues("ended")))

	// nothing live is left behind, a new session can start
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{}, nil)
	env.store.EXPECT().InsertSession(gomock.Any(), gomock.Any()).Return(nil)
	state, err = env.manager.Start(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, session.KindActive, state.Kind())
	env.manager.Shutdown(state)
}

func TestManager_DiscardAfterExternalEnd(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	active := startSession(t, env)
	state, err := env.manager.RequestEnd(active)
	require.NoError(t, err)

	other := repo.Session{ID: "other", StartTime: t0.Add(time.Minute)}
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), active.Workout.Session().ID, gomock.Any(), repo.DiscardedNote, []string{}).
		Return(fmt.Errorf("wrapped: %w", repo.ErrSessionNotFound))
	env.store.EXPECT().GetOpenSessions(gomock.Any()).Return([]repo.Session{other}, nil)
	state, err = env.manager.Discard(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, session.Pending{Session: other}, state)

	// any other store failure still leaves the state as it was
	active = startSession(t, env)
	state, err = env.manager.RequestEnd(active)
	require.NoError(t, err)
	env.store.EXPECT().UpdateSessionOnEnd(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("database is locked"))
	next, err := env.manager.Discard(ctx, state)
	require.Error(t, err)
	assert.Equal(t, state, next)
	env.manager.Shutdown(next)
}
