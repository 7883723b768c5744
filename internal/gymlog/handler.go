package gymlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/backup"
	"github.com/2beens/gymlog/internal/gymlog/labels"
	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/gymlog/session"
	"github.com/2beens/gymlog/internal/gymlog/stats"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=gymlog_test

type backupService interface {
	Snapshot(ctx context.Context) (repo.Snapshot, error)
	Sync(ctx context.Context) (time.Time, error)
	Restore(ctx context.Context) (repo.Snapshot, error)
	LastSync(ctx context.Context) (*time.Time, error)
}

type sessionRepo interface {
	GetSession(ctx context.Context, id string) (*repo.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type LabelsView struct {
	Inferred   []string `json:"inferred"`
	Selected   []string `json:"selected"`
	CanConfirm bool     `json:"canConfirm"`
}

// StateResponse is the JSON form of the lifecycle state.
type StateResponse struct {
	Kind    session.Kind         `json:"kind"`
	Session *repo.Session        `json:"session,omitempty"`
	Workout *session.WorkoutView `json:"workout,omitempty"`
	Labels  *LabelsView          `json:"labels,omitempty"`
}

type FinishExerciseResponse struct {
	State          StateResponse         `json:"state"`
	Exercise       repo.Exercise         `json:"exercise"`
	PersonalRecord *stats.PersonalRecord `json:"personalRecord"`
}

type HandlerParams struct {
	Manager *session.Manager
	Stats   *stats.Service
	Repo    sessionRepo
	Backups backupService
	Library *labels.Library
}

// Handler owns the current lifecycle state and serializes every transition
// on it.
type Handler struct {
	mu    sync.Mutex
	state session.State

	manager *session.Manager
	stats   *stats.Service
	repo    sessionRepo
	backups backupService
	library *labels.Library
}

// NewHandler loads the initial state from the store.
func NewHandler(ctx context.Context, params HandlerParams) (*Handler, error) {
	state, err := params.Manager.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}

	return &Handler{
		state:   state,
		manager: params.Manager,
		stats:   params.Stats,
		repo:    params.Repo,
		backups: params.Backups,
		library: params.Library,
	}, nil
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/session", handler.handleGetState).Methods("GET", "OPTIONS").Name("session-state")
	router.HandleFunc("/session/start", handler.handleStart).Methods("POST", "OPTIONS").Name("session-start")
	router.HandleFunc("/session/resume", handler.handleResume).Methods("POST", "OPTIONS").Name("session-resume")
	router.HandleFunc("/session/discard", handler.handleDiscard).Methods("POST", "OPTIONS").Name("session-discard")
	router.HandleFunc("/session/note", handler.handleNote).Methods("POST", "OPTIONS").Name("session-note")
	router.HandleFunc("/session/end", handler.handleEnd).Methods("POST", "OPTIONS").Name("session-end")
	router.HandleFunc("/session/labels/toggle", handler.handleToggleLabel).Methods("POST", "OPTIONS").Name("session-labels-toggle")
	router.HandleFunc("/session/confirm", handler.handleConfirm).Methods("POST", "OPTIONS").Name("session-confirm")
	router.HandleFunc("/session/back", handler.handleBack).Methods("POST", "OPTIONS").Name("session-back")

	router.HandleFunc("/session/exercise/start", handler.handleStartExercise).Methods("POST", "OPTIONS").Name("exercise-start")
	router.HandleFunc("/session/exercise/draft", handler.handleDraft).Methods("POST", "OPTIONS").Name("exercise-draft")
	router.HandleFunc("/session/exercise/set", handler.handleSaveSet).Methods("POST", "OPTIONS").Name("exercise-set")
	router.HandleFunc("/session/exercise/finish", handler.handleFinishExercise).Methods("POST", "OPTIONS").Name("exercise-finish")
	router.HandleFunc("/session/rest/cancel", handler.handleCancelRest).Methods("POST", "OPTIONS").Name("rest-cancel")

	router.HandleFunc("/history", handler.handleHistory).Methods("GET", "OPTIONS").Name("history")
	router.HandleFunc("/sessions/recent", handler.handleRecent).Methods("GET", "OPTIONS").Name("sessions-recent")
	router.HandleFunc("/sessions/manual", handler.handleManualSession).Methods("POST", "OPTIONS").Name("sessions-manual")
	router.HandleFunc("/sessions/{id}", handler.handleSessionDetails).Methods("GET", "OPTIONS").Name("session-details")
	router.HandleFunc("/sessions/{id}", handler.handleDeleteSession).Methods("DELETE", "OPTIONS").Name("session-delete")
	router.HandleFunc("/stats/pr/{sessionId}", handler.handleSessionPRs).Methods("GET", "OPTIONS").Name("stats-pr")
	router.HandleFunc("/stats/trend", handler.handleTrend).Methods("GET", "OPTIONS").Name("stats-trend")
	router.HandleFunc("/exercises/last", handler.handleLastTime).Methods("GET", "OPTIONS").Name("exercises-last")
	router.HandleFunc("/exercises/history", handler.handleExerciseHistory).Methods("GET", "OPTIONS").Name("exercises-history")
	router.HandleFunc("/library", handler.handleLibrary).Methods("GET", "OPTIONS").Name("library")

	router.HandleFunc("/backup/export", handler.handleExport).Methods("GET", "OPTIONS").Name("backup-export")
	router.HandleFunc("/backup/restore", handler.handleRestore).Methods("POST", "OPTIONS").Name("backup-restore")
	router.HandleFunc("/backup/last-sync", handler.handleLastSync).Methods("GET", "OPTIONS").Name("backup-last-sync")
}

// SetupSyncRoute registers the sync endpoint on its own subrouter so it can
// carry the rate limiter.
func (handler *Handler) SetupSyncRoute(router *mux.Router) {
	router.HandleFunc("/backup/sync", handler.handleSync).Methods("POST", "OPTIONS").Name("backup-sync")
}

// Shutdown stops the active workout's ticker.
func (handler *Handler) Shutdown() {
	handler.mu.Lock()
	defer handler.mu.Unlock()
	handler.manager.Shutdown(handler.state)
}

func stateResponse(state session.State) StateResponse {
	resp := StateResponse{Kind: state.Kind()}
	switch s := state.(type) {
	case session.Pending:
		resp.Session = &s.Session
	case session.Ended:
		resp.Session = &s.Session
	case session.Discarded:
		resp.Session = &s.Session
	case session.Active:
		view := s.Workout.View()
		resp.Workout = &view
	case session.LabelConfirmation:
		view := s.Workout.View()
		resp.Workout = &view
		resp.Labels = &LabelsView{
			Inferred:   s.Confirmation.Inferred(),
			Selected:   s.Confirmation.Selected(),
			CanConfirm: s.Confirmation.CanConfirm(),
		}
	}
	return resp
}

func errStatusCode(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrOpenSessionExists),
		errors.Is(err, repo.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoLabelsSelected),
		errors.Is(err, session.ErrReservedNote),
		errors.Is(err, session.ErrInvalidManualSession),
		errors.Is(err, backup.ErrInvalidSnapshot),
		errors.Is(err, repo.ErrInvalidExercise),
		errors.Is(err, repo.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, backup.ErrSyncNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, backup.ErrRemoteRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, action string, err error) {
	code := errStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Errorf("%s: %s", action, err)
	} else {
		log.Debugf("%s: %s", action, err)
	}
	http.Error(w, fmt.Sprintf("%s: %s", action, err), code)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// transition applies a lifecycle operation to the current state and writes
// the resulting state.
func (handler *Handler) transition(
	w http.ResponseWriter,
	action string,
	op func(state session.State) (session.State, error),
) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	next, err := op(handler.state)
	if err != nil {
		writeError(w, action, err)
		return
	}
	handler.state = next
	pkg.WriteJSON(w, stateResponse(next), http.StatusOK)
}

func (handler *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.state")
	defer span.End()

	// a live workout is kept unless the store closed its session meanwhile
	handler.transition(w, "reload", func(state session.State) (session.State, error) {
		return handler.manager.Reconcile(ctx, state)
	})
}

func (handler *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.start")
	defer span.End()

	handler.transition(w, "start session", func(state session.State) (session.State, error) {
		return handler.manager.Start(ctx, state)
	})
}

func (handler *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.resume")
	defer span.End()

	handler.transition(w, "resume session", func(state session.State) (session.State, error) {
		return handler.manager.Resume(ctx, state)
	})
}

func (handler *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.discard")
	defer span.End()

	handler.transition(w, "discard session", func(state session.State) (session.State, error) {
		if _, pending := state.(session.Pending); pending {
			return handler.manager.DiscardPending(ctx, state)
		}
		return handler.manager.Discard(ctx, state)
	})
}

type noteRequest struct {
	Note string `json:"note"`
}

func (handler *Handler) handleNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.transition(w, "set note", func(state session.State) (session.State, error) {
		return state, handler.manager.SetNote(state, req.Note)
	})
}

func (handler *Handler) handleEnd(w http.ResponseWriter, _ *http.Request) {
	handler.transition(w, "end session", handler.manager.RequestEnd)
}

func (handler *Handler) handleBack(w http.ResponseWriter, _ *http.Request) {
	handler.transition(w, "back", handler.manager.Back)
}

type labelRequest struct {
	Label string `json:"label"`
}

func (handler *Handler) handleToggleLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.transition(w, "toggle label", func(state session.State) (session.State, error) {
		confirming, ok := state.(session.LabelConfirmation)
		if !ok {
			return state, fmt.Errorf("%w: labels are edited only while confirming", session.ErrInvalidTransition)
		}
		confirming.Confirmation.Toggle(req.Label)
		return confirming, nil
	})
}

func (handler *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.confirm")
	defer span.End()

	handler.transition(w, "confirm session", func(state session.State) (session.State, error) {
		return handler.manager.Confirm(ctx, state)
	})
}

// activeWorkout runs op on the active workout. Exercise operations are only
// valid while Active.
func (handler *Handler) activeWorkout(w http.ResponseWriter, op func(workout *session.Workout) bool) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	active, ok := handler.state.(session.Active)
	if !ok || active.Workout == nil {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}
	if !op(active.Workout) {
		http.Error(w, "operation not allowed in the current exercise state", http.StatusConflict)
		return
	}
	pkg.WriteJSON(w, stateResponse(active), http.StatusOK)
}

type startExerciseRequest struct {
	Name string `json:"name"`
}

func (handler *Handler) handleStartExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.exercise.start")
	defer span.End()

	var req startExerciseRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "exercise name required", http.StatusBadRequest)
		return
	}

	handler.activeWorkout(w, func(workout *session.Workout) bool {
		return workout.StartExercise(ctx, req.Name)
	})
}

type draftRequest struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
	Note     string  `json:"note"`
}

func (handler *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Reps < 0 || req.WeightKg < 0 {
		http.Error(w, "reps and weight must not be negative", http.StatusBadRequest)
		return
	}

	handler.activeWorkout(w, func(workout *session.Workout) bool {
		return workout.SetDraft(req.Reps, req.WeightKg, req.Note)
	})
}

func (handler *Handler) handleSaveSet(w http.ResponseWriter, _ *http.Request) {
	handler.activeWorkout(w, func(workout *session.Workout) bool {
		return workout.SaveSet()
	})
}

func (handler *Handler) handleCancelRest(w http.ResponseWriter, _ *http.Request) {
	handler.activeWorkout(w, func(workout *session.Workout) bool {
		return workout.CancelRest()
	})
}

func (handler *Handler) handleFinishExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.exercise.finish")
	defer span.End()

	handler.mu.Lock()
	defer handler.mu.Unlock()

	active, ok := handler.state.(session.Active)
	if !ok || active.Workout == nil {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}

	exercise, finished, err := active.Workout.FinishExercise(ctx)
	if err != nil {
		writeError(w, "finish exercise", err)
		return
	}
	if !finished {
		http.Error(w, "no exercise with saved sets in progress", http.StatusConflict)
		return
	}

	resp := FinishExerciseResponse{
		State:    stateResponse(active),
		Exercise: exercise,
	}
	pr, err := handler.stats.CheckPersonalRecord(ctx, exercise)
	if err != nil {
		// the entry is already stored; the record check is best effort
		log.Errorf("check personal record for %s: %s", exercise.Name, err)
	} else {
		resp.PersonalRecord = &pr
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %w", err)
	}
	return limit, nil
}

func (handler *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.history")
	defer span.End()

	limit, err := limitParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	history, err := handler.stats.History(ctx, limit)
	if err != nil {
		writeError(w, "get history", err)
		return
	}
	pkg.WriteJSON(w, history, http.StatusOK)
}

func (handler *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.recent")
	defer span.End()

	limit, err := limitParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recent, err := handler.stats.Recent(ctx, limit)
	if err != nil {
		writeError(w, "get recent sessions", err)
		return
	}
	pkg.WriteJSON(w, recent, http.StatusOK)
}

func (handler *Handler) handleSessionDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.session-details")
	defer span.End()

	details, err := handler.stats.SessionDetails(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "get session details", err)
		return
	}
	pkg.WriteJSON(w, details, http.StatusOK)
}

func (handler *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.session-delete")
	defer span.End()

	id := mux.Vars(r)["id"]

	handler.mu.Lock()
	defer handler.mu.Unlock()

	existing, err := handler.repo.GetSession(ctx, id)
	if err != nil {
		writeError(w, "delete session", err)
		return
	}
	if existing.IsOpen() {
		http.Error(w, "delete session: session is still open", http.StatusConflict)
		return
	}

	if err := handler.repo.DeleteSession(ctx, id); err != nil {
		writeError(w, "delete session", err)
		return
	}
	handler.stats.InvalidateAll()

	log.Infof("session %s deleted", id)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, []byte(`{"deleted":true}`), http.StatusOK)
}

type manualSessionRequest struct {
	Date      string                   `json:"date"`
	Labels    []string                 `json:"labels"`
	Note      string                   `json:"note"`
	Exercises []session.ManualExercise `json:"exercises"`
}

// parseManualDate accepts a calendar day (noon UTC) or a full RFC3339 time.
func parseManualDate(raw string) (time.Time, error) {
	if day, err := time.Parse(time.DateOnly, raw); err == nil {
		return day.Add(12 * time.Hour), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (handler *Handler) handleManualSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.session-manual")
	defer span.End()

	var req manualSessionRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := parseManualDate(req.Date)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid date [%s]", req.Date), http.StatusBadRequest)
		return
	}

	created, err := handler.manager.InsertManual(ctx, session.ManualSession{
		Date:      date,
		Labels:    req.Labels,
		Note:      req.Note,
		Exercises: req.Exercises,
	})
	if err != nil {
		writeError(w, "insert manual session", err)
		return
	}
	handler.stats.InvalidateAll()

	pkg.WriteJSON(w, created, http.StatusCreated)
}

func (handler *Handler) handleSessionPRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.session-prs")
	defer span.End()

	records, err := handler.stats.SessionPRs(ctx, mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, "get session records", err)
		return
	}
	pkg.WriteJSON(w, records, http.StatusOK)
}

func (handler *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.trend")
	defer span.End()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	reps, err := strconv.Atoi(r.URL.Query().Get("reps"))
	if err != nil || reps <= 0 {
		http.Error(w, "invalid reps", http.StatusBadRequest)
		return
	}

	trend, err := handler.stats.TrendFor(ctx, name, reps)
	if err != nil {
		writeError(w, "get trend", err)
		return
	}
	pkg.WriteJSON(w, trend, http.StatusOK)
}

func (handler *Handler) handleLastTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.last-time")
	defer span.End()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	latest, err := handler.stats.LastTime(ctx, name)
	if err != nil {
		writeError(w, "get last time", err)
		return
	}
	if latest == nil {
		http.Error(w, "exercise never logged", http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, latest, http.StatusOK)
}

func (handler *Handler) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.exercise-history")
	defer span.End()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	entries, err := handler.stats.ExerciseHistory(ctx, name)
	if err != nil {
		writeError(w, "get exercise history", err)
		return
	}
	pkg.WriteJSON(w, entries, http.StatusOK)
}

func (handler *Handler) handleLibrary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pkg.WriteJSON(w, handler.library.Search(query.Get("q"), query.Get("muscle")), http.StatusOK)
}

func (handler *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.backup.export")
	defer span.End()

	snapshot, err := handler.backups.Snapshot(ctx)
	if err != nil {
		writeError(w, "export", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.ExportFileName))
	pkg.WriteJSON(w, snapshot, http.StatusOK)
}

type syncResponse struct {
	SyncedAt time.Time `json:"syncedAt"`
}

func (handler *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.backup.sync")
	defer span.End()

	syncedAt, err := handler.backups.Sync(ctx)
	if err != nil {
		writeError(w, "sync", err)
		return
	}
	pkg.WriteJSON(w, syncResponse{SyncedAt: syncedAt}, http.StatusOK)
}

type restoreResponse struct {
	Sessions  int           `json:"sessions"`
	Exercises int           `json:"exercises"`
	State     StateResponse `json:"state"`
}

func (handler *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.backup.restore")
	defer span.End()

	handler.mu.Lock()
	defer handler.mu.Unlock()

	if _, live := session.WorkoutOf(handler.state); live {
		http.Error(w, "restore: finish the current session first", http.StatusConflict)
		return
	}

	snapshot, err := handler.backups.Restore(ctx)
	if err != nil {
		writeError(w, "restore", err)
		return
	}

	state, err := handler.manager.Load(ctx)
	if err != nil {
		writeError(w, "reload after restore", err)
		return
	}
	handler.state = state

	pkg.WriteJSON(w, restoreResponse{
		Sessions:  len(snapshot.Sessions),
		Exercises: len(snapshot.Exercises),
		State:     stateResponse(state),
	}, http.StatusOK)
}

type lastSyncResponse struct {
	LastSync *time.Time `json:"lastSync"`
}

func (handler *Handler) handleLastSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymlog.backup.last-sync")
	defer span.End()

	lastSync, err := handler.backups.LastSync(ctx)
	if err != nil {
		writeError(w, "last sync", err)
		return
	}
	pkg.WriteJSON(w, lastSyncResponse{LastSync: lastSync}, http.StatusOK)
}
