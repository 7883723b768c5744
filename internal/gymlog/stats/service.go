package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	lastTimeCacheSize   = 2 * 1024 * 1024
	lastTimeCacheExpire = 60 * 60 // one hour, in seconds

	SparklineWidth  = 100
	SparklineHeight = 24
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=stats_test

type statsRepo interface {
	GetSession(ctx context.Context, id string) (*repo.Session, error)
	GetAllSessions(ctx context.Context) ([]repo.Session, error)
	GetRecentSessions(ctx context.Context, limit int) ([]repo.Session, error)
	GetAllExercises(ctx context.Context) ([]repo.Exercise, error)
	GetExercisesForSession(ctx context.Context, sessionID string) ([]repo.Exercise, error)
	GetExerciseCountForSession(ctx context.Context, sessionID string) (int, error)
	GetLatestExerciseByName(ctx context.Context, name string) (*repo.LatestExercise, error)
}

// Service is the read side over the store: history, records, trends and the
// cached "last time" lookup.
type Service struct {
	repo    statsRepo
	cache   *freecache.Cache
	metrics *metrics.Manager
	now     func() time.Time
}

func NewService(repo statsRepo, metricsManager *metrics.Manager, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    repo,
		cache:   freecache.NewCache(lastTimeCacheSize),
		metrics: metricsManager,
		now:     now,
	}
}

type ExerciseRecord struct {
	Exercise       repo.Exercise  `json:"exercise"`
	PersonalRecord PersonalRecord `json:"personalRecord"`
	Trend          []float64      `json:"trend"`
	Sparkline      []Point        `json:"sparkline"`
}

type SessionDetails struct {
	Session    repo.Session     `json:"session"`
	Exercises  []repo.Exercise  `json:"exercises"`
	Aggregates Aggregates       `json:"aggregates"`
	Records    []ExerciseRecord `json:"records"`
}

// HistoryEntry is one past entry of an exercise with the session it was
// logged in and how long it took.
type HistoryEntry struct {
	repo.Exercise
	SessionStartTime time.Time     `json:"sessionStartTime"`
	Elapsed          time.Duration `json:"elapsedNs"`
}

type TrendSeries struct {
	Name      string    `json:"name"`
	Reps      int       `json:"reps"`
	Values    []float64 `json:"values"`
	Sparkline []Point   `json:"sparkline"`
}

func lastTimeCacheKey(name string) []byte {
	return []byte("last::" + repo.NormalizeName(name))
}

// LastTime returns the most recent entry logged under the given name, or nil.
func (s *Service) LastTime(ctx context.Context, name string) (_ *repo.LatestExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.last-time")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if repo.NormalizeName(name) == "" {
		return nil, nil
	}
	span.SetAttributes(attribute.String("exercise.name", repo.NormalizeName(name)))

	cacheKey := lastTimeCacheKey(name)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		latest := &repo.LatestExercise{}
		if err := json.Unmarshal(cached, latest); err == nil {
			return latest, nil
		} else {
			log.Errorf("unmarshal cached last time for %s: %s", name, err)
		}
	}

	latest, err := s.repo.GetLatestExerciseByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get latest exercise: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	latestJson, err := json.Marshal(latest)
	if err != nil {
		log.Errorf("marshal last time for %s: %s", name, err)
		return latest, nil
	}
	if err := s.cache.Set(cacheKey, latestJson, lastTimeCacheExpire); err != nil {
		log.Errorf("set last time cache for %s: %s", name, err)
	}

	return latest, nil
}

// Invalidate drops the cached lookup for one exercise name.
func (s *Service) Invalidate(name string) {
	s.cache.Del(lastTimeCacheKey(name))
}

func (s *Service) InvalidateAll() {
	s.cache.Clear()
}

// History lists non-discarded sessions, newest first, with exercise counts.
// A non-positive limit means no limit.
func (s *Service) History(ctx context.Context, limit int) (_ []repo.SessionSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.repo.GetAllSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all sessions: %w", err)
	}

	return s.summarize(ctx, sessions, limit)
}

// Recent is the short "latest sessions" list, limit clamped to [1, 10].
func (s *Service) Recent(ctx context.Context, limit int) (_ []repo.SessionSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.repo.GetRecentSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}

	return s.summarize(ctx, sessions, 0)
}

func (s *Service) summarize(ctx context.Context, sessions []repo.Session, limit int) ([]repo.SessionSummary, error) {
	now := s.now()
	summaries := make([]repo.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		if session.IsDiscarded() {
			continue
		}
		if limit > 0 && len(summaries) >= limit {
			break
		}
		count, err := s.repo.GetExerciseCountForSession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("count exercises for %s: %w", session.ID, err)
		}
		summaries = append(summaries, repo.SessionSummary{
			Session:       session,
			ExerciseCount: count,
			Duration:      session.Duration(now),
		})
	}
	return summaries, nil
}

// historyExercises returns every exercise of non-discarded sessions.
func (s *Service) historyExercises(ctx context.Context) (History, error) {
	sessions, err := s.repo.GetAllSessions(ctx)
	if err != nil {
		return History{}, fmt.Errorf("get all sessions: %w", err)
	}
	kept := make([]repo.Session, 0, len(sessions))
	discarded := make(map[string]bool)
	for _, session := range sessions {
		if session.IsDiscarded() {
			discarded[session.ID] = true
			continue
		}
		kept = append(kept, session)
	}

	all, err := s.repo.GetAllExercises(ctx)
	if err != nil {
		return History{}, fmt.Errorf("get all exercises: %w", err)
	}
	exercises := make([]repo.Exercise, 0, len(all))
	for _, e := range all {
		if !discarded[e.SessionID] {
			exercises = append(exercises, e)
		}
	}
	return NewHistory(exercises, kept), nil
}

// SessionPRs runs record detection and the trend series for every entry of a session.
func (s *Service) SessionPRs(ctx context.Context, sessionID string) (_ []ExerciseRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.session-prs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sessionID))

	exercises, err := s.repo.GetExercisesForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session exercises: %w", err)
	}
	history, err := s.historyExercises(ctx)
	if err != nil {
		return nil, err
	}

	return buildRecords(history, exercises), nil
}

func buildRecords(history History, exercises []repo.Exercise) []ExerciseRecord {
	records := make([]ExerciseRecord, 0, len(exercises))
	for _, e := range exercises {
		trend := Trend(history, e)
		records = append(records, ExerciseRecord{
			Exercise:       e,
			PersonalRecord: DetectPersonalRecord(history, e),
			Trend:          trend,
			Sparkline:      Sparkline(trend, SparklineWidth, SparklineHeight),
		})
	}
	return records
}

// CheckPersonalRecord is run for a freshly persisted entry.
func (s *Service) CheckPersonalRecord(ctx context.Context, exercise repo.Exercise) (_ PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.check-pr")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	history, err := s.historyExercises(ctx)
	if err != nil {
		return PersonalRecord{}, err
	}

	pr := DetectPersonalRecord(history, exercise)
	if pr.IsPR {
		log.Infof("new personal record: %s x%d @ %.2f kg (+%.2f)", exercise.Name, exercise.Reps, pr.CurrentKg, pr.DeltaKg)
		if s.metrics != nil {
			s.metrics.CounterPersonalRecords.Inc()
		}
	}
	return pr, nil
}

func (s *Service) SessionDetails(ctx context.Context, sessionID string) (_ *SessionDetails, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.session-details")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sessionID))

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.repo.GetExercisesForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session exercises: %w", err)
	}
	history, err := s.historyExercises(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionDetails{
		Session:    *session,
		Exercises:  exercises,
		Aggregates: SessionAggregates(*session, exercises, s.now()),
		Records:    buildRecords(history, exercises),
	}, nil
}

// TrendFor is the whole-history weight series of one (name, reps) pair.
func (s *Service) TrendFor(ctx context.Context, name string, reps int) (_ *TrendSeries, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.trend")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	history, err := s.historyExercises(ctx)
	if err != nil {
		return nil, err
	}

	key := recordKey{name: repo.NormalizeName(name), reps: reps}
	matching := make([]repo.Exercise, 0)
	for _, e := range history.Exercises {
		if keyOf(e) == key {
			matching = append(matching, e)
		}
	}
	history.sortBySession(matching)

	values := make([]float64, 0, len(matching))
	for _, e := range matching {
		values = append(values, e.WeightKg)
	}

	return &TrendSeries{
		Name:      name,
		Reps:      reps,
		Values:    values,
		Sparkline: Sparkline(values, SparklineWidth, SparklineHeight),
	}, nil
}

// ExerciseHistory lists every entry of an exercise name across non-discarded
// sessions, newest first.
func (s *Service) ExerciseHistory(ctx context.Context, name string) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.exercise-history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.name", name))

	history, err := s.historyExercises(ctx)
	if err != nil {
		return nil, err
	}

	normalized := repo.NormalizeName(name)
	matching := make([]repo.Exercise, 0)
	for _, e := range history.Exercises {
		if repo.NormalizeName(e.Name) == normalized {
			matching = append(matching, e)
		}
	}
	history.sortBySession(matching)

	entries := make([]HistoryEntry, 0, len(matching))
	for i := len(matching) - 1; i >= 0; i-- {
		e := matching[i]
		entries = append(entries, HistoryEntry{
			Exercise:         e,
			SessionStartTime: history.sessionStart(e),
			Elapsed:          nonNegative(e.EndTime.Sub(e.StartTime)),
		})
	}
	return entries, nil
}
