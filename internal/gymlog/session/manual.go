package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type ManualExercise struct {
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
	Note     string  `json:"note"`
}

// ManualSession is a workout logged after the fact.
type ManualSession struct {
	Date      time.Time        `json:"date"`
	Labels    []string         `json:"labels"`
	Note      string           `json:"note"`
	Exercises []ManualExercise `json:"exercises"`
}

// InsertManual back-fills a finished session and its exercises in one
// transaction. The session starts and ends at Date; exercise i is stamped
// Date + i minutes.
func (m *Manager) InsertManual(ctx context.Context, manual ManualSession) (_ *repo.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.insert-manual")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionLabels := make([]string, 0, len(manual.Labels))
	seen := make(map[string]bool)
	for _, label := range manual.Labels {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		sessionLabels = append(sessionLabels, label)
	}
	if len(sessionLabels) == 0 {
		return nil, ErrNoLabelsSelected
	}

	note := strings.TrimSpace(manual.Note)
	if note == repo.DiscardedNote {
		return nil, ErrReservedNote
	}
	if manual.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing date", ErrInvalidManualSession)
	}
	if len(manual.Exercises) == 0 {
		return nil, fmt.Errorf("%w: no exercises", ErrInvalidManualSession)
	}

	date := manual.Date
	session := repo.Session{
		ID:        m.newID(),
		StartTime: date,
		EndTime:   &date,
		Labels:    sessionLabels,
		Note:      note,
		Source:    repo.SourceManual,
	}
	span.SetAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("exercises", len(manual.Exercises)),
	)

	exercises := make([]repo.Exercise, 0, len(manual.Exercises))
	for idx, ex := range manual.Exercises {
		name := strings.TrimSpace(ex.Name)
		if name == "" || ex.Sets < 1 || ex.Reps < 0 || ex.WeightKg < 0 {
			return nil, fmt.Errorf("%w: exercise %d", ErrInvalidManualSession, idx)
		}
		createdAt := date.Add(time.Duration(idx) * time.Minute)
		exercises = append(exercises, repo.Exercise{
			ID:        fmt.Sprintf("%s-ex-%d", session.ID, idx),
			SessionID: session.ID,
			Name:      name,
			Sets:      ex.Sets,
			Reps:      ex.Reps,
			WeightKg:  ex.WeightKg,
			StartTime: createdAt,
			EndTime:   createdAt,
			Note:      strings.TrimSpace(ex.Note),
			CreatedAt: createdAt,
		})
	}

	if err := m.store.InsertManualSession(ctx, session, exercises); err != nil {
		return nil, fmt.Errorf("insert manual session: %w", err)
	}

	if m.tracker != nil {
		for _, e := range exercises {
			m.tracker.Invalidate(e.Name)
		}
	}
	m.countTransition("manual")
	log.Infof("manual session %s logged for %s with %d exercises", session.ID, date.Format(time.DateOnly), len(exercises))

	return &session, nil
}
