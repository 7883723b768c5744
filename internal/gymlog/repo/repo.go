package repo

import (
	"context"
	"time"
)

const (
	DefaultRecentSessions = 3
	MaxRecentSessions     = 10
)

// Repo is the persistent store contract. Both SqliteRepo and PsqlRepo
// implement it.
type Repo interface {
	InsertSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	GetAllSessions(ctx context.Context) ([]Session, error)
	GetOpenSession(ctx context.Context) (*Session, error)
	GetOpenSessions(ctx context.Context) ([]Session, error)
	GetRecentSessions(ctx context.Context, limit int) ([]Session, error)
	UpdateSessionOnEnd(ctx context.Context, id string, endTime time.Time, note string, labels []string) error
	DeleteSession(ctx context.Context, id string) error
	InsertManualSession(ctx context.Context, session Session, exercises []Exercise) error

	InsertExercise(ctx context.Context, exercise Exercise) error
	GetExercisesForSession(ctx context.Context, sessionID string) ([]Exercise, error)
	GetAllExercises(ctx context.Context) ([]Exercise, error)
	GetExerciseCountForSession(ctx context.Context, sessionID string) (int, error)
	GetLatestExerciseByName(ctx context.Context, name string) (*LatestExercise, error)

	ReplaceAll(ctx context.Context, snapshot Snapshot) error
}

var (
	_ Repo = (*SqliteRepo)(nil)
	_ Repo = (*PsqlRepo)(nil)
)

// ClampRecentLimit maps a requested limit onto [1, MaxRecentSessions],
// non-positive values meaning the default.
func ClampRecentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentSessions
	}
	if limit > MaxRecentSessions {
		return MaxRecentSessions
	}
	return limit
}

func validateSnapshot(snapshot Snapshot) error {
	sessionIDs := make(map[string]bool, len(snapshot.Sessions))
	for i := range snapshot.Sessions {
		s := snapshot.Sessions[i]
		if err := normalizeSession(&s); err != nil {
			return err
		}
		if sessionIDs[s.ID] {
			return ErrDuplicateID
		}
		sessionIDs[s.ID] = true
	}
	exerciseIDs := make(map[string]bool, len(snapshot.Exercises))
	for i := range snapshot.Exercises {
		e := snapshot.Exercises[i]
		if err := normalizeExercise(&e); err != nil {
			return err
		}
		if !sessionIDs[e.SessionID] {
			return ErrSessionNotFound
		}
		if exerciseIDs[e.ID] {
			return ErrDuplicateID
		}
		exerciseIDs[e.ID] = true
	}
	return nil
}
