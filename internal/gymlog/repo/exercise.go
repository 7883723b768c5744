package repo

import (
	"strings"
	"time"
)

type Exercise struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Name        string    `json:"name"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps"`
	WeightKg    float64   `json:"weightKg"`
	RestSeconds int       `json:"restSeconds"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LatestExercise is the most recent entry for a name, joined with the
// session it was logged in.
type LatestExercise struct {
	Exercise
	SessionStartTime time.Time `json:"sessionStartTime"`
	SessionLabels    []string  `json:"sessionLabels"`
}

// NormalizeName is the matching key for exercise names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeExercise enforces the persisted-entry invariants: a non-empty name,
// at least one set, and start/end/created timestamps.
func normalizeExercise(e *Exercise) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.ID == "" || e.SessionID == "" || e.Name == "" {
		return ErrInvalidExercise
	}
	if e.Sets < 1 || e.Reps < 0 || e.WeightKg < 0 || e.RestSeconds < 0 {
		return ErrInvalidExercise
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.StartTime.IsZero() {
		e.StartTime = e.CreatedAt
	}
	if e.EndTime.IsZero() {
		e.EndTime = e.StartTime
	}
	return nil
}
