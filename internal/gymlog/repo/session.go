package repo

import (
	"errors"
	"strings"
	"time"
)

// DiscardedNote marks a session the user threw away. Such sessions stay in
// the store as audit rows but are hidden from history and stats.
const DiscardedNote = "__DISCARDED__"

type Source string

const (
	SourceLive   Source = "live"
	SourceManual Source = "manual"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already ended")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrInvalidExercise = errors.New("invalid exercise entry")
	ErrInvalidSession  = errors.New("invalid session record")
)

type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Labels    []string   `json:"labels"`
	Note      string     `json:"note"`
	Source    Source     `json:"source"`
}

func (s Session) IsOpen() bool {
	return s.EndTime == nil
}

func (s Session) IsDiscarded() bool {
	return s.Note == DiscardedNote
}

// Duration is end - start for ended sessions, now - start while open.
func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

// SessionSummary is a history row: the session plus how many exercises it holds.
type SessionSummary struct {
	Session
	ExerciseCount int           `json:"exerciseCount"`
	Duration      time.Duration `json:"durationNs"`
}

func normalizeSession(s *Session) error {
	if strings.TrimSpace(s.ID) == "" || s.StartTime.IsZero() {
		return ErrInvalidSession
	}
	if s.Source == "" {
		s.Source = SourceLive
	}
	if s.Labels == nil {
		s.Labels = []string{}
	}
	return nil
}
