package stats

import (
	"sort"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
)

type PersonalRecord struct {
	IsPR          bool    `json:"isPr"`
	HasHistory    bool    `json:"hasHistory"`
	PreviousMaxKg float64 `json:"previousMaxKg"`
	CurrentKg     float64 `json:"currentKg"`
	DeltaKg       float64 `json:"deltaKg"`
}

type recordKey struct {
	name string
	reps int
}

func keyOf(e repo.Exercise) recordKey {
	return recordKey{name: repo.NormalizeName(e.Name), reps: e.Reps}
}

// History is the record-eligible entries together with the start time of
// the session each one belongs to. Entries whose session is unknown are
// placed by their own start time.
type History struct {
	Exercises     []repo.Exercise
	SessionStarts map[string]time.Time
}

func NewHistory(exercises []repo.Exercise, sessions []repo.Session) History {
	starts := make(map[string]time.Time, len(sessions))
	for _, session := range sessions {
		starts[session.ID] = session.StartTime
	}
	return History{Exercises: exercises, SessionStarts: starts}
}

func (h History) sessionStart(e repo.Exercise) time.Time {
	if start, ok := h.SessionStarts[e.SessionID]; ok {
		return start
	}
	return e.StartTime
}

// sortBySession orders entries by their session start, then insertion time.
func (h History) sortBySession(exercises []repo.Exercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		a, b := h.sessionStart(exercises[i]), h.sessionStart(exercises[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return exercises[i].CreatedAt.Before(exercises[j].CreatedAt)
	})
}

// priorLifts returns the entries of the same (name, reps) pair from sessions
// that started before the current entry's session, oldest first.
func priorLifts(history History, current repo.Exercise) []repo.Exercise {
	key := keyOf(current)
	currentStart := history.sessionStart(current)
	found := make([]repo.Exercise, 0)
	for _, e := range history.Exercises {
		if e.SessionID == current.SessionID || keyOf(e) != key {
			continue
		}
		if !history.sessionStart(e).Before(currentStart) {
			continue
		}
		found = append(found, e)
	}
	history.sortBySession(found)
	return found
}

// DetectPersonalRecord compares the current weight against the best weight
// lifted for the same exercise and reps in earlier sessions. Only a strictly
// heavier lift is a record; a first-ever entry is not.
func DetectPersonalRecord(history History, current repo.Exercise) PersonalRecord {
	pr := PersonalRecord{
		CurrentKg: current.WeightKg,
	}

	previous := priorLifts(history, current)
	if len(previous) == 0 {
		return pr
	}

	pr.HasHistory = true
	pr.PreviousMaxKg = previous[0].WeightKg
	for _, e := range previous[1:] {
		if e.WeightKg > pr.PreviousMaxKg {
			pr.PreviousMaxKg = e.WeightKg
		}
	}

	if current.WeightKg > pr.PreviousMaxKg {
		pr.IsPR = true
		pr.DeltaKg = current.WeightKg - pr.PreviousMaxKg
	}
	return pr
}

// Trend is the weight series of the same (name, reps) pair up to and
// including the current entry.
func Trend(history History, current repo.Exercise) []float64 {
	previous := priorLifts(history, current)

	values := make([]float64, 0, len(previous)+1)
	for _, e := range previous {
		values = append(values, e.WeightKg)
	}
	return append(values, current.WeightKg)
}

// SortChronologically orders entries by start time, then insertion time.
func SortChronologically(exercises []repo.Exercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		a, b := exercises[i], exercises[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
