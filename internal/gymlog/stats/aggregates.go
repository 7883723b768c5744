package stats

import (
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
)

type ExerciseTiming struct {
	ExerciseID  string        `json:"exerciseId"`
	Name        string        `json:"name"`
	Elapsed     time.Duration `json:"elapsedNs"`
	GapBefore   time.Duration `json:"gapBeforeNs"`
	RestSeconds int           `json:"restSeconds"`
}

type Aggregates struct {
	SessionElapsed   time.Duration    `json:"sessionElapsedNs"`
	Exercises        []ExerciseTiming `json:"exercises"`
	TotalRestSeconds int              `json:"totalRestSeconds"`
	TotalGap         time.Duration    `json:"totalGapNs"`
}

// SessionAggregates computes the timing view of a session. The gap before the
// first exercise is measured from the session start. Negative spans (clock
// skew, back-filled rows) count as zero.
func SessionAggregates(session repo.Session, exercises []repo.Exercise, now time.Time) Aggregates {
	ordered := make([]repo.Exercise, len(exercises))
	copy(ordered, exercises)
	SortChronologically(ordered)

	agg := Aggregates{
		SessionElapsed: session.Duration(now),
		Exercises:      make([]ExerciseTiming, 0, len(ordered)),
	}

	previousEnd := session.StartTime
	for _, e := range ordered {
		timing := ExerciseTiming{
			ExerciseID:  e.ID,
			Name:        e.Name,
			Elapsed:     nonNegative(e.EndTime.Sub(e.StartTime)),
			GapBefore:   nonNegative(e.StartTime.Sub(previousEnd)),
			RestSeconds: e.RestSeconds,
		}
		agg.Exercises = append(agg.Exercises, timing)
		agg.TotalRestSeconds += e.RestSeconds
		agg.TotalGap += timing.GapBefore
		previousEnd = e.EndTime
	}

	return agg
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
