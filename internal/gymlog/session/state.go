package session

import (
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/gymlog/labels"
	"github.com/2beens/gymlog/internal/gymlog/repo"
)

var (
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrNoLabelsSelected     = errors.New("at least one label must be selected")
	ErrReservedNote         = errors.New("note value is reserved")
	ErrOpenSessionExists    = errors.New("an open session already exists")
	ErrInvalidManualSession = errors.New("invalid manual session")
)

type Kind string

const (
	KindIdle              Kind = "idle"
	KindPending           Kind = "pending"
	KindActive            Kind = "active"
	KindLabelConfirmation Kind = "label_confirmation"
	KindEnded             Kind = "ended"
	KindDiscarded         Kind = "discarded"
)

// State is the lifecycle tag plus its payload. Every lifecycle operation
// takes the current State and returns the next one.
type State interface {
	Kind() Kind
	state()
}

// Idle: no open session.
type Idle struct{}

// Pending: an open session found in the store, not yet resumed.
type Pending struct {
	Session repo.Session
}

// Active: the session being logged against.
type Active struct {
	Workout *Workout
}

// LabelConfirmation: end requested, labels under review.
type LabelConfirmation struct {
	Workout      *Workout
	Confirmation *labels.Confirmation
}

type Ended struct {
	Session repo.Session
}

type Discarded struct {
	Session repo.Session
}

func (Idle) Kind() Kind              { return KindIdle }
func (Pending) Kind() Kind           { return KindPending }
func (Active) Kind() Kind            { return KindActive }
func (LabelConfirmation) Kind() Kind { return KindLabelConfirmation }
func (Ended) Kind() Kind             { return KindEnded }
func (Discarded) Kind() Kind         { return KindDiscarded }

func (Idle) state()              {}
func (Pending) state()           {}
func (Active) state()            {}
func (LabelConfirmation) state() {}
func (Ended) state()             {}
func (Discarded) state()         {}

func invalidTransition(from State, to Kind) error {
	kind := Kind("none")
	if from != nil {
		kind = from.Kind()
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, kind, to)
}

// WorkoutOf returns the live workout context of Active and LabelConfirmation states.
func WorkoutOf(state State) (*Workout, bool) {
	switch s := state.(type) {
	case Active:
		return s.Workout, s.Workout != nil
	case LabelConfirmation:
		return s.Workout, s.Workout != nil
	default:
		return nil, false
	}
}
