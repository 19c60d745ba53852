package playback

import (
	"time"

	"spirare/internal/content"
)

// State is the machine's top-level state.
type State int

const (
	NotStarted State = iota
	Running
	Paused
	FinalStage
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case FinalStage:
		return "final_stage"
	default:
		return "unknown"
	}
}

// Active reports whether a session is in progress.
func (s State) Active() bool {
	return s == Running || s == Paused || s == FinalStage
}

// Snapshot is an immutable view of the machine after a transition.
type Snapshot struct {
	State        State
	Category     string
	Title        string
	StageIndex   int
	StageCount   int
	SubstepIndex int
	SubstepCount int
	Stage        content.Stage
	StageTitle   string
	Practice     string
	Text         string
	Remaining    time.Duration
	Total        time.Duration
	TrackSrc     string
}

// Progress returns the elapsed fraction of the current substep in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Total <= 0 {
		if s.State == FinalStage {
			return 1
		}
		return 0
	}
	return 1 - float64(s.Remaining)/float64(s.Total)
}
