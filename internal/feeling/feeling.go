package feeling

// Kind names the internal events that move the mood scalars.
type Kind string

const (
	MemoryStored  Kind = "memory_stored"
	RecallHit     Kind = "recall_hit"
	RecallMiss    Kind = "recall_miss"
	GoalCompleted Kind = "goal_completed"
	Failure       Kind = "failure"
)

// rewards carries the baseline reward signal per event kind.
var rewards = map[Kind]float64{
	MemoryStored:  0.5,
	RecallHit:     1.0,
	RecallMiss:    -0.5,
	GoalCompleted: 2.0,
	Failure:       -1.0,
}

// Event is one reward signal. Reward is positive for good outcomes and
// negative for setbacks.
type Event struct {
	Kind   Kind    `json:"kind"`
	Reward float64 `json:"reward"`
}

// On builds the canonical event for a kind.
func On(kind Kind) Event {
	return Event{Kind: kind, Reward: rewards[kind]}
}

// State holds the mood scalars. Energy runs 0 to 100; the others run
// 0 to 1. State is a value; Update returns a new one and never mutates.
type State struct {
	Energy      float64 `json:"energy"`
	Calm        float64 `json:"calm"`
	Curiosity   float64 `json:"curiosity"`
	Frustration float64 `json:"frustration"`
}

// Initial returns the starting mood.
func Initial() State {
	return State{
		Energy:      75.0,
		Calm:        0.3,
		Curiosity:   0.6,
		Frustration: 0.1,
	}
}

// Update applies one event to the state. Energy and curiosity track the
// reward directly; frustration builds on setbacks and relaxes on wins;
// calm slowly approaches the opposite of frustration.
func Update(s State, ev Event) State {
	r := ev.Reward

	s.Energy = clamp(s.Energy+2.0*r, 0, 100)
	s.Curiosity = clamp(s.Curiosity+0.1*r, 0, 1)

	if r < 0 {
		s.Frustration = clamp(s.Frustration-0.15*r, 0, 1)
	} else {
		s.Frustration = clamp(s.Frustration-0.05*r, 0, 1)
	}

	s.Calm = clamp(s.Calm+0.1*((1-s.Frustration)-s.Calm), 0, 1)
	return s
}

// Mood reduces the scalars to a single label.
func (s State) Mood() string {
	switch {
	case s.Energy > 80:
		return "energetic"
	case s.Curiosity > 0.7:
		return "curious"
	case s.Frustration > 0.7:
		return "frustrated"
	case s.Energy < 30:
		return "tired"
	default:
		return "calm"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
