package goal

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no goal has the requested id.
	ErrNotFound = errors.New("goal not found")

	// ErrLimit is returned when the active goal limit is reached.
	ErrLimit = errors.New("active goal limit reached")
)

const DefaultMaxActive = 5

// Goal is one tracked objective. Progress runs from 0 to 1; a goal
// completes when progress reaches 1 and then leaves the active set.
type Goal struct {
	ID          int       `json:"id"`
	Text        string    `json:"text"`
	Priority    int       `json:"priority"`
	Progress    float64   `json:"progress"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Tracker handles goal state. It provides thread-safe access and keeps
// completed goals around for history.
type Tracker struct {
	mu        sync.RWMutex
	maxActive int
	nextID    int
	goals     []*Goal
}

// NewTracker creates a tracker that allows up to maxActive unfinished
// goals at a time. Values below 1 fall back to DefaultMaxActive.
func NewTracker(maxActive int) *Tracker {
	if maxActive < 1 {
		maxActive = DefaultMaxActive
	}
	return &Tracker{
		maxActive: maxActive,
		nextID:    1,
		goals:     make([]*Goal, 0),
	}
}

// Add registers a new goal. It fails with ErrLimit when the active set
// is full, so completing or abandoning a goal is the only way forward.
func (t *Tracker) Add(text string, priority int) (Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Goal{}, errors.New("goal text is empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeCount() >= t.maxActive {
		return Goal{}, ErrLimit
	}

	now := time.Now()
	g := &Goal{
		ID:        t.nextID,
		Text:      text,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.nextID++
	t.goals = append(t.goals, g)
	return *g, nil
}

// SetProgress sets the absolute progress of a goal, clamped to [0, 1].
// Reaching 1 marks the goal done and stamps CompletedAt. Progress on an
// already completed goal is left untouched.
func (t *Tracker) SetProgress(id int, value float64) (Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := t.find(id)
	if g == nil {
		return Goal{}, ErrNotFound
	}
	if g.Done {
		return *g, nil
	}

	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	g.Progress = value
	g.UpdatedAt = time.Now()
	if value >= 1 {
		g.Done = true
		g.CompletedAt = g.UpdatedAt
	}
	return *g, nil
}

// Get returns the goal with the given id.
func (t *Tracker) Get(id int) (Goal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	g := t.find(id)
	if g == nil {
		return Goal{}, ErrNotFound
	}
	return *g, nil
}

// Active returns unfinished goals, highest priority first and oldest
// first within a priority.
func (t *Tracker) Active() []Goal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Goal
	for _, g := range t.goals {
		if !g.Done {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Completed returns finished goals in completion order.
func (t *Tracker) Completed() []Goal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Goal
	for _, g := range t.goals {
		if g.Done {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

// Counts returns the number of active and completed goals.
func (t *Tracker) Counts() (active, completed int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active = t.activeCount()
	return active, len(t.goals) - active
}

// Restore replaces the tracker contents with previously saved goals,
// keeping the id sequence ahead of everything it has seen.
func (t *Tracker) Restore(goals []Goal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.goals = make([]*Goal, 0, len(goals))
	next := t.nextID
	for i := range goals {
		g := goals[i]
		t.goals = append(t.goals, &g)
		if g.ID >= next {
			next = g.ID + 1
		}
	}
	t.nextID = next
}

func (t *Tracker) find(id int) *Goal {
	for _, g := range t.goals {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (t *Tracker) activeCount() int {
	n := 0
	for _, g := range t.goals {
		if !g.Done {
			n++
		}
	}
	return n
}
