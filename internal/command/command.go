package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Command is one parsed instruction. The unexported method seals the
// variant set, so handling is a type switch and nothing downstream ever
// re-inspects the input string.
type Command interface {
	isCommand()
}

// Remember stores a new memory. Weighted marks an explicit importance;
// otherwise the store applies its baseline.
type Remember struct {
	Content    string
	Importance float64
	Weighted   bool
}

// Recall searches memories. K below 1 means the caller's default.
type Recall struct {
	Query string
	K     int
}

// Forget deletes a memory by id.
type Forget struct {
	ID string
}

// AddGoal registers a new goal.
type AddGoal struct {
	Text string
}

// Progress sets the absolute progress of a goal.
type Progress struct {
	GoalID int
	Value  float64
}

// Goals lists active and completed goals.
type Goals struct{}

// Status reports the overall engine state.
type Status struct{}

// MemoryStats reports store size, capacity and dimension.
type MemoryStats struct{}

// Calc evaluates an arithmetic expression.
type Calc struct {
	Expression string
}

// Decay runs one importance decay pass.
type Decay struct{}

// Help lists the known verbs.
type Help struct{}

func (Remember) isCommand()    {}
func (Recall) isCommand()      {}
func (Forget) isCommand()      {}
func (AddGoal) isCommand()     {}
func (Progress) isCommand()    {}
func (Goals) isCommand()       {}
func (Status) isCommand()      {}
func (MemoryStats) isCommand() {}
func (Calc) isCommand()        {}
func (Decay) isCommand()       {}
func (Help) isCommand()        {}

// Parse turns one input line into a Command. The first field picks the
// verb; everything after it is the argument text. Unknown verbs and
// malformed arguments are errors, never silent fallbacks.
func Parse(line string) (Command, error) {
	verb, rest := splitVerb(line)
	if verb == "" {
		return nil, errors.New("empty command")
	}

	switch strings.ToLower(verb) {
	case "remember":
		if rest == "" {
			return nil, errors.New("remember needs text to store")
		}
		return Remember{Content: rest}, nil

	case "recall":
		if rest == "" {
			return nil, errors.New("recall needs a query")
		}
		return Recall{Query: rest}, nil

	case "forget":
		if rest == "" || strings.ContainsFunc(rest, unicode.IsSpace) {
			return nil, errors.New("forget needs exactly one memory id")
		}
		return Forget{ID: rest}, nil

	case "add_goal":
		if rest == "" {
			return nil, errors.New("add_goal needs text")
		}
		return AddGoal{Text: rest}, nil

	case "progress":
		args := strings.Fields(rest)
		if len(args) != 2 {
			return nil, errors.New("progress needs a goal id and a value")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad goal id %q: %w", args[0], err)
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad progress value %q: %w", args[1], err)
		}
		return Progress{GoalID: id, Value: value}, nil

	case "goals":
		if rest != "" {
			return nil, errors.New("goals takes no arguments")
		}
		return Goals{}, nil

	case "status":
		if rest != "" {
			return nil, errors.New("status takes no arguments")
		}
		return Status{}, nil

	case "memory":
		if rest != "" {
			return nil, errors.New("memory takes no arguments")
		}
		return MemoryStats{}, nil

	case "calculate", "calc":
		if rest == "" {
			return nil, errors.New("calculate needs an expression")
		}
		return Calc{Expression: rest}, nil

	case "decay":
		if rest != "" {
			return nil, errors.New("decay takes no arguments")
		}
		return Decay{}, nil

	case "help":
		return Help{}, nil

	default:
		return nil, fmt.Errorf("unknown command %q (try 'help')", verb)
	}
}

// splitVerb separates the first field from the rest of the line,
// preserving interior spacing of the argument text.
func splitVerb(line string) (verb, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}
