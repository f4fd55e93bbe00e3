package engine

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/engram/internal/command"
	"github.com/felixgeelhaar/engram/internal/ui"
)

const helpText = `commands:
  remember <text>        store a memory
  recall <text>          retrieve related memories
  forget <id>            remove a memory by id
  add_goal <text>        add an active goal
  progress <id> <value>  set goal progress in [0,1]
  goals                  list goals
  status                 show memory, goals, and mood
  memory                 show memory occupancy
  calculate <expr>       evaluate an arithmetic expression
  decay                  run a decay pass
  help                   show this help
`

// Dispatch executes a parsed command and returns its rendered output.
func (e *Engine) Dispatch(ctx context.Context, cmd command.Command) (string, error) {
	switch c := cmd.(type) {
	case command.Remember:
		importance := -1.0
		if c.Weighted {
			importance = c.Importance
		}
		id, err := e.Remember(ctx, c.Content, importance)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("remembered %s\n", ui.ShortID(id)), nil

	case command.Recall:
		items, err := e.Recall(ctx, c.Query, c.K)
		if err != nil {
			return "", err
		}
		return ui.RenderItems(items), nil

	case command.Forget:
		if err := e.Forget(ctx, c.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("forgot %s\n", c.ID), nil

	case command.AddGoal:
		g, err := e.AddGoal(ctx, c.Text, 1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("goal %d added\n", g.ID), nil

	case command.Progress:
		g, err := e.ProgressGoal(ctx, c.GoalID, c.Value)
		if err != nil {
			return "", err
		}
		if g.Done {
			return fmt.Sprintf("goal %d completed\n", g.ID), nil
		}
		return fmt.Sprintf("goal %d at %.0f%%\n", g.ID, g.Progress*100), nil

	case command.Goals:
		active, completed := e.Goals()
		return ui.RenderGoals(active, completed), nil

	case command.Status:
		return ui.RenderStatus(e.statusView()), nil

	case command.MemoryStats:
		return ui.RenderStats(e.memory.Stats()), nil

	case command.Calc:
		out, err := e.Calculate(ctx, c.Expression)
		if err != nil {
			return "", err
		}
		return out + "\n", nil

	case command.Decay:
		if err := e.DecayPass(ctx); err != nil {
			return "", err
		}
		return "decay pass complete\n", nil

	case command.Help:
		return helpText, nil
	}
	return "", fmt.Errorf("unhandled command %T", cmd)
}

func (e *Engine) statusView() ui.Status {
	s := e.Status()
	return ui.Status{
		MemorySize:     s.Memory.Size,
		MemoryCapacity: s.Memory.Capacity,
		ActiveGoals:    s.ActiveGoals,
		CompletedGoals: s.CompletedGoals,
		Mood:           s.Mood,
		Energy:         s.Feeling.Energy,
		Curiosity:      s.Feeling.Curiosity,
		Frustration:    s.Feeling.Frustration,
		Embedder:       s.Embedder,
		Tools:          s.Tools,
	}
}
