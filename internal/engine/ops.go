package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/engram/internal/feeling"
	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
	"github.com/felixgeelhaar/engram/internal/seed"
	"github.com/felixgeelhaar/engram/internal/snapshot"
	"github.com/felixgeelhaar/engram/internal/store"
	"github.com/felixgeelhaar/engram/internal/tool"
)

// Remember stores content and returns the new memory id. A negative
// importance selects the configured baseline.
func (e *Engine) Remember(ctx context.Context, content string, importance float64) (string, error) {
	return e.remember(ctx, content, importance, nil)
}

func (e *Engine) remember(ctx context.Context, content string, importance float64, meta map[string]string) (string, error) {
	ctx, span := e.observe.StartSpan(ctx, "Remember")
	defer span.End()

	if v := e.guard.CheckContent(content); v != nil {
		e.events.PublishWithData(EventGuardViolation, map[string]interface{}{"rule": v.Rule})
		e.observe.Log().Warn().Str("rule", v.Rule).Msg("guard rejected content")
		return "", fmt.Errorf("guard violation: %s", v.Message)
	}

	vec, err := e.embedText(ctx, content)
	if err != nil {
		return "", err
	}

	id, err := e.memory.InsertWithMetadata(content, vec, importance, meta)
	if err != nil {
		return "", err
	}

	item, err := e.memory.Get(id)
	if err != nil {
		return "", err
	}
	if err := e.storage.InsertMemory(item); err != nil {
		e.observe.Log().Warn().Str("id", id).Err(err).Msg("failed to persist memory")
	}

	e.events.PublishWithData(EventMemoryStored, map[string]interface{}{"id": id})
	e.react(feeling.On(feeling.MemoryStored))
	e.observe.Log().Info().Str("id", id).Int("size", e.memory.Len()).Msg("memory stored")
	return id, nil
}

// Recall returns up to k memories ranked against the query text. A k
// below 1 selects the configured default. Returned items have their
// access metadata updated, in memory and in the mirror.
func (e *Engine) Recall(ctx context.Context, text string, k int) ([]memory.Item, error) {
	ctx, span := e.observe.StartSpan(ctx, "Recall")
	defer span.End()

	if k < 1 {
		k = e.cfg.DefaultK
	}
	if v := e.guard.CheckRecall(k); v != nil {
		e.events.PublishWithData(EventGuardViolation, map[string]interface{}{"rule": v.Rule})
		return nil, fmt.Errorf("guard violation: %s", v.Message)
	}

	vec, err := e.embedText(ctx, text)
	if err != nil {
		return nil, err
	}

	items, err := e.memory.Query(vec, k)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if err := e.storage.TouchMemory(it); err != nil {
			e.observe.Log().Warn().Str("id", it.ID).Err(err).Msg("failed to persist access update")
		}
	}

	e.events.PublishWithData(EventMemoryRecalled, map[string]interface{}{
		"query": text,
		"hits":  len(items),
	})
	if len(items) > 0 {
		e.react(feeling.On(feeling.RecallHit))
	} else {
		e.react(feeling.On(feeling.RecallMiss))
	}
	e.observe.Log().Info().Int("hits", len(items)).Msg("memories recalled")
	return items, nil
}

// Forget removes a memory by id, from the store and the mirror.
func (e *Engine) Forget(ctx context.Context, id string) error {
	_, span := e.observe.StartSpan(ctx, "Forget")
	defer span.End()

	if err := e.memory.Delete(id); err != nil {
		return err
	}
	if err := e.storage.DeleteMemory(id); err != nil {
		e.observe.Log().Warn().Str("id", id).Err(err).Msg("failed to drop persisted row")
	}
	e.events.PublishWithData(EventMemoryForgotten, map[string]interface{}{"id": id})
	e.observe.Log().Info().Str("id", id).Msg("memory forgotten")
	return nil
}

// GetMemory returns a memory by id without touching its access metadata.
func (e *Engine) GetMemory(id string) (memory.Item, error) {
	return e.memory.Get(id)
}

// Memories returns all stored memories, oldest first.
func (e *Engine) Memories() []memory.Item {
	return e.memory.Snapshot()
}

// DecayPass erodes importance for the time elapsed since the last pass
// and resyncs the mirror.
func (e *Engine) DecayPass(ctx context.Context) error {
	_, span := e.observe.StartSpan(ctx, "DecayPass")
	defer span.End()

	e.memory.DecayPass()
	items := e.memory.Snapshot()
	if err := e.storage.SyncMemories(items); err != nil {
		return fmt.Errorf("failed to sync decayed memories: %w", err)
	}
	e.events.PublishWithData(EventMemoryDecayed, map[string]interface{}{"size": len(items)})
	e.observe.Log().Info().Int("size", len(items)).Msg("decay pass complete")
	return nil
}

// AddGoal registers a new active goal.
func (e *Engine) AddGoal(ctx context.Context, text string, priority int) (goal.Goal, error) {
	_, span := e.observe.StartSpan(ctx, "AddGoal")
	defer span.End()

	g, err := e.goals.Add(text, priority)
	if err != nil {
		return goal.Goal{}, err
	}
	if err := e.storage.UpsertGoal(g); err != nil {
		e.observe.Log().Warn().Int("id", g.ID).Err(err).Msg("failed to persist goal")
	}
	e.events.PublishWithData(EventGoalAdded, map[string]interface{}{"id": g.ID})
	e.observe.Log().Info().Int("id", g.ID).Str("text", g.Text).Msg("goal added")
	return g, nil
}

// ProgressGoal moves a goal to the given progress. Reaching 1.0
// completes it.
func (e *Engine) ProgressGoal(ctx context.Context, id int, value float64) (goal.Goal, error) {
	_, span := e.observe.StartSpan(ctx, "ProgressGoal")
	defer span.End()

	before, err := e.goals.Get(id)
	if err != nil {
		return goal.Goal{}, err
	}
	g, err := e.goals.SetProgress(id, value)
	if err != nil {
		return goal.Goal{}, err
	}
	if err := e.storage.UpsertGoal(g); err != nil {
		e.observe.Log().Warn().Int("id", g.ID).Err(err).Msg("failed to persist goal")
	}

	e.events.PublishWithData(EventGoalProgress, map[string]interface{}{"id": g.ID})
	if g.Done && !before.Done {
		e.events.PublishWithData(EventGoalCompleted, map[string]interface{}{"id": g.ID})
		e.react(feeling.On(feeling.GoalCompleted))
		e.observe.Log().Info().Int("id", g.ID).Msg("goal completed")
	}
	return g, nil
}

// Goals returns the active goals (highest priority first) and the
// completed ones (oldest completion first).
func (e *Engine) Goals() (active, completed []goal.Goal) {
	return e.goals.Active(), e.goals.Completed()
}

// RunTool executes a registered tool by name.
func (e *Engine) RunTool(ctx context.Context, name, input string) (string, error) {
	ctx, span := e.observe.StartSpan(ctx, "RunTool")
	defer span.End()

	out, err := e.tools.Execute(ctx, name, input)
	if err != nil {
		e.events.PublishWithData(EventToolFailed, map[string]interface{}{"tool": name})
		e.react(feeling.On(feeling.Failure))
		e.observe.Log().Warn().Str("tool", name).Err(err).Msg("tool failed")
		return "", err
	}
	e.events.PublishWithData(EventToolExecuted, map[string]interface{}{"tool": name})
	return out, nil
}

// Calculate evaluates an arithmetic expression with the builtin
// calculator tool.
func (e *Engine) Calculate(ctx context.Context, expression string) (string, error) {
	return e.RunTool(ctx, tool.CalcDefinition.Name, expression)
}

// SeedReport summarizes a seed import.
type SeedReport struct {
	MemoriesAdded int
	GoalsAdded    int
	Warnings      []string
}

// Seed bulk-loads memories and goals from a seed file. Entries without
// an importance take the baseline. Goals beyond the active limit are
// skipped with a warning rather than failing the import.
func (e *Engine) Seed(ctx context.Context, f seed.File) (SeedReport, error) {
	ctx, span := e.observe.StartSpan(ctx, "Seed")
	defer span.End()

	var report SeedReport
	res := e.seeds.Validate(f)
	if !res.Valid {
		return report, fmt.Errorf("invalid seed: %s", strings.Join(res.Errors, "; "))
	}
	report.Warnings = append(report.Warnings, res.Warnings...)

	for _, entry := range f.Memories {
		importance := -1.0
		if entry.Importance != nil {
			importance = *entry.Importance
		}
		if _, err := e.remember(ctx, entry.Content, importance, entry.Metadata); err != nil {
			return report, fmt.Errorf("failed to seed memory %q: %w", entry.Content, err)
		}
		report.MemoriesAdded++
	}

	for _, text := range f.Goals {
		if _, err := e.AddGoal(ctx, text, 1); err != nil {
			if errors.Is(err, goal.ErrLimit) {
				report.Warnings = append(report.Warnings, "active goal limit reached, remaining goals skipped")
				break
			}
			return report, fmt.Errorf("failed to seed goal %q: %w", text, err)
		}
		report.GoalsAdded++
	}

	e.events.PublishWithData(EventSeedLoaded, map[string]interface{}{
		"memories": report.MemoriesAdded,
		"goals":    report.GoalsAdded,
	})
	e.observe.Log().Info().
		Int("memories", report.MemoriesAdded).
		Int("goals", report.GoalsAdded).
		Msg("seed loaded")
	return report, nil
}

// Export writes the current memories and open goals to a snapshot file
// and records it.
func (e *Engine) Export(ctx context.Context) (*store.Snapshot, error) {
	_, span := e.observe.StartSpan(ctx, "Export")
	defer span.End()

	goals := append(e.goals.Active(), e.goals.Completed()...)
	snap, err := e.snaps.Export(e.memory.Snapshot(), goals)
	if err != nil {
		return nil, err
	}
	e.observe.Log().Info().Str("id", snap.ID).Str("path", snap.Path).Msg("state exported")
	return snap, nil
}

// Snapshots lists recorded exports, oldest first.
func (e *Engine) Snapshots() ([]*store.Snapshot, error) {
	return e.snaps.List()
}

// ReadSnapshot loads and verifies an exported state by id.
func (e *Engine) ReadSnapshot(id string) (*snapshot.State, error) {
	return e.snaps.Read(id)
}
