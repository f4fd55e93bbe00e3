package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/engram/internal/embed"
	"github.com/felixgeelhaar/engram/internal/feeling"
	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/guard"
	"github.com/felixgeelhaar/engram/internal/memory"
	"github.com/felixgeelhaar/engram/internal/observe"
	"github.com/felixgeelhaar/engram/internal/seed"
	"github.com/felixgeelhaar/engram/internal/snapshot"
	"github.com/felixgeelhaar/engram/internal/store"
	"github.com/felixgeelhaar/engram/internal/tool"
)

// feelingKey is the configuration key under which the mood state
// survives between processes.
const feelingKey = "feeling.state"

// Config collects the tunables for an Engine.
type Config struct {
	Memory   memory.Config
	Policy   guard.Policy
	MaxGoals int
	// DefaultK is the recall size used when the caller does not ask for
	// a specific number of items.
	DefaultK int
}

// DefaultConfig returns the standard configuration for the given
// embedding dimension.
func DefaultConfig(dim int) Config {
	return Config{
		Memory:   memory.DefaultConfig(dim),
		Policy:   guard.DefaultPolicy,
		MaxGoals: goal.DefaultMaxActive,
		DefaultK: 3,
	}
}

// Engine ties the memory store, goal tracker, and mood state together
// and keeps the database mirror current. All exported methods are safe
// for concurrent use.
type Engine struct {
	cfg      Config
	memory   *memory.Store
	embedder embed.Embedder
	storage  store.Storage
	guard    *guard.Guard
	goals    *goal.Tracker
	tools    *tool.Registry
	events   *EventBus
	snaps    *snapshot.Manager
	seeds    *seed.Loader
	observe  *observe.Observer

	mu      sync.Mutex
	feeling feeling.State
}

// New builds an engine over the given embedder and storage, restoring
// any previously persisted memories, goals, and mood. A zero memory
// dimension in cfg is filled in from the embedder.
func New(cfg Config, embedder embed.Embedder, storage store.Storage, obs *observe.Observer) (*Engine, error) {
	if cfg.Memory.Dimension == 0 {
		cfg.Memory.Dimension = embedder.Dimension()
	}
	if cfg.MaxGoals <= 0 {
		cfg.MaxGoals = goal.DefaultMaxActive
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = 3
	}

	e := &Engine{
		cfg:      cfg,
		embedder: embedder,
		storage:  storage,
		guard:    guard.New(cfg.Policy),
		goals:    goal.NewTracker(cfg.MaxGoals),
		tools:    tool.NewRegistry(),
		events:   NewEventBus(),
		snaps:    snapshot.NewManager(storage),
		seeds:    seed.New(cfg.MaxGoals),
		observe:  obs,
		feeling:  feeling.Initial(),
	}

	memCfg := cfg.Memory
	memCfg.OnEvict = e.onEvict
	mem, err := memory.New(memCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory store: %w", err)
	}
	e.memory = mem

	if err := tool.RegisterBuiltins(e.tools); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	items, err := storage.LoadMemories()
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}
	if err := mem.Restore(items); err != nil {
		return nil, fmt.Errorf("failed to restore memories: %w", err)
	}

	goals, err := storage.LoadGoals()
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	e.goals.Restore(goals)

	if raw, err := storage.GetConfig(feelingKey); err == nil && raw != "" {
		var f feeling.State
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			e.feeling = f
		}
	}

	obs.Log().Info().
		Int("memories", mem.Len()).
		Int("goals", len(goals)).
		Str("embedder", embedder.Name()).
		Msg("engine ready")
	return e, nil
}

// Events returns the engine's event bus for subscribers.
func (e *Engine) Events() *EventBus {
	return e.events
}

// Tools returns the engine's tool registry.
func (e *Engine) Tools() *tool.Registry {
	return e.tools
}

// Policy returns the content policy in force.
func (e *Engine) Policy() guard.Policy {
	return e.guard.Policy()
}

// Feeling returns the current mood state.
func (e *Engine) Feeling() feeling.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feeling
}

// Status summarizes the engine for display.
type Status struct {
	Memory         memory.Stats
	ActiveGoals    int
	CompletedGoals int
	Feeling        feeling.State
	Mood           string
	Embedder       string
	Tools          int
}

// Status reports occupancy, goal counts, and the current mood.
func (e *Engine) Status() Status {
	f := e.Feeling()
	active, completed := e.goals.Counts()
	return Status{
		Memory:         e.memory.Stats(),
		ActiveGoals:    active,
		CompletedGoals: completed,
		Feeling:        f,
		Mood:           f.Mood(),
		Embedder:       e.embedder.Name(),
		Tools:          e.tools.Count(),
	}
}

// Close flushes in-memory state to storage and closes it.
func (e *Engine) Close() error {
	if err := e.storage.SyncMemories(e.memory.Snapshot()); err != nil {
		e.observe.Log().Warn().Err(err).Msg("failed to sync memories on close")
	}
	raw, err := json.Marshal(e.Feeling())
	if err == nil {
		if err := e.storage.SetConfig(feelingKey, string(raw)); err != nil {
			e.observe.Log().Warn().Err(err).Msg("failed to persist mood")
		}
	}
	return e.storage.Close()
}

// react folds a reward event into the mood state.
func (e *Engine) react(ev feeling.Event) {
	e.mu.Lock()
	e.feeling = feeling.Update(e.feeling, ev)
	e.mu.Unlock()
}

// onEvict runs from the memory store when capacity pressure removes an
// item. It drops the mirrored row and announces the eviction.
func (e *Engine) onEvict(item memory.Item) {
	if err := e.storage.DeleteMemory(item.ID); err != nil {
		e.observe.Log().Warn().Str("id", item.ID).Err(err).Msg("failed to drop evicted row")
	}
	e.events.PublishWithData(EventMemoryEvicted, map[string]interface{}{
		"id":      item.ID,
		"content": item.Content,
	})
	e.observe.Log().Info().Str("id", item.ID).Msg("memory evicted")
}

// embedText embeds through the configured embedder, normalizing any
// failure into an *embed.Error and registering it as a setback.
func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.react(feeling.On(feeling.Failure))
		var embedErr *embed.Error
		if !errors.As(err, &embedErr) {
			err = &embed.Error{Provider: e.embedder.Name(), Err: err}
		}
		e.observe.Log().Error().Str("provider", e.embedder.Name()).Err(err).Msg("embedding failed")
		return nil, err
	}
	return vec, nil
}
