package store

import (
	"time"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
)

// Snapshot represents an exported state file kept alongside the database.
type Snapshot struct {
	ID        string
	Kind      string // e.g., "state", "seed"
	Path      string // Relative path in the snapshot store
	CreatedAt time.Time
	Digest    string // Content hash
}

// Storage defines the interface for persistence.
type Storage interface {
	// Memory persistence. The in-memory store stays authoritative; these
	// keep the database mirror current.
	InsertMemory(item memory.Item) error
	TouchMemory(item memory.Item) error
	DeleteMemory(id string) error
	SyncMemories(items []memory.Item) error
	LoadMemories() ([]memory.Item, error)

	// Goal persistence
	UpsertGoal(g goal.Goal) error
	LoadGoals() ([]goal.Goal, error)

	// Configuration Management
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)

	// Snapshot Management
	// SaveSnapshot persists the metadata and the content
	SaveSnapshot(snap *Snapshot, content []byte) error
	GetSnapshot(id string) (*Snapshot, []byte, error)
	ListSnapshots() ([]*Snapshot, error)

	Close() error
}
