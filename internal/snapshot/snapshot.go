package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
	"github.com/felixgeelhaar/engram/internal/seed"
	"github.com/felixgeelhaar/engram/internal/store"
)

// State is the exported YAML shape. It embeds the seed layout so every
// snapshot can be fed back through the seed importer; embeddings stay in
// the database and are rebuilt on import.
type State struct {
	ExportedAt time.Time    `yaml:"exported_at"`
	Memories   []seed.Entry `yaml:"memories"`
	Goals      []string     `yaml:"goals,omitempty"`
}

// Manager exports and reads state snapshots through a Storage backend.
type Manager struct {
	store store.Storage
}

func NewManager(s store.Storage) *Manager {
	return &Manager{store: s}
}

// Export dumps the given items and the active goals to YAML, digests the
// content, and saves it as a snapshot. Returns the snapshot record.
func (m *Manager) Export(items []memory.Item, goals []goal.Goal) (*store.Snapshot, error) {
	state := State{
		ExportedAt: time.Now(),
		Memories:   make([]seed.Entry, 0, len(items)),
	}

	for _, item := range items {
		imp := item.Importance
		state.Memories = append(state.Memories, seed.Entry{
			Content:    item.Content,
			Importance: &imp,
			Metadata:   exportMetadata(item),
		})
	}
	for _, g := range goals {
		if !g.Done {
			state.Goals = append(state.Goals, g.Text)
		}
	}

	content, err := yaml.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	id := fmt.Sprintf("snap-%d", time.Now().UnixNano())
	snap := &store.Snapshot{
		ID:        id,
		Kind:      "state",
		Path:      id + ".yaml",
		CreatedAt: time.Now(),
		Digest:    hash(content),
	}

	if err := m.store.SaveSnapshot(snap, content); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap, nil
}

// Read loads a snapshot and verifies its digest before decoding, so a
// file edited behind the database's back is rejected.
func (m *Manager) Read(id string) (*State, error) {
	snap, content, err := m.store.GetSnapshot(id)
	if err != nil {
		return nil, err
	}

	if got := hash(content); got != snap.Digest {
		return nil, fmt.Errorf("snapshot %s digest mismatch: recorded %s, file has %s", id, snap.Digest, got)
	}

	var state State
	if err := yaml.Unmarshal(content, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &state, nil
}

// List returns all snapshot records, oldest first.
func (m *Manager) List() ([]*store.Snapshot, error) {
	return m.store.ListSnapshots()
}

// exportMetadata copies an item's metadata and folds in its access
// history, so re-imported memories keep their provenance.
func exportMetadata(item memory.Item) map[string]string {
	if item.AccessCount == 0 && len(item.Metadata) == 0 {
		return nil
	}
	meta := make(map[string]string, len(item.Metadata)+2)
	for k, v := range item.Metadata {
		meta[k] = v
	}
	if item.AccessCount > 0 {
		meta["access_count"] = strconv.Itoa(item.AccessCount)
		meta["last_accessed_at"] = item.LastAccessedAt.Format(time.RFC3339)
	}
	return meta
}

func hash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
