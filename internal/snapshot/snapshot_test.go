package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
	"github.com/felixgeelhaar/engram/internal/seed"
	"github.com/felixgeelhaar/engram/internal/store"
)

func newManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "snapshots")
	s, err := store.NewSQLiteStore(filepath.Join(dir, "engram.db"), snapDir)
	if err != nil {
		t.Fatalf("store setup failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewManager(s), snapDir
}

func fixtureItems() []memory.Item {
	now := time.Now().UTC()
	return []memory.Item{
		{
			ID: "m1", Content: "the cache warms up after three requests",
			Importance: 0.8, CreatedAt: now, LastAccessedAt: now,
			AccessCount: 2, Metadata: map[string]string{"topic": "ops"},
		},
		{
			ID: "m2", Content: "retry budgets reset at midnight",
			Importance: 0.4, CreatedAt: now, LastAccessedAt: now,
		},
	}
}

func TestManager_ExportAndRead(t *testing.T) {
	m, _ := newManager(t)

	goals := []goal.Goal{
		{ID: 1, Text: "document the cache", Done: false},
		{ID: 2, Text: "already finished", Done: true},
	}

	snap, err := m.Export(fixtureItems(), goals)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if snap.Kind != "state" || snap.Digest == "" {
		t.Errorf("Unexpected snapshot record: %+v", snap)
	}

	state, err := m.Read(snap.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(state.Memories) != 2 {
		t.Fatalf("Expected 2 memories, got %d", len(state.Memories))
	}
	if state.Memories[0].Content != "the cache warms up after three requests" {
		t.Errorf("Content lost: %q", state.Memories[0].Content)
	}
	if state.Memories[0].Importance == nil || *state.Memories[0].Importance != 0.8 {
		t.Errorf("Importance lost: %+v", state.Memories[0])
	}
	if state.Memories[0].Metadata["topic"] != "ops" {
		t.Errorf("Metadata lost: %+v", state.Memories[0].Metadata)
	}
	if state.Memories[0].Metadata["access_count"] != "2" {
		t.Errorf("Access history not exported: %+v", state.Memories[0].Metadata)
	}

	// Completed goals stay out of the export.
	if len(state.Goals) != 1 || state.Goals[0] != "document the cache" {
		t.Errorf("Unexpected goals: %v", state.Goals)
	}
}

func TestManager_ExportIsSeedLoadable(t *testing.T) {
	m, snapDir := newManager(t)

	snap, err := m.Export(fixtureItems(), nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := seed.Load(filepath.Join(snapDir, snap.Path))
	if err != nil {
		t.Fatalf("Seed loader rejected the export: %v", err)
	}
	if res := seed.New(5).Validate(*f); !res.Valid {
		t.Errorf("Exported snapshot fails seed validation: %+v", res)
	}
	if len(f.Memories) != 2 {
		t.Errorf("Expected 2 seed memories, got %d", len(f.Memories))
	}
}

func TestManager_ReadDetectsTampering(t *testing.T) {
	m, snapDir := newManager(t)

	snap, err := m.Export(fixtureItems(), nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	path := filepath.Join(snapDir, snap.Path)
	if err := os.WriteFile(path, []byte("memories: []\n"), 0600); err != nil {
		t.Fatalf("failed to tamper: %v", err)
	}

	_, err = m.Read(snap.ID)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Errorf("Expected digest mismatch, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	m, _ := newManager(t)

	if _, err := m.Export(fixtureItems(), nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := m.Export(nil, []goal.Goal{{ID: 1, Text: "only goals"}}); err != nil {
		t.Fatalf("Second export failed: %v", err)
	}

	snaps, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Errorf("Expected 2 snapshots, got %d", len(snaps))
	}
}

func TestManager_ReadMissing(t *testing.T) {
	m, _ := newManager(t)
	if _, err := m.Read("snap-missing"); err == nil {
		t.Error("Expected error for unknown snapshot")
	}
}
