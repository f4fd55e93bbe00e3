package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "engram.db"), filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testItem(id string, at time.Time) memory.Item {
	return memory.Item{
		ID:             id,
		Content:        "content of " + id,
		Embedding:      []float32{0.25, -0.5, 1.0},
		Importance:     0.5,
		CreatedAt:      at,
		LastAccessedAt: at,
		AccessCount:    0,
		Metadata:       map[string]string{"source": "test"},
	}
}

func TestSQLiteStore_Config(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetConfig("embedder", "hash"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	got, err := s.GetConfig("embedder")
	if err != nil || got != "hash" {
		t.Errorf("GetConfig = %q, %v", got, err)
	}

	// Upsert overwrites.
	s.SetConfig("embedder", "ollama")
	got, _ = s.GetConfig("embedder")
	if got != "ollama" {
		t.Errorf("Expected 'ollama', got %q", got)
	}

	// Missing keys read as empty.
	got, err = s.GetConfig("nope")
	if err != nil || got != "" {
		t.Errorf("Expected empty value for missing key, got %q, %v", got, err)
	}
}

func TestSQLiteStore_MemoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := testItem("m1", base)
	second := testItem("m2", base.Add(time.Minute))
	if err := s.InsertMemory(first); err != nil {
		t.Fatalf("InsertMemory failed: %v", err)
	}
	if err := s.InsertMemory(second); err != nil {
		t.Fatalf("InsertMemory failed: %v", err)
	}

	items, err := s.LoadMemories()
	if err != nil {
		t.Fatalf("LoadMemories failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID != "m1" || items[1].ID != "m2" {
		t.Errorf("Expected creation order, got %s, %s", items[0].ID, items[1].ID)
	}

	got := items[0]
	if got.Content != "content of m1" {
		t.Errorf("Unexpected content: %q", got.Content)
	}
	if len(got.Embedding) != 3 || got.Embedding[0] != 0.25 || got.Embedding[1] != -0.5 || got.Embedding[2] != 1.0 {
		t.Errorf("Vector did not round-trip: %v", got.Embedding)
	}
	if got.Metadata["source"] != "test" {
		t.Errorf("Metadata did not round-trip: %v", got.Metadata)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt drifted: %v vs %v", got.CreatedAt, base)
	}
}

func TestSQLiteStore_TouchMemory(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	item := testItem("m1", base)
	s.InsertMemory(item)

	item.Importance = 0.75
	item.AccessCount = 3
	item.LastAccessedAt = base.Add(time.Hour)
	if err := s.TouchMemory(item); err != nil {
		t.Fatalf("TouchMemory failed: %v", err)
	}

	items, _ := s.LoadMemories()
	got := items[0]
	if got.Importance != 0.75 || got.AccessCount != 3 {
		t.Errorf("Touch did not persist: importance=%f count=%d", got.Importance, got.AccessCount)
	}
	if !got.LastAccessedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("LastAccessedAt drifted: %v", got.LastAccessedAt)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt must not change on touch: %v", got.CreatedAt)
	}
}

func TestSQLiteStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	s.InsertMemory(testItem("m1", time.Now().UTC()))

	if err := s.DeleteMemory("m1"); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	items, _ := s.LoadMemories()
	if len(items) != 0 {
		t.Errorf("Expected empty store, got %d items", len(items))
	}

	// Deleting a missing row is fine.
	if err := s.DeleteMemory("m1"); err != nil {
		t.Errorf("Second delete errored: %v", err)
	}
}

func TestSQLiteStore_SyncMemories(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.InsertMemory(testItem("old1", base))
	s.InsertMemory(testItem("old2", base))

	if err := s.SyncMemories([]memory.Item{testItem("new1", base.Add(time.Hour))}); err != nil {
		t.Fatalf("SyncMemories failed: %v", err)
	}

	items, _ := s.LoadMemories()
	if len(items) != 1 || items[0].ID != "new1" {
		t.Errorf("Sync did not replace contents: %+v", items)
	}

	// Syncing to empty clears the table.
	if err := s.SyncMemories(nil); err != nil {
		t.Fatalf("Empty sync failed: %v", err)
	}
	items, _ = s.LoadMemories()
	if len(items) != 0 {
		t.Errorf("Expected empty mirror, got %d items", len(items))
	}
}

func TestSQLiteStore_Goals(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	g := goal.Goal{ID: 1, Text: "ship it", Priority: 2, Progress: 0.25, CreatedAt: base, UpdatedAt: base}
	if err := s.UpsertGoal(g); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}

	// Upsert updates in place.
	g.Progress = 1
	g.Done = true
	g.CompletedAt = base.Add(time.Hour)
	if err := s.UpsertGoal(g); err != nil {
		t.Fatalf("Second UpsertGoal failed: %v", err)
	}

	s.UpsertGoal(goal.Goal{ID: 2, Text: "still open", CreatedAt: base, UpdatedAt: base})

	goals, err := s.LoadGoals()
	if err != nil {
		t.Fatalf("LoadGoals failed: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("Expected 2 goals, got %d", len(goals))
	}

	if !goals[0].Done || goals[0].Progress != 1 {
		t.Errorf("Goal update lost: %+v", goals[0])
	}
	if !goals[0].CompletedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("CompletedAt drifted: %v", goals[0].CompletedAt)
	}
	if goals[1].Done || !goals[1].CompletedAt.IsZero() {
		t.Errorf("Open goal has completion data: %+v", goals[1])
	}
}

func TestSQLiteStore_Snapshots(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	snap := &Snapshot{ID: "snap-1", Kind: "state", Path: "2026/snap-1.yaml", CreatedAt: base, Digest: "abc123"}
	if err := s.SaveSnapshot(snap, []byte("memories: []\n")); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, content, err := s.GetSnapshot("snap-1")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Kind != "state" || got.Digest != "abc123" {
		t.Errorf("Unexpected snapshot: %+v", got)
	}
	if string(content) != "memories: []\n" {
		t.Errorf("Unexpected content: %q", content)
	}

	if _, _, err := s.GetSnapshot("missing"); err == nil {
		t.Error("Expected error for missing snapshot")
	}

	s.SaveSnapshot(&Snapshot{ID: "snap-2", Kind: "state", Path: "2026/snap-2.yaml", CreatedAt: base.Add(time.Minute)}, []byte("x"))
	snaps, err := s.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(snaps) != 2 || snaps[0].ID != "snap-1" {
		t.Errorf("Unexpected list: %+v", snaps)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "engram.db")
	snapDir := filepath.Join(dir, "snapshots")

	s, err := NewSQLiteStore(dbPath, snapDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	s.InsertMemory(testItem("keep", time.Now().UTC()))
	s.SetConfig("memory.alpha", "0.7")
	s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Database file missing: %v", err)
	}

	s2, err := NewSQLiteStore(dbPath, snapDir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	items, _ := s2.LoadMemories()
	if len(items) != 1 || items[0].ID != "keep" {
		t.Errorf("Memories lost across reopen: %+v", items)
	}
	v, _ := s2.GetConfig("memory.alpha")
	if v != "0.7" {
		t.Errorf("Config lost across reopen: %q", v)
	}
}

func TestVectorCodec(t *testing.T) {
	vec := []float32{0, -1.5, 3.25, 1e-7}
	blob, err := encodeVector(vec)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(blob) != 16 {
		t.Errorf("Expected 16 bytes, got %d", len(blob))
	}

	back, err := decodeVector(blob)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := range vec {
		if back[i] != vec[i] {
			t.Errorf("Value %d did not round-trip: %f vs %f", i, back[i], vec[i])
		}
	}

	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for truncated blob")
	}
}
