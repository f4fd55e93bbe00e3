// Package memory implements the importance-scored store at the heart of
// engram: a bounded, in-process associative memory whose items are ranked
// by a blend of embedding similarity and importance, and evicted by
// lowest decayed importance when capacity is reached.
package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an operation references an unknown item id.
var ErrNotFound = errors.New("memory not found")

// DimensionError reports an embedding whose length does not match the
// store configuration.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Item is a single stored memory.
type Item struct {
	ID             string
	Content        string
	Embedding      []float32
	Importance     float64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int
	Metadata       map[string]string
}

// Config controls a Store.
type Config struct {
	// Capacity bounds the number of stored items.
	Capacity int
	// Dimension is the required embedding length.
	Dimension int
	// Alpha blends similarity against importance when ranking query
	// results: alpha*cosine + (1-alpha)*importance.
	Alpha float64
	// Baseline is the importance assigned when the caller does not
	// supply one.
	Baseline float64
	// RetrievalBoost is added to an item's importance each time a query
	// returns it, clamped to 1.0.
	RetrievalBoost float64
	// HalfLife is the age at which decayed importance halves.
	HalfLife time.Duration
	// OnEvict, if set, receives a copy of each item removed by capacity
	// eviction. It is called outside the store lock.
	OnEvict func(Item)
}

// DefaultConfig returns the standard tuning for the given embedding
// dimension.
func DefaultConfig(dimension int) Config {
	return Config{
		Capacity:       1000,
		Dimension:      dimension,
		Alpha:          0.7,
		Baseline:       0.5,
		RetrievalBoost: 0.05,
		HalfLife:       168 * time.Hour,
	}
}

// Normalize backfills non-positive tuning fields with their defaults.
func (c *Config) Normalize() {
	if c.Capacity <= 0 {
		c.Capacity = 1000
	}
	if c.Baseline <= 0 {
		c.Baseline = 0.5
	}
	if c.RetrievalBoost < 0 {
		c.RetrievalBoost = 0
	}
	if c.HalfLife <= 0 {
		c.HalfLife = 168 * time.Hour
	}
}

// Stats summarizes store occupancy.
type Stats struct {
	Size      int
	Capacity  int
	Dimension int
}

type entry struct {
	item Item
	seq  uint64
}

// Store is the bounded importance-scored memory. Reads that leave access
// metadata untouched share a read lock; Query takes the write lock
// because returning an item mutates it.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	entries   map[string]*entry
	nextSeq   uint64
	decayedAt time.Time
}

// New creates an empty store for the given configuration.
func New(cfg Config) (*Store, error) {
	cfg.Normalize()
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0,1], got %g", cfg.Alpha)
	}
	return &Store{
		cfg:       cfg,
		entries:   make(map[string]*entry),
		decayedAt: time.Now(),
	}, nil
}

// Insert stores content with its embedding and returns the new item id.
// A negative importance selects the configured baseline; values are
// clamped to [0,1]. When the store is full the lowest-scoring item is
// evicted first, which is never an error.
func (s *Store) Insert(content string, embedding []float32, importance float64) (string, error) {
	return s.InsertWithMetadata(content, embedding, importance, nil)
}

// InsertWithMetadata is Insert with caller-supplied metadata attached to
// the new item.
func (s *Store) InsertWithMetadata(content string, embedding []float32, importance float64, meta map[string]string) (string, error) {
	if len(embedding) != s.cfg.Dimension {
		return "", &DimensionError{Want: s.cfg.Dimension, Got: len(embedding)}
	}
	if importance < 0 {
		importance = s.cfg.Baseline
	}
	if importance > 1 {
		importance = 1
	}

	var metaCopy map[string]string
	if len(meta) > 0 {
		metaCopy = make(map[string]string, len(meta))
		for k, v := range meta {
			metaCopy[k] = v
		}
	}

	now := time.Now()
	item := Item{
		ID:             uuid.NewString(),
		Content:        content,
		Embedding:      append([]float32(nil), embedding...),
		Importance:     importance,
		CreatedAt:      now,
		LastAccessedAt: now,
		Metadata:       metaCopy,
	}

	var evicted []Item
	s.mu.Lock()
	if len(s.entries) >= s.cfg.Capacity {
		if ev := s.evictLowest(now); ev != nil {
			evicted = append(evicted, *ev)
		}
	}
	s.nextSeq++
	s.entries[item.ID] = &entry{item: item, seq: s.nextSeq}
	s.mu.Unlock()

	s.fireEvictions(evicted)
	return item.ID, nil
}

// Query returns up to k items ranked by descending blended score. Ties
// fall to the most recent last access, then the most recent insertion.
// Every returned item has its access count incremented, its last access
// time set to now, and its importance boosted by the configured retrieval
// increment (clamped to 1). Asking for more items than stored returns
// them all.
func (s *Store) Query(embedding []float32, k int) ([]Item, error) {
	if len(embedding) != s.cfg.Dimension {
		return nil, &DimensionError{Want: s.cfg.Dimension, Got: len(embedding)}
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		e     *entry
		score float64
	}
	ranked := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		sim := cosineSimilarity(embedding, e.item.Embedding)
		ranked = append(ranked, scored{e: e, score: s.cfg.Alpha*sim + (1-s.cfg.Alpha)*e.item.Importance})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		ai, aj := ranked[i].e.item.LastAccessedAt, ranked[j].e.item.LastAccessedAt
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return ranked[i].e.seq > ranked[j].e.seq
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	now := time.Now()
	results := make([]Item, len(ranked))
	for i, r := range ranked {
		r.e.item.AccessCount++
		r.e.item.LastAccessedAt = now
		r.e.item.Importance = math.Min(1, r.e.item.Importance+s.cfg.RetrievalBoost)
		results[i] = cloneItem(r.e.item)
	}
	return results, nil
}

// DecayPass erodes every item's importance by the exponential factor for
// the time elapsed since the previous pass. Repeated calls at the same
// instant are no-ops.
func (s *Store) DecayPass() {
	s.decayAt(time.Now())
}

func (s *Store) decayAt(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.decayedAt)
	if elapsed <= 0 {
		return
	}
	factor := decayFactor(elapsed, s.cfg.HalfLife)
	for _, e := range s.entries {
		e.item.Importance *= factor
	}
	s.decayedAt = now
}

// Delete removes an item. Unknown ids fail with ErrNotFound and leave the
// store unchanged.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

// Get returns a copy of an item without touching its access metadata.
func (s *Store) Get(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneItem(e.item), nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns current occupancy.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Size: len(s.entries), Capacity: s.cfg.Capacity, Dimension: s.cfg.Dimension}
}

// Snapshot returns copies of all items ordered by creation time, for
// persistence or export. It does not count as retrieval: access metadata
// is untouched.
func (s *Store) Snapshot() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(s.entries))
	for _, e := range s.entries {
		items = append(items, cloneItem(e.item))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

// Restore loads previously persisted items, oldest first so insertion
// sequence mirrors original creation order. If the set exceeds capacity
// the usual eviction applies, so a shrunk capacity prunes the least
// valuable items on load.
func (s *Store) Restore(items []Item) error {
	for _, it := range items {
		if len(it.Embedding) != s.cfg.Dimension {
			return &DimensionError{Want: s.cfg.Dimension, Got: len(it.Embedding)}
		}
	}

	ordered := append([]Item(nil), items...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var evicted []Item
	now := time.Now()
	s.mu.Lock()
	for _, it := range ordered {
		if len(s.entries) >= s.cfg.Capacity {
			if ev := s.evictLowest(now); ev != nil {
				evicted = append(evicted, *ev)
			}
		}
		s.nextSeq++
		s.entries[it.ID] = &entry{item: cloneItem(it), seq: s.nextSeq}
	}
	s.mu.Unlock()

	s.fireEvictions(evicted)
	return nil
}

// evictLowest removes and returns the item with the lowest decayed
// importance. Ties fall to the oldest creation time, then the earliest
// insertion. Caller must hold the write lock.
func (s *Store) evictLowest(now time.Time) *Item {
	var victim *entry
	var victimScore float64
	for _, e := range s.entries {
		score := e.item.Importance * decayFactor(now.Sub(e.item.LastAccessedAt), s.cfg.HalfLife)
		if victim == nil {
			victim, victimScore = e, score
			continue
		}
		switch {
		case score < victimScore:
			victim, victimScore = e, score
		case score == victimScore && e.item.CreatedAt.Before(victim.item.CreatedAt):
			victim = e
		case score == victimScore && e.item.CreatedAt.Equal(victim.item.CreatedAt) && e.seq < victim.seq:
			victim = e
		}
	}
	if victim == nil {
		return nil
	}
	delete(s.entries, victim.item.ID)
	out := cloneItem(victim.item)
	return &out
}

func (s *Store) fireEvictions(evicted []Item) {
	if s.cfg.OnEvict == nil {
		return
	}
	for _, it := range evicted {
		s.cfg.OnEvict(it)
	}
}

// decayFactor is exp(-ln2 * age/halfLife): 1.0 at age zero, 0.5 at one
// half-life, monotonically non-increasing in age.
func decayFactor(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * age.Hours() / halfLife.Hours())
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func cloneItem(it Item) Item {
	out := it
	out.Embedding = append([]float32(nil), it.Embedding...)
	if it.Metadata != nil {
		out.Metadata = make(map[string]string, len(it.Metadata))
		for k, v := range it.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
