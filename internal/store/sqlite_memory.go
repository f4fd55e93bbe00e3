package store

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
)

// Memory Implementation

func (s *SQLiteStore) InsertMemory(item memory.Item) error {
	vecBlob, err := encodeVector(item.Embedding)
	if err != nil {
		return err
	}
	metaJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO memories (id, content, vector, importance, created_at, last_accessed_at, access_count, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, item.ID, item.Content, vecBlob, item.Importance,
		item.CreatedAt, item.LastAccessedAt, item.AccessCount, string(metaJSON))
	return err
}

// TouchMemory writes back the retrieval side effects of one item.
func (s *SQLiteStore) TouchMemory(item memory.Item) error {
	query := `UPDATE memories SET importance = ?, last_accessed_at = ?, access_count = ? WHERE id = ?`
	_, err := s.db.Exec(query, item.Importance, item.LastAccessedAt, item.AccessCount, item.ID)
	return err
}

// DeleteMemory removes a row. Deleting an id that is already gone is
// not an error; the database only mirrors the in-memory store.
func (s *SQLiteStore) DeleteMemory(id string) error {
	_, err := s.db.Exec(`DELETE FROM memories WHERE id = ?`, id)
	return err
}

// SyncMemories replaces the whole mirror with the given items in one
// transaction, reconciling evictions and decay in a single pass.
func (s *SQLiteStore) SyncMemories(items []memory.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM memories`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO memories (id, content, vector, importance, created_at, last_accessed_at, access_count, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		vecBlob, err := encodeVector(item.Embedding)
		if err != nil {
			return err
		}
		metaJSON, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.Exec(item.ID, item.Content, vecBlob, item.Importance,
			item.CreatedAt, item.LastAccessedAt, item.AccessCount, string(metaJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadMemories() ([]memory.Item, error) {
	rows, err := s.db.Query(`SELECT id, content, vector, importance, created_at, last_accessed_at, access_count, metadata
		FROM memories ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []memory.Item
	for rows.Next() {
		var item memory.Item
		var vecBlob []byte
		var metaJSON string

		if err := rows.Scan(&item.ID, &item.Content, &vecBlob, &item.Importance,
			&item.CreatedAt, &item.LastAccessedAt, &item.AccessCount, &metaJSON); err != nil {
			return nil, err
		}

		item.Embedding, err = decodeVector(vecBlob)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaJSON), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}

		items = append(items, item)
	}
	return items, rows.Err()
}

// Goal Implementation

func (s *SQLiteStore) UpsertGoal(g goal.Goal) error {
	completed := sql.NullTime{Time: g.CompletedAt, Valid: g.Done}

	query := `INSERT INTO goals (id, text, priority, progress, done, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			priority = excluded.priority,
			progress = excluded.progress,
			done = excluded.done,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at`
	_, err := s.db.Exec(query, g.ID, g.Text, g.Priority, g.Progress, g.Done,
		g.CreatedAt, g.UpdatedAt, completed)
	return err
}

func (s *SQLiteStore) LoadGoals() ([]goal.Goal, error) {
	rows, err := s.db.Query(`SELECT id, text, priority, progress, done, created_at, updated_at, completed_at
		FROM goals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []goal.Goal
	for rows.Next() {
		var g goal.Goal
		var completed sql.NullTime
		if err := rows.Scan(&g.ID, &g.Text, &g.Priority, &g.Progress, &g.Done,
			&g.CreatedAt, &g.UpdatedAt, &completed); err != nil {
			return nil, err
		}
		if completed.Valid {
			g.CompletedAt = completed.Time
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Vector codec: float32 values packed little-endian, four bytes each.

func encodeVector(vector []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vector); err != nil {
		return nil, fmt.Errorf("failed to encode vector: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vector); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	return vector, nil
}
