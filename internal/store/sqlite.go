package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db          *sql.DB
	snapshotDir string
}

func NewSQLiteStore(dbPath, snapshotDir string) (*SQLiteStore, error) {
	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	if err := os.MkdirAll(snapshotDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:          db,
		snapshotDir: snapshotDir,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			content TEXT,
			vector BLOB,
			importance REAL,
			created_at DATETIME,
			last_accessed_at DATETIME,
			access_count INTEGER,
			metadata TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY,
			text TEXT,
			priority INTEGER,
			progress REAL,
			done INTEGER,
			created_at DATETIME,
			updated_at DATETIME,
			completed_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS configuration (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			kind TEXT,
			path TEXT,
			created_at DATETIME,
			digest TEXT
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Configuration Implementation

func (s *SQLiteStore) SetConfig(key, value string) error {
	query := `INSERT INTO configuration (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := s.db.Exec(query, key, value)
	return err
}

// GetConfig returns the stored value, or "" when the key was never set.
func (s *SQLiteStore) GetConfig(key string) (string, error) {
	query := `SELECT value FROM configuration WHERE key = ?`
	row := s.db.QueryRow(query, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Snapshot Implementation

func (s *SQLiteStore) SaveSnapshot(snap *Snapshot, content []byte) error {
	// 1. Save content to filesystem
	fullPath := filepath.Join(s.snapshotDir, snap.Path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0750); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot content: %w", err)
	}

	// 2. Save metadata to DB
	query := `INSERT INTO snapshots (id, kind, path, created_at, digest) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, snap.ID, snap.Kind, snap.Path, snap.CreatedAt, snap.Digest)
	return err
}

func (s *SQLiteStore) GetSnapshot(id string) (*Snapshot, []byte, error) {
	// 1. Get metadata
	query := `SELECT id, kind, path, created_at, digest FROM snapshots WHERE id = ?`
	row := s.db.QueryRow(query, id)

	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.Kind, &snap.Path, &snap.CreatedAt, &snap.Digest); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("snapshot not found: %s", id)
		}
		return nil, nil, err
	}

	// 2. Get content
	fullPath := filepath.Join(s.snapshotDir, snap.Path)
	content, err := os.ReadFile(fullPath) // #nosec G304
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot content: %w", err)
	}

	return &snap, content, nil
}

func (s *SQLiteStore) ListSnapshots() ([]*Snapshot, error) {
	query := `SELECT id, kind, path, created_at, digest FROM snapshots ORDER BY created_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.Kind, &sn.Path, &sn.CreatedAt, &sn.Digest); err != nil {
			return nil, err
		}
		snaps = append(snaps, &sn)
	}
	return snaps, rows.Err()
}
