package session

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/memory-match-game/game/engine"
)

const savesSchema = `CREATE TABLE IF NOT EXISTS saves (
	profile    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps snapshots in a single SQLite table, one row per profile
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and ensures the schema
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(savesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the profile's snapshot
func (s *SQLiteStore) Save(profile string, snapshot *engine.SaveSnapshot) error {
	if err := checkProfile(profile); err != nil {
		return err
	}
	data, err := encodeRecord(snapshot)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO saves (profile, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		profile, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the profile's snapshot
func (s *SQLiteStore) Load(profile string) (*engine.SaveSnapshot, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRow(`SELECT data FROM saves WHERE profile = ?`, profile).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.DecodeSnapshot([]byte(data))
}

// Exists reports whether the profile has a stored snapshot
func (s *SQLiteStore) Exists(profile string) bool {
	if checkProfile(profile) != nil {
		return false
	}
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM saves WHERE profile = ?`, profile).Scan(&one)
	return err == nil
}

// Delete removes the profile's snapshot
func (s *SQLiteStore) Delete(profile string) error {
	if err := checkProfile(profile); err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM saves WHERE profile = ?`, profile)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return engine.ErrSnapshotNotFound
	}
	return nil
}

// ListAll returns every profile with a stored snapshot, ordered by name
func (s *SQLiteStore) ListAll() ([]string, error) {
	rows, err := s.db.Query(`SELECT profile FROM saves ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var profile string
		if err := rows.Scan(&profile); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return profiles, nil
}

