package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/memory-match-game/game/engine"
)

// FileStore keeps one JSON snapshot per profile in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based snapshot store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	// Create saves directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create saves directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the snapshot, replacing any previous save of the profile
func (s *FileStore) Save(profile string, snapshot *engine.SaveSnapshot) error {
	if err := checkProfile(profile); err != nil {
		return err
	}
	data, err := encodeRecord(snapshot)
	if err != nil {
		return err
	}

	// Write to a temp file first so a crash never leaves a half-written save
	tmp, err := os.CreateTemp(s.dir, profile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(profile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

// Load reads and validates the profile's snapshot
func (s *FileStore) Load(profile string) (*engine.SaveSnapshot, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(profile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, engine.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	return engine.DecodeSnapshot(data)
}

// Exists checks if a save file exists
func (s *FileStore) Exists(profile string) bool {
	if checkProfile(profile) != nil {
		return false
	}
	_, err := os.Stat(s.path(profile))
	return err == nil
}

// Delete removes a save file
func (s *FileStore) Delete(profile string) error {
	if err := checkProfile(profile); err != nil {
		return err
	}
	if err := os.Remove(s.path(profile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return engine.ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to remove save file: %w", err)
	}
	return nil
}

// ListAll returns all profiles that have a save file
func (s *FileStore) ListAll() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read saves directory: %w", err)
	}

	var profiles []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		profile, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || checkProfile(profile) != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Dir returns the directory holding the save files
func (s *FileStore) Dir() string {
	return s.dir
}

// path returns the full file path for a profile
func (s *FileStore) path(profile string) string {
	return filepath.Join(s.dir, profile+".json")
}
