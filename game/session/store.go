package session

import (
	"fmt"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

var (
	_ service.SnapshotStore = (*FileStore)(nil)
	_ service.SnapshotStore = (*SQLiteStore)(nil)
)

// checkProfile rejects profile names that are not valid session ids
func checkProfile(profile string) error {
	if err := ValidateSessionID(profile); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// encodeRecord validates a snapshot before it is written so stores never
// hold a record that Load would reject
func encodeRecord(snapshot *engine.SaveSnapshot) ([]byte, error) {
	if err := engine.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return engine.EncodeSnapshot(snapshot)
}
