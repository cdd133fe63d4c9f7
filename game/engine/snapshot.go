package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotCorrupt  = errors.New("snapshot corrupt")
)

// SaveSnapshot is the persisted projection of a session. It records progress
// counters and dimensions only; the card layout is dealt again on load.
type SaveSnapshot struct {
	Score          int     `json:"score"`
	Moves          int     `json:"moves"`
	Rows           int     `json:"rows"`
	Columns        int     `json:"columns"`
	ElapsedTime    float64 `json:"elapsed_time"` // seconds
	MatchedPairIDs []int   `json:"matched_pair_ids"`
}

// Save captures the current session. It is valid in any phase.
func (e *GameEngine) Save() SaveSnapshot {
	return SaveSnapshot{
		Score:          e.score,
		Moves:          e.moves,
		Rows:           e.rows,
		Columns:        e.columns,
		ElapsedTime:    e.elapsed.Seconds(),
		MatchedPairIDs: append([]int{}, e.matched...),
	}
}

// Load deals a fresh grid with the snapshot's dimensions and restores its
// counters. Which physical cards were matched is not restored; the saved
// matched ids are kept in RestoredPairIDs for display.
func (e *GameEngine) Load(snapshot *SaveSnapshot) error {
	if err := ValidateSnapshot(snapshot); err != nil {
		return err
	}
	// A save that no longer fits this config's card limit cannot be dealt
	if err := e.checkCapacity(snapshot.Rows, snapshot.Columns); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if err := e.InitializeNewGame(snapshot.Rows, snapshot.Columns); err != nil {
		return err
	}

	// InitializeNewGame emitted new_game; replace it with loaded
	e.events = e.events[:len(e.events)-1]

	e.score = snapshot.Score
	e.moves = snapshot.Moves
	e.elapsed = secondsToDuration(snapshot.ElapsedTime)
	e.restored = append([]int{}, snapshot.MatchedPairIDs...)

	e.logger.Debug().
		Int("score", e.score).
		Int("moves", e.moves).
		Int("restored_pairs", len(e.restored)).
		Msg("snapshot loaded")
	e.emit(EventLoaded, nil, -1)
	return nil
}

// ValidateSnapshot checks that a snapshot has a loadable shape
func ValidateSnapshot(snapshot *SaveSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrSnapshotCorrupt)
	}
	if err := ValidateGridSize(snapshot.Rows, snapshot.Columns); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if snapshot.Score < 0 || snapshot.Moves < 0 {
		return fmt.Errorf("%w: negative counters", ErrSnapshotCorrupt)
	}
	if snapshot.ElapsedTime < 0 || math.IsNaN(snapshot.ElapsedTime) || math.IsInf(snapshot.ElapsedTime, 0) {
		return fmt.Errorf("%w: elapsed_time %v", ErrSnapshotCorrupt, snapshot.ElapsedTime)
	}

	pairs := snapshot.Rows * snapshot.Columns / 2
	seen := make(map[int]bool, len(snapshot.MatchedPairIDs))
	for _, id := range snapshot.MatchedPairIDs {
		if id < 0 || id >= pairs {
			return fmt.Errorf("%w: matched pair id %d outside [0,%d)", ErrSnapshotCorrupt, id, pairs)
		}
		if seen[id] {
			return fmt.Errorf("%w: matched pair id %d repeated", ErrSnapshotCorrupt, id)
		}
		seen[id] = true
	}
	return nil
}

// EncodeSnapshot serializes a snapshot as indented JSON
func EncodeSnapshot(snapshot *SaveSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	out := *snapshot
	if out.MatchedPairIDs == nil {
		out.MatchedPairIDs = []int{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates stored snapshot data
func DecodeSnapshot(data []byte) (*SaveSnapshot, error) {
	var snapshot SaveSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if err := ValidateSnapshot(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
