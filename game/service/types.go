package service

import (
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	HasSave        bool               `json:"has_save"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of an operation that changes a session
type ActionResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type        string    `json:"type"` // "new_game", "loaded", "flip", "match", "mismatch", "resolved", "won"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Cards       []int     `json:"cards,omitempty"`
	PairID      *int      `json:"pair_id,omitempty"`
	Score       int       `json:"score"`
	Moves       int       `json:"moves"`
	ElapsedTime float64   `json:"elapsed_time"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	SymbolCount int    `json:"symbol_count"`
}

// toGameEvents converts engine events into timestamped service events
func toGameEvents(events []engine.GameEvent, now time.Time) []GameEvent {
	if len(events) == 0 {
		return nil
	}
	result := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		out := GameEvent{
			Type:        string(ev.Type),
			Message:     ev.Message,
			Timestamp:   now,
			Cards:       ev.Cards,
			Score:       ev.Score,
			Moves:       ev.Moves,
			ElapsedTime: ev.ElapsedTime,
		}
		if ev.PairID >= 0 {
			pairID := ev.PairID
			out.PairID = &pairID
		}
		result = append(result, out)
	}
	return result
}

// hasEvent reports whether events contains an event of the given type
func hasEvent(events []GameEvent, eventType engine.EventType) bool {
	for _, ev := range events {
		if ev.Type == string(eventType) {
			return true
		}
	}
	return false
}
