// Package engine provides the core game logic for the Memory Match Game.
//
// The engine package implements the game mechanics including:
//   - Fair grid generation (Fisher-Yates over duplicated pair ids)
//   - Card state transitions (face down, face up, matched)
//   - The two-card selection protocol with deferred resolutions
//   - Score, move and elapsed-time bookkeeping and win detection
//   - The save snapshot used to resume a session
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a read-only view handed to
// clients, GameConfig defines symbols, default dimensions and timing, and
// SaveSnapshot is the persisted projection of a session.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := gameEngine.InitializeNewGame(2, 4); err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.SelectCard(0)
//	gameEngine.SelectCard(5)
//	gameEngine.Tick(time.Second) // runs the due resolution
//	state := gameEngine.GetState()
//
// Timing:
//
// The engine owns no clock and starts no goroutines. Resolutions are queued
// on a Scheduler tagged with the grid generation and run from Tick; a grid
// rebuild bumps the generation so any resolution still queued for the old
// grid is discarded. While a resolution is pending the session is in the
// resolving phase and further selections are ignored.
//
// Snapshots:
//
// A SaveSnapshot stores score, moves, dimensions, elapsed time and matched
// pair ids. Loading deals a new shuffled grid of the same size; the saved
// matched ids are reported in GameState.RestoredPairIDs but no card starts
// out matched.
package engine
