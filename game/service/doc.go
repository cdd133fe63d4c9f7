// Package service provides the business logic layer for the Memory Match Game.
//
// The service package implements:
//   - Multi-session game management
//   - Card selection, grid resizing, reset and time advancement
//   - Save and load of session snapshots through a SnapshotStore
//   - Event fan-out to connected clients through a Publisher
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// SnapshotStore persists one snapshot per profile (the session id).
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are not safe for concurrent use, so every engine
// call is made with the service mutex held. RunClock drives all sessions from
// a single ticker; when it is disabled clients advance time with Tick.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	store, _ := session.NewFileStore("saves")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithSnapshotStore(store))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.SelectCard(ctx, info.ID, 0)
//
// A won game is saved automatically unless WithAutoSave(false) is given.
package service
