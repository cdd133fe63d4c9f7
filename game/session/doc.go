// Package session provides session management and snapshot storage for the
// Memory Match Game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//   - Snapshot stores backed by JSON files or SQLite
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// session owns its own engine, dealt with the configuration's default grid on
// creation. FileStore and SQLiteStore implement service.SnapshotStore and keep
// one snapshot per profile, where the profile is the session ID.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters. Caller supplied IDs are limited to
// letters, digits, '-' and '_' because they double as file names. Lookups
// are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store, err := session.OpenSQLiteStore("saves.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//	snapshot := sess.Engine.Save()
//	err = store.Save(sess.ID, &snapshot)
//
// Stores return engine.ErrSnapshotNotFound when a profile has no save and
// engine.ErrSnapshotCorrupt when the stored record cannot be decoded or fails
// validation.
package session
