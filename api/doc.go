// Package api provides HTTP REST API handlers for the Memory Match Game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current state view
//   - POST /api/sessions/{id}/select - Flip a card ({"index": 3})
//   - POST /api/sessions/{id}/grid - Deal a new grid ({"rows": 3, "columns": 4})
//   - POST /api/sessions/{id}/reset - Deal a new grid of the current size
//   - POST /api/sessions/{id}/tick - Advance game time ({"delta_seconds": 0.5})
//
// Snapshots:
//   - GET /api/sessions/{id}/save - Read the stored snapshot
//   - POST /api/sessions/{id}/save - Store the current progress
//   - DELETE /api/sessions/{id}/save - Remove the stored snapshot
//   - POST /api/sessions/{id}/load - Restore score, moves and time from the snapshot
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get a configuration
//   - POST /api/configs - Save a configuration
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket feed, see package websocket
//
// A select that the game ignores (face-up card, resolution pending, game won)
// still answers 200 with "success": false and the unchanged state.
//
// Error Handling:
//
// Errors are returned as JSON, {"error": "message"}, with the status chosen
// from the underlying error:
//
//	400  invalid grid size, insufficient symbols, invalid config, bad body
//	404  unknown session, config or snapshot
//	409  session already exists
//	422  stored snapshot is corrupt
//	503  snapshot storage disabled
//	500  anything else
package api
