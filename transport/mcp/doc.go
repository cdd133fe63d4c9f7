// Package mcp exposes the Memory Match Game to AI agents through the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against the
// api package, so the MCP surface never touches game state directly.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: board rendering with score, moves and time
//   - select_card: flip a card by index
//   - set_grid_size, reset_game: deal a new board
//   - tick: advance game time so pending pairs resolve
//   - save_game, load_game: snapshot persistence
//   - list_configs: available board presets
//   - game_instructions: complete rules
//
// Board Rendering:
//
// Cards are printed row by row as index:face, where face is "??" for a
// face-down card, the symbol for a face-up card and [symbol] once matched.
//
// Transport Modes:
//   - Stdio: the mcp command serves GetMCPServer() with server.ServeStdio
//   - HTTP: the serve command mounts POST /mcp and forwards each JSON-RPC
//     message to HandleMessage
package mcp
