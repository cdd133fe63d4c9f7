// Package websocket provides the WebSocket feed for the Memory Match Game.
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Each client has a read and a write goroutine; the hub's Run
// loop is the only goroutine that touches the client registry.
//
// Message Protocol:
//
// Clients connect with ?session=<id> and only listen. Every frame is a JSON
// Message:
//   - state_update: game_state holds the full state view
//   - flip, match, mismatch, resolved, new_game, loaded: data holds the event
//   - won: data holds {score, moves, elapsed_time}
//
// Hub implements service.Publisher, so the game service pushes updates after
// every mutation and every clock tick that produced events:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, configs, service.WithPublisher(hub))
//
// Publish never blocks the caller. When the broadcast queue is full the
// message is dropped and logged; a client whose own buffer is full is
// disconnected.
package websocket
