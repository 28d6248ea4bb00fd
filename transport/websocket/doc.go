// Package websocket provides WebSocket transport for the memory match game.
//
// A central Hub keeps the connected clients grouped by session ID. Each
// client connection is served by a read goroutine and a write goroutine.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "match", "data": {...}}
//
// "state_update" carries a full snapshot. Every other event name is one of
// the game event types (flip, unflip, match, cards_destroyed, sound,
// game_over, ...) and carries the recorded event as data. Several queued
// messages may arrive in one frame separated by newlines. Incoming client
// messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	factory := service.NewEngineFactory(hub)
//
// The Hub implements service.Notifier. Game engines call it with their lock
// held, so broadcasts are queued without blocking and dropped when the
// queue is full.
package websocket
