// Package service provides the business logic layer for the memory match game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Flip processing with machine-friendly rejection codes
//   - Per-session event logs fed by the engine presenter
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Notifier pushes events and state snapshots to connected clients.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are built through an EngineFactory, which attaches a
// presenter that records every presentation call as a GameEvent and forwards it
// to the Notifier, plus a state listener that broadcasts the state after each
// delayed transition (match check, unflip, restart).
//
// Usage:
//
//	hub := websocket.NewHub()
//	factory := service.NewEngineFactory(hub)
//	sessionMgr := session.NewManager(factory)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cardID := sessionInfo.GameState.Cards[0].ID
//	result, err := gameService.FlipCard(ctx, sessionInfo.ID, cardID)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// game state. Sessions track creation time, last access time, and an event
// history for analytics and debugging.
package service
