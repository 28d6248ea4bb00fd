// Package engine provides the core game logic for the Memory Match Game.
//
// The engine package implements the game mechanics including:
//   - Dealing paired cards from a configurable variant pool
//   - Shuffling the dealt cards into their display order
//   - Two-slot guess tracking with a delayed match check
//   - Match counting, game over detection and restart
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current round, while
// GameConfig defines the deal size, delays and variant pool loaded from JSON
// or YAML files.
//
// Ports:
//
// The engine never draws or plays anything itself. Visual and audio effects go
// through a Presenter, and every delay goes through a Scheduler so callers can
// substitute their own clock. Presenter methods are invoked while the engine
// lock is held and must not call back into the engine.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, engine.WithPresenter(p))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Flip two cards; the match check fires after card_check_delay_ms
//	state := gameEngine.GetState()
//	gameEngine.FlipCard(state.Cards[0].ID)
//	gameEngine.FlipCard(state.Cards[1].ID)
//
// Game Rules:
//
// The player flips two cards per guess. If they share a variant they stay
// face up, otherwise they are turned back over after a short delay. The game
// ends when every pair has been found; the final score is the number of
// guesses taken.
package engine
