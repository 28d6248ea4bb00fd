// Package mcp provides a Model Context Protocol server for the Memory Match Game.
//
// The server does not hold game state itself: every tool call is proxied to
// the REST API at the client's base URL, so MCP agents, browsers and the
// desktop client all share the same sessions.
//
// MCP Tools:
//   - create_session: Create a session, optionally from a config_id
//   - list_sessions: List active sessions
//   - get_session: Get one session with its board
//   - game_state: Show the board as a grid of face-down, face-up and matched cards
//   - flip_card: Flip a card by board index or card ID
//   - restart_game: Turn every card back over and deal a new round
//   - set_matches: Change the number of pairs dealt by the next restart
//   - event_history: Page through the session's event log
//   - list_configs: List available game configurations
//   - game_instructions: Explain the rules and the turn cycle
//   - describe_card: Show one card by board index
//
// Match checks run on a delay, so a second flip only schedules the check;
// agents should read game_state again before the next turn.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
