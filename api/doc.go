// Package api provides HTTP REST API handlers for the memory match game.
//
// The api package implements:
//   - Session management endpoints
//   - Card flip, restart and pair count endpoints
//   - Paginated event history
//   - Configuration listing, lookup and creation
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Compact view of several sessions (?sessionIds=a,b or ?configName=)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/flip - Flip a card ({"card_id": "..."})
//   - POST /api/sessions/{id}/restart - Clear the table and deal a new round
//   - POST /api/sessions/{id}/matches - Change the pair count ({"matches": 6})
//   - GET /api/sessions/{id}/history - Event history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get a configuration
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - WebSocket stream of state snapshots and game events
//
// A rejected flip is not an HTTP error: the response is 200 with
// "success": false and a reason_code such as "guesses_full" or "same_card".
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code:
//
//	{
//	  "error": "error message"
//	}
//
// Unknown sessions and configs map to 404, malformed bodies and out of range
// pair counts to 400, and a config without enough variants to 409.
package api
