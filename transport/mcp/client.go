package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

// boardColumns is the number of cards per row in text renderings
const boardColumns = 4

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching cards. Cards are dealt face down; flip two per turn.
A matching pair is removed, a mismatch flips back after a short delay.
The final score is the number of guesses (pairs of flips): fewer is better.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the board (face-down cards show as ??)
- flip_card: Flip one card by index or card ID
- restart_game: Clear the table and deal a new round
- set_matches: Change how many pairs the next deal uses (1-8)
- event_history: View past game events
- list_configs: List available configurations
- describe_card: Details of one card position
- game_instructions: Full rules

NOTE: After the second flip the result resolves asynchronously. Call game_state
again before flipping a third card.`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board. Face-down cards are hidden.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_card",
		Description: "Flip one face-down card. Give either index (board position) or card_id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "0-based board position shown by game_state",
				},
				"card_id": map[string]interface{}{
					"type":        "string",
					"description": "Card ID (alternative to index)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleFlipCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Cancel pending checks, clear the table and deal a new round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_matches",
		Description: "Set the number of pairs dealt by the next restart",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"matches": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of pairs (%d-%d)", engine.MinMatches, engine.MaxMatches),
				},
			},
			Required: []string{"session_id", "matches"},
		},
	}, c.handleSetMatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the session's event history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default: 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Events per page (default: 20, max: 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "Sort order: desc (newest first, default) or asc",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_card",
		Description: "Describe the card at a board position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "0-based board position",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleDescribeCard)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// intArg reads a numeric argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	if configID == "" {
		configID, _ = args["config_name"].(string)
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil {
			status = string(s.GameState.Phase)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleFlipCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cardID, _ := args["card_id"].(string)

	if cardID == "" {
		index, ok := intArg(args, "index")
		if !ok {
			return mcp.NewToolResultError("either index or card_id is required"), nil
		}

		var state engine.GameState
		if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if index < 0 || index >= len(state.Cards) {
			return mcp.NewToolResultError(fmt.Sprintf("index %d is out of range: the board has %d cards (0-%d)",
				index, len(state.Cards), len(state.Cards)-1)), nil
		}
		cardID = state.Cards[index].ID
	}

	var result service.FlipResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/flip"), map[string]string{"card_id": cardID}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFlipResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Restarting: the table is cleared and a new round is being dealt.\n" +
		"Call game_state in a moment to see the new cards.\n\n" + formatGameState(response.State)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	matches, ok := intArg(args, "matches")
	if !ok {
		return mcp.NewToolResultError("matches is required"), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/matches"), map[string]int{"matches": matches}, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\nThe new pair count applies after restart_game.", response.Message)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall(ctx, "GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Cards: %d, Variants: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.CardsToSpawn, config.VariantCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Clear the table by finding every matching pair, using as few guesses as possible.

GAME MECHANICS:
• Deal: Each round deals 2-16 cards (1-8 pairs) face down in random order.
• Flip: Flip one face-down card at a time. The first flip is your first guess,
  the second flip your second guess.
• Check: Shortly after the second flip the two cards are compared.
  - Same picture: a match. Both cards are removed from the table.
  - Different: both cards flip back face down after a short delay.
• Guesses: Every completed pair of flips counts as one guess, match or not.
• Game Over: When the last pair is matched the game shows "Guesses: N".
• Restart: restart_game clears the table (including an unresolved check)
  and deals a new round after a moment.
• Pair count: set_matches changes how many pairs the next deal uses.

FLIP REJECTIONS (reason codes):
• guesses_full: two cards are already up and waiting to be checked
• same_card: that card is already your first guess
• card_not_interactable: the card is animating or already matched
• game_over / restarting: the round is not accepting flips
• invalid_selection: unknown card

BOARD LEGEND (game_state):
  ??        face-down card
  [apple]   face-up card showing its picture
  ✓         matched and removed

STRATEGY TIPS:
1. Remember every picture you have seen, with its position.
2. When you flip a card whose partner you have already seen, flip the partner next.
3. Otherwise flip an unseen card: it might pair with a known one.
4. Wait for the check to finish (game_state) before the next pair.
5. The minimum possible score equals the number of pairs.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	index, ok := intArg(args, "index")
	if !ok {
		return mcp.NewToolResultError("index is required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if index < 0 || index >= len(state.Cards) {
		return mcp.NewToolResultError(fmt.Sprintf("index %d is out of range: the board has %d cards (0-%d)",
			index, len(state.Cards), len(state.Cards)-1)), nil
	}

	return mcp.NewToolResultText(describeCard(&state, index)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// cardLabel renders a card without revealing face-down pictures
func cardLabel(card engine.Card) string {
	switch {
	case card.Matched:
		return "✓"
	case card.Flipped:
		return "[" + card.VariantName + "]"
	default:
		return "??"
	}
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Round: %d | Phase: %s | Pairs: %d | Guesses: %d | Matched: %d/%d\n",
		state.Round, state.Phase, state.TotalMatches, state.GuessCount, state.CorrectCount, state.TotalMatches)
	if state.MatchesToSpawnText != "" {
		fmt.Fprintf(&result, "Next deal: %d cards (%s)\n", state.CardsToSpawn, state.MatchesToSpawnText)
	}
	result.WriteString("\n")

	if len(state.Cards) == 0 {
		result.WriteString("(table is empty)\n")
	}
	for i, card := range state.Cards {
		fmt.Fprintf(&result, "%2d:%-12s", i, cardLabel(card))
		if (i+1)%boardColumns == 0 || i == len(state.Cards)-1 {
			result.WriteString("\n")
		}
	}

	if state.Guess1 != nil {
		fmt.Fprintf(&result, "\nFirst guess: #%d", state.Guess1.Index)
		if state.Guess2 != nil {
			fmt.Fprintf(&result, " | Second guess: #%d (check pending)", state.Guess2.Index)
		}
		result.WriteString("\n")
	}

	if state.GameOver {
		result.WriteString("\n🎉 ALL PAIRS FOUND!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatFlipResult(result *service.FlipResult) string {
	var b strings.Builder

	if !result.Success {
		fmt.Fprintf(&b, "✗ Flip rejected (%s): %s\n", result.ReasonCode, result.Message)
	} else {
		name := ""
		if result.Card != nil {
			name = result.Card.VariantName
		}
		fmt.Fprintf(&b, "✓ Guess %d: the card shows %q\n", result.Guess, name)
		if result.CheckScheduled {
			b.WriteString("Both guesses made; the pair is checked shortly. Call game_state to see the outcome.\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func describeCard(state *engine.GameState, index int) string {
	card := state.Cards[index]
	row, col := index/boardColumns, index%boardColumns

	var b strings.Builder
	fmt.Fprintf(&b, "Card #%d (row %d, column %d)\n", index, row, col)
	fmt.Fprintf(&b, "ID: %s\n", card.ID)

	switch {
	case card.Matched:
		b.WriteString("Status: matched\n")
	case card.Flipped:
		fmt.Fprintf(&b, "Status: face up, showing %q\n", card.VariantName)
	default:
		b.WriteString("Status: face down\n")
	}

	if card.Interactable && !card.Flipped && !card.Matched {
		b.WriteString("Can be flipped: yes\n")
	} else {
		b.WriteString("Can be flipped: no\n")
	}

	if g := state.Guess1; g != nil && g.CardID == card.ID {
		b.WriteString("Selected as first guess\n")
	}
	if g := state.Guess2; g != nil && g.CardID == card.ID {
		b.WriteString("Selected as second guess\n")
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	if len(history.Events) == 0 {
		b.WriteString("(no events)\n")
	}
	for _, event := range history.Events {
		fmt.Fprintf(&b, "#%d %s %s", event.Seq, event.Timestamp.Format("15:04:05.000"), event.Type)
		if event.Message != "" {
			fmt.Fprintf(&b, ": %s", event.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}
