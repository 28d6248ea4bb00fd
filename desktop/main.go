package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	screenWidth  = 800
	screenHeight = 720
	headerHeight = 140
	footerHeight = 30
	columns      = 4
	cardWidth    = 150
	cardHeight   = 100
	cardGap      = 20
	minMatches   = 1
	maxMatches   = 8
)

var serverURL = flag.String("url", "http://localhost:8080", "Game server URL")

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Colors used to tell sessions apart in the header
var sessionColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// Card mirrors a card of the server's game state
type Card struct {
	ID           string `json:"id"`
	Variant      int    `json:"variant"`
	VariantName  string `json:"variant_name"`
	Flipped      bool   `json:"flipped"`
	Matched      bool   `json:"matched"`
	Interactable bool   `json:"interactable"`
}

// GameState mirrors the server's game state
type GameState struct {
	Cards              []Card `json:"cards"`
	TotalMatches       int    `json:"total_matches"`
	GuessCount         int    `json:"guess_count"`
	CorrectCount       int    `json:"correct_count"`
	CardsToSpawn       int    `json:"cards_to_spawn"`
	MatchesToSpawnText string `json:"matches_to_spawn_text"`
	Phase              string `json:"phase"`
	GameOver           bool   `json:"game_over"`
	Message            string `json:"message"`
	ConfigName         string `json:"config_name"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string     `json:"session_id"`
	GameState *GameState `json:"game_state,omitempty"`
	Event     string     `json:"event,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	configID   string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	status     string // result of the last action
}

// SessionListItem represents a session from the server. ConfigName holds
// the config ID.
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem represents a game configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Game represents the desktop game client
type Game struct {
	sessions         []*SessionData
	activeSession    int
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // config ID for new sessions
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
	}

	// Session IDs on the command line skip the welcome screen
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

func apiURL(format string, args ...interface{}) string {
	return strings.TrimSuffix(*serverURL, "/") + fmt.Sprintf(format, args...)
}

// postJSON posts payload and decodes the response into out when non-nil
func postJSON(endpoint string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

func getJSON(endpoint string, out interface{}) error {
	resp, err := http.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// addSession adds a session to the game, creating one when sessionID is empty
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	if sessionID == "" {
		configID := ""
		if len(g.sessions) > 0 {
			configID = g.sessions[0].configID
		}
		id, err := createSession(configID)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		session.sessionID = id
	}

	g.sessions = append(g.sessions, session)

	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		go g.listenWebSocket(session)
	}

	if err := g.fetchSessionInfo(session); err != nil {
		log.Printf("Error fetching session %s: %v", session.sessionID, err)
	}
}

// fetchSessionInfo loads the session's config ID and current state
func (g *Game) fetchSessionInfo(session *SessionData) error {
	var info SessionListItem
	if err := getJSON(apiURL("/api/sessions/%s", url.PathEscape(session.sessionID)), &info); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.configID = info.ConfigName
	if info.GameState != nil {
		session.state = info.GameState
	}
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// createSession creates a new game session with an optional config ID
func createSession(configID string) (string, error) {
	payload := map[string]string{}
	if configID != "" {
		payload["config_id"] = configID
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := postJSON(apiURL("/api/sessions"), payload, &result); err != nil {
		return "", err
	}

	log.Printf("Created new session: %s (config: %s)", result.ID, configID)
	return result.ID, nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	base, err := url.Parse(*serverURL)
	if err != nil {
		return err
	}

	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := url.URL{Scheme: scheme, Host: base.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket applies state updates pushed by the server
func (g *Game) listenWebSocket(session *SessionData) {
	defer session.wsConn.Close()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			g.stateMutex.Lock()
			session.wsConn = nil
			g.stateMutex.Unlock()
			return
		}

		// Several messages may be batched, one per line
		for _, line := range bytes.Split(message, []byte{'\n'}) {
			var wsMsg WSMessage
			if err := json.Unmarshal(line, &wsMsg); err != nil {
				log.Printf("WebSocket JSON parse error: %v", err)
				continue
			}
			if wsMsg.GameState == nil {
				continue
			}

			g.stateMutex.Lock()
			session.state = wsMsg.GameState
			session.lastUpdate = time.Now()
			g.stateMutex.Unlock()
		}
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	var state GameState
	if err := getJSON(apiURL("/api/sessions/%s/state", url.PathEscape(session.sessionID)), &state); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.state = &state
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := getJSON(apiURL("/api/sessions"), &sessionsResp); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessionsResp.Sessions

	var configs []ConfigListItem
	if err := getJSON(apiURL("/api/configs"), &configs); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	ws.availableConfigs = configs
}

// flip sends a flip for the card under the cursor of the active session
func (g *Game) flip(session *SessionData, cardID string) {
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := postJSON(apiURL("/api/sessions/%s/flip", url.PathEscape(session.sessionID)), map[string]string{"card_id": cardID}, &result)

	g.stateMutex.Lock()
	switch {
	case err != nil:
		session.status = err.Error()
	default:
		session.status = result.Message
	}
	g.stateMutex.Unlock()

	if session.wsConn == nil {
		g.fetchGameState(session)
	}
}

func (g *Game) restart(session *SessionData) {
	if err := postJSON(apiURL("/api/sessions/%s/restart", url.PathEscape(session.sessionID)), map[string]string{}, nil); err != nil {
		session.status = err.Error()
	}
}

// changeMatches moves the matches-to-spawn setting by delta
func (g *Game) changeMatches(session *SessionData, delta int) {
	if session.state == nil {
		return
	}
	matches := session.state.CardsToSpawn/2 + delta
	if matches < minMatches || matches > maxMatches {
		return
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := postJSON(apiURL("/api/sessions/%s/matches", url.PathEscape(session.sessionID)), map[string]int{"matches": matches}, &resp); err != nil {
		session.status = err.Error()
		return
	}
	session.status = resp.Message
	g.fetchGameState(session)
}

// cardAt returns the index of the card drawn under screen point (x, y)
func cardAt(count, x, y int) int {
	x -= cardGap
	y -= headerHeight + cardGap
	if x < 0 || y < 0 {
		return -1
	}

	col, row := x/(cardWidth+cardGap), y/(cardHeight+cardGap)
	if col >= columns || x%(cardWidth+cardGap) >= cardWidth || y%(cardHeight+cardGap) >= cardHeight {
		return -1
	}

	index := row*columns + col
	if index >= count {
		return -1
	}
	return index
}

func cardRect(index int) (float64, float64) {
	col, row := index%columns, index/columns
	return float64(cardGap + col*(cardWidth+cardGap)), float64(headerHeight + cardGap + row*(cardHeight+cardGap))
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	total := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < total-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < total {
		sessionID := ws.availableSessions[ws.cursorPos].ID
		if g.selectedSessions[sessionID] {
			delete(g.selectedSessions, sessionID)
		} else {
			g.selectedSessions[sessionID] = true
		}
	}

	// Tab cycles through the configs, then back to the default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		next := 0
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				next = i + 1
				break
			}
		}
		if next >= len(ws.availableConfigs) {
			ws.newSessionConfig = ""
		} else {
			ws.newSessionConfig = ws.availableConfigs[next].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		id, err := createSession(ws.newSessionConfig)
		if err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		} else {
			g.selectedSessions[id] = true
			g.loadWelcomeData()
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if len(g.selectedSessions) == 0 {
			ws.errorMsg = "Please select at least one session"
		} else {
			for sessionID := range g.selectedSessions {
				g.addSession(sessionID)
			}
			g.selectedSessions = make(map[string]bool)
			g.currentScreen = ScreenGame
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.currentScreen = ScreenWelcome
			g.loadWelcomeData()
		}
		return nil
	}

	// Poll sessions without a WebSocket
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		polling := session.wsConn == nil && time.Since(session.lastUpdate) > 500*time.Millisecond
		g.stateMutex.RUnlock()
		if polling {
			if err := g.fetchGameState(session); err != nil {
				log.Printf("Error fetching state for %s: %v", session.sessionID, err)
			}
		}
	}

	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			if idx := int(i - ebiten.Key1); idx < len(g.sessions) {
				g.activeSession = idx
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < len(sessionColors) {
		g.addSession("")
	}

	session := g.sessions[g.activeSession]

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.stateMutex.RLock()
		var cardID string
		if session.state != nil {
			x, y := ebiten.CursorPosition()
			if i := cardAt(len(session.state.Cards), x, y); i >= 0 {
				cardID = session.state.Cards[i].ID
			}
		}
		g.stateMutex.RUnlock()

		if cardID != "" {
			g.flip(session, cardID)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart(session)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.changeMatches(session, 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.changeMatches(session, -1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== MEMORY MATCH - SESSION SELECT ===", 230, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.availableSessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		checkbox := "[ ]"
		if g.selectedSessions[session.ID] {
			checkbox = "[X]"
		}

		progress := ""
		if state := session.GameState; state != nil {
			progress = fmt.Sprintf("Pairs:%d/%d Guesses:%d", state.CorrectCount, state.TotalMatches, state.GuessCount)
			if state.GameOver {
				progress += " DONE"
			}
		}

		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s%s %s | %s | %s", cursor, checkbox, session.ID, session.ConfigName, progress), 20, y)
		y += 15
	}

	y += 20
	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("New session config: %s", configDisplay), 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30
	for _, line := range []string{
		"CONTROLS:",
		"  ↑/↓      - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle config for new session",
		"  N        - Create new session with selected config",
		"  ENTER    - Open selected sessions",
		"  F5       - Refresh session list",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGameScreen renders the cards of the active session
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	screen.Fill(color.RGBA{20, 30, 25, 255})

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	g.drawSessionStats(screen)

	session := g.sessions[g.activeSession]
	state := session.state
	if state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 20, headerHeight+20)
		return
	}

	for i, card := range state.Cards {
		x, y := cardRect(i)
		ebitenutil.DrawRect(screen, x, y, cardWidth, cardHeight, cardColor(card))

		label := "?"
		if card.Flipped || card.Matched {
			label = card.VariantName
		}
		ebitenutil.DebugPrintAt(screen, label, int(x)+10, int(y)+cardHeight/2-8)
	}

	if state.Phase == "restarting" {
		ebitenutil.DebugPrintAt(screen, "Shuffling...", screenWidth/2-40, headerHeight+4)
	}

	if state.GameOver {
		ebitenutil.DrawRect(screen, screenWidth/2-150, screenHeight/2-40, 300, 80, color.RGBA{0, 0, 0, 220})
		ebitenutil.DebugPrintAt(screen, "ALL PAIRS FOUND", screenWidth/2-50, screenHeight/2-20)
		ebitenutil.DebugPrintAt(screen, state.Message, screenWidth/2-50, screenHeight/2)
		ebitenutil.DebugPrintAt(screen, "Press R to play again", screenWidth/2-65, screenHeight/2+20)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s | %s", state.MatchesToSpawnText, session.status), 10, screenHeight-footerHeight-15)
	ebitenutil.DebugPrintAt(screen, "Click: Flip | R: Restart | +/-: Matches | 1-9: Switch | N: New | ESC: Menu", 10, screenHeight-20)
}

func cardColor(card Card) color.Color {
	switch {
	case card.Matched:
		return color.RGBA{70, 90, 70, 255}
	case card.Flipped:
		return color.RGBA{230, 200, 120, 255}
	case card.Interactable:
		return color.RGBA{60, 90, 160, 255}
	default:
		return color.RGBA{50, 50, 70, 255}
	}
}

// drawSessionStats draws stats for all sessions in header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	for idx, session := range g.sessions {
		if session.state == nil {
			continue
		}
		y := 5 + idx*15

		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, sessionColors[idx%len(sessionColors)])

		activeMarker := ""
		if idx == g.activeSession {
			activeMarker = ">>>"
		}
		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s] PAIRS:%d/%d GUESSES:%d",
			activeMarker, idx+1, session.sessionID, connStatus,
			session.state.CorrectCount, session.state.TotalMatches, session.state.GuessCount)
		if session.state.GameOver {
			info += " DONE"
		}
		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()

	game := NewGame(flag.Args())

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Memory Match - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
