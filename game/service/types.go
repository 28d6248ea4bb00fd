package service

import (
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// Reason codes reported by a rejected flip
const (
	ReasonInvalidSelection    = "invalid_selection"
	ReasonGuessesFull         = "guesses_full"
	ReasonSameCard            = "same_card"
	ReasonCardNotInteractable = "card_not_interactable"
	ReasonGameOver            = "game_over"
	ReasonRestarting          = "restarting"
)

// FlipResult contains the result of a flip request
type FlipResult struct {
	Success        bool              `json:"success"`
	ReasonCode     string            `json:"reason_code,omitempty"` // Machine-friendly code when the flip was rejected
	Message        string            `json:"message"`
	Guess          int               `json:"guess,omitempty"` // Slot filled by this flip: 1 or 2
	CheckScheduled bool              `json:"check_scheduled"`
	Card           *engine.Card      `json:"card,omitempty"`
	GameState      *engine.GameState `json:"game_state"`
}

// Event types recorded in a session's event log
const (
	EventCardsSpawned   = "cards_spawned"
	EventFlip           = "flip"
	EventUnflip         = "unflip"
	EventInteractable   = "interactable"
	EventMatch          = "match"
	EventCardsDestroyed = "cards_destroyed"
	EventSound          = "sound"
	EventGameOver       = "game_over"
	EventGameOverHidden = "game_over_hidden"
	EventMatchesToSpawn = "matches_to_spawn"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Seq       int       `json:"seq"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	CardIDs   []string  `json:"card_ids,omitempty"`
	Variant   *int      `json:"variant,omitempty"`
	Sound     string    `json:"sound,omitempty"`
	Value     int       `json:"value,omitempty"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []GameEvent `json:"events"`
	TotalEvents int         `json:"total_events"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	CardsToSpawn int    `json:"cards_to_spawn"`
	VariantCount int    `json:"variant_count"`
}
