package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate deal size
	if config.CardsToSpawn < MinCardsToSpawn || config.CardsToSpawn > MaxCardsToSpawn {
		return fmt.Errorf("config validation: cards_to_spawn must be between %d and %d, got %d",
			MinCardsToSpawn, MaxCardsToSpawn, config.CardsToSpawn)
	}
	if config.CardsToSpawn%2 != 0 {
		return fmt.Errorf("config validation: cards_to_spawn must be even, got %d", config.CardsToSpawn)
	}

	// Validate delays
	if config.CardCheckDelayMs < 0 || config.CardCheckDelayMs > MaxDelayMs {
		return fmt.Errorf("config validation: card_check_delay_ms must be between 0 and %d, got %d",
			MaxDelayMs, config.CardCheckDelayMs)
	}
	if config.CardUnflipDelayMs < 0 || config.CardUnflipDelayMs > MaxDelayMs {
		return fmt.Errorf("config validation: card_unflip_delay_ms must be between 0 and %d, got %d",
			MaxDelayMs, config.CardUnflipDelayMs)
	}

	// Validate variant pool
	if len(config.Variants) == 0 {
		return fmt.Errorf("config validation: at least one variant is required")
	}
	seen := make(map[string]bool, len(config.Variants))
	for i, v := range config.Variants {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("config validation: variant %d has an empty name", i+1)
		}
		if seen[v] {
			return fmt.Errorf("config validation: duplicate variant '%s'", v)
		}
		seen[v] = true
	}

	pairs := config.CardsToSpawn / 2
	if usable := config.UsableVariants(); usable < pairs {
		return fmt.Errorf("config validation: %w: %d pairs need %d variants, only %d usable",
			ErrInsufficientVariants, pairs, pairs, usable)
	}

	// Validate format strings
	if config.Messages.MatchesToSpawn != "" && !strings.Contains(config.Messages.MatchesToSpawn, "%d") {
		return fmt.Errorf("config validation: messages.matches_to_spawn must contain %%d for the match count")
	}
	if config.Messages.GameOver != "" && !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for the guess count")
	}

	return nil
}

// UsableVariants returns how many variants of the pool a deal may draw from.
// With LegacyVariantRange the last variant is never dealt, matching the
// exclusive upper bound of the classic random draw; a pool of one is kept.
func (c *GameConfig) UsableVariants() int {
	n := len(c.Variants)
	if c.LegacyVariantRange && n > 1 {
		return n - 1
	}
	return n
}

// CardCheckDelay returns the delay between the second guess and the match check
func (c *GameConfig) CardCheckDelay() time.Duration {
	return time.Duration(c.CardCheckDelayMs) * time.Millisecond
}

// CardUnflipDelay returns the delay after a mismatch or restart unflip
func (c *GameConfig) CardUnflipDelay() time.Duration {
	return time.Duration(c.CardUnflipDelayMs) * time.Millisecond
}

// ApplyDefaults fills empty message formats with their defaults
func (c *GameConfig) ApplyDefaults() {
	if c.Messages.MatchesToSpawn == "" {
		c.Messages.MatchesToSpawn = DefaultMatchesToSpawnMessage
	}
	if c.Messages.GameOver == "" {
		c.Messages.GameOver = DefaultGameOverMessage
	}
}

// ParseGameConfig decodes a configuration from JSON or YAML depending on the
// file extension, then validates it
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
		}
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(configPath, data)
}

// DefaultGameConfig returns the built-in configuration used when no config
// files are available: 16 cards, a one second check delay and a 750ms
// unflip delay.
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:              "default",
		Description:       "Built-in 8 pair memory game",
		CardsToSpawn:      16,
		CardCheckDelayMs:  DefaultCardCheckDelayMs,
		CardUnflipDelayMs: DefaultCardUnflipDelayMs,
		Variants: []string{
			"apple", "banana", "cherry", "grape",
			"lemon", "orange", "pear", "plum",
			"strawberry",
		},
	}
	config.ApplyDefaults()
	return config
}
