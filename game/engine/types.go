package engine

// Phase is the game-level state of a round
type Phase string

const (
	PhasePlaying    Phase = "playing"
	PhaseGameOver   Phase = "game_over"
	PhaseRestarting Phase = "restarting"
)

// Sound identifies a sound effect requested from the presenter
type Sound string

const (
	SoundFlip    Sound = "flip"
	SoundUnflip  Sound = "unflip"
	SoundShuffle Sound = "shuffle"
)

const (
	// Validation constants
	MinCardsToSpawn = 2
	MaxCardsToSpawn = 16
	MinMatches      = MinCardsToSpawn / 2
	MaxMatches      = MaxCardsToSpawn / 2
	MaxDelayMs      = 10000

	DefaultCardCheckDelayMs  = 1000
	DefaultCardUnflipDelayMs = 750

	DefaultMatchesToSpawnMessage = "New Number of Matches: %d"
	DefaultGameOverMessage       = "Guesses: %d"
)

// Card represents a single dealt card
type Card struct {
	ID           string `json:"id"`
	Variant      int    `json:"variant"`
	VariantName  string `json:"variant_name"`
	Flipped      bool   `json:"flipped"`
	Matched      bool   `json:"matched"`
	Interactable bool   `json:"interactable"`
}

// Guess is the content of a filled guess slot
type Guess struct {
	CardID  string `json:"card_id"`
	Index   int    `json:"index"` // Position in GameState.Cards
	Variant int    `json:"variant"`
}

// GameMessages holds the format strings shown to the player
type GameMessages struct {
	MatchesToSpawn string `json:"matches_to_spawn" yaml:"matches_to_spawn"`
	GameOver       string `json:"game_over" yaml:"game_over"`
}

// GameConfig represents the game configuration loaded from JSON or YAML
type GameConfig struct {
	Name               string       `json:"name" yaml:"name"`
	Description        string       `json:"description" yaml:"description"`
	CardsToSpawn       int          `json:"cards_to_spawn" yaml:"cards_to_spawn"`
	CardCheckDelayMs   int          `json:"card_check_delay_ms" yaml:"card_check_delay_ms"`
	CardUnflipDelayMs  int          `json:"card_unflip_delay_ms" yaml:"card_unflip_delay_ms"`
	Variants           []string     `json:"variants" yaml:"variants"`
	LegacyVariantRange bool         `json:"legacy_variant_range,omitempty" yaml:"legacy_variant_range,omitempty"`
	Seed               uint64       `json:"seed,omitempty" yaml:"seed,omitempty"`
	Messages           GameMessages `json:"messages" yaml:"messages"`
}

// GameState represents the complete state of one session
type GameState struct {
	Cards        []Card `json:"cards"`
	TotalMatches int    `json:"total_matches"`
	GuessCount   int    `json:"guess_count"`
	CorrectCount int    `json:"correct_count"`
	Guess1       *Guess `json:"guess1,omitempty"`
	Guess2       *Guess `json:"guess2,omitempty"`

	// CardsToSpawn is the deal size used by the next spawn. It only changes the
	// current round through a restart.
	CardsToSpawn       int    `json:"cards_to_spawn"`
	MatchesToSpawnText string `json:"matches_to_spawn_text"`

	Phase      Phase  `json:"phase"`
	GameOver   bool   `json:"game_over"`
	Message    string `json:"message"`
	Round      int    `json:"round"`
	ConfigName string `json:"config_name"`
}

// HiddenVariant replaces the variant of a face-down card in a public state
const HiddenVariant = -1

// Public returns a copy of the state that only shows the faces of flipped
// and matched cards. Guess slots pointing at face-down cards are hidden too.
func (s *GameState) Public() *GameState {
	if s == nil {
		return nil
	}
	c := cloneState(s)
	for i := range c.Cards {
		if !c.Cards[i].Flipped && !c.Cards[i].Matched {
			c.Cards[i].Variant = HiddenVariant
			c.Cards[i].VariantName = ""
		}
	}
	for _, g := range []*Guess{c.Guess1, c.Guess2} {
		if g == nil {
			continue
		}
		if i := indexOfCard(c.Cards, g.CardID); i < 0 || c.Cards[i].Variant == HiddenVariant {
			g.Variant = HiddenVariant
		}
	}
	return c
}

// FlipResult describes an accepted flip
type FlipResult struct {
	Card           Card `json:"card"`
	Slot           int  `json:"slot"` // 1 or 2
	CheckScheduled bool `json:"check_scheduled"`
}
