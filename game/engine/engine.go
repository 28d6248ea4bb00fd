package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	IsGameOver() bool
	GetGuessCount() int
	GetCorrectCount() int

	// Player input
	FlipCard(cardID string) (*FlipResult, error)
	Restart() error
	SetMatchesToSpawn(matches int) error

	// Configuration
	GetConfig() *GameConfig

	// Close cancels every pending delayed action
	Close()
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithPresenter routes visual and audio effects to p
func WithPresenter(p Presenter) Option {
	return func(e *GameEngine) {
		if p != nil {
			e.presenter = p
		}
	}
}

// WithScheduler replaces the wall-clock scheduler. The scheduler must never
// run a callback synchronously from AfterFunc.
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithRand sets the random source used for dealing and shuffling
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) {
		e.rng = r
	}
}

// WithStateListener registers a listener for timer-driven changes
func WithStateListener(l StateListener) Option {
	return func(e *GameEngine) {
		e.listener = l
	}
}

// WithRestoredState starts the engine from a persisted state instead of a
// fresh deal
func WithRestoredState(state *GameState) Option {
	return func(e *GameEngine) {
		e.restore = state
	}
}

// GameEngine implements the Engine interface. All mutation happens under mu,
// from player input or from scheduled callbacks.
type GameEngine struct {
	mu        sync.Mutex
	config    *GameConfig
	state     *GameState
	presenter Presenter
	scheduler Scheduler
	rng       *rand.Rand
	listener  StateListener
	restore   *GameState

	// epoch is bumped whenever pending callbacks are cancelled; a callback
	// scheduled under an older epoch does nothing.
	epoch    uint64
	timerSeq uint64
	timers   map[uint64]Timer
}

// NewEngine creates a new game engine with the provided configuration and
// deals the first round
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	cfg := *config
	cfg.Variants = slices.Clone(config.Variants)
	cfg.ApplyDefaults()

	e := &GameEngine{
		config:    &cfg,
		presenter: NopPresenter{},
		scheduler: realScheduler{},
		timers:    make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		round := 0
		if e.restore != nil {
			round = e.restore.Round
		}
		e.rng = newRand(cfg.Seed, round)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restore != nil {
		restore := e.restore
		e.restore = nil
		if err := e.restoreLocked(restore); err != nil {
			return nil, err
		}
		return e, nil
	}

	e.state = newGameState(&cfg)
	if err := e.spawnCardsLocked(cfg.CardsToSpawn); err != nil {
		return nil, err
	}
	e.presenter.HideGameOver()
	e.presenter.SetMatchesToSpawnText(e.state.MatchesToSpawnText)

	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	engine, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("default game config is invalid: %v", err))
	}
	return engine
}

// newRand seeds the deal generator. A restored seeded session continues from
// its saved round so it does not replay the first deal.
func newRand(seed uint64, round int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if round == 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(seed, seed^(uint64(round)*0x9e3779b97f4a7c15)))
}

func newGameState(config *GameConfig) *GameState {
	return &GameState{
		Cards:              []Card{},
		CardsToSpawn:       config.CardsToSpawn,
		MatchesToSpawnText: fmt.Sprintf(config.Messages.MatchesToSpawn, config.CardsToSpawn/2),
		Phase:              PhasePlaying,
		ConfigName:         config.Name,
	}
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// SetState replaces the game state (used for persistence loading). Pending
// delayed actions are cancelled; a completed guess pair gets a fresh match
// check and an interrupted restart is finished.
func (e *GameEngine) SetState(state *GameState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restoreLocked(state)
}

// IsGameOver returns whether every pair has been found
func (e *GameEngine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GameOver
}

// GetGuessCount returns the number of completed guess pairs
func (e *GameEngine) GetGuessCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GuessCount
}

// GetCorrectCount returns the number of pairs found
func (e *GameEngine) GetCorrectCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CorrectCount
}

// GetConfig returns the engine configuration. Callers must not modify it.
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Close cancels every pending delayed action
func (e *GameEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimersLocked()
}

// FlipCard registers a guess for the card with the given ID
func (e *GameEngine) FlipCard(cardID string) (*FlipResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case PhaseRestarting:
		return nil, ErrRestarting
	case PhaseGameOver:
		return nil, ErrGameOver
	}

	index := indexOfCard(e.state.Cards, cardID)
	if index < 0 {
		return nil, ErrInvalidSelection
	}
	if e.state.Guess2 != nil {
		return nil, ErrGuessesFull
	}
	if e.state.Guess1 != nil && e.state.Guess1.CardID == cardID {
		return nil, ErrSameCard
	}

	card := &e.state.Cards[index]
	if !card.Interactable {
		return nil, ErrCardNotInteractable
	}

	guess := &Guess{CardID: card.ID, Index: index, Variant: card.Variant}
	result := &FlipResult{}

	if e.state.Guess1 == nil {
		e.state.Guess1 = guess
		result.Slot = 1
	} else {
		e.state.Guess2 = guess
		e.state.GuessCount++
		result.Slot = 2
		result.CheckScheduled = true
		e.after(e.config.CardCheckDelay(), e.checkForMatchLocked)
	}

	card.Interactable = false
	card.Flipped = true
	e.presenter.SetCardInteractable(*card, false)
	e.presenter.FlipCard(*card)
	e.presenter.PlaySound(SoundFlip)

	result.Card = *card
	return result, nil
}

// Restart turns every card back over, then destroys the deal and spawns a
// fresh one of CardsToSpawn cards. Pending match checks are cancelled.
func (e *GameEngine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pairs := e.state.CardsToSpawn / 2
	if usable := e.config.UsableVariants(); usable < pairs {
		return fmt.Errorf("%w: %d pairs need %d variants, only %d usable",
			ErrInsufficientVariants, pairs, pairs, usable)
	}

	e.beginRestartLocked()
	return nil
}

// SetMatchesToSpawn sets the number of pairs dealt by the next spawn
func (e *GameEngine) SetMatchesToSpawn(matches int) error {
	if matches < MinMatches || matches > MaxMatches {
		return fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidMatches, MinMatches, MaxMatches, matches)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.CardsToSpawn = matches * 2
	e.state.MatchesToSpawnText = fmt.Sprintf(e.config.Messages.MatchesToSpawn, matches)
	e.presenter.SetMatchesToSpawnText(e.state.MatchesToSpawnText)
	return nil
}

// spawnCardsLocked deals count cards, shuffles them and starts a new round
func (e *GameEngine) spawnCardsLocked(count int) error {
	if count < MinCardsToSpawn || count%2 != 0 {
		return fmt.Errorf("%w: cannot deal %d cards", ErrInvalidMatches, count)
	}

	variants, err := PickVariants(count/2, e.config.UsableVariants(), e.rng)
	if err != nil {
		return err
	}
	cards := ShuffleCards(DealCards(variants, e.config.Variants), e.rng)

	e.state.Cards = cards
	e.state.TotalMatches = len(cards) / 2
	e.state.Round++
	e.state.Phase = PhasePlaying
	e.state.GameOver = false
	e.state.Message = ""

	e.presenter.CardsSpawned(slices.Clone(cards))
	e.presenter.PlaySound(SoundShuffle)
	return nil
}

// checkForMatchLocked resolves the completed guess pair
func (e *GameEngine) checkForMatchLocked() {
	g1, g2 := e.state.Guess1, e.state.Guess2
	if g1 == nil || g2 == nil {
		return
	}

	i1 := indexOfCard(e.state.Cards, g1.CardID)
	i2 := indexOfCard(e.state.Cards, g2.CardID)
	if i1 < 0 || i2 < 0 {
		e.clearGuessesLocked()
		return
	}
	first, second := &e.state.Cards[i1], &e.state.Cards[i2]

	if g1.Variant == g2.Variant {
		e.state.CorrectCount++
		first.Matched = true
		second.Matched = true
		e.presenter.CardsMatched(*first, *second)

		if e.state.CorrectCount == e.state.TotalMatches {
			e.gameOverLocked()
		}
		e.clearGuessesLocked()
		return
	}

	for _, c := range []*Card{first, second} {
		c.Interactable = true
		c.Flipped = false
		e.presenter.SetCardInteractable(*c, true)
		e.presenter.UnflipCard(*c)
	}
	// One sound per card turned back over
	e.presenter.PlaySound(SoundUnflip)
	e.presenter.PlaySound(SoundUnflip)

	e.after(e.config.CardUnflipDelay(), e.clearGuessesLocked)
}

func (e *GameEngine) clearGuessesLocked() {
	e.state.Guess1 = nil
	e.state.Guess2 = nil
}

func (e *GameEngine) gameOverLocked() {
	e.state.Phase = PhaseGameOver
	e.state.GameOver = true
	e.state.Message = fmt.Sprintf(e.config.Messages.GameOver, e.state.GuessCount)
	e.presenter.ShowGameOver(e.state.GuessCount, e.state.Message)
}

func (e *GameEngine) beginRestartLocked() {
	e.cancelTimersLocked()
	e.presenter.HideGameOver()

	e.state.Phase = PhaseRestarting
	e.state.GameOver = false
	e.state.Message = ""
	for i := range e.state.Cards {
		c := &e.state.Cards[i]
		c.Flipped = false
		c.Interactable = false
		e.presenter.UnflipCard(*c)
		e.presenter.PlaySound(SoundUnflip)
	}

	e.after(e.config.CardUnflipDelay(), e.teardownLocked)
}

// teardownLocked destroys the deal and resets every counter; the respawn
// waits one scheduling tick
func (e *GameEngine) teardownLocked() {
	e.presenter.CardsDestroyed(slices.Clone(e.state.Cards))

	e.state.Cards = []Card{}
	e.state.TotalMatches = 0
	e.state.GuessCount = 0
	e.state.CorrectCount = 0
	e.clearGuessesLocked()

	e.after(0, e.respawnLocked)
}

func (e *GameEngine) respawnLocked() {
	requested := e.state.CardsToSpawn
	if err := e.spawnCardsLocked(requested); err != nil {
		// CardsToSpawn can change while restarting; fall back to the config size
		e.state.CardsToSpawn = e.config.CardsToSpawn
		if err := e.spawnCardsLocked(e.config.CardsToSpawn); err != nil {
			e.state.Message = err.Error()
			return
		}
		e.state.Message = fmt.Sprintf("Cannot deal %d cards: %v", requested, err)
	}
}

// after runs fn under the engine lock once d has elapsed, unless the pending
// actions are cancelled first
func (e *GameEngine) after(d time.Duration, fn func()) {
	e.timerSeq++
	id := e.timerSeq
	epoch := e.epoch
	e.timers[id] = e.scheduler.AfterFunc(d, func() {
		e.fire(id, epoch, fn)
	})
}

func (e *GameEngine) fire(id, epoch uint64, fn func()) {
	e.mu.Lock()
	if _, ok := e.timers[id]; !ok || epoch != e.epoch {
		e.mu.Unlock()
		return
	}
	delete(e.timers, id)

	fn()

	snapshot := cloneState(e.state)
	listener := e.listener
	e.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}

func (e *GameEngine) cancelTimersLocked() {
	e.epoch++
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}

func (e *GameEngine) restoreLocked(state *GameState) error {
	if err := ValidateGameState(state); err != nil {
		return err
	}

	e.cancelTimersLocked()
	e.state = cloneState(state)
	if e.state.Phase == "" {
		e.state.Phase = PhasePlaying
	}
	if e.state.ConfigName == "" {
		e.state.ConfigName = e.config.Name
	}

	switch {
	case e.state.Phase == PhaseRestarting:
		e.after(0, e.teardownLocked)
	case e.state.Guess1 != nil && e.state.Guess2 != nil:
		if e.mismatchResolvedLocked() {
			// Saved during the unflip wait; only the slots are left to clear
			e.after(e.config.CardUnflipDelay(), e.clearGuessesLocked)
		} else {
			e.after(e.config.CardCheckDelay(), e.checkForMatchLocked)
		}
	}
	return nil
}

// mismatchResolvedLocked reports whether both guessed cards were already
// turned back over by a mismatch check
func (e *GameEngine) mismatchResolvedLocked() bool {
	for _, g := range []*Guess{e.state.Guess1, e.state.Guess2} {
		i := indexOfCard(e.state.Cards, g.CardID)
		if i < 0 {
			return false
		}
		c := e.state.Cards[i]
		if c.Flipped || c.Matched || !c.Interactable {
			return false
		}
	}
	return true
}

// ValidateGameState checks the invariants of a persisted state
func ValidateGameState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if len(state.Cards)%2 != 0 {
		return fmt.Errorf("%w: odd number of cards (%d)", ErrInvalidState, len(state.Cards))
	}
	if state.TotalMatches != len(state.Cards)/2 && state.Phase != PhaseRestarting {
		return fmt.Errorf("%w: total_matches %d does not match %d cards", ErrInvalidState, state.TotalMatches, len(state.Cards))
	}
	if state.CorrectCount < 0 || state.CorrectCount > state.TotalMatches {
		return fmt.Errorf("%w: correct_count %d out of range", ErrInvalidState, state.CorrectCount)
	}
	if state.Guess2 != nil && state.Guess1 == nil {
		return fmt.Errorf("%w: second guess without a first", ErrInvalidState)
	}
	for _, g := range []*Guess{state.Guess1, state.Guess2} {
		if g != nil && indexOfCard(state.Cards, g.CardID) < 0 {
			return fmt.Errorf("%w: guess references unknown card %q", ErrInvalidState, g.CardID)
		}
	}
	if state.CardsToSpawn < MinCardsToSpawn || state.CardsToSpawn > MaxCardsToSpawn || state.CardsToSpawn%2 != 0 {
		return fmt.Errorf("%w: cards_to_spawn %d out of range", ErrInvalidState, state.CardsToSpawn)
	}
	return nil
}

func cloneState(state *GameState) *GameState {
	if state == nil {
		return nil
	}
	c := *state
	c.Cards = slices.Clone(state.Cards)
	if c.Cards == nil {
		c.Cards = []Card{}
	}
	if state.Guess1 != nil {
		g := *state.Guess1
		c.Guess1 = &g
	}
	if state.Guess2 != nil {
		g := *state.Guess2
		c.Guess2 = &g
	}
	return &c
}
