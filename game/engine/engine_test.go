package engine

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

const (
	checkDelay  = 1000 * time.Millisecond
	unflipDelay = 750 * time.Millisecond
)

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	h := newTestHarness(t, config)
	state := h.engine.GetState()

	if len(state.Cards) != config.CardsToSpawn {
		t.Errorf("Expected %d cards, got %d", config.CardsToSpawn, len(state.Cards))
	}
	if state.TotalMatches != config.CardsToSpawn/2 {
		t.Errorf("Expected %d total matches, got %d", config.CardsToSpawn/2, state.TotalMatches)
	}
	if state.GuessCount != 0 || state.CorrectCount != 0 {
		t.Errorf("Expected zero counters, got guesses=%d correct=%d", state.GuessCount, state.CorrectCount)
	}
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected both guess slots to be empty")
	}
	if state.Phase != PhasePlaying {
		t.Errorf("Expected phase %s, got %s", PhasePlaying, state.Phase)
	}
	if state.Round != 1 {
		t.Errorf("Expected round 1, got %d", state.Round)
	}
	if state.MatchesToSpawnText != "New Number of Matches: 2" {
		t.Errorf("Unexpected matches text %q", state.MatchesToSpawnText)
	}
	if h.presenter.soundCount(SoundShuffle) != 1 {
		t.Errorf("Expected one shuffle sound, got %d", h.presenter.soundCount(SoundShuffle))
	}
	for _, c := range state.Cards {
		if !c.Interactable || c.Flipped || c.Matched {
			t.Errorf("Card %s should start face down and interactable: %+v", c.ID, c)
		}
		if c.VariantName != config.Variants[c.Variant] {
			t.Errorf("Card %s has variant name %q, want %q", c.ID, c.VariantName, config.Variants[c.Variant])
		}
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults(WithScheduler(&fakeScheduler{}))
	state := engine.GetState()
	if len(state.Cards) != 16 {
		t.Errorf("Expected 16 cards from the default config, got %d", len(state.Cards))
	}
}

func TestSpawn_PairsForEveryDealSize(t *testing.T) {
	for n := MinCardsToSpawn; n <= MaxCardsToSpawn; n += 2 {
		config := createTestConfig()
		config.CardsToSpawn = n
		h := newTestHarness(t, config)
		state := h.engine.GetState()

		if len(state.Cards) != n {
			t.Errorf("n=%d: expected %d cards, got %d", n, n, len(state.Cards))
		}
		if state.TotalMatches != n/2 {
			t.Errorf("n=%d: expected %d total matches, got %d", n, n/2, state.TotalMatches)
		}
		counts := CountVariants(state.Cards)
		if len(counts) != n/2 {
			t.Errorf("n=%d: expected %d distinct variants, got %d", n, n/2, len(counts))
		}
		for v, count := range counts {
			if count != 2 {
				t.Errorf("n=%d: variant %d appears %d times", n, v, count)
			}
		}
		ids := make(map[string]bool)
		for _, c := range state.Cards {
			if ids[c.ID] {
				t.Errorf("n=%d: duplicate card id %s", n, c.ID)
			}
			ids[c.ID] = true
		}
	}
}

func TestFlipCard_FirstGuess(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	card := h.engine.GetState().Cards[0]

	result := mustFlip(t, h.engine, card.ID)
	if result.Slot != 1 || result.CheckScheduled {
		t.Errorf("Expected slot 1 without a check, got %+v", result)
	}

	state := h.engine.GetState()
	if state.Guess1 == nil || state.Guess1.CardID != card.ID || state.Guess1.Index != 0 {
		t.Errorf("Unexpected first guess %+v", state.Guess1)
	}
	if state.GuessCount != 0 {
		t.Errorf("First guess must not count as an attempt, got %d", state.GuessCount)
	}
	flipped := cardByID(state, card.ID)
	if !flipped.Flipped || flipped.Interactable {
		t.Errorf("Expected flipped, non-interactable card, got %+v", flipped)
	}
	if h.presenter.soundCount(SoundFlip) != 1 {
		t.Errorf("Expected one flip sound, got %d", h.presenter.soundCount(SoundFlip))
	}
	if h.scheduler.Pending() != 0 {
		t.Errorf("Expected no scheduled check after one guess, got %d", h.scheduler.Pending())
	}
}

func TestFlipCard_SameCardRejected(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	card := h.engine.GetState().Cards[0]
	mustFlip(t, h.engine, card.ID)

	_, err := h.engine.FlipCard(card.ID)
	if !errors.Is(err, ErrSameCard) {
		t.Errorf("Expected ErrSameCard, got %v", err)
	}

	state := h.engine.GetState()
	if state.Guess2 != nil {
		t.Error("Second guess slot must stay empty")
	}
	if state.GuessCount != 0 {
		t.Errorf("Expected guess count 0, got %d", state.GuessCount)
	}
}

func TestFlipCard_InvalidSelection(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	before := h.engine.GetState()

	for _, id := range []string{"", "not-a-card"} {
		_, err := h.engine.FlipCard(id)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("FlipCard(%q): expected ErrInvalidSelection, got %v", id, err)
		}
	}

	after := h.engine.GetState()
	if after.Guess1 != nil || after.GuessCount != before.GuessCount {
		t.Error("Invalid selection must not mutate the state")
	}
	if h.presenter.soundCount(SoundFlip) != 0 {
		t.Error("Invalid selection must not play a sound")
	}
}

func TestFlipCard_GuessesFull(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	state := h.engine.GetState()
	mustFlip(t, h.engine, state.Cards[0].ID)
	mustFlip(t, h.engine, state.Cards[1].ID)

	_, err := h.engine.FlipCard(state.Cards[2].ID)
	if !errors.Is(err, ErrGuessesFull) {
		t.Errorf("Expected ErrGuessesFull, got %v", err)
	}
	if cardByID(h.engine.GetState(), state.Cards[2].ID).Flipped {
		t.Error("Rejected card must stay face down")
	}
}

func TestCheckForMatch_Match(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	pair := pairs(h.engine.GetState())[0]

	mustFlip(t, h.engine, pair[0])
	result := mustFlip(t, h.engine, pair[1])
	if result.Slot != 2 || !result.CheckScheduled {
		t.Errorf("Expected slot 2 with a scheduled check, got %+v", result)
	}

	state := h.engine.GetState()
	if state.GuessCount != 1 {
		t.Errorf("Expected guess count 1, got %d", state.GuessCount)
	}
	if state.CorrectCount != 0 {
		t.Error("Match must not be counted before the check delay")
	}

	h.scheduler.Advance(checkDelay - time.Millisecond)
	if h.engine.GetCorrectCount() != 0 {
		t.Error("Match counted too early")
	}

	h.scheduler.Advance(time.Millisecond)
	state = h.engine.GetState()
	if state.CorrectCount != 1 {
		t.Errorf("Expected correct count 1, got %d", state.CorrectCount)
	}
	if state.GuessCount != 1 {
		t.Errorf("Expected guess count to stay 1, got %d", state.GuessCount)
	}
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected guess slots to be cleared after the check")
	}
	for _, id := range pair {
		c := cardByID(state, id)
		if !c.Matched || !c.Flipped || c.Interactable {
			t.Errorf("Matched card should stay face up and disabled: %+v", c)
		}
	}
	if state.GameOver {
		t.Error("Game must not be over with pairs remaining")
	}
	if h.presenter.soundCount(SoundUnflip) != 0 {
		t.Error("A match must not play the unflip sound")
	}
}

func TestCheckForMatch_NoMatch(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	ps := pairs(h.engine.GetState())
	first, second := ps[0][0], ps[1][0]

	mustFlip(t, h.engine, first)
	mustFlip(t, h.engine, second)
	h.scheduler.Advance(checkDelay)

	state := h.engine.GetState()
	if state.CorrectCount != 0 {
		t.Errorf("Expected correct count 0, got %d", state.CorrectCount)
	}
	if state.GuessCount != 1 {
		t.Errorf("Expected guess count 1, got %d", state.GuessCount)
	}
	for _, id := range []string{first, second} {
		c := cardByID(state, id)
		if c.Flipped || !c.Interactable || c.Matched {
			t.Errorf("Mismatched card should be face down and re-enabled: %+v", c)
		}
	}
	if got := h.presenter.soundCount(SoundUnflip); got != 2 {
		t.Errorf("Expected the unflip sound twice, got %d", got)
	}

	// Slots stay filled until the unflip delay passes
	if state.Guess1 == nil || state.Guess2 == nil {
		t.Fatal("Guess slots cleared before the unflip delay")
	}
	if _, err := h.engine.FlipCard(ps[1][1]); !errors.Is(err, ErrGuessesFull) {
		t.Errorf("Expected ErrGuessesFull during the unflip delay, got %v", err)
	}

	h.scheduler.Advance(unflipDelay)
	state = h.engine.GetState()
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected guess slots to be cleared after the unflip delay")
	}

	// The same cards can be guessed again
	mustFlip(t, h.engine, first)
}

func TestGameOver_FourCardScenario(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	ps := pairs(h.engine.GetState())
	if len(ps) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(ps))
	}

	mustFlip(t, h.engine, ps[0][0])
	mustFlip(t, h.engine, ps[0][1])
	h.scheduler.Advance(checkDelay)

	state := h.engine.GetState()
	if state.CorrectCount != 1 || state.GameOver {
		t.Fatalf("After first pair: correct=%d game_over=%t", state.CorrectCount, state.GameOver)
	}
	if len(h.presenter.gameOvers) != 0 {
		t.Fatal("Game over shown before all pairs were found")
	}

	mustFlip(t, h.engine, ps[1][0])
	mustFlip(t, h.engine, ps[1][1])
	h.scheduler.Advance(checkDelay)

	state = h.engine.GetState()
	if state.CorrectCount != 2 || state.CorrectCount != state.TotalMatches {
		t.Errorf("Expected all matches found, got %d/%d", state.CorrectCount, state.TotalMatches)
	}
	if !state.GameOver || state.Phase != PhaseGameOver {
		t.Errorf("Expected game over, got phase %s", state.Phase)
	}
	if state.GuessCount != 2 {
		t.Errorf("Expected 2 guesses, got %d", state.GuessCount)
	}
	if state.Message != "Guesses: 2" {
		t.Errorf("Unexpected game over message %q", state.Message)
	}
	if len(h.presenter.gameOvers) != 1 || h.presenter.gameOvers[0] != 2 {
		t.Errorf("Expected a single game over with 2 guesses, got %v", h.presenter.gameOvers)
	}

	if _, err := h.engine.FlipCard(ps[0][0]); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after the game ended, got %v", err)
	}
}

func TestGameOver_CountsMismatches(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	ps := pairs(h.engine.GetState())

	// One miss, then both pairs
	mustFlip(t, h.engine, ps[0][0])
	mustFlip(t, h.engine, ps[1][0])
	h.scheduler.Advance(checkDelay + unflipDelay)

	for _, p := range ps {
		mustFlip(t, h.engine, p[0])
		mustFlip(t, h.engine, p[1])
		h.scheduler.Advance(checkDelay)
	}

	state := h.engine.GetState()
	if !state.GameOver {
		t.Fatal("Expected game over")
	}
	if state.GuessCount != 3 {
		t.Errorf("Expected 3 guesses, got %d", state.GuessCount)
	}
}

func TestRestart(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	ps := pairs(h.engine.GetState())
	firstDeal := h.engine.GetState().Cards

	mustFlip(t, h.engine, ps[0][0])
	mustFlip(t, h.engine, ps[0][1])
	h.scheduler.Advance(checkDelay)
	h.presenter.reset()

	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	state := h.engine.GetState()
	if state.Phase != PhaseRestarting {
		t.Errorf("Expected phase %s, got %s", PhaseRestarting, state.Phase)
	}
	for _, c := range state.Cards {
		if c.Flipped {
			t.Errorf("Card %s should be turned back over", c.ID)
		}
	}
	if got := h.presenter.soundCount(SoundUnflip); got != len(firstDeal) {
		t.Errorf("Expected one unflip sound per card (%d), got %d", len(firstDeal), got)
	}
	if _, err := h.engine.FlipCard(state.Cards[0].ID); !errors.Is(err, ErrRestarting) {
		t.Errorf("Expected ErrRestarting, got %v", err)
	}

	h.scheduler.Advance(unflipDelay)

	state = h.engine.GetState()
	if state.Phase != PhasePlaying {
		t.Fatalf("Expected phase %s after respawn, got %s", PhasePlaying, state.Phase)
	}
	if state.GuessCount != 0 || state.CorrectCount != 0 {
		t.Errorf("Expected counters reset, got guesses=%d correct=%d", state.GuessCount, state.CorrectCount)
	}
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected empty guess slots")
	}
	if len(state.Cards) != 4 || state.TotalMatches != 2 {
		t.Errorf("Expected a fresh 4 card deal, got %d cards", len(state.Cards))
	}
	if state.Round != 2 {
		t.Errorf("Expected round 2, got %d", state.Round)
	}
	for _, c := range state.Cards {
		for _, old := range firstDeal {
			if c.ID == old.ID {
				t.Errorf("Card %s survived the restart", c.ID)
			}
		}
	}
}

func TestRestart_FromGameOver(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	for _, p := range pairs(h.engine.GetState()) {
		mustFlip(t, h.engine, p[0])
		mustFlip(t, h.engine, p[1])
		h.scheduler.Advance(checkDelay)
	}
	if !h.engine.IsGameOver() {
		t.Fatal("Expected game over")
	}

	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if h.engine.IsGameOver() {
		t.Error("Game over must be cleared when the restart begins")
	}
	h.scheduler.Advance(unflipDelay)

	state := h.engine.GetState()
	if state.GameOver || state.Phase != PhasePlaying {
		t.Errorf("Expected a new round, got phase %s", state.Phase)
	}
}

func TestRestart_CancelsPendingCheck(t *testing.T) {
	config := createTestConfig()
	config.CardUnflipDelayMs = 100
	h := newTestHarness(t, config)
	pair := pairs(h.engine.GetState())[0]

	mustFlip(t, h.engine, pair[0])
	mustFlip(t, h.engine, pair[1])

	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	h.scheduler.Advance(checkDelay * 2)

	state := h.engine.GetState()
	if state.CorrectCount != 0 {
		t.Errorf("Cancelled check must not count a match, got %d", state.CorrectCount)
	}
	if state.GuessCount != 0 {
		t.Errorf("Expected guess count reset, got %d", state.GuessCount)
	}
	if state.Phase != PhasePlaying {
		t.Errorf("Expected phase %s, got %s", PhasePlaying, state.Phase)
	}
	if h.scheduler.Pending() != 0 {
		t.Errorf("Expected no pending callbacks, got %d", h.scheduler.Pending())
	}
}

func TestRestart_Twice(t *testing.T) {
	h := newTestHarness(t, createTestConfig())

	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	h.scheduler.Advance(unflipDelay / 2)
	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Second restart failed: %v", err)
	}
	h.scheduler.Advance(unflipDelay)

	state := h.engine.GetState()
	if state.Round != 2 {
		t.Errorf("Expected exactly one respawn, got round %d", state.Round)
	}
	if len(state.Cards) != 4 {
		t.Errorf("Expected 4 cards, got %d", len(state.Cards))
	}
}

func TestSetMatchesToSpawn(t *testing.T) {
	h := newTestHarness(t, createTestConfig())

	if err := h.engine.SetMatchesToSpawn(3); err != nil {
		t.Fatalf("SetMatchesToSpawn failed: %v", err)
	}

	state := h.engine.GetState()
	if state.CardsToSpawn != 6 {
		t.Errorf("Expected cards_to_spawn 6, got %d", state.CardsToSpawn)
	}
	if state.MatchesToSpawnText != "New Number of Matches: 3" {
		t.Errorf("Unexpected text %q", state.MatchesToSpawnText)
	}
	if len(state.Cards) != 4 {
		t.Errorf("Current deal must not change, got %d cards", len(state.Cards))
	}

	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	h.scheduler.Advance(unflipDelay)

	state = h.engine.GetState()
	if len(state.Cards) != 6 || state.TotalMatches != 3 {
		t.Errorf("Expected a 6 card deal after restart, got %d", len(state.Cards))
	}
}

func TestSetMatchesToSpawn_OutOfRange(t *testing.T) {
	h := newTestHarness(t, createTestConfig())

	for _, matches := range []int{0, -1, MaxMatches + 1} {
		if err := h.engine.SetMatchesToSpawn(matches); !errors.Is(err, ErrInvalidMatches) {
			t.Errorf("SetMatchesToSpawn(%d): expected ErrInvalidMatches, got %v", matches, err)
		}
	}
	if h.engine.GetState().CardsToSpawn != 4 {
		t.Error("Rejected value must not change cards_to_spawn")
	}
}

func TestRestart_InsufficientVariants(t *testing.T) {
	config := createTestConfig()
	config.Variants = []string{"a", "b", "c"}
	h := newTestHarness(t, config)

	if err := h.engine.SetMatchesToSpawn(4); err != nil {
		t.Fatalf("SetMatchesToSpawn failed: %v", err)
	}
	if err := h.engine.Restart(); !errors.Is(err, ErrInsufficientVariants) {
		t.Errorf("Expected ErrInsufficientVariants, got %v", err)
	}
	if h.engine.GetState().Phase != PhasePlaying {
		t.Error("A refused restart must leave the round untouched")
	}
}

func TestLegacyVariantRange(t *testing.T) {
	config := createTestConfig()
	config.Variants = []string{"a", "b", "c"}
	config.LegacyVariantRange = true

	for i := 0; i < 20; i++ {
		eng, err := NewEngine(config,
			WithScheduler(&fakeScheduler{}),
			WithRand(rand.New(rand.NewPCG(uint64(i), 7))),
		)
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		for _, c := range eng.GetState().Cards {
			if c.Variant == 2 {
				t.Fatal("Legacy range must never deal the last variant")
			}
		}
	}

	config.Variants = []string{"a", "b"}
	if _, err := NewEngine(config); !errors.Is(err, ErrInsufficientVariants) {
		t.Errorf("Expected ErrInsufficientVariants, got %v", err)
	}
}

func TestStateListener(t *testing.T) {
	scheduler := &fakeScheduler{}
	var snapshots []*GameState
	eng, err := NewEngine(createTestConfig(),
		WithScheduler(scheduler),
		WithStateListener(func(s *GameState) { snapshots = append(snapshots, s) }),
	)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	pair := pairs(eng.GetState())[0]
	mustFlip(t, eng, pair[0])
	mustFlip(t, eng, pair[1])
	if len(snapshots) != 0 {
		t.Error("Listener must only fire for timer-driven changes")
	}

	scheduler.Advance(checkDelay)
	if len(snapshots) != 1 {
		t.Fatalf("Expected one snapshot, got %d", len(snapshots))
	}
	if snapshots[0].CorrectCount != 1 {
		t.Errorf("Snapshot should include the match, got %d", snapshots[0].CorrectCount)
	}
}

func TestSetState(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	pair := pairs(h.engine.GetState())[0]
	mustFlip(t, h.engine, pair[0])
	mustFlip(t, h.engine, pair[1])
	saved := h.engine.GetState()

	other := newTestHarness(t, createTestConfig())
	if err := other.engine.SetState(saved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	// The restored pair gets a fresh match check
	other.scheduler.Advance(checkDelay)
	state := other.engine.GetState()
	if state.CorrectCount != 1 {
		t.Errorf("Expected restored pair to be checked, got correct=%d", state.CorrectCount)
	}
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected guess slots cleared after the restored check")
	}
}

func TestSetState_Invalid(t *testing.T) {
	h := newTestHarness(t, createTestConfig())

	tests := []struct {
		name  string
		state *GameState
	}{
		{"nil", nil},
		{"odd cards", &GameState{Cards: []Card{{ID: "a"}}, CardsToSpawn: 2}},
		{"second guess only", &GameState{CardsToSpawn: 2, Guess2: &Guess{CardID: "x"}}},
		{"unknown guess", &GameState{CardsToSpawn: 2, Guess1: &Guess{CardID: "x"}}},
		{"bad spawn size", &GameState{CardsToSpawn: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.engine.SetState(tt.state); !errors.Is(err, ErrInvalidState) {
				t.Errorf("Expected ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestWithRestoredState_Restarting(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	if err := h.engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	saved := h.engine.GetState()

	scheduler := &fakeScheduler{}
	eng, err := NewEngine(createTestConfig(), WithScheduler(scheduler), WithRestoredState(saved))
	if err != nil {
		t.Fatalf("Failed to restore engine: %v", err)
	}
	if eng.GetState().Phase != PhaseRestarting {
		t.Fatal("Expected the restored engine to still be restarting")
	}

	scheduler.Advance(0)
	state := eng.GetState()
	if state.Phase != PhasePlaying || len(state.Cards) != 4 {
		t.Errorf("Expected the interrupted restart to finish, got phase %s with %d cards", state.Phase, len(state.Cards))
	}
}

func TestClose(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	pair := pairs(h.engine.GetState())[0]
	mustFlip(t, h.engine, pair[0])
	mustFlip(t, h.engine, pair[1])

	h.engine.Close()
	h.scheduler.Advance(checkDelay)

	if h.engine.GetCorrectCount() != 0 {
		t.Error("Closed engine must not run pending checks")
	}
}

func TestWithRestoredState_DuringUnflipWait(t *testing.T) {
	h := newTestHarness(t, createTestConfig())
	ps := pairs(h.engine.GetState())
	mustFlip(t, h.engine, ps[0][0])
	mustFlip(t, h.engine, ps[1][0])
	h.scheduler.Advance(checkDelay)
	saved := h.engine.GetState()

	scheduler := &fakeScheduler{}
	presenter := newRecordingPresenter()
	eng, err := NewEngine(createTestConfig(),
		WithScheduler(scheduler),
		WithPresenter(presenter),
		WithRestoredState(saved),
	)
	if err != nil {
		t.Fatalf("Failed to restore engine: %v", err)
	}

	scheduler.Advance(unflipDelay - time.Millisecond)
	if state := eng.GetState(); state.Guess1 == nil || state.Guess2 == nil {
		t.Fatal("Guess slots cleared before the unflip delay")
	}

	scheduler.Advance(time.Millisecond)
	state := eng.GetState()
	if state.Guess1 != nil || state.Guess2 != nil {
		t.Error("Expected guess slots cleared after the unflip delay")
	}
	if got := presenter.soundCount(SoundUnflip); got != 0 {
		t.Errorf("Resolved mismatch should not be replayed, got %d unflip sounds", got)
	}
	if state.GuessCount != 1 || state.CorrectCount != 0 {
		t.Errorf("Counters changed on restore: guesses=%d correct=%d", state.GuessCount, state.CorrectCount)
	}
	if scheduler.Pending() != 0 {
		t.Errorf("Expected no pending callbacks, got %d", scheduler.Pending())
	}
}

func TestWithRestoredState_SeededDealContinues(t *testing.T) {
	config := createTestConfig()
	config.CardsToSpawn = 16
	config.Seed = 42

	variants := func(state *GameState) []int {
		out := make([]int, len(state.Cards))
		for i, c := range state.Cards {
			out[i] = c.Variant
		}
		return out
	}
	restoreAndRestart := func(saved *GameState) []int {
		t.Helper()
		scheduler := &fakeScheduler{}
		eng, err := NewEngine(config, WithScheduler(scheduler), WithRestoredState(saved))
		if err != nil {
			t.Fatalf("Failed to restore engine: %v", err)
		}
		if err := eng.Restart(); err != nil {
			t.Fatalf("Restart failed: %v", err)
		}
		scheduler.Advance(unflipDelay)
		state := eng.GetState()
		if state.Round != saved.Round+1 {
			t.Fatalf("Expected round %d, got %d", saved.Round+1, state.Round)
		}
		return variants(state)
	}

	eng, err := NewEngine(config, WithScheduler(&fakeScheduler{}))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	saved := eng.GetState()
	first := variants(saved)

	next := restoreAndRestart(saved)
	if slices.Equal(next, first) {
		t.Error("Restored seeded session replayed its first deal")
	}
	if again := restoreAndRestart(saved); !slices.Equal(again, next) {
		t.Error("Restoring the same seeded state should deal the same next round")
	}
}
