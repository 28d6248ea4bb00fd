package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"
)

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:              "Engine Test Config",
		Description:       "Configuration for engine tests",
		CardsToSpawn:      4,
		CardCheckDelayMs:  1000,
		CardUnflipDelayMs: 750,
		Variants:          []string{"apple", "banana", "cherry", "grape", "lemon", "orange", "pear", "plum"},
		Messages: GameMessages{
			MatchesToSpawn: "New Number of Matches: %d",
			GameOver:       "Guesses: %d",
		},
	}
}

// fakeScheduler runs callbacks only when the test advances its clock
type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	s       *fakeScheduler
	at      time.Duration
	seq     int
	fn      func()
	done    bool
	stopped bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTask{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *fakeTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, running every due callback in order.
// Callbacks scheduled while advancing run too if they fall due in time.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeTask
		for _, t := range s.tasks {
			if t.done || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.done = true
		s.now = next.at
		s.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of callbacks still waiting
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done && !t.stopped {
			n++
		}
	}
	return n
}

// recordingPresenter records every presenter call as a short string
type recordingPresenter struct {
	mu        sync.Mutex
	calls     []string
	sounds    map[Sound]int
	gameOvers []int
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{sounds: make(map[Sound]int)}
}

func (p *recordingPresenter) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *recordingPresenter) CardsSpawned(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("spawned %d", len(cards))
}

func (p *recordingPresenter) FlipCard(card Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("flip %s", card.ID)
}

func (p *recordingPresenter) UnflipCard(card Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("unflip %s", card.ID)
}

func (p *recordingPresenter) SetCardInteractable(card Card, interactable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("interactable %s %t", card.ID, interactable)
}

func (p *recordingPresenter) CardsMatched(first, second Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("matched %d", first.Variant)
}

func (p *recordingPresenter) CardsDestroyed(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("destroyed %d", len(cards))
}

func (p *recordingPresenter) PlaySound(sound Sound) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sounds[sound]++
	p.record("sound %s", sound)
}

func (p *recordingPresenter) ShowGameOver(guesses int, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gameOvers = append(p.gameOvers, guesses)
	p.record("game over %d", guesses)
}

func (p *recordingPresenter) HideGameOver() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("hide game over")
}

func (p *recordingPresenter) SetMatchesToSpawnText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("text %s", text)
}

func (p *recordingPresenter) soundCount(sound Sound) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sounds[sound]
}

func (p *recordingPresenter) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.sounds = make(map[Sound]int)
	p.gameOvers = nil
}

type testHarness struct {
	engine    *GameEngine
	scheduler *fakeScheduler
	presenter *recordingPresenter
}

func newTestHarness(t *testing.T, config *GameConfig) *testHarness {
	t.Helper()
	h := &testHarness{
		scheduler: &fakeScheduler{},
		presenter: newRecordingPresenter(),
	}
	eng, err := NewEngine(config,
		WithScheduler(h.scheduler),
		WithPresenter(h.presenter),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	h.engine = eng
	return h
}

// pairs returns the card IDs of every pair, ordered by variant
func pairs(state *GameState) [][2]string {
	byVariant := make(map[int][]string)
	for _, c := range state.Cards {
		byVariant[c.Variant] = append(byVariant[c.Variant], c.ID)
	}
	variants := make([]int, 0, len(byVariant))
	for v := range byVariant {
		variants = append(variants, v)
	}
	sort.Ints(variants)

	result := make([][2]string, 0, len(variants))
	for _, v := range variants {
		ids := byVariant[v]
		result = append(result, [2]string{ids[0], ids[1]})
	}
	return result
}

func cardByID(state *GameState, id string) Card {
	for _, c := range state.Cards {
		if c.ID == id {
			return c
		}
	}
	return Card{}
}

func mustFlip(t *testing.T, e *GameEngine, id string) *FlipResult {
	t.Helper()
	result, err := e.FlipCard(id)
	if err != nil {
		t.Fatalf("FlipCard(%s) failed: %v", id, err)
	}
	return result
}
