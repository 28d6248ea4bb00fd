package autoplay

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

// ErrNoProgress is returned when a game does not finish within the turn limit
var ErrNoProgress = errors.New("game made no progress")

// StepScheduler is a virtual clock: timers only run when Drain is called
type StepScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	queue []*stepTimer
}

type stepTimer struct {
	s       *StepScheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (s *StepScheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &stepTimer{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.queue = append(s.queue, t)
	return t
}

func (t *stepTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Drain runs every pending timer in due order, including timers scheduled
// by the callbacks themselves. Must not be called with the engine lock held.
func (s *StepScheduler) Drain() {
	for {
		s.mu.Lock()
		next := -1
		for i, t := range s.queue {
			if t.stopped {
				continue
			}
			if next < 0 || t.at < s.queue[next].at || (t.at == s.queue[next].at && t.seq < s.queue[next].seq) {
				next = i
			}
		}
		if next < 0 {
			s.queue = s.queue[:0]
			s.mu.Unlock()
			return
		}
		t := s.queue[next]
		s.queue = append(s.queue[:next], s.queue[next+1:]...)
		s.now = t.at
		t.stopped = true
		s.mu.Unlock()

		t.fn()
	}
}

// Flippable returns the IDs of the cards a player can flip
func Flippable(state *engine.GameState) []string {
	var ids []string
	for _, c := range state.Cards {
		if c.Interactable && !c.Flipped && !c.Matched {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// PlayEngine plays the current deal of eng to game over and returns the
// guess count. eng must have been built with sched as its scheduler.
func PlayEngine(eng *engine.GameEngine, sched *StepScheduler, s Strategy, maxTurns int) (int, error) {
	for turn := 0; !eng.IsGameOver(); turn++ {
		if turn >= maxTurns {
			return eng.GetGuessCount(), fmt.Errorf("%w after %d turns", ErrNoProgress, turn)
		}

		first := s.First(Flippable(eng.GetState()))
		if first == "" {
			return eng.GetGuessCount(), fmt.Errorf("%w: nothing to flip", ErrNoProgress)
		}
		res, err := eng.FlipCard(first)
		if err != nil {
			return eng.GetGuessCount(), fmt.Errorf("flip %s: %w", first, err)
		}
		s.Remember(first, res.Card.Variant)

		second := s.Second(first, Flippable(eng.GetState()))
		if second == "" {
			return eng.GetGuessCount(), fmt.Errorf("%w: no second card", ErrNoProgress)
		}
		res, err = eng.FlipCard(second)
		if err != nil {
			return eng.GetGuessCount(), fmt.Errorf("flip %s: %w", second, err)
		}
		s.Remember(second, res.Card.Variant)

		sched.Drain()

		if isMatched(eng.GetState(), first) {
			s.Forget(first, second)
		}
	}
	return eng.GetGuessCount(), nil
}

func isMatched(state *engine.GameState, id string) bool {
	for _, c := range state.Cards {
		if c.ID == id {
			return c.Matched
		}
	}
	return false
}

// SimulationResult summarises many simulated games of one config
type SimulationResult struct {
	Games       int     `json:"games"`
	MinGuesses  int     `json:"min_guesses"`
	MaxGuesses  int     `json:"max_guesses"`
	MeanGuesses float64 `json:"mean_guesses"`
}

// Simulate plays games deals of config, each with a fresh strategy from
// newStrategy. Runs are reproducible for a given seed.
func Simulate(config *engine.GameConfig, newStrategy func(rng *rand.Rand) Strategy, games int, seed uint64) (*SimulationResult, error) {
	if games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", games)
	}

	result := &SimulationResult{Games: games}
	total := 0
	maxTurns := 64 * engine.MaxCardsToSpawn

	for i := 0; i < games; i++ {
		sched := &StepScheduler{}
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		eng, err := engine.NewEngine(config, engine.WithScheduler(sched), engine.WithRand(rng))
		if err != nil {
			return nil, err
		}

		guesses, err := PlayEngine(eng, sched, newStrategy(rng), maxTurns)
		eng.Close()
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}

		total += guesses
		if i == 0 || guesses < result.MinGuesses {
			result.MinGuesses = guesses
		}
		if guesses > result.MaxGuesses {
			result.MaxGuesses = guesses
		}
	}

	result.MeanGuesses = float64(total) / float64(games)
	return result, nil
}
