package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wricardo/memory-match-game/game/autoplay"
	"github.com/wricardo/memory-match-game/game/engine"
)

// Player drives a session over the REST API with an autoplay strategy.
// It only learns the pictures of the cards it flips itself.
type Player struct {
	client   *Client
	strategy autoplay.Strategy

	pollInterval time.Duration
	timeout      time.Duration
	delay        time.Duration
	verbose      bool
}

func NewPlayer(client *Client, strategy autoplay.Strategy) *Player {
	return &Player{
		client:       client,
		strategy:     strategy,
		pollInterval: 50 * time.Millisecond,
		timeout:      30 * time.Second,
	}
}

// waitFor polls the session state until done reports true
func (p *Player) waitFor(done func(*engine.GameState) bool) (*engine.GameState, error) {
	deadline := time.Now().Add(p.timeout)
	for {
		state, err := p.client.GetState()
		if err != nil {
			return nil, err
		}
		if done(state) {
			return state, nil
		}
		if time.Now().After(deadline) {
			return state, fmt.Errorf("timed out waiting for the session (phase %s)", state.Phase)
		}
		time.Sleep(p.pollInterval)
	}
}

func dealt(state *engine.GameState) bool {
	return state.Phase == engine.PhasePlaying && len(state.Cards) > 0 && state.GuessCount == 0
}

func resolved(state *engine.GameState) bool {
	return state.GameOver || (state.Guess1 == nil && state.Guess2 == nil)
}

// NewDeal restarts the session and waits for the fresh cards
func (p *Player) NewDeal() (*engine.GameState, error) {
	if _, err := p.client.Restart(); err != nil {
		return nil, err
	}
	p.strategy.Reset()
	return p.waitFor(dealt)
}

func (p *Player) flip(cardID string) error {
	result, err := p.client.Flip(cardID)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("flip %s rejected: %s (%s)", cardID, result.Message, result.ReasonCode)
	}
	p.strategy.Remember(cardID, result.Card.Variant)
	if p.verbose {
		log.Printf("Flipped %s: %s", cardID, result.Card.VariantName)
	}
	return nil
}

// Play finishes the current deal and returns its guess count
func (p *Player) Play(state *engine.GameState, maxTurns int) (int, error) {
	for turn := 0; !state.GameOver; turn++ {
		if turn >= maxTurns {
			return state.GuessCount, fmt.Errorf("%w after %d turns", autoplay.ErrNoProgress, turn)
		}

		first := p.strategy.First(autoplay.Flippable(state))
		if first == "" {
			return state.GuessCount, errors.New("no card to flip")
		}
		if err := p.flip(first); err != nil {
			return state.GuessCount, err
		}

		var err error
		state, err = p.client.GetState()
		if err != nil {
			return 0, err
		}
		second := p.strategy.Second(first, autoplay.Flippable(state))
		if second == "" {
			return state.GuessCount, errors.New("no second card to flip")
		}
		if err := p.flip(second); err != nil {
			return state.GuessCount, err
		}

		state, err = p.waitFor(resolved)
		if err != nil {
			return 0, err
		}
		if matched(state, first) {
			p.strategy.Forget(first, second)
		}

		if p.verbose {
			log.Printf("Guesses: %d, pairs: %d/%d", state.GuessCount, state.CorrectCount, state.TotalMatches)
		}
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}
	return state.GuessCount, nil
}

func matched(state *engine.GameState, cardID string) bool {
	for _, c := range state.Cards {
		if c.ID == cardID {
			return c.Matched
		}
	}
	return false
}
