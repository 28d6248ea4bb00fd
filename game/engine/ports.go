package engine

import "time"

// Presenter receives every visual and audio effect the engine requests.
// Methods are called with the engine lock held and must not call back into
// the engine.
type Presenter interface {
	CardsSpawned(cards []Card)
	FlipCard(card Card)
	UnflipCard(card Card)
	SetCardInteractable(card Card, interactable bool)
	CardsMatched(first, second Card)
	CardsDestroyed(cards []Card)
	PlaySound(sound Sound)
	ShowGameOver(guesses int, text string)
	HideGameOver()
	SetMatchesToSpawnText(text string)
}

// NopPresenter ignores every call. Embed it to implement part of Presenter.
type NopPresenter struct{}

func (NopPresenter) CardsSpawned([]Card) {}
func (NopPresenter) FlipCard(Card) {}
func (NopPresenter) UnflipCard(Card) {}
func (NopPresenter) SetCardInteractable(Card, bool) {}
func (NopPresenter) CardsMatched(Card, Card) {}
func (NopPresenter) CardsDestroyed([]Card) {}
func (NopPresenter) PlaySound(Sound) {}
func (NopPresenter) ShowGameOver(int, string) {}
func (NopPresenter) HideGameOver() {}
func (NopPresenter) SetMatchesToSpawnText(string) {}

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler schedules on the wall clock
type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// StateListener is notified with a snapshot after each timer-driven change.
// It runs outside the engine lock.
type StateListener func(state *GameState)
