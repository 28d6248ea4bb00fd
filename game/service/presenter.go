package service

import (
	"fmt"

	"github.com/wricardo/memory-match-game/game/engine"
)

// eventPresenter turns engine presentation calls into GameEvents
type eventPresenter struct {
	sessionID string
	events    *EventLog
	notifier  Notifier
}

var _ engine.Presenter = (*eventPresenter)(nil)

func (p *eventPresenter) emit(e GameEvent) {
	if p.events != nil {
		e = p.events.Append(e)
	}
	if p.notifier != nil {
		p.notifier.BroadcastEvent(p.sessionID, e.Type, e)
	}
}

func (p *eventPresenter) CardsSpawned(cards []engine.Card) {
	p.emit(GameEvent{
		Type:    EventCardsSpawned,
		Message: fmt.Sprintf("Dealt %d cards", len(cards)),
		CardIDs: cardIDs(cards...),
		Value:   len(cards),
	})
}

func (p *eventPresenter) FlipCard(card engine.Card) {
	variant := card.Variant
	p.emit(GameEvent{
		Type:    EventFlip,
		Message: fmt.Sprintf("Flipped %s", describeCard(card)),
		CardIDs: []string{card.ID},
		Variant: &variant,
	})
}

func (p *eventPresenter) UnflipCard(card engine.Card) {
	p.emit(GameEvent{
		Type:    EventUnflip,
		Message: fmt.Sprintf("Turned %s face down", describeCard(card)),
		CardIDs: []string{card.ID},
	})
}

func (p *eventPresenter) SetCardInteractable(card engine.Card, interactable bool) {
	state := "disabled"
	if interactable {
		state = "enabled"
	}
	p.emit(GameEvent{
		Type:    EventInteractable,
		Message: fmt.Sprintf("Card %s %s", card.ID, state),
		CardIDs: []string{card.ID},
	})
}

func (p *eventPresenter) CardsMatched(first, second engine.Card) {
	variant := first.Variant
	p.emit(GameEvent{
		Type:    EventMatch,
		Message: fmt.Sprintf("Matched a pair of %s", variantLabel(first)),
		CardIDs: cardIDs(first, second),
		Variant: &variant,
	})
}

func (p *eventPresenter) CardsDestroyed(cards []engine.Card) {
	p.emit(GameEvent{
		Type:    EventCardsDestroyed,
		Message: fmt.Sprintf("Removed %d cards", len(cards)),
		CardIDs: cardIDs(cards...),
		Value:   len(cards),
	})
}

func (p *eventPresenter) PlaySound(sound engine.Sound) {
	p.emit(GameEvent{
		Type:    EventSound,
		Message: fmt.Sprintf("Played %s sound", sound),
		Sound:   string(sound),
	})
}

func (p *eventPresenter) ShowGameOver(guesses int, text string) {
	p.emit(GameEvent{
		Type:    EventGameOver,
		Message: text,
		Value:   guesses,
	})
}

func (p *eventPresenter) HideGameOver() {
	p.emit(GameEvent{
		Type:    EventGameOverHidden,
		Message: "Game over panel hidden",
	})
}

func (p *eventPresenter) SetMatchesToSpawnText(text string) {
	p.emit(GameEvent{
		Type:    EventMatchesToSpawn,
		Message: text,
	})
}

func cardIDs(cards ...engine.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func variantLabel(card engine.Card) string {
	if card.VariantName != "" {
		return card.VariantName
	}
	return fmt.Sprintf("variant %d", card.Variant)
}

func describeCard(card engine.Card) string {
	return fmt.Sprintf("%s (%s)", card.ID, variantLabel(card))
}
