package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// PickVariants draws one distinct variant index per pair from the first
// usable entries of the pool
func PickVariants(pairs, usable int, rng *rand.Rand) ([]int, error) {
	if pairs < 1 {
		return nil, fmt.Errorf("%w: need at least one pair, got %d", ErrInvalidMatches, pairs)
	}
	if usable < pairs {
		return nil, fmt.Errorf("%w: %d pairs need %d variants, only %d usable",
			ErrInsufficientVariants, pairs, pairs, usable)
	}
	return rng.Perm(usable)[:pairs], nil
}

// DealCards creates two face-down cards for every variant, in creation order
func DealCards(variants []int, names []string) []Card {
	cards := make([]Card, 0, len(variants)*2)
	for _, v := range variants {
		name := ""
		if v >= 0 && v < len(names) {
			name = names[v]
		}
		for j := 0; j < 2; j++ {
			cards = append(cards, Card{
				ID:           uuid.NewString(),
				Variant:      v,
				VariantName:  name,
				Interactable: true,
			})
		}
	}
	return cards
}

// ShuffleCards returns a new ordering of cards. Each card, in creation order,
// is moved to a uniformly drawn position of the current ordering. The result
// is always a permutation but not a uniform one.
func ShuffleCards(cards []Card, rng *rand.Rand) []Card {
	order := slices.Clone(cards)
	for i := range cards {
		target := rng.IntN(len(cards))
		order = moveCard(order, cards[i].ID, target)
	}
	return order
}

// moveCard removes the card with the given ID and reinserts it at target
func moveCard(order []Card, id string, target int) []Card {
	from := indexOfCard(order, id)
	if from < 0 {
		return order
	}
	card := order[from]
	order = slices.Delete(order, from, from+1)
	if target > len(order) {
		target = len(order)
	}
	return slices.Insert(order, target, card)
}

// indexOfCard returns the position of the card with the given ID, or -1
func indexOfCard(cards []Card, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(cards, func(c Card) bool { return c.ID == id })
}

// CountVariants returns how many cards of each variant are in the deal
func CountVariants(cards []Card) map[int]int {
	counts := make(map[int]int)
	for _, c := range cards {
		counts[c.Variant]++
	}
	return counts
}

// CountMatched counts the cards already matched
func CountMatched(cards []Card) int {
	count := 0
	for _, c := range cards {
		if c.Matched {
			count++
		}
	}
	return count
}
