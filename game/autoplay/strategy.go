package autoplay

import (
	"math/rand/v2"
	"slices"
)

// Strategy chooses the two cards of a turn
type Strategy interface {
	// First picks the opening card of a turn among the flippable card IDs
	First(available []string) string
	// Second picks the card flipped after first
	Second(first string, available []string) string
	// Remember records the picture revealed by a flip
	Remember(cardID string, variant int)
	// Forget drops cards that left play
	Forget(cardIDs ...string)
	// Reset clears everything learned, for a new deal
	Reset()
}

// MemoryStrategy remembers every revealed card and flips a known pair
// whenever it can
type MemoryStrategy struct {
	known map[string]int // card ID -> variant
	rng   *rand.Rand
}

// NewMemoryStrategy creates a strategy; rng breaks ties among unknown cards
func NewMemoryStrategy(rng *rand.Rand) *MemoryStrategy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MemoryStrategy{
		known: make(map[string]int),
		rng:   rng,
	}
}

func (s *MemoryStrategy) Remember(cardID string, variant int) {
	s.known[cardID] = variant
}

func (s *MemoryStrategy) Forget(cardIDs ...string) {
	for _, id := range cardIDs {
		delete(s.known, id)
	}
}

func (s *MemoryStrategy) Reset() {
	clear(s.known)
}

// Known returns the remembered variant of a card
func (s *MemoryStrategy) Known(cardID string) (int, bool) {
	v, ok := s.known[cardID]
	return v, ok
}

func (s *MemoryStrategy) First(available []string) string {
	if len(available) == 0 {
		return ""
	}

	// A remembered pair is a guaranteed match
	byVariant := make(map[int]string)
	for _, id := range available {
		v, ok := s.known[id]
		if !ok {
			continue
		}
		if _, seen := byVariant[v]; seen {
			return byVariant[v]
		}
		byVariant[v] = id
	}

	if unknown := s.unknown(available, ""); len(unknown) > 0 {
		return unknown[s.rng.IntN(len(unknown))]
	}
	return available[s.rng.IntN(len(available))]
}

func (s *MemoryStrategy) Second(first string, available []string) string {
	if v, ok := s.known[first]; ok {
		for _, id := range available {
			if id == first {
				continue
			}
			if other, ok := s.known[id]; ok && other == v {
				return id
			}
		}
	}

	if unknown := s.unknown(available, first); len(unknown) > 0 {
		return unknown[s.rng.IntN(len(unknown))]
	}
	return pickOther(s.rng, first, available)
}

func (s *MemoryStrategy) unknown(available []string, exclude string) []string {
	var out []string
	for _, id := range available {
		if id == exclude {
			continue
		}
		if _, ok := s.known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// RandomStrategy flips two random cards every turn
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy creates a strategy without memory
func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomStrategy{rng: rng}
}

func (s *RandomStrategy) First(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return available[s.rng.IntN(len(available))]
}

func (s *RandomStrategy) Second(first string, available []string) string {
	return pickOther(s.rng, first, available)
}

func (s *RandomStrategy) Remember(string, int) {}
func (s *RandomStrategy) Forget(...string)     {}
func (s *RandomStrategy) Reset()               {}

func pickOther(rng *rand.Rand, first string, available []string) string {
	others := slices.DeleteFunc(slices.Clone(available), func(id string) bool { return id == first })
	if len(others) == 0 {
		return ""
	}
	return others[rng.IntN(len(others))]
}
