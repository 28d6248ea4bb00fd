package engine

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MinCardsToSpawn", MinCardsToSpawn, 2},
		{"MaxCardsToSpawn", MaxCardsToSpawn, 16},
		{"MinMatches", MinMatches, 1},
		{"MaxMatches", MaxMatches, 8},
		{"DefaultCardCheckDelayMs", DefaultCardCheckDelayMs, 1000},
		{"DefaultCardUnflipDelayMs", DefaultCardUnflipDelayMs, 750},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestGameStateJSON(t *testing.T) {
	state := &GameState{
		Cards:        []Card{{ID: "a", Variant: 1, VariantName: "banana", Flipped: true}},
		TotalMatches: 1,
		Guess1:       &Guess{CardID: "a", Index: 0, Variant: 1},
		CardsToSpawn: 2,
		Phase:        PhasePlaying,
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}
	for _, key := range []string{"cards", "total_matches", "guess_count", "correct_count", "guess1", "cards_to_spawn", "phase", "game_over"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected key %q in state JSON", key)
		}
	}
	if _, ok := fields["guess2"]; ok {
		t.Error("Empty second guess must be omitted")
	}
	if fields["phase"] != "playing" {
		t.Errorf("Expected phase 'playing', got %v", fields["phase"])
	}
}

func TestPickVariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	variants, err := PickVariants(4, 9, rng)
	if err != nil {
		t.Fatalf("PickVariants failed: %v", err)
	}
	if len(variants) != 4 {
		t.Fatalf("Expected 4 variants, got %d", len(variants))
	}
	seen := make(map[int]bool)
	for _, v := range variants {
		if v < 0 || v >= 9 {
			t.Errorf("Variant %d out of range", v)
		}
		if seen[v] {
			t.Errorf("Variant %d drawn twice", v)
		}
		seen[v] = true
	}

	if _, err := PickVariants(0, 9, rng); err == nil {
		t.Error("Expected error for zero pairs")
	}
	if _, err := PickVariants(5, 4, rng); err == nil {
		t.Error("Expected error for an insufficient pool")
	}
}

func TestDealCards(t *testing.T) {
	cards := DealCards([]int{2, 0}, []string{"a", "b", "c"})
	if len(cards) != 4 {
		t.Fatalf("Expected 4 cards, got %d", len(cards))
	}

	expected := []int{2, 2, 0, 0}
	for i, c := range cards {
		if c.Variant != expected[i] {
			t.Errorf("Card %d: expected variant %d, got %d", i, expected[i], c.Variant)
		}
		if c.ID == "" || !c.Interactable || c.Flipped {
			t.Errorf("Card %d not dealt face down and interactable: %+v", i, c)
		}
	}
	if cards[0].VariantName != "c" || cards[2].VariantName != "a" {
		t.Error("Variant names not resolved from the pool")
	}
}

func TestShuffleCards_Permutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	cards := DealCards([]int{0, 1, 2, 3, 4, 5, 6, 7}, nil)

	for i := 0; i < 50; i++ {
		shuffled := ShuffleCards(cards, rng)
		if len(shuffled) != len(cards) {
			t.Fatalf("Shuffle changed the card count: %d", len(shuffled))
		}
		ids := make([]string, len(shuffled))
		for j, c := range shuffled {
			ids[j] = c.ID
		}
		for _, c := range cards {
			if !slices.Contains(ids, c.ID) {
				t.Fatalf("Card %s lost in shuffle", c.ID)
			}
		}
	}

	if cards[0].Variant != 0 || cards[len(cards)-1].Variant != 7 {
		t.Error("Shuffle must not modify its input")
	}
}

func TestMoveCard(t *testing.T) {
	cards := DealCards([]int{0, 1}, nil)
	first := cards[0].ID

	moved := moveCard(slices.Clone(cards), first, 3)
	if moved[3].ID != first {
		t.Errorf("Expected card at the end, got order %v", moved)
	}

	moved = moveCard(slices.Clone(cards), "missing", 0)
	if moved[0].ID != first {
		t.Error("Unknown card must leave the order unchanged")
	}
}

func TestCountMatched(t *testing.T) {
	cards := []Card{{Matched: true}, {Matched: true}, {}}
	if got := CountMatched(cards); got != 2 {
		t.Errorf("Expected 2 matched cards, got %d", got)
	}
}

func TestGameStatePublic(t *testing.T) {
	state := &GameState{
		Cards: []Card{
			{ID: "a", Variant: 1, VariantName: "banana", Flipped: true},
			{ID: "b", Variant: 2, VariantName: "cherry", Interactable: true},
			{ID: "c", Variant: 1, VariantName: "banana", Interactable: true},
			{ID: "d", Variant: 3, VariantName: "grape", Matched: true},
		},
		Guess1:       &Guess{CardID: "a", Index: 0, Variant: 1},
		Guess2:       &Guess{CardID: "b", Index: 1, Variant: 2},
		CardsToSpawn: 4,
	}

	public := state.Public()

	want := []struct {
		variant int
		name    string
	}{
		{1, "banana"},
		{HiddenVariant, ""},
		{HiddenVariant, ""},
		{3, "grape"},
	}
	for i, w := range want {
		c := public.Cards[i]
		if c.Variant != w.variant || c.VariantName != w.name {
			t.Errorf("Card %s: expected variant %d %q, got %d %q", c.ID, w.variant, w.name, c.Variant, c.VariantName)
		}
	}
	if public.Guess1.Variant != 1 {
		t.Errorf("Face-up guess should keep its variant, got %d", public.Guess1.Variant)
	}
	if public.Guess2.Variant != HiddenVariant {
		t.Errorf("Face-down guess should be hidden, got %d", public.Guess2.Variant)
	}

	// The source state is untouched
	if state.Cards[1].Variant != 2 || state.Guess2.Variant != 2 {
		t.Error("Public must not modify the original state")
	}
	if (*GameState)(nil).Public() != nil {
		t.Error("Public of a nil state should be nil")
	}
}
