// Command bruteforcer plays memory match sessions against a running game
// server with a perfect-memory strategy and reports the guesses per deal.
package main

import (
	"bytes"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/wricardo/memory-match-game/game/autoplay"
	"github.com/wricardo/memory-match-game/game/engine"
)

const sessionFile = ".session"

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game configuration ID (default, classic, quick)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	matches := flag.Int("matches", 0, "Pairs to deal (0 = keep the session setting)")
	games := flag.Int("games", 1, "Deals to play")
	random := flag.Bool("random", false, "Flip random cards instead of remembering them")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between turns in milliseconds (0 = no delay)")
	flag.Parse()

	if *games < 1 {
		log.Fatalf("-games must be at least 1, got %d", *games)
	}

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		if _, err := client.GetState(); err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		if _, err := client.CreateSession(*configID); err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	if *matches > 0 {
		state, err := client.SetMatches(*matches)
		if err != nil {
			log.Fatalf("Failed to set matches: %v", err)
		}
		log.Print(state.MatchesToSpawnText)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	var strategy autoplay.Strategy = autoplay.NewMemoryStrategy(rng)
	if *random {
		strategy = autoplay.NewRandomStrategy(rng)
	}

	player := NewPlayer(client, strategy)
	player.verbose = *verbose
	player.delay = time.Duration(*delayMs) * time.Millisecond

	total := 0
	for game := 1; game <= *games; game++ {
		state, err := player.NewDeal()
		if err != nil {
			log.Fatalf("Failed to deal game %d: %v", game, err)
		}
		log.Printf("\n=== 🎮 Game %d/%d: %d cards ===", game, *games, len(state.Cards))

		guesses, err := player.Play(state, 64*engine.MaxCardsToSpawn)
		if err != nil {
			log.Printf("❌ Game %d failed: %v", game, err)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(1)
		}

		total += guesses
		log.Printf("🎉 Game %d finished in %d guesses", game, guesses)
	}

	log.Printf("\nAverage: %.2f guesses over %d games", float64(total)/float64(*games), *games)
	log.Printf("Session: %s", client.sessionID)
}
