// Command validate checks game configuration files in the ../configs
// directory. It checks:
//   - JSON or YAML structure and required fields
//   - Deal size, delays and message formats
//   - That the variant pool can fill a full deal
//
// The analyze subcommand also plays simulated games of each config and
// reports how many guesses a perfect-memory player and a random player need.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-match-game/game/autoplay"
	"github.com/wricardo/memory-match-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Config *engine.GameConfig
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Config = config

	pairs := config.CardsToSpawn / 2
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Deal: %d cards (%d pairs)", config.CardsToSpawn, pairs),
		fmt.Sprintf("✓ Variants: %d usable of %d", config.UsableVariants(), len(config.Variants)),
		fmt.Sprintf("✓ Delays: check %dms, unflip %dms", config.CardCheckDelayMs, config.CardUnflipDelayMs),
	)

	// Restarts may request up to MaxMatches pairs
	if usable := config.UsableVariants(); usable < engine.MaxMatches {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Note: restarts above %d matches will fail (pool of %d)", usable, usable))
	}

	return result
}

// findConfigs returns the given files, or every config file in dir when none
// are given
func findConfigs(dir string, files []string) ([]string, error) {
	if len(files) > 0 {
		return files, nil
	}

	var found []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	slices.Sort(found)

	if len(found) == 0 {
		return nil, fmt.Errorf("no config files found in %s", dir)
	}
	return found, nil
}

func printResult(result ValidationResult) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Errors {
			fmt.Println("  " + info)
		}
		return
	}

	fmt.Println("❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Println("  ❌ " + err)
		}
	}
}

func printSummary(allValid bool) error {
	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
		return nil
	}
	fmt.Println("❌ Some configurations have errors")
	return cli.Exit("", 1)
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	files, err := findConfigs(cmd.String("dir"), cmd.Args().Slice())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error finding config files: %v", err), 1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)
		printResult(result)
		allValid = allValid && result.Valid
	}

	return printSummary(allValid)
}

// analyzeConfig simulates games of a valid config with both players
func analyzeConfig(config *engine.GameConfig, games int, seed uint64) (memory, random *autoplay.SimulationResult, err error) {
	memory, err = autoplay.Simulate(config, func(rng *rand.Rand) autoplay.Strategy {
		return autoplay.NewMemoryStrategy(rng)
	}, games, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("memory player: %w", err)
	}

	random, err = autoplay.Simulate(config, func(rng *rand.Rand) autoplay.Strategy {
		return autoplay.NewRandomStrategy(rng)
	}, games, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("random player: %w", err)
	}

	return memory, random, nil
}

func analyzeAction(_ context.Context, cmd *cli.Command) error {
	files, err := findConfigs(cmd.String("dir"), cmd.Args().Slice())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error finding config files: %v", err), 1)
	}

	games := int(cmd.Int("games"))
	seed := cmd.Uint64("seed")

	allValid := true
	for _, file := range files {
		result := validateConfig(file)
		printResult(result)
		if !result.Valid {
			allValid = false
			continue
		}

		memory, random, err := analyzeConfig(result.Config, games, seed)
		if err != nil {
			fmt.Printf("  ❌ Simulation failed: %v\n", err)
			allValid = false
			continue
		}
		fmt.Printf("  Perfect memory: min %d, max %d, mean %.2f guesses over %d games\n",
			memory.MinGuesses, memory.MaxGuesses, memory.MeanGuesses, memory.Games)
		fmt.Printf("  Random flips:   min %d, max %d, mean %.2f guesses over %d games\n",
			random.MinGuesses, random.MaxGuesses, random.MeanGuesses, random.Games)
	}

	return printSummary(allValid)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check memory match game configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "../configs",
				Usage: "directory scanned when no files are given",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "validate configuration files",
				ArgsUsage: "[files...]",
				Action:    checkAction,
			},
			{
				Name:      "analyze",
				Usage:     "validate and simulate games for each configuration",
				ArgsUsage: "[files...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "games",
						Value: 200,
						Usage: "games simulated per player",
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Value: 1,
						Usage: "simulation seed",
					},
				},
				Action: analyzeAction,
			},
		},
		DefaultCommand: "check",
	}
}

// main validates every config in ../configs by default, printing a concise
// report and exiting with non-zero status if any are invalid
func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}
