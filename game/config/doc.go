// Package config provides configuration management for the memory match game.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation and caching
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as .json, .yaml or .yml files in the configs
// directory. The file name without its extension is the config ID used when
// creating sessions. Each configuration defines:
//   - The deal size (cards_to_spawn, even, 2 to 16)
//   - The match check and unflip delays in milliseconds
//   - The variant pool cards are drawn from
//   - Message templates for the matches counter and the game over panel
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("quick")
//
//	// Get default configuration (classic, else the first valid one)
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
package config
