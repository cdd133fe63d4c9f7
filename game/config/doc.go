// Package config provides configuration management for the Memory Match Game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and the validate command's report
//   - Default configuration management
//   - Server settings read from the environment
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The default grid (rows and columns, product even)
//   - The symbol set; pair ids map onto it modulo its length
//   - Match reward and the match / mismatch resolution delays in seconds
//   - Messages shown for welcome, match, mismatch and victory
//
// Available Configurations:
//   - classic: 4x4 board, the default
//   - small: 2x4 warm-up
//   - medium: 3x4 board
//   - large: 6x6 board
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//
// Server settings come from ServerConfig, parsed with caarlos0/env:
//
//	cfg, err := config.LoadServerConfig()
//	fmt.Println(cfg.Addr(), cfg.TickInterval)
package config
