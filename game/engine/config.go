package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when a game configuration cannot be played
var ErrInvalidConfig = errors.New("invalid configuration")

// GameConfig represents a game configuration loaded from JSON
type GameConfig struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	Symbols       []string `json:"symbols"`
	MatchReward   int      `json:"match_reward,omitempty"`
	MatchDelay    float64  `json:"match_delay,omitempty"`    // seconds
	MismatchDelay float64  `json:"mismatch_delay,omitempty"` // seconds
	MaxCards      int      `json:"max_cards,omitempty"`
	Messages      struct {
		Welcome  string `json:"welcome"`
		Match    string `json:"match"`
		Mismatch string `json:"mismatch"`
		Victory  string `json:"victory"`
	} `json:"messages"`
}

// ApplyDefaults fills zero-valued tuning fields
func (c *GameConfig) ApplyDefaults() {
	if c.MatchReward == 0 {
		c.MatchReward = DefaultMatchReward
	}
	if c.MatchDelay == 0 {
		c.MatchDelay = DefaultMatchDelay
	}
	if c.MismatchDelay == 0 {
		c.MismatchDelay = DefaultMismatchDelay
	}
	if c.MaxCards == 0 {
		c.MaxCards = DefaultMaxCards
	}
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = "Find all the pairs!"
	}
	if c.Messages.Match == "" {
		c.Messages.Match = "Match! Score: %d"
	}
	if c.Messages.Mismatch == "" {
		c.Messages.Mismatch = "No match, try again"
	}
	if c.Messages.Victory == "" {
		c.Messages.Victory = "You found all %d pairs!"
	}
}

// MatchDelayDuration returns the match resolution delay
func (c *GameConfig) MatchDelayDuration() time.Duration {
	return secondsToDuration(c.MatchDelay)
}

// MismatchDelayDuration returns the mismatch resolution delay
func (c *GameConfig) MismatchDelayDuration() time.Duration {
	return secondsToDuration(c.MismatchDelay)
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if err := ValidateGridSize(config.Rows, config.Columns); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if config.MaxCards > 0 && config.Rows*config.Columns > config.MaxCards {
		return fmt.Errorf("%w: %dx%d exceeds max_cards %d", ErrInvalidConfig, config.Rows, config.Columns, config.MaxCards)
	}

	if len(config.Symbols) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInsufficientSymbols)
	}
	seen := make(map[string]bool, len(config.Symbols))
	for i, symbol := range config.Symbols {
		if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("%w: symbol %d is blank", ErrInvalidConfig, i)
		}
		if seen[symbol] {
			return fmt.Errorf("%w: duplicate symbol %q", ErrInvalidConfig, symbol)
		}
		seen[symbol] = true
	}

	// The default layout must not rely on symbol wraparound
	pairs := config.Rows * config.Columns / 2
	if pairs > len(config.Symbols) {
		return fmt.Errorf("%w: %dx%d needs %d symbols, have %d: %w",
			ErrInvalidConfig, config.Rows, config.Columns, pairs, len(config.Symbols), ErrInsufficientSymbols)
	}

	if config.MatchReward < 0 {
		return fmt.Errorf("%w: match_reward must be non-negative", ErrInvalidConfig)
	}
	if config.MatchDelay < 0 || config.MismatchDelay < 0 {
		return fmt.Errorf("%w: delays must be non-negative", ErrInvalidConfig)
	}

	if config.Messages.Match != "" && !strings.Contains(config.Messages.Match, "%d") {
		return fmt.Errorf("%w: messages.match must contain %%d for score", ErrInvalidConfig)
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("%w: messages.victory must contain %%d for pair count", ErrInvalidConfig)
	}

	return nil
}

// DefaultConfig returns the built-in 4x4 configuration
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:        "default",
		Description: "Default 4x4 board",
		Rows:        4,
		Columns:     4,
		Symbols:     []string{"A", "B", "C", "D", "E", "F", "G", "H"},
	}
	config.ApplyDefaults()
	return config
}
