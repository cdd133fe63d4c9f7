package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for save snapshots
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageNone   = "none"
)

// ServerConfig holds process settings read from the environment. CLI flags
// override these values in main.
type ServerConfig struct {
	Host      string `env:"HOST"       envDefault:"localhost"`
	Port      int    `env:"PORT"       envDefault:"8080"`
	ConfigDir string `env:"CONFIG_DIR" envDefault:"configs"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`

	// Save snapshots
	Storage    string `env:"SAVE_STORAGE" envDefault:"file"`
	SaveDir    string `env:"SAVE_DIR"     envDefault:"saves"`
	SQLitePath string `env:"SQLITE_PATH"  envDefault:"saves.db"`
	AutoSave   bool   `env:"AUTO_SAVE"    envDefault:"true"`

	// Driving loop; 0 disables it and clients call POST /tick
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"100ms"`

	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE"   envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"  envDefault:"1h"`

	Ngrok       bool   `env:"NGROK_ENABLED"`
	NgrokToken  string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain string `env:"NGROK_DOMAIN"`
}

// LoadServerConfig parses ServerConfig from the environment and validates it
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env parsing cannot express
func (c ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageNone:
	default:
		return fmt.Errorf("unknown save storage %q (want %s, %s or %s)", c.Storage, StorageFile, StorageSQLite, StorageNone)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("tick interval must be non-negative, got %v", c.TickInterval)
	}
	if c.SessionMaxAge <= 0 || c.CleanupInterval <= 0 {
		return fmt.Errorf("session max age and cleanup interval must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
