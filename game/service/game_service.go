package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrNoSnapshotStore      = errors.New("snapshot store not configured")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	RestoreSessions(ctx context.Context) (int, error)

	// Game Operations
	SelectCard(ctx context.Context, sessionID string, index int) (*ActionResult, error)
	SetGridSize(ctx context.Context, sessionID string, rows, columns int) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*ActionResult, error)
	Tick(ctx context.Context, sessionID string, delta time.Duration) (*ActionResult, error)
	TickAll(ctx context.Context, delta time.Duration) int

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Snapshots
	SaveGame(ctx context.Context, sessionID string) (*engine.SaveSnapshot, error)
	LoadGame(ctx context.Context, sessionID string) (*ActionResult, error)
	GetSave(ctx context.Context, sessionID string) (*engine.SaveSnapshot, error)
	DeleteSave(ctx context.Context, sessionID string) error

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// SnapshotStore persists one save snapshot per profile. Load returns
// engine.ErrSnapshotNotFound when nothing is stored and
// engine.ErrSnapshotCorrupt when the stored record cannot be used.
type SnapshotStore interface {
	Save(profile string, snapshot *engine.SaveSnapshot) error
	Load(profile string) (*engine.SaveSnapshot, error)
	Exists(profile string) bool
	Delete(profile string) error
	ListAll() ([]string, error)
}

// Publisher receives state changes for connected clients
type Publisher interface {
	Publish(sessionID string, state *engine.GameState, events []GameEvent)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
