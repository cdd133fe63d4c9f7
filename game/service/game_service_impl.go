package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/memory-match-game/game/engine"
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithSnapshotStore enables save/load through the given store
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *gameServiceImpl) {
		s.snapshots = store
	}
}

// WithPublisher forwards state changes to connected clients
func WithPublisher(publisher Publisher) Option {
	return func(s *gameServiceImpl) {
		s.publisher = publisher
	}
}

// WithAutoSave toggles saving the snapshot when a game is won
func WithAutoSave(enabled bool) Option {
	return func(s *gameServiceImpl) {
		s.autoSave = enabled
	}
}

// gameServiceImpl implements the GameService interface. Every engine call
// happens under mu, so each session sees a single logical thread.
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	snapshots SnapshotStore
	publisher Publisher
	autoSave  bool
	now       func() time.Time
	mu        sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		autoSave: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		HasSave:        s.snapshots != nil && s.snapshots.Exists(sess.ID),
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.drainAndPublish(sess)

	log.Info().Str("session", sess.ID).Str("config", config.Name).Msg("session created")

	// Prefer the requested identifier, otherwise look it up by display name
	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information. It takes the write lock because
// touching the access time mutates the session.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}

	return result, nil
}

// DeleteSession removes a session. Its stored snapshot is kept.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// RestoreSessions recreates a session for every stored profile that is not
// already live and loads its snapshot. Unusable snapshots are skipped.
func (s *gameServiceImpl) RestoreSessions(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.snapshots.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list saved profiles: %w", err)
	}

	restored := 0
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		if _, err := s.sessions.Get(profile); err == nil {
			continue
		}

		snapshot, err := s.snapshots.Load(profile)
		if err != nil {
			log.Warn().Err(err).Str("profile", profile).Msg("skipping saved profile")
			continue
		}

		sess, err := s.sessions.Create(profile, s.configs.GetDefault())
		if err != nil {
			log.Warn().Err(err).Str("profile", profile).Msg("failed to create session for saved profile")
			continue
		}
		if err := sess.Engine.Load(snapshot); err != nil {
			log.Warn().Err(err).Str("profile", profile).Msg("failed to load saved profile")
			continue
		}
		sess.Engine.DrainEvents()
		restored++
	}

	if restored > 0 {
		log.Info().Int("count", restored).Msg("restored saved sessions")
	}
	return restored, nil
}

// SelectCard flips a card. Ignored selections are reported with Success=false.
func (s *gameServiceImpl) SelectCard(ctx context.Context, sessionID string, index int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	accepted := sess.Engine.SelectCard(index)
	events := s.drainAndPublish(sess)
	state := sess.Engine.GetState()

	message := state.Message
	if !accepted {
		message = fmt.Sprintf("card %d cannot be selected right now", index)
	}

	return &ActionResult{
		Success:   accepted,
		GameState: state,
		Message:   message,
		Events:    events,
	}, nil
}

// SetGridSize rebuilds the session grid with new dimensions
func (s *gameServiceImpl) SetGridSize(ctx context.Context, sessionID string, rows, columns int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.SetGridSize(rows, columns); err != nil {
		return nil, err
	}
	events := s.drainAndPublish(sess)
	state := sess.Engine.GetState()

	return &ActionResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}, nil
}

// Reset starts a new game with the current dimensions
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.ResetGame(); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}
	events := s.drainAndPublish(sess)
	state := sess.Engine.GetState()

	return &ActionResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}, nil
}

// Tick advances one session's clock
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, delta time.Duration) (*ActionResult, error) {
	if delta < 0 {
		return nil, fmt.Errorf("delta must be non-negative, got %v", delta)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.Tick(delta)
	events := s.drainAndPublish(sess)
	state := sess.Engine.GetState()

	return &ActionResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}, nil
}

// TickAll advances every live session and returns how many produced events.
// It does not touch last-access times, so idle sessions still expire.
func (s *gameServiceImpl) TickAll(ctx context.Context, delta time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, sess := range s.sessions.List() {
		sess.Engine.Tick(delta)
		if len(s.drainAndPublish(sess)) > 0 {
			changed++
		}
	}
	return changed
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// SaveGame stores the session's snapshot under its id
func (s *gameServiceImpl) SaveGame(ctx context.Context, sessionID string) (*engine.SaveSnapshot, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	snapshot := sess.Engine.Save()
	if err := s.snapshots.Save(sess.ID, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	log.Info().Str("session", sess.ID).Int("score", snapshot.Score).Msg("game saved")
	return &snapshot, nil
}

// LoadGame replaces the session's game with its stored snapshot
func (s *gameServiceImpl) LoadGame(ctx context.Context, sessionID string) (*ActionResult, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	snapshot, err := s.snapshots.Load(sess.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Load(snapshot); err != nil {
		return nil, err
	}

	events := s.drainAndPublish(sess)
	state := sess.Engine.GetState()

	log.Info().Str("session", sess.ID).Int("score", state.Score).Msg("game loaded")
	return &ActionResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}, nil
}

// GetSave returns the stored snapshot without loading it
func (s *gameServiceImpl) GetSave(ctx context.Context, sessionID string) (*engine.SaveSnapshot, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshots.Load(sess.ID)
}

// DeleteSave removes the stored snapshot
func (s *gameServiceImpl) DeleteSave(ctx context.Context, sessionID string) error {
	if s.snapshots == nil {
		return ErrNoSnapshotStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return s.snapshots.Delete(sess.ID)
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// drainAndPublish collects the engine's pending events, auto-saves on a win
// and forwards the state to the publisher. Callers hold mu.
func (s *gameServiceImpl) drainAndPublish(sess *Session) []GameEvent {
	events := toGameEvents(sess.Engine.DrainEvents(), s.now())
	if len(events) == 0 {
		return nil
	}

	if s.autoSave && s.snapshots != nil && hasEvent(events, engine.EventWon) {
		snapshot := sess.Engine.Save()
		if err := s.snapshots.Save(sess.ID, &snapshot); err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("auto-save after win failed")
		} else {
			log.Info().Str("session", sess.ID).Int("score", snapshot.Score).Msg("game won, progress saved")
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(sess.ID, sess.Engine.GetState(), events)
	}
	return events
}
