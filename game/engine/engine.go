package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	InitializeNewGame(rows, columns int) error
	ResetGame() error
	SetGridSize(rows, columns int) error
	Phase() Phase
	IsVictory() bool
	GetScore() int
	GetMoves() int
	GetElapsedTime() time.Duration

	// Selection protocol
	SelectCard(index int) bool
	CanSelect(index int) bool
	Tick(delta time.Duration)

	// Persistence
	Save() SaveSnapshot
	Load(snapshot *SaveSnapshot) error

	// Configuration
	GetConfig() *GameConfig

	// Events
	DrainEvents() []GameEvent
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithLogger sets the engine logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *GameEngine) {
		e.logger = logger
	}
}

// WithShuffleBag replaces the layout generator, mainly for deterministic tests
func WithShuffleBag(bag *ShuffleBag) Option {
	return func(e *GameEngine) {
		if bag != nil {
			e.bag = bag
		}
	}
}

// WithSeed seeds the layout generator
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.bag = NewSeededShuffleBag(seed)
	}
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	config    *GameConfig
	bag       *ShuffleBag
	scheduler *Scheduler
	logger    zerolog.Logger

	phase      Phase
	rows       int
	columns    int
	cards      []CardSlot
	pending    []int
	score      int
	moves      int
	matched    []int
	restored   []int
	elapsed    time.Duration
	generation uint64
	message    string
	events     []GameEvent
}

// NewEngine creates an idle engine for the provided configuration. Call
// InitializeNewGame to deal the first grid.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	cfg := *config
	cfg.Symbols = append([]string(nil), config.Symbols...)
	cfg.ApplyDefaults()
	if err := ValidateGameConfig(&cfg); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:    &cfg,
		scheduler: NewScheduler(),
		logger:    zerolog.Nop(),
		phase:     PhaseIdle,
		matched:   []int{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bag == nil {
		e.bag = NewShuffleBag()
	}

	return e, nil
}

// NewEngineWithDefaults creates an idle engine with the built-in configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// InitializeNewGame deals a fresh grid and resets all counters. Validation
// happens before any state is touched, so a failure leaves the session as it was.
func (e *GameEngine) InitializeNewGame(rows, columns int) error {
	if err := e.checkCapacity(rows, columns); err != nil {
		return err
	}
	ids, err := e.bag.Generate(rows, columns, len(e.config.Symbols))
	if err != nil {
		return err
	}

	cards := make([]CardSlot, len(ids))
	for i, id := range ids {
		cards[i] = CardSlot{Index: i, PairID: id}
	}

	e.generation++
	e.rows = rows
	e.columns = columns
	e.cards = cards
	e.pending = nil
	e.score = 0
	e.moves = 0
	e.matched = []int{}
	e.restored = nil
	e.elapsed = 0
	e.phase = PhaseActive
	e.message = e.config.Messages.Welcome

	e.logger.Debug().
		Int("rows", rows).
		Int("columns", columns).
		Uint64("generation", e.generation).
		Msg("new grid dealt")
	e.emit(EventNewGame, nil, -1)
	return nil
}

// ResetGame starts over with the last used dimensions
func (e *GameEngine) ResetGame() error {
	rows, columns := e.rows, e.columns
	if rows == 0 || columns == 0 {
		rows, columns = e.config.Rows, e.config.Columns
	}
	return e.InitializeNewGame(rows, columns)
}

// SetGridSize changes the grid dimensions. Invalid sizes are logged and
// reported; the current game is left untouched.
func (e *GameEngine) SetGridSize(rows, columns int) error {
	if err := e.checkCapacity(rows, columns); err != nil {
		e.logger.Warn().Err(err).Int("rows", rows).Int("columns", columns).Msg("grid size rejected")
		return err
	}

	pairs := rows * columns / 2
	if pairs > len(e.config.Symbols) {
		err := fmt.Errorf("%w: %dx%d needs %d symbols, have %d",
			ErrInsufficientSymbols, rows, columns, pairs, len(e.config.Symbols))
		e.logger.Warn().Err(err).Int("rows", rows).Int("columns", columns).Msg("grid size rejected")
		return err
	}

	return e.InitializeNewGame(rows, columns)
}

// CanSelect reports whether SelectCard(index) would be accepted
func (e *GameEngine) CanSelect(index int) bool {
	if e.phase != PhaseActive {
		return false
	}
	if index < 0 || index >= len(e.cards) {
		return false
	}
	return e.cards[index].Selectable()
}

// SelectCard flips the card at index. Selections that are not allowed right
// now (wrong phase, out of range, card already up or matched) are ignored and
// return false. The second selection of a turn counts a move and schedules
// the resolution; further selections are blocked until it has run.
func (e *GameEngine) SelectCard(index int) bool {
	if !e.CanSelect(index) {
		return false
	}

	card := &e.cards[index]
	if err := card.Select(); err != nil {
		return false
	}
	e.pending = append(e.pending, index)
	e.emit(EventFlip, []int{index}, card.PairID)

	if len(e.pending) < MaxPendingSelection {
		return true
	}

	first, second := e.pending[0], e.pending[1]
	e.pending = nil
	e.moves++
	e.phase = PhaseResolving
	generation := e.generation

	if e.cards[first].PairID == e.cards[second].PairID {
		pairID := e.cards[first].PairID
		e.matched = append(e.matched, pairID)
		e.score += e.config.MatchReward
		e.message = fmt.Sprintf(e.config.Messages.Match, e.score)
		e.emit(EventMatch, []int{first, second}, pairID)
		e.scheduler.After(e.config.MatchDelayDuration(), generation, func() {
			e.resolveMatch(first, second)
		})
		return true
	}

	e.message = e.config.Messages.Mismatch
	e.emit(EventMismatch, []int{first, second}, -1)
	e.scheduler.After(e.config.MismatchDelayDuration(), generation, func() {
		e.resolveMismatch(first, second)
	})
	return true
}

// Tick advances elapsed time and runs resolutions that have become due.
// The engine has no clock of its own; the driving loop calls Tick.
// Time is credited up to each resolution before it runs, so a win inside a
// long tick freezes elapsed time at the moment of the win.
func (e *GameEngine) Tick(delta time.Duration) {
	if delta < 0 {
		return
	}
	target := e.scheduler.Now() + delta
	for {
		next, ok := e.scheduler.NextDue()
		if !ok || next > target {
			break
		}
		e.advanceTo(next)
	}
	e.advanceTo(target)
}

// advanceTo moves the scheduler clock to at, crediting elapsed time first
func (e *GameEngine) advanceTo(at time.Duration) {
	step := at - e.scheduler.Now()
	if step < 0 {
		step = 0
	}
	if e.phase == PhaseActive || e.phase == PhaseResolving {
		e.elapsed += step
	}
	e.scheduler.Advance(step, e.generation)
}

func (e *GameEngine) resolveMatch(first, second int) {
	for _, idx := range []int{first, second} {
		if err := e.cards[idx].ConfirmMatch(); err != nil {
			e.logger.Debug().Err(err).Msg("match resolution skipped card")
		}
	}

	if len(e.matched)*2 == len(e.cards) {
		e.phase = PhaseWon
		e.message = fmt.Sprintf(e.config.Messages.Victory, len(e.matched))
		e.emit(EventResolved, []int{first, second}, e.cards[first].PairID)
		e.emit(EventWon, nil, -1)
		e.logger.Info().
			Int("score", e.score).
			Int("moves", e.moves).
			Float64("elapsed", e.elapsed.Seconds()).
			Msg("game won")
		return
	}

	e.phase = PhaseActive
	e.emit(EventResolved, []int{first, second}, e.cards[first].PairID)
}

func (e *GameEngine) resolveMismatch(first, second int) {
	for _, idx := range []int{first, second} {
		if err := e.cards[idx].Revert(); err != nil {
			e.logger.Debug().Err(err).Msg("mismatch resolution skipped card")
		}
	}
	e.phase = PhaseActive
	e.emit(EventResolved, []int{first, second}, -1)
}

// checkCapacity validates dimensions against the grid rules and the config limit
func (e *GameEngine) checkCapacity(rows, columns int) error {
	if err := ValidateGridSize(rows, columns); err != nil {
		return err
	}
	if e.config.MaxCards > 0 && rows*columns > e.config.MaxCards {
		return fmt.Errorf("%w: %dx%d exceeds the %d card limit", ErrInvalidGridSize, rows, columns, e.config.MaxCards)
	}
	return nil
}

func (e *GameEngine) emit(eventType EventType, cards []int, pairID int) {
	e.events = append(e.events, GameEvent{
		Type:        eventType,
		Message:     e.message,
		Cards:       cards,
		PairID:      pairID,
		Score:       e.score,
		Moves:       e.moves,
		ElapsedTime: e.elapsed.Seconds(),
		Generation:  e.generation,
	})
}

// DrainEvents returns the events emitted since the last call and clears them
func (e *GameEngine) DrainEvents() []GameEvent {
	events := e.events
	e.events = nil
	return events
}

// GetState returns a copy of the current state
func (e *GameEngine) GetState() *GameState {
	cards := make([]CardView, len(e.cards))
	for i := range e.cards {
		card := &e.cards[i]
		view := CardView{
			Index:      card.Index,
			FaceUp:     card.FaceUp,
			Matched:    card.Matched,
			Selectable: e.CanSelect(i),
		}
		if card.FaceUp || card.Matched {
			view.Symbol = e.symbolFor(card.PairID)
		}
		cards[i] = view
	}

	state := &GameState{
		Phase:            e.phase,
		Rows:             e.rows,
		Columns:          e.columns,
		Cards:            cards,
		PendingSelection: append([]int{}, e.pending...),
		Score:            e.score,
		Moves:            e.moves,
		ElapsedTime:      e.elapsed.Seconds(),
		MatchedPairIDs:   append([]int{}, e.matched...),
		TotalPairs:       len(e.cards) / 2,
		Generation:       e.generation,
		Message:          e.message,
		Victory:          e.phase == PhaseWon,
		ConfigName:       e.config.Name,
	}
	if len(e.restored) > 0 {
		state.RestoredPairIDs = append([]int{}, e.restored...)
	}
	return state
}

func (e *GameEngine) symbolFor(pairID int) string {
	return e.config.Symbols[SymbolIndex(pairID, len(e.config.Symbols))]
}

// Phase returns the current lifecycle phase
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// IsVictory returns whether all pairs have been found
func (e *GameEngine) IsVictory() bool {
	return e.phase == PhaseWon
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetMoves returns the number of evaluated pairs
func (e *GameEngine) GetMoves() int {
	return e.moves
}

// GetElapsedTime returns the play time of the current game
func (e *GameEngine) GetElapsedTime() time.Duration {
	return e.elapsed
}

// GetConfig returns the engine configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Generation returns the current grid generation id
func (e *GameEngine) Generation() uint64 {
	return e.generation
}

// Card returns a copy of the slot at index
func (e *GameEngine) Card(index int) (CardSlot, bool) {
	if index < 0 || index >= len(e.cards) {
		return CardSlot{}, false
	}
	return e.cards[index], true
}

// PendingResolutions returns how many deferred resolutions are queued
func (e *GameEngine) PendingResolutions() int {
	return e.scheduler.Pending()
}
