package engine

import (
	"errors"
	"testing"
	"time"
)

func createTestConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine integration tests",
		Rows:        2,
		Columns:     4,
		Symbols:     []string{"A", "B", "C", "D"},
	}
	config.Messages.Welcome = "Welcome to engine test!"
	config.Messages.Match = "Match! Score: %d"
	config.Messages.Mismatch = "Nope"
	config.Messages.Victory = "Victory! All %d pairs found!"
	return config
}

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig(), WithSeed(42))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.InitializeNewGame(2, 4); err != nil {
		t.Fatalf("Failed to initialize game: %v", err)
	}
	e.DrainEvents()
	return e
}

// findPair returns the two slot indices holding pairID
func findPair(t *testing.T, e *GameEngine, pairID int) (int, int) {
	t.Helper()
	found := []int{}
	for i, card := range e.cards {
		if card.PairID == pairID {
			found = append(found, i)
		}
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 cards with pair %d, found %d", pairID, len(found))
	}
	return found[0], found[1]
}

// findMismatch returns two unmatched, face-down slots with different pair ids
func findMismatch(t *testing.T, e *GameEngine) (int, int) {
	t.Helper()
	for i := range e.cards {
		if !e.cards[i].Selectable() {
			continue
		}
		for j := i + 1; j < len(e.cards); j++ {
			if e.cards[j].Selectable() && e.cards[j].PairID != e.cards[i].PairID {
				return i, j
			}
		}
	}
	t.Fatal("No mismatching pair available")
	return -1, -1
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.Phase() != PhaseIdle {
		t.Errorf("Expected idle phase, got %s", engine.Phase())
	}
	if engine.GetScore() != 0 || engine.GetMoves() != 0 {
		t.Error("Expected zero counters on a new engine")
	}
	if engine.GetConfig().MatchReward != DefaultMatchReward {
		t.Errorf("Expected default match reward %d, got %d", DefaultMatchReward, engine.GetConfig().MatchReward)
	}
	if engine.SelectCard(0) {
		t.Error("Selection must be ignored before the first grid is dealt")
	}

	// Defaults must not leak back into the caller's config
	if config.MatchReward != 0 {
		t.Error("NewEngine should not mutate the provided config")
	}
}

func TestNewEngineInvalidConfig(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}

	config := createTestConfig()
	config.Symbols = nil
	_, err := NewEngine(config)
	if !errors.Is(err, ErrInsufficientSymbols) {
		t.Errorf("Expected ErrInsufficientSymbols, got %v", err)
	}
}

func TestInitializeNewGamePairMultiplicity(t *testing.T) {
	config := createTestConfig()
	config.Symbols = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R"}
	e, err := NewEngine(config, WithSeed(7))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	sizes := [][2]int{{1, 2}, {2, 2}, {2, 4}, {3, 4}, {4, 4}, {5, 6}, {6, 6}}
	for _, size := range sizes {
		rows, columns := size[0], size[1]
		if err := e.InitializeNewGame(rows, columns); err != nil {
			t.Fatalf("InitializeNewGame(%d, %d) failed: %v", rows, columns, err)
		}

		counts := map[int]int{}
		for i, card := range e.cards {
			if card.Index != i {
				t.Errorf("Card %d has index %d", i, card.Index)
			}
			counts[card.PairID]++
		}

		pairs := rows * columns / 2
		if len(counts) != pairs {
			t.Errorf("%dx%d: expected %d distinct pair ids, got %d", rows, columns, pairs, len(counts))
		}
		for id := 0; id < pairs; id++ {
			if counts[id] != 2 {
				t.Errorf("%dx%d: pair %d appears %d times", rows, columns, id, counts[id])
			}
		}
	}
}

func TestInitializeNewGameInvalidSizeIsAtomic(t *testing.T) {
	e := newTestEngine(t)
	a, b := findPair(t, e, 0)
	e.SelectCard(a)
	e.SelectCard(b)
	before := e.GetState()

	for _, size := range [][2]int{{3, 5}, {0, 4}, {-2, 2}, {1, 1}} {
		err := e.InitializeNewGame(size[0], size[1])
		if !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("%v: expected ErrInvalidGridSize, got %v", size, err)
		}
	}

	after := e.GetState()
	if after.Generation != before.Generation || after.Score != before.Score || after.Moves != before.Moves {
		t.Error("Failed initialization must not modify the session")
	}
	if after.Rows != 2 || after.Columns != 4 {
		t.Errorf("Expected 2x4 to survive, got %dx%d", after.Rows, after.Columns)
	}
}

func TestSelectCardNoOps(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		e := newTestEngine(t)
		if e.SelectCard(-1) || e.SelectCard(8) {
			t.Error("Out of range selections must be ignored")
		}
	})

	t.Run("same card twice", func(t *testing.T) {
		e := newTestEngine(t)
		if !e.SelectCard(3) {
			t.Fatal("First selection should be accepted")
		}
		if e.SelectCard(3) {
			t.Error("Re-selecting the pending card must be ignored")
		}
		if e.GetMoves() != 0 {
			t.Errorf("Expected 0 moves, got %d", e.GetMoves())
		}
		if len(e.pending) != 1 {
			t.Errorf("Expected 1 pending selection, got %d", len(e.pending))
		}
	})

	t.Run("matched card", func(t *testing.T) {
		e := newTestEngine(t)
		a, b := findPair(t, e, 1)
		e.SelectCard(a)
		e.SelectCard(b)
		e.Tick(time.Second)

		moves, score := e.GetMoves(), e.GetScore()
		if e.SelectCard(a) || e.SelectCard(b) {
			t.Error("Matched cards must not be selectable")
		}
		if e.GetMoves() != moves || e.GetScore() != score {
			t.Error("Selecting matched cards must not change counters")
		}
		if len(e.pending) != 0 {
			t.Error("Matched selection must not enter the pending list")
		}
	})
}

func TestMovesIncrementOncePerPair(t *testing.T) {
	e := newTestEngine(t)

	x, y := findMismatch(t, e)
	e.SelectCard(x)
	if e.GetMoves() != 0 {
		t.Fatalf("A single flip must not count a move, got %d", e.GetMoves())
	}
	e.SelectCard(y)
	if e.GetMoves() != 1 {
		t.Fatalf("Expected 1 move after mismatch, got %d", e.GetMoves())
	}
	e.Tick(time.Second)

	a, b := findPair(t, e, 2)
	e.SelectCard(a)
	e.SelectCard(b)
	if e.GetMoves() != 2 {
		t.Errorf("Expected 2 moves after match, got %d", e.GetMoves())
	}
}

func TestSelectionBlockedWhileResolving(t *testing.T) {
	e := newTestEngine(t)
	x, y := findMismatch(t, e)
	e.SelectCard(x)
	e.SelectCard(y)

	if e.Phase() != PhaseResolving {
		t.Fatalf("Expected resolving phase, got %s", e.Phase())
	}

	var other int
	for i := range e.cards {
		if i != x && i != y {
			other = i
			break
		}
	}
	if e.SelectCard(other) {
		t.Error("Selections during resolution must be ignored")
	}
	if e.CanSelect(other) {
		t.Error("CanSelect must be false while resolving")
	}

	e.Tick(500 * time.Millisecond)
	if e.Phase() != PhaseResolving {
		t.Error("Mismatch should still be resolving before its delay elapses")
	}
	e.Tick(500 * time.Millisecond)
	if e.Phase() != PhaseActive {
		t.Errorf("Expected active phase after mismatch delay, got %s", e.Phase())
	}
	if !e.SelectCard(other) {
		t.Error("Selection should be accepted once resolution has run")
	}
}

func TestTickElapsedTime(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	e.Tick(time.Second)
	if e.GetElapsedTime() != 0 {
		t.Error("Idle engine must not accumulate time")
	}

	if err := e.InitializeNewGame(2, 4); err != nil {
		t.Fatalf("InitializeNewGame failed: %v", err)
	}
	e.Tick(250 * time.Millisecond)
	e.Tick(250 * time.Millisecond)
	e.Tick(-time.Second)
	if got := e.GetElapsedTime(); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms elapsed, got %v", got)
	}
	if state := e.GetState(); state.ElapsedTime != 0.5 {
		t.Errorf("Expected 0.5s in state view, got %v", state.ElapsedTime)
	}
}

func TestSetGridSize(t *testing.T) {
	t.Run("odd product rejected", func(t *testing.T) {
		e := newTestEngine(t)
		before := e.GetState()

		err := e.SetGridSize(3, 5)
		if !errors.Is(err, ErrInvalidGridSize) {
			t.Fatalf("Expected ErrInvalidGridSize, got %v", err)
		}

		after := e.GetState()
		if after.Rows != before.Rows || after.Columns != before.Columns || after.Generation != before.Generation {
			t.Error("Rejected grid size must leave the session unchanged")
		}
		if after.Phase != PhaseActive {
			t.Errorf("Expected active phase, got %s", after.Phase)
		}
	})

	t.Run("not enough symbols", func(t *testing.T) {
		e := newTestEngine(t)
		err := e.SetGridSize(4, 4)
		if !errors.Is(err, ErrInsufficientSymbols) {
			t.Fatalf("Expected ErrInsufficientSymbols, got %v", err)
		}
		if e.GetState().Rows != 2 {
			t.Error("Rejected grid size must leave the grid in place")
		}
	})

	t.Run("valid size rebuilds", func(t *testing.T) {
		e := newTestEngine(t)
		a, b := findPair(t, e, 0)
		e.SelectCard(a)
		e.SelectCard(b)
		gen := e.Generation()

		if err := e.SetGridSize(2, 2); err != nil {
			t.Fatalf("SetGridSize(2, 2) failed: %v", err)
		}
		state := e.GetState()
		if state.Rows != 2 || state.Columns != 2 || len(state.Cards) != 4 {
			t.Errorf("Expected a 2x2 grid, got %dx%d with %d cards", state.Rows, state.Columns, len(state.Cards))
		}
		if state.Score != 0 || state.Moves != 0 || len(state.MatchedPairIDs) != 0 {
			t.Error("Grid rebuild must reset counters")
		}
		if state.Generation != gen+1 {
			t.Errorf("Expected generation %d, got %d", gen+1, state.Generation)
		}
	})
}

func TestResetGame(t *testing.T) {
	e := newTestEngine(t)
	a, b := findPair(t, e, 3)
	e.SelectCard(a)
	e.SelectCard(b)
	e.Tick(time.Second)

	if err := e.ResetGame(); err != nil {
		t.Fatalf("ResetGame failed: %v", err)
	}
	state := e.GetState()
	if state.Score != 0 || state.Moves != 0 || state.ElapsedTime != 0 {
		t.Error("Reset must clear counters")
	}
	if state.Rows != 2 || state.Columns != 4 {
		t.Errorf("Reset must keep dimensions, got %dx%d", state.Rows, state.Columns)
	}
	for _, card := range state.Cards {
		if card.FaceUp || card.Matched {
			t.Fatal("Reset must deal a face-down grid")
		}
	}
}

func TestResetGameFromIdleUsesConfigSize(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.ResetGame(); err != nil {
		t.Fatalf("ResetGame failed: %v", err)
	}
	if state := e.GetState(); state.Rows != 2 || state.Columns != 4 {
		t.Errorf("Expected config size 2x4, got %dx%d", state.Rows, state.Columns)
	}
}

func TestStaleResolutionIgnoredAfterReset(t *testing.T) {
	e := newTestEngine(t)
	x, y := findMismatch(t, e)
	e.SelectCard(x)
	e.SelectCard(y)

	if err := e.ResetGame(); err != nil {
		t.Fatalf("ResetGame failed: %v", err)
	}

	// Flip a card on the new grid; the old mismatch must not flip it back
	if !e.SelectCard(x) {
		t.Fatal("Selection on the new grid should be accepted")
	}
	e.Tick(2 * time.Second)

	card, _ := e.Card(x)
	if !card.FaceUp {
		t.Error("Stale resolution reverted a card of the new grid")
	}
	if e.Phase() != PhaseActive {
		t.Errorf("Expected active phase, got %s", e.Phase())
	}
	if e.PendingResolutions() != 0 {
		t.Errorf("Expected stale resolution to be dropped, %d pending", e.PendingResolutions())
	}
}

func TestGetStateHidesFaceDownSymbols(t *testing.T) {
	e := newTestEngine(t)
	state := e.GetState()
	for _, card := range state.Cards {
		if card.Symbol != "" {
			t.Fatalf("Face-down card %d exposes symbol %q", card.Index, card.Symbol)
		}
		if !card.Selectable {
			t.Errorf("Card %d should be selectable", card.Index)
		}
	}

	e.SelectCard(0)
	state = e.GetState()
	want := e.config.Symbols[SymbolIndex(e.cards[0].PairID, len(e.config.Symbols))]
	if state.Cards[0].Symbol != want {
		t.Errorf("Expected face-up symbol %q, got %q", want, state.Cards[0].Symbol)
	}
	if state.Cards[0].Selectable {
		t.Error("Face-up card must not be selectable")
	}
	if len(state.PendingSelection) != 1 || state.PendingSelection[0] != 0 {
		t.Errorf("Expected pending [0], got %v", state.PendingSelection)
	}
}
