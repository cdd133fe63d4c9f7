package engine

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateMultiplicity(t *testing.T) {
	bag := NewSeededShuffleBag(7)
	sizes := [][2]int{{2, 4}, {3, 4}, {4, 4}, {1, 2}, {6, 6}}

	for _, size := range sizes {
		ids, err := bag.Generate(size[0], size[1], 8)
		if err != nil {
			t.Fatalf("Generate(%d,%d) failed: %v", size[0], size[1], err)
		}
		if len(ids) != size[0]*size[1] {
			t.Fatalf("Expected %d cards, got %d", size[0]*size[1], len(ids))
		}
		counts := map[int]int{}
		for _, id := range ids {
			counts[id]++
		}
		pairs := size[0] * size[1] / 2
		if len(counts) != pairs {
			t.Errorf("%dx%d: expected %d distinct pair ids, got %d", size[0], size[1], pairs, len(counts))
		}
		for id, n := range counts {
			if id < 0 || id >= pairs {
				t.Errorf("%dx%d: pair id %d out of range", size[0], size[1], id)
			}
			if n != 2 {
				t.Errorf("%dx%d: pair id %d appears %d times", size[0], size[1], id, n)
			}
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	bag := NewSeededShuffleBag(1)
	tests := []struct {
		name          string
		rows, columns int
		symbols       int
		want          error
	}{
		{"odd card count", 3, 3, 8, ErrInvalidGridSize},
		{"zero rows", 0, 4, 8, ErrInvalidGridSize},
		{"negative columns", 2, -2, 8, ErrInvalidGridSize},
		{"card count overflow", math.MaxInt, 2, 8, ErrInvalidGridSize},
		{"no symbols", 2, 2, 0, ErrInsufficientSymbols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bag.Generate(tt.rows, tt.columns, tt.symbols)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSeededBagIsDeterministic(t *testing.T) {
	a, _ := NewSeededShuffleBag(99).Generate(4, 4, 8)
	b, _ := NewSeededShuffleBag(99).Generate(4, 4, 8)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Same seed produced different layouts at %d: %v vs %v", i, a, b)
		}
	}
}

func TestSymbolIndexWrapsAround(t *testing.T) {
	tests := []struct {
		pairID, symbols, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 0},
		{9, 4, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := SymbolIndex(tt.pairID, tt.symbols); got != tt.want {
			t.Errorf("SymbolIndex(%d,%d) = %d, want %d", tt.pairID, tt.symbols, got, tt.want)
		}
	}
}

func TestShuffleFairness(t *testing.T) {
	const trials = 4000
	counts, err := PositionCounts(NewSeededShuffleBag(2024), 2, 4, trials)
	if err != nil {
		t.Fatalf("PositionCounts failed: %v", err)
	}

	// 4 pair ids per position, 3 degrees of freedom
	critical := ChiSquareCritical(3, 4.0)
	for pos, observed := range counts {
		total := 0
		for _, n := range observed {
			total += n
		}
		if total != trials {
			t.Fatalf("Position %d counted %d deals, expected %d", pos, total, trials)
		}
		if stat := ChiSquare(observed); stat > critical {
			t.Errorf("Position %d looks biased: chi2=%.2f > %.2f (%v)", pos, stat, critical, observed)
		}
	}
}

func TestChiSquareDetectsBias(t *testing.T) {
	if stat := ChiSquare([]int{1000, 0, 0, 0}); stat <= ChiSquareCritical(3, 3.09) {
		t.Errorf("Expected a skewed sample to exceed the critical value, got %.2f", stat)
	}
	if stat := ChiSquare([]int{250, 250, 250, 250}); stat != 0 {
		t.Errorf("Expected 0 for a perfectly uniform sample, got %.2f", stat)
	}
	if ChiSquare(nil) != 0 || ChiSquare([]int{0, 0}) != 0 {
		t.Error("Expected 0 for empty samples")
	}
}

func TestChiSquareCritical(t *testing.T) {
	// Table value for k=3 at 99.9% is 16.27
	got := ChiSquareCritical(3, 3.09)
	if got < 15.5 || got > 17 {
		t.Errorf("ChiSquareCritical(3, 3.09) = %.2f, expected about 16.27", got)
	}
	if ChiSquareCritical(0, 3.09) != 0 {
		t.Error("Expected 0 for non-positive degrees of freedom")
	}
}

func TestGenerateLongThinGrid(t *testing.T) {
	if err := ValidateGridSize(1, 14); err != nil {
		t.Fatalf("1x14 has an even card count: %v", err)
	}
	ids, err := NewSeededShuffleBag(3).Generate(1, 14, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(ids) != 14 {
		t.Errorf("Expected 14 cards, got %d", len(ids))
	}
}
