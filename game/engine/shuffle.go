package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	ErrInvalidGridSize     = errors.New("invalid grid size")
	ErrInsufficientSymbols = errors.New("insufficient symbols")
)

// ShuffleBag produces uniformly shuffled pair layouts
type ShuffleBag struct {
	rng *rand.Rand
}

// NewShuffleBag creates a bag seeded from crypto/rand
func NewShuffleBag() *ShuffleBag {
	return NewSeededShuffleBag(NewSeed())
}

// NewSeededShuffleBag creates a bag with a deterministic seed
func NewSeededShuffleBag(seed int64) *ShuffleBag {
	return &ShuffleBag{rng: rand.New(rand.NewSource(seed))}
}

// NewSeed returns a random seed, falling back to the clock if crypto/rand fails
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Pairs returns the multiset {0,0,1,1,...,n-1,n-1} in order
func Pairs(pairsCount int) []int {
	ids := make([]int, 0, pairsCount*2)
	for i := 0; i < pairsCount; i++ {
		ids = append(ids, i, i)
	}
	return ids
}

// Shuffle permutes ids in place with Fisher-Yates
func (b *ShuffleBag) Shuffle(ids []int) {
	for i := len(ids) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Generate returns a shuffled layout of pair ids for a rows x columns grid
func (b *ShuffleBag) Generate(rows, columns, symbolCount int) ([]int, error) {
	if err := ValidateGridSize(rows, columns); err != nil {
		return nil, err
	}
	if symbolCount <= 0 {
		return nil, fmt.Errorf("%w: symbol set is empty", ErrInsufficientSymbols)
	}

	ids := Pairs(rows * columns / 2)
	b.Shuffle(ids)
	return ids, nil
}

// GenerateGrid is a convenience wrapper around a freshly seeded bag
func GenerateGrid(rows, columns, symbolCount int) ([]int, error) {
	return NewShuffleBag().Generate(rows, columns, symbolCount)
}

// ValidateGridSize checks that both dimensions are positive and the card count is even.
// Board size limits come from the config's max_cards, not from this check.
func ValidateGridSize(rows, columns int) error {
	if rows < MinGridDimension || columns < MinGridDimension {
		return fmt.Errorf("%w: %dx%d must have positive dimensions", ErrInvalidGridSize, rows, columns)
	}
	if columns > math.MaxInt/rows {
		return fmt.Errorf("%w: %dx%d overflows the card count", ErrInvalidGridSize, rows, columns)
	}
	if (rows*columns)%2 != 0 {
		return fmt.Errorf("%w: %dx%d has an odd number of cards", ErrInvalidGridSize, rows, columns)
	}
	return nil
}

// SymbolIndex maps a pair id onto the symbol set. When there are fewer
// symbols than pairs the mapping wraps around, so distinct pairs may look alike.
func SymbolIndex(pairID, symbolCount int) int {
	if symbolCount <= 0 {
		return 0
	}
	return pairID % symbolCount
}
