package engine

import "math"

// CountMatchedCards counts matched slots in a state view
func CountMatchedCards(state *GameState) int {
	count := 0
	for _, card := range state.Cards {
		if card.Matched {
			count++
		}
	}
	return count
}

// PositionCounts deals trials layouts and counts, for every grid position,
// how often each pair id landed there. counts[position][pairID].
func PositionCounts(bag *ShuffleBag, rows, columns, trials int) ([][]int, error) {
	if err := ValidateGridSize(rows, columns); err != nil {
		return nil, err
	}
	total := rows * columns
	pairs := total / 2

	counts := make([][]int, total)
	for i := range counts {
		counts[i] = make([]int, pairs)
	}

	for t := 0; t < trials; t++ {
		ids, err := bag.Generate(rows, columns, pairs)
		if err != nil {
			return nil, err
		}
		for pos, id := range ids {
			counts[pos][id]++
		}
	}
	return counts, nil
}

// ChiSquare computes Pearson's statistic of observed counts against a uniform expectation
func ChiSquare(observed []int) float64 {
	if len(observed) == 0 {
		return 0
	}
	total := 0
	for _, o := range observed {
		total += o
	}
	if total == 0 {
		return 0
	}
	expected := float64(total) / float64(len(observed))

	stat := 0.0
	for _, o := range observed {
		d := float64(o) - expected
		stat += d * d / expected
	}
	return stat
}

// ChiSquareCritical approximates the upper critical value of the chi-square
// distribution with k degrees of freedom using Wilson-Hilferty. z is the
// standard normal quantile of the desired confidence (3.09 for 99.9%).
func ChiSquareCritical(k int, z float64) float64 {
	if k <= 0 {
		return 0
	}
	kf := float64(k)
	term := 1 - 2/(9*kf) + z*math.Sqrt(2/(9*kf))
	return kf * term * term * term
}
