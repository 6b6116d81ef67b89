package racing

import "github.com/charleschow/exoticprice/internal/core/primitives"

// DilatedProbs builds a ranks x runners matrix of rank-conditional win
// probabilities from a single win-probability row, by repeating the row for
// every rank and applying a power-law dilation per rank. A dilative of 0
// leaves a rank's row equal to the raw win probabilities; place markets
// typically dilate lower ranks less aggressively than higher ones, since a
// runner's placing chance converges towards its win chance as rank
// increases. Grounded on original_source/brumby/src/dilative.rs.
func DilatedProbs(winProbs []float64, dilatives []float64) *primitives.Matrix {
	m := primitives.Allocate(len(dilatives), len(winProbs))
	m.CloneRow(winProbs)
	primitives.DilateRowsPower(dilatives, m)
	return m
}

// UndilatedProbs returns a ranks x runners matrix whose every row is an
// exact copy of winProbs — the zero-dilation case used by exact Harville
// cross-checks.
func UndilatedProbs(winProbs []float64, ranks int) *primitives.Matrix {
	dilatives := make([]float64, ranks)
	return DilatedProbs(winProbs, dilatives)
}
