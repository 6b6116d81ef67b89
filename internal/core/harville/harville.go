// Package harville computes rank-conditional podium probabilities directly
// from a matrix of win probabilities, using the combinatorial formula
// P(podium) = Prod_rank( prob[rank][runner] / remaining_mass[rank] ), where
// remaining_mass excludes runners already placed at an earlier rank. This is
// the closed-form reference the Monte-Carlo engine is checked against, and a
// selectable exact estimator for small fields where full enumeration is
// cheap. Grounded on original_source/brumby/src/harville.rs.
package harville

import "github.com/charleschow/exoticprice/internal/core/primitives"

// Probability returns the probability of the exact podium (podium[rank] is
// the runner placed at rank), given a ranks x runners matrix of per-rank win
// probabilities (row r may already be dilated for rank r, as produced by the
// racing regressor, or simply repeat the win-probability row for an
// undilated estimate).
func Probability(probs *primitives.Matrix, podium []int) float64 {
	combined := 1.0
	for rank := 0; rank < probs.Rows(); rank++ {
		rankProbs := probs.Row(rank)
		remaining := 1.0
		for prevRank := 0; prevRank < rank; prevRank++ {
			remaining -= rankProbs[podium[prevRank]]
		}
		combined *= rankProbs[podium[rank]] / remaining
	}
	return combined
}

// Summary returns a ranks x runners matrix: summary[rank][runner] is the
// marginal probability that runner finishes at rank, computed by exhaustive
// enumeration of unique podiums and weighting each by Probability.
func Summary(probs *primitives.Matrix, ranks int) *primitives.Matrix {
	runners := probs.Cols()
	summary := primitives.Allocate(ranks, runners)
	podium := make([]int, ranks)
	used := make([]bool, runners)
	enumerate(probs, podium, used, 0, func(podium []int, prob float64) {
		for rank, runner := range podium {
			summary.Set(rank, runner, summary.At(rank, runner)+prob)
		}
	})
	return summary
}

// SummaryCondensed returns, per runner, the sum of Summary's rank rows —
// i.e. the probability that the runner finishes somewhere within the first
// `ranks` places.
func SummaryCondensed(probs *primitives.Matrix, ranks int) []float64 {
	runners := probs.Cols()
	summary := make([]float64, runners)
	podium := make([]int, ranks)
	used := make([]bool, runners)
	enumerate(probs, podium, used, 0, func(podium []int, prob float64) {
		for _, runner := range podium {
			summary[runner] += prob
		}
	})
	return summary
}

// enumerate recursively assigns runners to ranks without repetition, calling
// emit with the completed podium and its Probability once every rank is
// filled.
func enumerate(probs *primitives.Matrix, podium []int, used []bool, rank int, emit func(podium []int, prob float64)) {
	if rank == len(podium) {
		emit(podium, Probability(probs, podium))
		return
	}
	for runner := 0; runner < len(used); runner++ {
		if used[runner] {
			continue
		}
		if probs.At(rank, runner) == 0 {
			continue
		}
		used[runner] = true
		podium[rank] = runner
		enumerate(probs, podium, used, rank+1, emit)
		used[runner] = false
	}
}
