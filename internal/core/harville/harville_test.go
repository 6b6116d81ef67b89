package harville

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charleschow/exoticprice/internal/core/primitives"
)

func threeByThreeWinProbs() *primitives.Matrix {
	m := primitives.Allocate(3, 3)
	for rank := 0; rank < 3; rank++ {
		m.Set(rank, 0, 0.6)
		m.Set(rank, 1, 0.3)
		m.Set(rank, 2, 0.1)
	}
	return m
}

func TestProbability_ExactPodium(t *testing.T) {
	probs := threeByThreeWinProbs()
	// P(0 wins, 1 second, 2 third) = 0.6 * (0.3/0.4) * (0.1/0.1)
	got := Probability(probs, []int{0, 1, 2})
	assert.InDelta(t, 0.6*(0.3/0.4)*(0.1/0.1), got, 1e-9)
}

func TestSummary_RowsSumToOne(t *testing.T) {
	probs := threeByThreeWinProbs()
	summary := Summary(probs, 3)

	want := [][]float64{
		{0.6, 0.3, 0.1},
		{0.3238, 0.4833, 0.1929},
		{0.0762, 0.2167, 0.7071},
	}
	for rank, row := range want {
		var sum float64
		for runner, p := range row {
			assert.InDelta(t, p, summary.At(rank, runner), 1e-3, "rank %d runner %d", rank, runner)
			sum += summary.At(rank, runner)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "rank %d", rank)
	}
}

// TestSummaryCondensed_FourActiveRunnersTrivialPodium exercises the boundary
// case where exactly 4 runners have nonzero probability and the podium pays
// 4 places: every runner reaches the podium with probability 1.
func TestSummaryCondensed_FourActiveRunnersTrivialPodium(t *testing.T) {
	probs := primitives.Allocate(4, 4)
	row := []float64{0.4, 0.3, 0.2, 0.1}
	for rank := 0; rank < 4; rank++ {
		for runner, p := range row {
			probs.Set(rank, runner, p)
		}
	}
	condensed := SummaryCondensed(probs, 4)
	for runner, p := range condensed {
		assert.InDelta(t, 1.0, p, 1e-9, "runner %d", runner)
	}
}

func TestSummaryCondensed_ZeroProbRunnerNeverPlaces(t *testing.T) {
	probs := primitives.Allocate(2, 3)
	for rank := 0; rank < 2; rank++ {
		probs.Set(rank, 0, 0.7)
		probs.Set(rank, 1, 0.3)
		probs.Set(rank, 2, 0.0)
	}
	condensed := SummaryCondensed(probs, 2)
	assert.Equal(t, 0.0, condensed[2])
}
