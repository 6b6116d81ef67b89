package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/exoticprice/internal/core/harville"
	"github.com/charleschow/exoticprice/internal/core/prng"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/selection"
)

func threeRunnerProbs() *primitives.Matrix {
	m := primitives.Allocate(3, 3)
	for rank := 0; rank < 3; rank++ {
		m.Set(rank, 0, 0.6)
		m.Set(rank, 1, 0.3)
		m.Set(rank, 2, 0.1)
	}
	return m
}

// TestSimulate_MatchesHarvilleExactPodium cross-checks the Monte-Carlo
// engine's empirical hit rate for an exact podium against harville's
// closed-form value, in place of a single hardcoded empirical constant.
func TestSimulate_MatchesHarvilleExactPodium(t *testing.T) {
	probs := threeRunnerProbs()
	engine := NewEngine(probs, prng.NewStd(42))
	engine.Trials = 200_000

	exact := selection.Selections{
		selection.Exact(0, 0),
		selection.Exact(1, 1),
		selection.Exact(2, 2),
	}
	frac, err := engine.Simulate(exact)
	require.NoError(t, err)

	want := harville.Probability(probs, []int{0, 1, 2})
	got := frac.Quotient()
	assert.InDelta(t, want, got, 0.01)
}

func TestSimulate_CountsSumToTrials(t *testing.T) {
	probs := threeRunnerProbs()
	engine := NewEngine(probs, prng.NewStd(7))
	engine.Trials = 5_000

	selectionsList := []selection.Selections{
		{selection.Exact(0, 0)},
		{selection.Exact(1, 0)},
		{selection.Exact(2, 0)},
	}
	counts := make([]uint64, len(selectionsList))
	require.NoError(t, engine.SimulateBatch(selectionsList, counts))

	var sum uint64
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, uint64(engine.Trials), sum)
}

func TestSimulate_SameSeedIsDeterministic(t *testing.T) {
	probs := threeRunnerProbs()
	sel := selection.Selections{selection.Top(0, 1)}

	engineA := NewEngine(probs, prng.NewStd(99))
	engineA.Trials = 10_000
	fracA, err := engineA.Simulate(sel)
	require.NoError(t, err)

	engineB := NewEngine(probs, prng.NewStd(99))
	engineB.Trials = 10_000
	fracB, err := engineB.Simulate(sel)
	require.NoError(t, err)

	assert.Equal(t, fracA, fracB)
}

func TestSimulate_ScratchedRunnerNeverAppears(t *testing.T) {
	probs := primitives.Allocate(2, 3)
	for rank := 0; rank < 2; rank++ {
		probs.Set(rank, 0, 0.5)
		probs.Set(rank, 1, 0.5)
		probs.Set(rank, 2, 0.0)
	}
	engine := NewEngine(probs, prng.NewStd(3))
	engine.Trials = 10_000

	scratched := selection.Selections{selection.Top(2, 1)}
	frac, err := engine.Simulate(scratched)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), frac.Numerator)
}

func TestSimulate_NoDuplicateRunnerInPodium(t *testing.T) {
	probs := threeRunnerProbs()
	engine := NewEngine(probs, prng.NewStd(11))
	engine.Trials = 1

	for trial := 0; trial < 500; trial++ {
		_, err := engine.Simulate(selection.Selections{selection.Top(0, 2)})
		require.NoError(t, err)
		seen := make(map[int]bool)
		for _, runner := range engine.podium {
			assert.False(t, seen[runner], "runner %d appeared twice in podium", runner)
			seen[runner] = true
		}
	}
}

func TestSimulate_EmptyProbsErrors(t *testing.T) {
	engine := NewEngine(primitives.Allocate(0, 0), prng.NewStd(1))
	_, err := engine.Simulate(selection.Selections{})
	assert.Error(t, err)
}

func TestSimulate_RejectsOutOfRangeProbability(t *testing.T) {
	probs := primitives.Allocate(1, 2)
	probs.Set(0, 0, 1.5)
	engine := NewEngine(probs, prng.NewStd(1))
	_, err := engine.Simulate(selection.Selections{})
	assert.Error(t, err)
}
