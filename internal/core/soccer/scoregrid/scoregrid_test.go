package scoregrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/soccer/interval"
)

func TestFromBivariatePoisson_SumsToOne(t *testing.T) {
	grid := FromBivariatePoisson(1.2, 1.0, 0.15, 12)
	var sum float64
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			sum += grid.At(h, a)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestGather_WinAndDraw(t *testing.T) {
	grid := FromBivariatePoisson(1.5, 1.0, 0.1, 16)

	home, err := Gather(grid, GatherWin, domain.Home, 0, domain.Score{})
	require.NoError(t, err)
	away, err := Gather(grid, GatherWin, domain.Away, 0, domain.Score{})
	require.NoError(t, err)
	draw, err := Gather(grid, GatherDraw, domain.Home, 0, domain.Score{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, home+away+draw, 1e-6)
	assert.Greater(t, home, away)
}

func TestGather_CorrectScore(t *testing.T) {
	grid := FromCorrectScore(domain.Score{Home: 2, Away: 1}, 6)
	got, err := Gather(grid, GatherCorrectScore, domain.Home, 0, domain.Score{Home: 2, Away: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	miss, err := Gather(grid, GatherCorrectScore, domain.Home, 0, domain.Score{Home: 0, Away: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, miss)
}

func TestGather_GoalsOverUnder(t *testing.T) {
	grid := FromBivariatePoisson(1.5, 1.2, 0.1, 16)
	over, err := Gather(grid, GatherGoalsOver, domain.Home, 2.5, domain.Score{})
	require.NoError(t, err)
	under, err := Gather(grid, GatherGoalsUnder, domain.Home, 2.5, domain.Score{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, over+under, 1e-6)
}

func TestInflateZero_RenormalisesAndBoostsScoreless(t *testing.T) {
	grid := FromBivariatePoisson(1.0, 1.0, 0.0, 8)
	before := grid.At(0, 0)

	InflateZero(0.05, grid)

	var sum float64
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			sum += grid.At(h, a)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, grid.At(0, 0), before)
}

func TestSubtract_RequiresEqualShapedGrids(t *testing.T) {
	future := FromBivariatePoisson(1.0, 1.0, 0.1, 8)
	past := FromBivariatePoisson(1.0, 1.0, 0.1, 6)
	_, err := Subtract(future, past)
	assert.Error(t, err)
}

func TestSubtract_RecoversIncrementalMass(t *testing.T) {
	past := FromBivariatePoisson(0.5, 0.4, 0.05, 8)
	full := FromBivariatePoisson(1.1, 0.9, 0.1, 8)

	incremental, err := Subtract(full, past)
	require.NoError(t, err)

	var sum float64
	for h := 0; h < incremental.Rows(); h++ {
		for a := 0; a < incremental.Cols(); a++ {
			sum += incremental.At(h, a)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestFromIterator_MatchesFromIntervalOnTinyConfig(t *testing.T) {
	rates := []interval.BivariateProbs{
		{Home: 0.3, Away: 0.2, Common: 0.1},
		{Home: 0.25, Away: 0.15, Common: 0.05},
	}
	cfg := interval.Config{
		Intervals:       2,
		TeamProbs:       interval.TeamProbs{H1Goals: rates[0], H2Goals: rates[1]},
		PruneThresholds: interval.DefaultPruneThresholds(),
		Expansions:      interval.Expansions{FTScore: true},
	}

	fromInterval, _, err := FromInterval(cfg)
	require.NoError(t, err)
	fromIter := FromIterator(rates)

	for h := 0; h < 4; h++ {
		for a := 0; a < 4; a++ {
			assert.InDelta(t, fromIter.At(h, a), fromInterval.At(h, a), 1e-9, "h=%d a=%d", h, a)
		}
	}
}
