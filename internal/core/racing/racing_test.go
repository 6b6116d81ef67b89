package racing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/exoticprice/internal/core/market"
	"github.com/charleschow/exoticprice/internal/core/mc"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/prng"
	"github.com/charleschow/exoticprice/internal/core/selection"
)

func TestDilatedProbs_ZeroDilativeLeavesRowUnchanged(t *testing.T) {
	winProbs := []float64{0.6, 0.3, 0.1}
	m := DilatedProbs(winProbs, []float64{0, 0.2, 0.4})

	for i, p := range winProbs {
		assert.InDelta(t, p, m.At(0, i), 1e-9)
	}
	for row := 0; row < m.Rows(); row++ {
		assert.InDelta(t, 1.0, primitives.Sum(m.Row(row)), 1e-9, "row %d", row)
	}
}

func TestUndilatedProbs_EveryRowMatchesWinProbs(t *testing.T) {
	winProbs := []float64{0.5, 0.3, 0.2}
	m := UndilatedProbs(winProbs, 4)

	require.Equal(t, 4, m.Rows())
	for row := 0; row < m.Rows(); row++ {
		for col, p := range winProbs {
			assert.InDelta(t, p, m.At(row, col), 1e-9)
		}
	}
}

// TestModelPredict_LinearInCoefficients checks the superposition property:
// predicting with one coefficient vector, then another, then their
// element-wise sum, yields additive results when no clamp bound is hit.
func TestModelPredict_LinearInCoefficients(t *testing.T) {
	features := make([]float64, factorCount)
	features[Weight0] = 1
	features[Weight1] = 1
	regressors := []Regressor{Variable(Weight0), Variable(Weight1)}

	m1 := Model{Regressors: regressors, Coefficients: []float64{0.1, 0.05}}
	m2 := Model{Regressors: regressors, Coefficients: []float64{0.2, 0.1}}
	mSum := Model{Regressors: regressors, Coefficients: []float64{0.3, 0.15}}

	p1 := m1.Predict(features)
	p2 := m2.Predict(features)
	pSum := mSum.Predict(features)

	assert.InDelta(t, 0.15, p1, 1e-9)
	assert.InDelta(t, 0.3, p2, 1e-9)
	assert.InDelta(t, 0.45, pSum, 1e-9)
	assert.InDelta(t, p1+p2, pSum, 1e-9)
}

func TestModelPredict_ClampsToEpsilonBounds(t *testing.T) {
	features := make([]float64, factorCount)
	features[Weight0] = 1
	regressors := []Regressor{Variable(Weight0)}

	low := Model{Regressors: regressors, Coefficients: []float64{-5}}
	high := Model{Regressors: regressors, Coefficients: []float64{5}}

	assert.Equal(t, predictEpsilon, low.Predict(features))
	assert.Equal(t, 1-predictEpsilon, high.Predict(features))
}

// TestFitAll_FourActiveRunnersConvergesTrivially exercises the boundary case
// where every runner has a nonzero win probability and the podium pays as
// many places as there are runners: every runner's top-N probability should
// converge towards 1 at the final rank.
func TestFitAll_FourActiveRunnersConvergesTrivially(t *testing.T) {
	winProbs := []float64{0.4, 0.3, 0.2, 0.1}
	dilatives := []float64{0, 0.1, 0.2, 0.3}

	markets := make([]*market.Market, len(dilatives))
	winMarket, err := market.Frame(market.Overround{Method: market.Multiplicative, Value: 1.0}, winProbs, 1.01, 1000)
	require.NoError(t, err)
	markets[0] = winMarket
	for rank := 1; rank < len(dilatives); rank++ {
		places := float64(rank + 1)
		probs := make([]float64, len(winProbs))
		copy(probs, winProbs)
		primitives.DilatePower(probs, dilatives[rank])
		m, err := market.Frame(market.Overround{Method: market.Multiplicative, Value: places}, probs, 1.01, 1000)
		require.NoError(t, err)
		markets[rank] = m
	}

	options := FitOptions{MCIterations: 2_000, IndividualTargetMSRE: 1e-6, Seed: 17}
	outcome, err := FitAll(options, markets, dilatives)
	require.NoError(t, err)

	lastRank := outcome.FittedProbs.Rows() - 1
	numRunners := outcome.FittedProbs.Cols()
	flat := flattenScenarios(selection.TopNMatrix(lastRank+1, numRunners))
	engine := mc.NewEngine(outcome.FittedProbs, prng.NewStd(options.Seed))
	engine.Trials = options.MCIterations
	counts := make([]uint64, len(flat))
	require.NoError(t, engine.SimulateBatch(flat, counts))
	for runner := 0; runner < numRunners; runner++ {
		topN := float64(counts[lastRank*numRunners+runner]) / float64(options.MCIterations)
		assert.InDelta(t, 1.0, topN, 0.05, "runner %d", runner)
	}
}

// TestFitPlace_ProducesNormalisedPodium is a light structural check: given a
// small win and place market, FitPlace should return a podium matrix whose
// every row sums to 1 and contains no negative probability.
func TestFitPlace_ProducesNormalisedPodium(t *testing.T) {
	winMarket, err := market.Fit(market.Multiplicative, []float64{2.5, 3.0, 6.0, 12.0}, 1.0)
	require.NoError(t, err)
	placeMarket, err := market.Fit(market.Multiplicative, []float64{1.2, 1.4, 2.2, 4.0}, 3.0)
	require.NoError(t, err)

	coeffs := Coefficients{
		W1: Model{Regressors: []Regressor{Variable(Weight0), Intercept()}, Coefficients: []float64{0.9, 0.01}},
		W2: Model{Regressors: []Regressor{Variable(Weight0), Intercept()}, Coefficients: []float64{0.85, 0.02}},
		W3: Model{Regressors: []Regressor{Variable(Weight0), Intercept()}, Coefficients: []float64{0.8, 0.03}},
	}

	options := FitOptions{MCIterations: 2_000, IndividualTargetMSRE: 1e-6, Seed: 5}
	outcome, err := FitPlace(options, winMarket, placeMarket, []float64{0, 0.12, 0.18, 0.22}, 2, coeffs)
	require.NoError(t, err)

	for rank := 0; rank < outcome.FittedProbs.Rows(); rank++ {
		row := outcome.FittedProbs.Row(rank)
		assert.InDelta(t, 1.0, primitives.Sum(row), 1e-6, "rank %d", rank)
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
		}
	}
}

