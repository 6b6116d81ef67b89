package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFit_Multiplicative_SeedScenario1 exercises the literal input/output
// pair: prices [10.0, 5.0, 3.333, 2.5], norm 1.0 -> probs [0.1, 0.2, 0.3,
// 0.4], overround value 1.0.
func TestFit_Multiplicative_SeedScenario1(t *testing.T) {
	m, err := Fit(Multiplicative, []float64{10.0, 5.0, 3.333, 2.5}, 1.0)
	require.NoError(t, err)

	want := []float64{0.1, 0.2, 0.3, 0.4}
	for i, p := range want {
		assert.InDelta(t, p, m.Probs[i], 1e-3)
	}
	assert.InDelta(t, 1.0, m.Overround.Value, 1e-3)
}

// TestFrame_OddsRatio_SeedScenario2 exercises probs [0.1, 0.2, 0.3, 0.4,
// 0.0] at overround value 1.1 under OddsRatio.
func TestFrame_OddsRatio_SeedScenario2(t *testing.T) {
	overround := Overround{Method: OddsRatio, Value: 1.1}
	m, err := Frame(overround, []float64{0.1, 0.2, 0.3, 0.4, 0.0}, 1.01, 1000)
	require.NoError(t, err)

	want := []float64{8.8335, 4.4816, 3.0309, 2.3056}
	for i, price := range want {
		assert.InDelta(t, price, m.Prices[i], 1e-2)
	}
	assert.True(t, math.IsInf(m.Prices[4], 1))
}

// TestFitFrameRoundTrip checks the universal invariant: fitting a framed
// market's own prices recovers the original probabilities, for every
// overround method.
func TestFitFrameRoundTrip(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.3, 0.4}
	for _, method := range []Method{Multiplicative, Power, OddsRatio} {
		overround := Overround{Method: method, Value: 1.08}
		framed, err := Frame(overround, probs, 1.01, 1000)
		require.NoError(t, err)

		fitted, err := Fit(method, framed.Prices, 1.0)
		require.NoError(t, err)
		for i, p := range probs {
			assert.InDelta(t, p, fitted.Probs[i], 1e-3, "method %s", method)
		}
	}
}

// TestFitFrameRoundTrip_MultiplicativeIdentity checks the stricter
// round-trip property for Multiplicative at overround 1.0, where
// probability -> price -> probability is the identity.
func TestFitFrameRoundTrip_MultiplicativeIdentity(t *testing.T) {
	probs := []float64{0.25, 0.25, 0.25, 0.25}
	overround := Overround{Method: Multiplicative, Value: 1.0}
	framed, err := Frame(overround, probs, 1.01, 1000)
	require.NoError(t, err)

	fitted, err := Fit(Multiplicative, framed.Prices, 1.0)
	require.NoError(t, err)
	for i, p := range probs {
		assert.InDelta(t, p, fitted.Probs[i], 1e-9)
	}
}

// TestFrame_OfferedBooksumAtLeastFair checks: for any frame with overround
// >= 1.0 and probs summing to 1.0, Sum(1/prices) >= 1.0.
func TestFrame_OfferedBooksumAtLeastFair(t *testing.T) {
	probs := []float64{0.15, 0.35, 0.2, 0.3}
	for _, method := range []Method{Multiplicative, Power, OddsRatio} {
		m, err := Frame(Overround{Method: method, Value: 1.15}, probs, 1.01, 1000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, OfferedBooksum(m.Prices), 1.0, "method %s", method)
	}
}

func TestFit_RejectsEmptyPrices(t *testing.T) {
	_, err := Fit(Multiplicative, nil, 1.0)
	assert.Error(t, err)
}

func TestFit_RejectsNonPositivePrice(t *testing.T) {
	_, err := Fit(Multiplicative, []float64{2.0, 0, 3.0}, 1.0)
	assert.Error(t, err)
}

func TestFrame_RejectsNegativeProbability(t *testing.T) {
	_, err := Frame(Overround{Method: Multiplicative, Value: 1.0}, []float64{0.5, -0.1}, 1.01, 1000)
	assert.Error(t, err)
}

func TestFit_ScratchedRunnerYieldsInfinitePrice(t *testing.T) {
	m, err := Fit(Multiplicative, []float64{2.0, math.Inf(1), 2.0}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Probs[1])
}
