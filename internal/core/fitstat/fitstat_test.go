package fitstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	h := StepHistory{Residuals: []float64{1, 2, 3, 4, 5}}
	summary, err := Summarize(h)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, summary.Mean, 1e-9)
	assert.InDelta(t, 1.58113883, summary.Stdev, 1e-6)
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 5.0, summary.Max)
	assert.Equal(t, 5.0, summary.LastStep)
}

func TestSummarize_EmptyHistory(t *testing.T) {
	_, err := Summarize(StepHistory{})
	assert.Error(t, err)
}

func TestComputePriceErrors(t *testing.T) {
	sample := []float64{2.0, 4.0}
	fitted := []float64{2.2, 3.8}
	errs, err := ComputePriceErrors(sample, fitted)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, errs.RMSE, 1e-9)
	assert.InDelta(t, 0.0790569415, errs.RMSRE, 1e-6)
}

func TestComputePriceErrors_SkipsNonFiniteFitted(t *testing.T) {
	sample := []float64{2.0, 4.0, 5.0}
	fitted := []float64{2.2, math.Inf(1), 5.0}
	errs, err := ComputePriceErrors(sample, fitted)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, errs.RMSE, 1e-9)
}

func TestComputePriceErrors_NoComparablePrices(t *testing.T) {
	sample := []float64{2.0}
	fitted := []float64{math.Inf(1)}
	_, err := ComputePriceErrors(sample, fitted)
	assert.Error(t, err)
}

func TestComputePriceErrors_MismatchedLengths(t *testing.T) {
	_, err := ComputePriceErrors([]float64{2.0}, []float64{2.0, 3.0})
	assert.Error(t, err)
}
