// Package fitstat reports summary statistics over a fitter's per-step
// residual history (mean, standard deviation, RMSE, RMSRE), using
// gonum.org/v1/gonum's floats/stat packages in place of the hand-rolled
// accumulation original_source/brumby-soccer/src/fit.rs's compute_error
// does inline.
package fitstat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// StepHistory is one fitter run's sequence of per-step residuals,
// typically an OptimiserStats.OptimalMSRE trajectory or a
// HypergridSearchOutcome's per-round optimal residual.
type StepHistory struct {
	Residuals []float64
}

// Summary bundles a step history's descriptive statistics.
type Summary struct {
	Mean     float64
	Stdev    float64
	Min      float64
	Max      float64
	LastStep float64
}

// Summarize computes Summary over h.Residuals. Returns an error if h has
// no residuals to summarise.
func Summarize(h StepHistory) (Summary, error) {
	if len(h.Residuals) == 0 {
		return Summary{}, fmt.Errorf("%w: empty residual history", domain.ErrInvalidConfig)
	}
	mean, stdev := stat.MeanStdDev(h.Residuals, nil)
	min := floats.Min(h.Residuals)
	max := floats.Max(h.Residuals)
	return Summary{
		Mean:     mean,
		Stdev:    stdev,
		Min:      min,
		Max:      max,
		LastStep: h.Residuals[len(h.Residuals)-1],
	}, nil
}

// PriceErrors reports a fitted market's deviation from its sample prices in
// both RMSE and RMSRE terms, mirroring
// original_source/brumby-soccer/src/fit.rs's FittingErrors but computed via
// gonum's floats package instead of a hand-rolled accumulation loop.
type PriceErrors struct {
	RMSE  float64
	RMSRE float64
}

// ComputePriceErrors compares samplePrices against fittedPrices index by
// index, skipping any non-finite fitted price (an unpriced runner). Returns
// an error if no prices were comparable.
func ComputePriceErrors(samplePrices, fittedPrices []float64) (PriceErrors, error) {
	if len(samplePrices) != len(fittedPrices) {
		return PriceErrors{}, fmt.Errorf("%w: sample and fitted price slices must be parallel", domain.ErrInvalidConfig)
	}
	var absErrs, relErrs []float64
	for i, sample := range samplePrices {
		fitted := fittedPrices[i]
		if math.IsInf(fitted, 0) || math.IsNaN(fitted) {
			continue
		}
		absErrs = append(absErrs, fitted-sample)
		relErrs = append(relErrs, (fitted-sample)/sample)
	}
	if len(absErrs) == 0 {
		return PriceErrors{}, fmt.Errorf("%w: no comparable finite fitted prices", domain.ErrInvalidConfig)
	}
	return PriceErrors{
		RMSE:  rootMeanSquare(absErrs),
		RMSRE: rootMeanSquare(relErrs),
	}, nil
}

func rootMeanSquare(errs []float64) float64 {
	squares := make([]float64, len(errs))
	for i, e := range errs {
		squares[i] = e * e
	}
	return math.Sqrt(floats.Sum(squares) / float64(len(squares)))
}
