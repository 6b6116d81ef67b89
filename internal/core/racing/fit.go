// Package racing implements the win-to-top-N racing fitter: a power-law
// dilation of a win market into an initial top-N guess, refined by iterated
// Monte-Carlo simulation against quoted place-market prices. Grounded on
// original_source/src/fit.rs (fit_all/fit_place/fit_individual,
// MAX_INDIVIDUAL_STEPS, FITTED_PRICE_RANGES); the hardcoded per-rank cubic
// coefficients that file uses for its initial guess are replaced here by the
// general tagged-union Regressor model (coefficients.go), per spec.md
// section 3/9.
package racing

import (
	"fmt"
	"math"
	"time"

	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/market"
	"github.com/charleschow/exoticprice/internal/core/mc"
	"github.com/charleschow/exoticprice/internal/core/prng"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/selection"
)

// MaxIndividualSteps bounds fitIndividual's refinement loop.
const MaxIndividualSteps = 100

type priceRange struct{ lo, hi float64 }

func (r priceRange) contains(v float64) bool { return v >= r.lo && v < r.hi }

// fittedPriceRanges is the MSRE sampling window per podium rank, indexed
// 0 (win) through 3 (fourth).
var fittedPriceRanges = [4]priceRange{{1, 1001}, {1, 1001}, {1, 1001}, {1, 1001}}

// FitOptions parameterises both FitAll and FitPlace.
type FitOptions struct {
	MCIterations         int
	IndividualTargetMSRE float64
	Seed                 int64
}

// OptimiserStats reports one fitIndividual run's outcome.
type OptimiserStats struct {
	OptimalMSRE float64
	Steps       int
	Elapsed     time.Duration
}

// AllFitOutcome is FitAll's result: per-rank optimiser stats plus the final
// rank-conditional probability matrix.
type AllFitOutcome struct {
	Stats        []OptimiserStats
	FittedProbs  *primitives.Matrix
}

// FitAll sequentially fits each top-N rank against its own quoted market,
// each step seeding from the previous rank's fitted probabilities.
// Grounded on original_source/src/fit.rs's fit_all.
func FitAll(options FitOptions, markets []*market.Market, dilatives []float64) (*AllFitOutcome, error) {
	if len(markets) == 0 {
		return nil, fmt.Errorf("%w: no markets supplied", domain.ErrInvalidConfig)
	}
	podiumPlaces := len(dilatives)
	numRunners := len(markets[0].Probs)
	weightedProbs := DilatedProbs(markets[0].Probs, dilatives)
	scenarios := selection.TopNMatrix(podiumPlaces, numRunners)

	stats := make([]OptimiserStats, 0, podiumPlaces-1)
	for rank := 1; rank < podiumPlaces; rank++ {
		m := markets[rank]
		outcome, err := fitIndividual(scenarios, weightedProbs, options.MCIterations, options.IndividualTargetMSRE, options.Seed, rank, rank, rank, m.Overround.Value, m.Overround.Method, m.Prices)
		if err != nil {
			return nil, err
		}
		weightedProbs = outcome.OptimalProbs
		stats = append(stats, outcome.Stats)
	}
	return &AllFitOutcome{Stats: stats, FittedProbs: weightedProbs}, nil
}

// PlaceFitOutcome is FitPlace's result.
type PlaceFitOutcome struct {
	Stats       OptimiserStats
	FittedProbs *primitives.Matrix
}

// FitPlace fits a single place market (paying placeRank+1 places) given only
// a win market, a coefficient bundle supplying the Step-1 initial guess, and
// the place market's quoted prices. Grounded on original_source/src/fit.rs's
// fit_place.
func FitPlace(options FitOptions, winMarket, placeMarket *market.Market, dilatives []float64, placeRank int, coeffs Coefficients) (*PlaceFitOutcome, error) {
	podiumPlaces := len(dilatives)
	numRunners := len(winMarket.Probs)

	var activeRunners float64
	for _, p := range winMarket.Probs {
		if p != 0 {
			activeRunners++
		}
	}
	stdev := primitives.Stdev(winMarket.Probs)

	weightedProbs := DilatedProbs(winMarket.Probs, dilatives)
	models := [3]Model{coeffs.W1, coeffs.W2, coeffs.W3}
	for idx, model := range models {
		rank := idx + 1
		if rank >= podiumPlaces {
			break
		}
		placesPaying := float64(rank + 1)
		for runner := 0; runner < numRunners; runner++ {
			winProb := winMarket.Probs[runner]
			if winProb == 0 {
				continue
			}
			features := newFeatures(runner, activeRunners, placesPaying, stdev, winProb)
			weightedProbs.Set(rank, runner, model.Predict(features))
		}
	}
	for rank := 1; rank < podiumPlaces; rank++ {
		primitives.Normalise(weightedProbs.Row(rank), 1.0)
	}

	scenarios := selection.TopNMatrix(podiumPlaces, numRunners)
	outcome, err := fitIndividual(scenarios, weightedProbs, options.MCIterations, options.IndividualTargetMSRE, options.Seed, placeRank, 1, 3, placeMarket.Overround.Value, placeMarket.Overround.Method, placeMarket.Prices)
	if err != nil {
		return nil, err
	}
	return &PlaceFitOutcome{Stats: outcome.Stats, FittedProbs: outcome.OptimalProbs}, nil
}

// IndividualFitOutcome is fitIndividual's result.
type IndividualFitOutcome struct {
	Stats       OptimiserStats
	OptimalProbs *primitives.Matrix
}

// fitIndividual iteratively refines weightedProbs against sample prices for
// one market, simulating a fixed rank's top-N probabilities and nudging
// every rank in [adjLo, adjHi] towards the observed prices until the
// simulated market's MSRE falls to targetMSRE or MaxIndividualSteps is
// reached. It returns the matrix with the lowest MSRE seen.
// Grounded on original_source/src/fit.rs's fit_individual.
func fitIndividual(scenarios [][]selection.Selections, weightedProbs *primitives.Matrix, mcIterations int, targetMSRE float64, seed int64, rank, adjLo, adjHi int, overround float64, method market.Method, samplePrices []float64) (*IndividualFitOutcome, error) {
	start := time.Now()
	numRunners := weightedProbs.Cols()
	flat := flattenScenarios(scenarios)

	current := weightedProbs
	engine := mc.NewEngine(current, prng.NewStd(seed))
	engine.Trials = mcIterations
	counts := make([]uint64, len(flat))

	optimalMSRE := math.MaxFloat64
	var optimalProbs *primitives.Matrix
	step := 0
	for ; step < MaxIndividualSteps; step++ {
		if err := engine.SimulateBatch(flat, counts); err != nil {
			return nil, err
		}

		derivedProbs := make([]float64, numRunners)
		base := rank * numRunners
		for runner := 0; runner < numRunners; runner++ {
			derivedProbs[runner] = float64(counts[base+runner]) / float64(mcIterations)
		}
		derivedMarket, err := market.Frame(market.Overround{Method: method, Value: overround}, derivedProbs, 1.0, math.Inf(1))
		if err != nil {
			return nil, err
		}
		msre := computeMSRE(samplePrices, derivedMarket.Prices, fittedPriceRanges[rank])

		snapshot := current.Clone()
		if msre < optimalMSRE {
			optimalMSRE = msre
			optimalProbs = snapshot.Clone()
		}
		if msre <= targetMSRE {
			break
		}

		for runner, samplePrice := range samplePrices {
			if math.IsInf(samplePrice, 0) {
				continue
			}
			fittedPrice := derivedMarket.Prices[runner]
			adj := fittedPrice / samplePrice
			for adjRank := adjLo; adjRank <= adjHi; adjRank++ {
				snapshot.Set(adjRank, runner, capProb(snapshot.At(adjRank, runner)*adj))
			}
		}
		for adjRank := adjLo; adjRank <= adjHi; adjRank++ {
			primitives.Normalise(snapshot.Row(adjRank), 1.0)
		}

		engine.ResetRand()
		engine.SetProbs(snapshot)
		current = snapshot
	}

	return &IndividualFitOutcome{
		Stats: OptimiserStats{
			OptimalMSRE: optimalMSRE,
			Steps:       step,
			Elapsed:     time.Since(start),
		},
		OptimalProbs: optimalProbs,
	}, nil
}

// capProb clamps an adjusted probability to [0, 1].
func capProb(v float64) float64 {
	return math.Max(0.0, math.Min(v, 1.0))
}

// computeMSRE is the mean squared relative error between sample and fitted
// prices, counted only over finite fitted prices falling within pr.
func computeMSRE(samplePrices, fittedPrices []float64, pr priceRange) float64 {
	var sqRelError float64
	var counted int
	for runner, samplePrice := range samplePrices {
		fittedPrice := fittedPrices[runner]
		if !math.IsInf(fittedPrice, 0) && pr.contains(samplePrice) {
			counted++
			relErr := (samplePrice - fittedPrice) / samplePrice
			sqRelError += relErr * relErr
		}
	}
	return sqRelError / float64(counted)
}

func flattenScenarios(scenarios [][]selection.Selections) []selection.Selections {
	flat := make([]selection.Selections, 0, len(scenarios)*len(scenarios[0]))
	for _, row := range scenarios {
		flat = append(flat, row...)
	}
	return flat
}

// FinalOffers derives the podium's final per-rank markets: one more shared
// Monte-Carlo simulation over finalProbs, reframed under overrounds
// extrapolated from the win and place markets' overrounds (spec.md section
// 4.3, "Derivation of final offers").
func FinalOffers(mcIterations int, seed int64, finalProbs *primitives.Matrix, winOverround, placeOverround float64, placesPaying int, method market.Method, lo, hi float64) ([]*market.Market, error) {
	podiumPlaces := finalProbs.Rows()
	numRunners := finalProbs.Cols()
	scenarios := selection.TopNMatrix(podiumPlaces, numRunners)
	flat := flattenScenarios(scenarios)

	engine := mc.NewEngine(finalProbs, prng.NewStd(seed))
	engine.Trials = mcIterations
	counts := make([]uint64, len(flat))
	if err := engine.SimulateBatch(flat, counts); err != nil {
		return nil, err
	}

	overrounds, err := rankOverrounds(winOverround, placeOverround, placesPaying, podiumPlaces)
	if err != nil {
		return nil, err
	}

	markets := make([]*market.Market, podiumPlaces)
	for rank := 0; rank < podiumPlaces; rank++ {
		derivedProbs := make([]float64, numRunners)
		base := rank * numRunners
		for runner := 0; runner < numRunners; runner++ {
			derivedProbs[runner] = float64(counts[base+runner]) / float64(mcIterations)
		}
		m, err := market.Frame(market.Overround{Method: method, Value: overrounds[rank]}, derivedProbs, lo, hi)
		if err != nil {
			return nil, err
		}
		markets[rank] = m
	}
	return markets, nil
}

// rankOverrounds computes the per-rank overround extrapolation: for a
// 3-place market, [win, win-delta, place, place-delta]; for a 2-place
// market, [win, place, place-delta, place-2*delta] floored at 1.01, where
// delta = (win-place)/2.
func rankOverrounds(win, place float64, placesPaying, podiumPlaces int) ([]float64, error) {
	delta := (win - place) / 2
	var overrounds []float64
	switch placesPaying {
	case 3:
		overrounds = []float64{win, win - delta, place, place - delta}
	case 2:
		overrounds = []float64{win, place, place - delta, place - 2*delta}
		for i, v := range overrounds {
			if v < 1.01 {
				overrounds[i] = 1.01
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported places paying %d", domain.ErrInvalidConfig, placesPaying)
	}
	if len(overrounds) > podiumPlaces {
		overrounds = overrounds[:podiumPlaces]
	}
	return overrounds, nil
}
