// Package mc implements the Monte-Carlo podium simulator: repeated
// without-replacement draws from a ranks x runners probability matrix,
// checked against arbitrary Selections predicates. Grounded on
// original_source/brumby/src/mc.rs.
package mc

import (
	"fmt"

	"github.com/charleschow/exoticprice/internal/core/prng"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/selection"
)

// Engine runs repeated podium simulations against a fixed rank-conditional
// probability matrix, reusing its scratch buffers (podium, bitmap, totals)
// across calls to avoid per-trial allocation.
type Engine struct {
	Trials int
	probs  *primitives.Matrix
	rand   prng.Source

	podium  []int
	bitmap  []bool
	totals  []float64
}

// NewEngine returns an Engine over probs (a ranks x runners matrix), drawing
// trials samples per Simulate/SimulateBatch call using rand.
func NewEngine(probs *primitives.Matrix, rand prng.Source) *Engine {
	e := &Engine{Trials: 10_000, probs: probs, rand: rand}
	e.podium = make([]int, probs.Rows())
	e.bitmap = make([]bool, probs.Cols())
	e.totals = make([]float64, probs.Rows())
	return e
}

// SetProbs replaces the probability matrix, reallocating scratch buffers if
// its shape changed.
func (e *Engine) SetProbs(probs *primitives.Matrix) {
	e.probs = probs
	if len(e.bitmap) != probs.Cols() {
		e.bitmap = make([]bool, probs.Cols())
	}
	if len(e.podium) != probs.Rows() {
		e.podium = make([]int, probs.Rows())
		e.totals = make([]float64, probs.Rows())
	}
}

// ResetRand restores the engine's random source, so successive simulations
// over different candidate parameterisations share an identical trial
// stream (common random numbers) for variance-reduced comparison.
func (e *Engine) ResetRand() { e.rand.Reset() }

// Simulate runs Trials draws and returns the exact hit fraction for
// selections.
func (e *Engine) Simulate(selections selection.Selections) (primitives.Fraction, error) {
	if err := e.validate(); err != nil {
		return primitives.Fraction{}, err
	}
	var matching uint64
	for i := 0; i < e.Trials; i++ {
		runOnce(e.probs, e.podium, e.bitmap, e.totals, e.rand)
		if selections.Matches(e.podium) {
			matching++
		}
	}
	return primitives.Fraction{Numerator: matching, Denominator: uint64(e.Trials)}, nil
}

// SimulateBatch runs Trials shared draws and tallies a hit count for every
// entry of selectionsList into the matching slot of counts — a single trial
// stream checked against many scenarios, for variance reduction when
// comparing candidate parameterisations.
func (e *Engine) SimulateBatch(selectionsList []selection.Selections, counts []uint64) error {
	if err := e.validate(); err != nil {
		return err
	}
	if len(selectionsList) != len(counts) {
		return fmt.Errorf("a count slot must exist for each set of selections")
	}
	for i := range counts {
		counts[i] = 0
	}
	for i := 0; i < e.Trials; i++ {
		runOnce(e.probs, e.podium, e.bitmap, e.totals, e.rand)
		for j, selections := range selectionsList {
			if selections.Matches(e.podium) {
				counts[j]++
			}
		}
	}
	return nil
}

func (e *Engine) validate() error {
	if e.probs == nil || e.probs.IsEmpty() {
		return fmt.Errorf("the probabilities matrix cannot be empty")
	}
	if len(e.podium) == 0 {
		return fmt.Errorf("the podium slice cannot be empty")
	}
	if len(e.podium) > e.probs.Cols() {
		return fmt.Errorf("number of podium entries cannot exceed number of runners")
	}
	if e.probs.Cols() != len(e.bitmap) {
		return fmt.Errorf("a bitmap entry must exist for each runner")
	}
	if len(e.totals) != len(e.podium) {
		return fmt.Errorf("a total must exist for each podium rank")
	}
	if e.probs.Rows() != len(e.podium) {
		return fmt.Errorf("a probability row must exist for each podium rank")
	}
	for _, p := range e.probs.Flatten() {
		if p < 0 || p > 1 {
			return fmt.Errorf("probabilities out of range: %v", p)
		}
	}
	return nil
}

// runOnce draws a single podium without replacement: for each rank, a
// cumulative-probability roulette-wheel pick among runners not yet placed,
// then subtracts the chosen runner's mass from every later rank's running
// total so normalisation stays implicit (no renormalising the whole row).
func runOnce(probs *primitives.Matrix, podium []int, bitmap []bool, totals []float64, rand prng.Source) {
	for i := range bitmap {
		bitmap[i] = true
	}
	for i := range totals {
		totals[i] = 1.0
	}

	runners := probs.Cols()
	ranks := len(podium)
	for rank := 0; rank < ranks; rank++ {
		rankProbs := probs.Row(rank)
		random := prng.Float64(rand) * totals[rank]

		cumulative := 0.0
		chosen := false
		lastEligible := 0
		for runner := 0; runner < runners; runner++ {
			if !bitmap[runner] {
				continue
			}
			prob := rankProbs[runner]
			if prob <= 0 {
				continue
			}
			lastEligible = runner
			cumulative += prob
			if cumulative >= random {
				podium[rank] = runner
				bitmap[runner] = false
				for future := rank + 1; future < ranks; future++ {
					totals[future] -= probs.At(future, runner)
				}
				chosen = true
				break
			}
		}
		if !chosen {
			podium[rank] = lastEligible
			bitmap[lastEligible] = false
			for future := rank + 1; future < ranks; future++ {
				totals[future] -= probs.At(future, lastEligible)
			}
		}
	}
}
