// Package opt implements the two derivative-free optimisers the fitters
// build on: a univariate step/halve-and-flip descent, and a multi-dimension
// hypergrid refinement search. Grounded on original_source/brumby/src/opt.rs.
package opt

import (
	"fmt"

	"github.com/charleschow/exoticprice/internal/core/primitives"
)

// UnivariateDescentConfig parameterises univariate descent.
type UnivariateDescentConfig struct {
	InitValue          float64
	InitStep           float64
	MinStep            float64
	MaxSteps           uint64
	AcceptableResidual float64
}

func (c UnivariateDescentConfig) validate() error {
	if c.MinStep <= 0 {
		return fmt.Errorf("min step must be positive")
	}
	if c.AcceptableResidual < 0 {
		return fmt.Errorf("acceptable residual must be non-negative")
	}
	return nil
}

// UnivariateDescentOutcome reports the result of UnivariateDescent.
type UnivariateDescentOutcome struct {
	Steps           uint64
	OptimalValue    float64
	OptimalResidual float64
}

// UnivariateDescent searches for a value minimising loss by stepping from
// InitValue; an overshoot (loss increases) halves the step and reverses
// direction, stopping once the step shrinks below MinStep, MaxSteps is
// reached, or the residual drops to AcceptableResidual.
func UnivariateDescent(config UnivariateDescentConfig, loss func(float64) float64) UnivariateDescentOutcome {
	if err := config.validate(); err != nil {
		panic(err)
	}

	var steps uint64
	residual := loss(config.InitValue)
	if residual <= config.AcceptableResidual {
		return UnivariateDescentOutcome{Steps: 0, OptimalValue: config.InitValue, OptimalResidual: residual}
	}

	value, step := config.InitValue, config.InitStep
	optimalValue, optimalResidual := value, residual

	for steps < config.MaxSteps {
		steps++
		newValue := value + step
		newResidual := loss(newValue)

		if newResidual > residual {
			step = -step * 0.5
			if absFloat(step) < config.MinStep {
				break
			}
		} else if newResidual < optimalResidual {
			optimalResidual = newResidual
			optimalValue = newValue
			if optimalResidual <= config.AcceptableResidual {
				break
			}
		}
		residual = newResidual
		value = newValue
	}

	return UnivariateDescentOutcome{Steps: steps, OptimalValue: optimalValue, OptimalResidual: optimalResidual}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Interval is a closed real-valued search bound [Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

// HypergridSearchConfig parameterises hypergrid search.
type HypergridSearchConfig struct {
	MaxSteps           uint64
	AcceptableResidual float64
	Bounds             []Interval
	Resolution         int
}

const minResolution = 3

func (c HypergridSearchConfig) validate() error {
	if c.MaxSteps == 0 {
		return fmt.Errorf("at least one step must be specified")
	}
	if c.AcceptableResidual < 0 {
		return fmt.Errorf("acceptable residual must be non-negative")
	}
	if len(c.Bounds) == 0 {
		return fmt.Errorf("at least one search dimension must be specified")
	}
	if c.Resolution < minResolution {
		return fmt.Errorf("search resolution must be at least %d", minResolution)
	}
	return nil
}

// HypergridSearchOutcome reports the result of HypergridSearch.
type HypergridSearchOutcome struct {
	Steps           uint64
	OptimalValues   []float64
	OptimalResidual float64
}

// HypergridSearch minimises loss over a multi-dimensional box by evaluating
// a regular grid of Resolution points per dimension, then re-centring each
// dimension's search range on the best point found and halving it,
// clipped to the original hard Bounds, and repeating for up to MaxSteps
// outer iterations.
func HypergridSearch(config HypergridSearchConfig, constraint func([]float64) bool, loss func([]float64) float64) HypergridSearchOutcome {
	if err := config.validate(); err != nil {
		panic(err)
	}

	dims := len(config.Bounds)
	values := make([]float64, dims)
	optimalValues := make([]float64, dims)
	optimalResidual := maxFloat64

	cardinalities := make([]int, dims)
	for i := range cardinalities {
		cardinalities[i] = config.Resolution
	}
	ordinals := make([]int, dims)
	permutations := primitives.CountPermutations(cardinalities)

	bounds := append([]Interval(nil), config.Bounds...)
	invResolution := 1.0 / float64(config.Resolution-1)

	var steps uint64
outer:
	for steps < config.MaxSteps {
		steps++

		for permutation := 0; permutation < permutations; permutation++ {
			primitives.Pick(cardinalities, permutation, ordinals)

			for dimension, ordinal := range ordinals {
				bound := bounds[dimension]
				rangeSize := bound.Hi - bound.Lo
				values[dimension] = bound.Lo + float64(ordinal)*rangeSize*invResolution
				if constraint(values) {
					residual := loss(values)
					if residual < optimalResidual {
						optimalResidual = residual
						copy(optimalValues, values)
						if residual <= config.AcceptableResidual {
							break outer
						}
					}
				}
			}
		}

		for dimension, value := range optimalValues {
			hardBound := config.Bounds[dimension]
			bound := bounds[dimension]
			newRange := (bound.Hi - bound.Lo) / 2.0
			newStart := maxF(hardBound.Lo, value-newRange/2.0)
			newEnd := minF(newStart+newRange, hardBound.Hi)
			bounds[dimension] = Interval{Lo: newStart, Hi: newEnd}
		}
	}

	return HypergridSearchOutcome{Steps: steps, OptimalValues: optimalValues, OptimalResidual: optimalResidual}
}

const maxFloat64 = 1.7976931348623157e+308

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
