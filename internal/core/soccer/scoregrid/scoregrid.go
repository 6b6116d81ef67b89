// Package scoregrid builds and manipulates full-time scoreline probability
// matrices (home goals x away goals) from several independent models:
// direct enumeration of an interval exploration, univariate and bivariate
// Poisson, binomial and bivariate-binomial hypergrids, and a fixed
// correct-score distribution. Grounded on
// original_source/brumby-soccer/src/scoregrid.rs.
package scoregrid

import (
	"fmt"

	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/soccer/interval"
)

// GoalEvent classifies which side(s) scored in one unit of enumeration
// (used by the brute-force permutation cross-check below).
type GoalEvent int

const (
	Neither GoalEvent = iota
	HomeGoal
	AwayGoal
	Both
)

func (e GoalEvent) String() string {
	switch e {
	case Neither:
		return "neither"
	case HomeGoal:
		return "home"
	case AwayGoal:
		return "away"
	case Both:
		return "both"
	default:
		return "unknown_goal_event"
	}
}

// maxGrid bounds the scoreline matrix's dimension; scorelines beyond this
// are folded into the last row/column, matching the reference's capped
// interval iteration.
const maxGrid = 16

// FromInterval runs interval.Explore and sums each surviving Prospect's
// probability mass into its full-time scoreline cell. Grounded on
// scoregrid.rs's from_interval.
func FromInterval(config interval.Config) (*primitives.Matrix, float64, error) {
	exploration, err := interval.Explore(config, 0, config.Intervals)
	if err != nil {
		return nil, 0, err
	}
	grid := primitives.Allocate(maxGrid, maxGrid)
	for _, entry := range exploration.Prospects {
		h, a := clampGrid(int(entry.Prospect.FTScore.Home)), clampGrid(int(entry.Prospect.FTScore.Away))
		grid.Set(h, a, grid.At(h, a)+entry.Prob)
	}
	return grid, exploration.Pruned, nil
}

func clampGrid(v int) int {
	if v >= maxGrid {
		return maxGrid - 1
	}
	return v
}

// IterFixtures enumerates every one of 4^intervals goal-event permutations
// by brute force (Neither/Home/Away/Both per interval), invoking visit for
// each with its cumulative probability under independent per-interval
// home/away/common rates. Used as a slow cross-check of FromInterval on
// small interval counts. Grounded on scoregrid.rs's Iter/IterFixtures.
func IterFixtures(rates []interval.BivariateProbs, visit func(events []GoalEvent, prob float64)) {
	intervals := len(rates)
	cardinalities := make([]int, intervals)
	for i := range cardinalities {
		cardinalities[i] = 4
	}
	total := primitives.CountPermutations(cardinalities)
	digits := make([]int, intervals)
	events := make([]GoalEvent, intervals)
	for perm := 0; perm < total; perm++ {
		primitives.Pick(cardinalities, perm, digits)
		prob := 1.0
		for i, d := range digits {
			r := rates[i]
			events[i] = GoalEvent(d)
			switch GoalEvent(d) {
			case Neither:
				prob *= 1 - r.Home - r.Away - r.Common
			case HomeGoal:
				prob *= r.Home
			case AwayGoal:
				prob *= r.Away
			case Both:
				prob *= r.Common
			}
		}
		if prob > 0 {
			visit(events, prob)
		}
	}
}

// FromIterator sums IterFixtures' output into a scoreline matrix, used to
// validate FromInterval's result on small fixture counts in tests.
func FromIterator(rates []interval.BivariateProbs) *primitives.Matrix {
	grid := primitives.Allocate(maxGrid, maxGrid)
	IterFixtures(rates, func(events []GoalEvent, prob float64) {
		var home, away int
		for _, e := range events {
			switch e {
			case HomeGoal:
				home++
			case AwayGoal:
				away++
			case Both:
				home++
				away++
			}
		}
		h, a := clampGrid(home), clampGrid(away)
		grid.Set(h, a, grid.At(h, a)+prob)
	})
	return grid
}

// FromUnivariatePoisson builds an independent-Poisson scoreline grid with
// no common-cause term.
func FromUnivariatePoisson(homeRate, awayRate float64, dim int) *primitives.Matrix {
	grid := primitives.Allocate(dim, dim)
	for h := 0; h < dim; h++ {
		for a := 0; a < dim; a++ {
			grid.Set(h, a, primitives.PoissonPMF(h, homeRate)*primitives.PoissonPMF(a, awayRate))
		}
	}
	return grid
}

// FromBivariatePoisson builds a Karlis-Ntzoufras bivariate-Poisson
// scoreline grid via primitives.BivariatePoisson.
func FromBivariatePoisson(homeRate, awayRate, commonRate float64, dim int) *primitives.Matrix {
	grid := primitives.Allocate(dim, dim)
	for h := 0; h < dim; h++ {
		for a := 0; a < dim; a++ {
			grid.Set(h, a, primitives.BivariatePoisson(h, a, homeRate, awayRate, commonRate))
		}
	}
	return grid
}

// FromBinomial builds a scoreline grid treating each of n discrete
// intervals as an independent Bernoulli(p) trial per side, with no
// common-cause term.
func FromBinomial(n int, pHome, pAway float64, dim int) *primitives.Matrix {
	grid := primitives.Allocate(dim, dim)
	for h := 0; h < dim && h <= n; h++ {
		for a := 0; a < dim && a <= n; a++ {
			grid.Set(h, a, primitives.Binomial(n, h, pHome)*primitives.Binomial(n, a, pAway))
		}
	}
	return grid
}

// FromBivariateBinomial builds a scoreline grid via
// primitives.BivariateBinomial, the discrete analogue of
// FromBivariatePoisson.
func FromBivariateBinomial(n int, pHome, pAway, pCommon float64, dim int) *primitives.Matrix {
	grid := primitives.Allocate(dim, dim)
	for h := 0; h < dim && h <= n; h++ {
		for a := 0; a < dim && a <= n; a++ {
			grid.Set(h, a, primitives.BivariateBinomial(n, h, a, pHome, pAway, pCommon))
		}
	}
	return grid
}

// FromCorrectScore builds a scoreline grid with all its mass on a single
// fixed score, for testing and for fixtures with a known result.
func FromCorrectScore(score domain.Score, dim int) *primitives.Matrix {
	grid := primitives.Allocate(dim, dim)
	h, a := clampGrid(int(score.Home)), clampGrid(int(score.Away))
	grid.Set(h, a, 1.0)
	return grid
}

// HomeAwayExpectations returns the marginal expected goals for each side
// under grid.
func HomeAwayExpectations(grid *primitives.Matrix) (home, away float64) {
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			p := grid.At(h, a)
			home += float64(h) * p
			away += float64(a) * p
		}
	}
	return home, away
}

// Subtract redistributes past's probability mass out of future,
// proportionally to future's own incremental-goal distribution beyond each
// past scoreline — used to back out a half's contribution from a
// full-match grid given the other half's. Grounded on scoregrid.rs's
// subtract.
func Subtract(future, past *primitives.Matrix) (*primitives.Matrix, error) {
	if future.Rows() != past.Rows() || future.Cols() != past.Cols() {
		return nil, fmt.Errorf("%w: subtract requires equal-shaped grids", domain.ErrInvalidMarket)
	}
	dim := future.Rows()
	out := primitives.Allocate(dim, dim)
	for pastHome := 0; pastHome < dim; pastHome++ {
		for pastAway := 0; pastAway < dim; pastAway++ {
			pastProb := past.At(pastHome, pastAway)
			if pastProb <= 0 {
				continue
			}
			var remainderMass float64
			for h := pastHome; h < dim; h++ {
				for a := pastAway; a < dim; a++ {
					remainderMass += future.At(h, a)
				}
			}
			if remainderMass <= 0 {
				continue
			}
			for h := pastHome; h < dim; h++ {
				for a := pastAway; a < dim; a++ {
					incrementalHome, incrementalAway := h-pastHome, a-pastAway
					share := future.At(h, a) / remainderMass * pastProb
					out.Set(incrementalHome, incrementalAway, out.At(incrementalHome, incrementalAway)+share)
				}
			}
		}
	}
	return out, nil
}

// InflateZero adds additive probability mass to the scoreless cell (0,0)
// and renormalises the grid back to summing to 1. Grounded on
// scoregrid.rs's inflate_zero.
func InflateZero(additive float64, grid *primitives.Matrix) {
	grid.Set(0, 0, grid.At(0, 0)+additive)
	flat := grid.Flatten()
	var sum float64
	for _, v := range flat {
		sum += v
	}
	if sum <= 0 {
		return
	}
	for i, v := range flat {
		flat[i] = v / sum
	}
}

// OutcomeType is the closed set of offer shapes Gather can total a
// scoreline grid's mass into.
type OutcomeType int

const (
	GatherWin OutcomeType = iota
	GatherDraw
	GatherGoalsOver
	GatherGoalsUnder
	GatherCorrectScore
)

// Gather sums grid's probability mass matching outcome, parameterised by
// side (Win), line (GoalsOver/GoalsUnder), or score (CorrectScore).
// Grounded on scoregrid.rs's OutcomeType::gather and its gather_win/
// gather_draw/gather_goals_over/gather_goals_under/gather_correct_score
// helpers.
func Gather(grid *primitives.Matrix, outcome OutcomeType, side domain.Side, line float64, score domain.Score) (float64, error) {
	switch outcome {
	case GatherWin:
		return gatherWin(grid, side), nil
	case GatherDraw:
		return gatherDraw(grid), nil
	case GatherGoalsOver:
		return gatherGoalsOver(grid, line), nil
	case GatherGoalsUnder:
		return gatherGoalsUnder(grid, line), nil
	case GatherCorrectScore:
		return gatherCorrectScore(grid, score), nil
	default:
		return 0, fmt.Errorf("%w: unknown outcome type %d", domain.ErrInvalidOffer, outcome)
	}
}

func gatherWin(grid *primitives.Matrix, side domain.Side) float64 {
	var sum float64
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			if (side == domain.Home && h > a) || (side == domain.Away && a > h) {
				sum += grid.At(h, a)
			}
		}
	}
	return sum
}

func gatherDraw(grid *primitives.Matrix) float64 {
	var sum float64
	n := grid.Rows()
	if grid.Cols() < n {
		n = grid.Cols()
	}
	for i := 0; i < n; i++ {
		sum += grid.At(i, i)
	}
	return sum
}

func gatherGoalsOver(grid *primitives.Matrix, line float64) float64 {
	var sum float64
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			if float64(h+a) > line {
				sum += grid.At(h, a)
			}
		}
	}
	return sum
}

func gatherGoalsUnder(grid *primitives.Matrix, line float64) float64 {
	var sum float64
	for h := 0; h < grid.Rows(); h++ {
		for a := 0; a < grid.Cols(); a++ {
			if float64(h+a) < line {
				sum += grid.At(h, a)
			}
		}
	}
	return sum
}

func gatherCorrectScore(grid *primitives.Matrix, score domain.Score) float64 {
	h, a := int(score.Home), int(score.Away)
	if h >= grid.Rows() || a >= grid.Cols() {
		return 0
	}
	return grid.At(h, a)
}
