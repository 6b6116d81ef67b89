// Package fit implements the staged soccer scoreline and per-player fitters:
// a bootstrap from total-goals and head-to-head markets through univariate
// and bivariate Poisson estimates into a bivariate-binomial hypergrid
// search, a first/second-half split of that result, and univariate-descent
// fitters isolating each named player's first-goalscorer, anytime-goalscorer
// and anytime-assist rate. Grounded on
// original_source/brumby-soccer/src/fit.rs and
// original_source/brumby-soccer/src/model/score_fitter.rs.
package fit

import (
	"fmt"
	"math"

	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/opt"
	"github.com/charleschow/exoticprice/internal/core/primitives"
	"github.com/charleschow/exoticprice/internal/core/soccer/interval"
	"github.com/charleschow/exoticprice/internal/core/soccer/scoregrid"
)

// ErrorType selects how a fitted value's deviation from its sample is
// penalised.
type ErrorType int

const (
	SquaredRelative ErrorType = iota
	SquaredAbsolute
)

// Calculate returns the squared (relative or absolute) error between
// expected and sample.
func (e ErrorType) Calculate(expected, sample float64) float64 {
	switch e {
	case SquaredAbsolute:
		d := expected - sample
		return d * d
	default:
		d := (expected - sample) / sample
		return d * d
	}
}

// Reverse undoes the squaring Calculate applied, for reporting an RMS error.
func (e ErrorType) Reverse(errSum float64) float64 { return math.Sqrt(errSum) }

// defaultErrorType matches fit.rs's ERROR_TYPE constant.
const defaultErrorType = SquaredRelative

// goalscorerMinProb is the interval explorer's prune floor while fitting
// per-player rates: no pruning, since every branch's mass matters at this
// resolution.
const goalscorerMinProb = 0.0

// gatherOutcome maps a domain.Outcome onto the scoregrid package's
// OutcomeType/Gather call.
func gatherOutcome(grid *primitives.Matrix, outcome domain.Outcome) (float64, error) {
	switch outcome.Kind {
	case domain.OutcomeWin:
		return scoregrid.Gather(grid, scoregrid.GatherWin, outcome.Side, 0, domain.Score{})
	case domain.OutcomeDraw:
		return scoregrid.Gather(grid, scoregrid.GatherDraw, domain.Home, 0, domain.Score{})
	case domain.OutcomeOver:
		return scoregrid.Gather(grid, scoregrid.GatherGoalsOver, domain.Home, outcome.Line, domain.Score{})
	case domain.OutcomeUnder:
		return scoregrid.Gather(grid, scoregrid.GatherGoalsUnder, domain.Home, outcome.Line, domain.Score{})
	case domain.OutcomeScore:
		return scoregrid.Gather(grid, scoregrid.GatherCorrectScore, domain.Home, 0, domain.Score{Home: uint16(outcome.HomeGoals), Away: uint16(outcome.AwayGoals)})
	default:
		return 0, fmt.Errorf("%w: outcome kind %v has no scoregrid gather", domain.ErrInvalidOffer, outcome.Kind)
	}
}

// scoregridError sums each offer's outcomes' squared error between their
// quoted probability and grid's gathered probability. Grounded on fit.rs's
// scoregrid_error.
func scoregridError(offers []domain.Offer, grid *primitives.Matrix) (float64, error) {
	var residual float64
	for _, offer := range offers {
		for i, outcome := range offer.Outcomes {
			fitted, err := gatherOutcome(grid, outcome)
			if err != nil {
				return 0, err
			}
			residual += defaultErrorType.Calculate(offer.Probs[i], fitted)
		}
	}
	return residual, nil
}

func allocateDim(intervals, maxTotalGoals int) int {
	dim := maxTotalGoals
	if intervals < dim {
		dim = intervals
	}
	return dim + 1
}

// fitPoissonTotalGoalsScoregrid descends a single shared home/away Poisson
// rate against a total-goals offer. Grounded on fit.rs's
// fit_poisson_total_goals_scoregrid.
func fitPoissonTotalGoalsScoregrid(initEstimate float64, totalGoals domain.Offer, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	offers := []domain.Offer{totalGoals}
	var lossErr error
	outcome := opt.UnivariateDescent(opt.UnivariateDescentConfig{
		InitValue: initEstimate, InitStep: initEstimate * 0.1, MinStep: 0.0001, MaxSteps: 100, AcceptableResidual: 1e-6,
	}, func(value float64) float64 {
		grid := scoregrid.FromUnivariatePoisson(value, value, dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// fitPoissonH2HScoregrid descends the home Poisson rate (away is kept at
// 2*initEstimate-home) against a head-to-head offer. Grounded on fit.rs's
// fit_poisson_h2h_scoregrid.
func fitPoissonH2HScoregrid(initEstimate float64, h2h domain.Offer, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	offers := []domain.Offer{h2h}
	var lossErr error
	outcome := opt.UnivariateDescent(opt.UnivariateDescentConfig{
		InitValue: initEstimate, InitStep: initEstimate * 0.1, MinStep: 0.0001, MaxSteps: 100, AcceptableResidual: 1e-6,
	}, func(value float64) float64 {
		grid := scoregrid.FromUnivariatePoisson(value, 2*initEstimate-value, dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// fitPoissonCommonScoregrid descends the bivariate-Poisson common-cause
// rate, holding home/away goals estimates fixed net of it. Grounded on
// fit.rs's fit_poisson_common_scoregrid.
func fitPoissonCommonScoregrid(homeGoalsEstimate, awayGoalsEstimate float64, h2h domain.Offer, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	offers := []domain.Offer{h2h}
	var lossErr error
	outcome := opt.UnivariateDescent(opt.UnivariateDescentConfig{
		InitValue: 0.0, InitStep: 0.1, MinStep: 0.0001, MaxSteps: 100, AcceptableResidual: 1e-6,
	}, func(value float64) float64 {
		grid := scoregrid.FromBivariatePoisson(homeGoalsEstimate-value, awayGoalsEstimate-value, value, dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// fitUnivariatePoissonScoregrid hypergrid-searches independent home/away
// Poisson rates. Grounded on fit.rs's fit_univariate_poisson_scoregrid.
func fitUnivariatePoissonScoregrid(homeGoalsEstimate, awayGoalsEstimate float64, offers []domain.Offer, intervals, maxTotalGoals int) (opt.HypergridSearchOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	var lossErr error
	outcome := opt.HypergridSearch(opt.HypergridSearchConfig{
		MaxSteps: 10, AcceptableResidual: 1e-6,
		Bounds:     []opt.Interval{{Lo: homeGoalsEstimate * 0.83, Hi: homeGoalsEstimate * 1.2}, {Lo: awayGoalsEstimate * 0.83, Hi: awayGoalsEstimate * 1.2}},
		Resolution: 10,
	}, func([]float64) bool { return true }, func(values []float64) float64 {
		grid := scoregrid.FromUnivariatePoisson(values[0], values[1], dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// fitBivariatePoissonScoregrid hypergrid-searches home/away/common-cause
// Poisson rates. Grounded on fit.rs's fit_bivariate_poisson_scoregrid.
func fitBivariatePoissonScoregrid(offers []domain.Offer, homeEstimate, awayEstimate, commonEstimate float64, intervals, maxTotalGoals int) (opt.HypergridSearchOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	var lossErr error
	outcome := opt.HypergridSearch(opt.HypergridSearchConfig{
		MaxSteps: 10, AcceptableResidual: 1e-6,
		Bounds:     []opt.Interval{{Lo: homeEstimate - 0.5, Hi: homeEstimate}, {Lo: awayEstimate - 0.5, Hi: awayEstimate}, {Lo: commonEstimate, Hi: commonEstimate + 0.5}},
		Resolution: 4,
	}, func([]float64) bool { return true }, func(values []float64) float64 {
		grid := scoregrid.FromBivariatePoisson(values[0], values[1], values[2], dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// fitBivariateBinomialScoregrid hypergrid-searches interval-level
// home/away/common-cause scoring probabilities. Grounded on fit.rs's
// fit_bivariate_binomial_scoregrid.
func fitBivariateBinomialScoregrid(offers []domain.Offer, initEstimates []float64, intervals, maxTotalGoals int) (opt.HypergridSearchOutcome, error) {
	dim := allocateDim(intervals, maxTotalGoals)
	bounds := make([]opt.Interval, len(initEstimates))
	for i, e := range initEstimates {
		bounds[i] = opt.Interval{Lo: e * 0.67, Hi: e * 1.5}
	}
	var lossErr error
	outcome := opt.HypergridSearch(opt.HypergridSearchConfig{
		MaxSteps: 10, AcceptableResidual: 1e-6, Bounds: bounds, Resolution: 4,
	}, func(values []float64) bool {
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum <= 1.0
	}, func(values []float64) float64 {
		grid := scoregrid.FromBivariateBinomial(intervals, values[0], values[1], values[2], dim)
		residual, err := scoregridError(offers, grid)
		if err != nil {
			lossErr = err
		}
		return residual
	})
	return outcome, lossErr
}

// FitScoregridFull bootstraps full-time home/away/common Poisson rates from
// a head-to-head offer and a total-goals offer, then refines them into a
// bivariate-binomial hypergrid. Returns the final search outcome and the
// bivariate-Poisson lambdas [home, away, common] the binomial stage started
// from. Grounded on fit.rs's fit_scoregrid_full.
func FitScoregridFull(h2h, totalGoals domain.Offer, intervals, maxTotalGoals int) (opt.HypergridSearchOutcome, []float64, error) {
	initEstimate := totalGoals.Key.Line + 0.5
	totalSearch, err := fitPoissonTotalGoalsScoregrid(initEstimate, totalGoals, intervals, maxTotalGoals)
	if err != nil {
		return opt.HypergridSearchOutcome{}, nil, err
	}
	expectedTotalGoalsPerSide := totalSearch.OptimalValue

	h2hSearch, err := fitPoissonH2HScoregrid(expectedTotalGoalsPerSide, h2h, intervals, maxTotalGoals)
	if err != nil {
		return opt.HypergridSearchOutcome{}, nil, err
	}
	expectedHomeGoals := h2hSearch.OptimalValue

	offers := []domain.Offer{h2h, totalGoals}
	expectedAwayGoals := 2*expectedTotalGoalsPerSide - expectedHomeGoals
	commonSearch, err := fitPoissonCommonScoregrid(expectedHomeGoals, expectedAwayGoals, h2h, intervals, maxTotalGoals)
	if err != nil {
		return opt.HypergridSearchOutcome{}, nil, err
	}
	expectedCommonGoals := commonSearch.OptimalValue

	biPoissonSearch, err := fitBivariatePoissonScoregrid(offers, expectedHomeGoals, expectedAwayGoals, expectedCommonGoals, intervals, maxTotalGoals)
	if err != nil {
		return opt.HypergridSearchOutcome{}, nil, err
	}
	lambdas := biPoissonSearch.OptimalValues
	initEstimates := make([]float64, len(lambdas))
	for i, v := range lambdas {
		initEstimates[i] = 1 - primitives.PoissonPMF(0, v/float64(intervals))
	}

	binomialSearch, err := fitBivariateBinomialScoregrid(offers, initEstimates, intervals, maxTotalGoals)
	if err != nil {
		return opt.HypergridSearchOutcome{}, nil, err
	}
	return binomialSearch, lambdas, nil
}

// FitScoregridHalf derives one half's interval home/away scoring
// probabilities from a univariate-Poisson hypergrid search seeded by
// homeGoalsEstimate/awayGoalsEstimate. Grounded on fit.rs's
// fit_scoregrid_half (the Rust function's commented-out bivariate-binomial
// refinement stage is not reinstated here, matching its currently active
// behaviour).
func FitScoregridHalf(homeGoalsEstimate, awayGoalsEstimate float64, offers []domain.Offer, intervals, maxTotalGoalsHalf int) (opt.HypergridSearchOutcome, error) {
	search, err := fitUnivariatePoissonScoregrid(homeGoalsEstimate, awayGoalsEstimate, offers, intervals, maxTotalGoalsHalf)
	if err != nil {
		return opt.HypergridSearchOutcome{}, err
	}
	initEstimates := make([]float64, len(search.OptimalValues))
	for i, v := range search.OptimalValues {
		initEstimates[i] = 1 - primitives.PoissonPMF(0, v/float64(intervals)*2)
	}
	return opt.HypergridSearchOutcome{Steps: 0, OptimalValues: initEstimates, OptimalResidual: 0}, nil
}

// PlayerProb pairs a player with a fitted rate.
type PlayerProb struct {
	Player domain.Player
	Prob   float64
}

func univariateDescentConfig(initEstimate float64) opt.UnivariateDescentConfig {
	return opt.UnivariateDescentConfig{
		InitValue: initEstimate, InitStep: initEstimate * 0.1, MinStep: initEstimate * 0.0001,
		MaxSteps: 100, AcceptableResidual: 1e-9,
	}
}

// FitFirstGoalscorerOne descends player's first-goalscorer rate to match
// expectedProb. Grounded on fit.rs's fit_first_goalscorer_one.
func FitFirstGoalscorerOne(h1Goals, h2Goals interval.BivariateProbs, player domain.Player, initEstimate, expectedProb float64, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	expansions, err := interval.Requirements(domain.FirstGoalscorer)
	if err != nil {
		return opt.UnivariateDescentOutcome{}, err
	}
	goal := 0.0
	config := interval.Config{
		Intervals: intervals,
		TeamProbs: interval.TeamProbs{H1Goals: h1Goals, H2Goals: h2Goals},
		Players:   []domain.Player{player},
		PlayerProbs: []interval.PlayerProbs{{Goal: &goal}},
		PruneThresholds: interval.PruneThresholds{MaxTotalGoals: maxTotalGoals, MinProb: goalscorerMinProb},
		Expansions:      expansions,
	}
	outcomeType := domain.Outcome{Kind: domain.OutcomePlayer, Player: player}
	var lossErr error
	result := opt.UnivariateDescent(univariateDescentConfig(initEstimate), func(value float64) float64 {
		goal = value
		exploration, err := interval.Explore(config, 0, intervals)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		isolated, err := interval.Isolate(domain.FirstGoalscorer, outcomeType, exploration.Prospects, exploration.PlayerLookup)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		return defaultErrorType.Calculate(expectedProb, isolated)
	})
	return result, lossErr
}

// FitFirstGoalscorerAll fits every named player's first-goalscorer rate in
// firstGoalscorer against the given half-wise bivariate-Poisson rates.
// Grounded on fit.rs's fit_first_goalscorer_all.
func FitFirstGoalscorerAll(h1Probs, h2Probs interval.BivariateProbs, firstGoalscorer domain.Offer, nilAllDrawProb float64, intervals, maxTotalGoals int) ([]PlayerProb, error) {
	homeRatio, awayRatio := sideRatios(h1Probs, h2Probs, nilAllDrawProb)
	var results []PlayerProb
	for i, outcome := range firstGoalscorer.Outcomes {
		if outcome.Kind != domain.OutcomePlayer {
			continue
		}
		player := outcome.Player
		if player.Other {
			return nil, fmt.Errorf("%w: Other is not a valid first-goalscorer outcome", domain.ErrInvalidOffer)
		}
		sideRatio := awayRatio
		if player.Side == domain.Home {
			sideRatio = homeRatio
		}
		initEstimate := firstGoalscorer.Probs[i] / sideRatio
		outcome, err := FitFirstGoalscorerOne(h1Probs, h2Probs, player, initEstimate, firstGoalscorer.Probs[i], intervals, maxTotalGoals)
		if err != nil {
			return nil, err
		}
		results = append(results, PlayerProb{Player: player, Prob: outcome.OptimalValue})
	}
	return results, nil
}

// FitAnytimeGoalscorerOne descends player's anytime-goalscorer rate to
// match expectedProb. Grounded on fit.rs's fit_anytime_goalscorer_one.
func FitAnytimeGoalscorerOne(h1Goals, h2Goals interval.BivariateProbs, player domain.Player, initEstimate, expectedProb float64, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	expansions, err := interval.Requirements(domain.AnytimeGoalscorer)
	if err != nil {
		return opt.UnivariateDescentOutcome{}, err
	}
	goal := 0.0
	config := interval.Config{
		Intervals:       intervals,
		TeamProbs:       interval.TeamProbs{H1Goals: h1Goals, H2Goals: h2Goals},
		Players:         []domain.Player{player},
		PlayerProbs:     []interval.PlayerProbs{{Goal: &goal}},
		PruneThresholds: interval.PruneThresholds{MaxTotalGoals: maxTotalGoals, MinProb: goalscorerMinProb},
		Expansions:      expansions,
	}
	outcomeType := domain.Outcome{Kind: domain.OutcomePlayer, Player: player}
	var lossErr error
	result := opt.UnivariateDescent(univariateDescentConfig(initEstimate), func(value float64) float64 {
		goal = value
		exploration, err := interval.Explore(config, 0, intervals)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		isolated, err := interval.Isolate(domain.AnytimeGoalscorer, outcomeType, exploration.Prospects, exploration.PlayerLookup)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		return defaultErrorType.Calculate(expectedProb, isolated)
	})
	return result, lossErr
}

// FitAnytimeGoalscorerAll fits every named player's anytime-goalscorer rate
// in anytimeGoalscorer. probEstAdj nudges the initial estimate (the
// reference uses this to compensate for the difference between a
// first-goalscorer and an anytime-goalscorer booksum). Grounded on fit.rs's
// fit_anytime_goalscorer_all.
func FitAnytimeGoalscorerAll(h1Probs, h2Probs interval.BivariateProbs, anytimeGoalscorer domain.Offer, nilAllDrawProb, probEstAdj float64, intervals, maxTotalGoals int) ([]PlayerProb, error) {
	homeRatio, awayRatio := sideRatios(h1Probs, h2Probs, nilAllDrawProb)
	var results []PlayerProb
	for i, outcome := range anytimeGoalscorer.Outcomes {
		if outcome.Kind != domain.OutcomePlayer {
			continue
		}
		player := outcome.Player
		if player.Other {
			return nil, fmt.Errorf("%w: Other is not a valid anytime-goalscorer outcome", domain.ErrInvalidOffer)
		}
		sideRatio := awayRatio
		if player.Side == domain.Home {
			sideRatio = homeRatio
		}
		initEstimate := anytimeGoalscorer.Probs[i] / sideRatio * probEstAdj
		outcome, err := FitAnytimeGoalscorerOne(h1Probs, h2Probs, player, initEstimate, anytimeGoalscorer.Probs[i], intervals, maxTotalGoals)
		if err != nil {
			return nil, err
		}
		results = append(results, PlayerProb{Player: player, Prob: outcome.OptimalValue})
	}
	return results, nil
}

// FitAnytimeAssistOne descends player's anytime-assist rate to match
// expectedProb. Grounded on fit.rs's fit_anytime_assist_one.
func FitAnytimeAssistOne(h1Goals, h2Goals interval.BivariateProbs, assistProbs interval.UnivariateProbs, player domain.Player, initEstimate, expectedProb float64, intervals, maxTotalGoals int) (opt.UnivariateDescentOutcome, error) {
	expansions, err := interval.Requirements(domain.AnytimeAssist)
	if err != nil {
		return opt.UnivariateDescentOutcome{}, err
	}
	assist := 0.0
	config := interval.Config{
		Intervals:       intervals,
		TeamProbs:       interval.TeamProbs{H1Goals: h1Goals, H2Goals: h2Goals, Assists: assistProbs},
		Players:         []domain.Player{player},
		PlayerProbs:     []interval.PlayerProbs{{Assist: &assist}},
		PruneThresholds: interval.PruneThresholds{MaxTotalGoals: maxTotalGoals, MinProb: goalscorerMinProb},
		Expansions:      expansions,
	}
	outcomeType := domain.Outcome{Kind: domain.OutcomePlayer, Player: player}
	var lossErr error
	result := opt.UnivariateDescent(univariateDescentConfig(initEstimate), func(value float64) float64 {
		assist = value
		exploration, err := interval.Explore(config, 0, intervals)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		isolated, err := interval.Isolate(domain.AnytimeAssist, outcomeType, exploration.Prospects, exploration.PlayerLookup)
		if err != nil {
			lossErr = err
			return math.MaxFloat64
		}
		return defaultErrorType.Calculate(expectedProb, isolated)
	})
	return result, lossErr
}

// FitAnytimeAssistAll fits every named player's anytime-assist rate in
// anytimeAssist. Grounded on fit.rs's fit_anytime_assist_all.
func FitAnytimeAssistAll(h1Probs, h2Probs interval.BivariateProbs, assistProbs interval.UnivariateProbs, anytimeAssist domain.Offer, nilAllDrawProb, booksum float64, intervals, maxTotalGoals int) ([]PlayerProb, error) {
	homeRate := (h1Probs.Home + h2Probs.Home) / 2
	awayRate := (h1Probs.Away + h2Probs.Away) / 2
	commonRate := (h1Probs.Common + h2Probs.Common) / 2
	rateSum := homeRate + awayRate + commonRate
	homeRatio := (homeRate + commonRate/2) / rateSum * (1 - nilAllDrawProb) * assistProbs.Home
	awayRatio := (awayRate + commonRate/2) / rateSum * (1 - nilAllDrawProb) * assistProbs.Away

	var results []PlayerProb
	for i, outcome := range anytimeAssist.Outcomes {
		if outcome.Kind != domain.OutcomePlayer {
			continue
		}
		player := outcome.Player
		if player.Other {
			return nil, fmt.Errorf("%w: Other is not a valid anytime-assist outcome", domain.ErrInvalidOffer)
		}
		sideRatio := awayRatio
		if player.Side == domain.Home {
			sideRatio = homeRatio
		}
		initEstimate := anytimeAssist.Probs[i] / booksum / sideRatio
		outcome, err := FitAnytimeAssistOne(h1Probs, h2Probs, assistProbs, player, initEstimate, anytimeAssist.Probs[i], intervals, maxTotalGoals)
		if err != nil {
			return nil, err
		}
		results = append(results, PlayerProb{Player: player, Prob: outcome.OptimalValue})
	}
	return results, nil
}

func sideRatios(h1Probs, h2Probs interval.BivariateProbs, nilAllDrawProb float64) (home, away float64) {
	homeRate := (h1Probs.Home + h2Probs.Home) / 2
	awayRate := (h1Probs.Away + h2Probs.Away) / 2
	commonRate := (h1Probs.Common + h2Probs.Common) / 2
	rateSum := homeRate + awayRate + commonRate
	home = (homeRate + commonRate/2) / rateSum * (1 - nilAllDrawProb)
	away = (awayRate + commonRate/2) / rateSum * (1 - nilAllDrawProb)
	return home, away
}

// ComputeError returns the RMS (relative or absolute, per errType) error
// between sample and fitted prices, counted only over finite fitted
// prices. Grounded on fit.rs's compute_error.
func ComputeError(samplePrices, fittedPrices []float64, errType ErrorType) float64 {
	var sum float64
	var counted int
	for i, sp := range samplePrices {
		fp := fittedPrices[i]
		if !math.IsInf(fp, 0) {
			counted++
			sum += errType.Calculate(1/sp, 1/fp)
		}
	}
	return errType.Reverse(sum / float64(counted))
}

// FittingErrors reports a fitted market's summary deviation from its
// sample in both RMSE and RMSRE terms.
type FittingErrors struct {
	RMSE  float64
	RMSRE float64
}
