package fit

import (
	"fmt"
	"math"

	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/opt"
)

// ScoreFitterConfig parameterises ScoreFitter.
type ScoreFitterConfig struct {
	// H1GoalRatio splits the full-time lambdas between halves: the first
	// half gets this fraction, the second gets the rest.
	H1GoalRatio float64
}

// DefaultScoreFitterConfig matches the reference's Default impl.
func DefaultScoreFitterConfig() ScoreFitterConfig {
	return ScoreFitterConfig{H1GoalRatio: 0.425}
}

func (c ScoreFitterConfig) validate() error {
	if c.H1GoalRatio < 0 || c.H1GoalRatio > 1 {
		return fmt.Errorf("%w: H1 goal ratio (%g) outside [0, 1]", domain.ErrInvalidConfig, c.H1GoalRatio)
	}
	return nil
}

// ScoreFitter runs the staged full-time/half-time scoreline bootstrap.
// Grounded on model/score_fitter.rs's ScoreFitter.
type ScoreFitter struct {
	config ScoreFitterConfig
}

// NewScoreFitter validates config and returns a ScoreFitter.
func NewScoreFitter(config ScoreFitterConfig) (*ScoreFitter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &ScoreFitter{config: config}, nil
}

// ScoreFitResult is ScoreFitter.Fit's output: the full-time hypergrid
// search outcome and its bivariate-Poisson lambdas, plus each half's
// derived interval scoring-probability estimates.
type ScoreFitResult struct {
	FullTime  opt.HypergridSearchOutcome
	Lambdas   []float64
	FirstHalf opt.HypergridSearchOutcome
	SecondHalf opt.HypergridSearchOutcome
}

// Fit locates the most balanced total-goals offer for each period, fits
// the full-time scoregrid, then splits its lambdas across both halves by
// H1GoalRatio and fits each half's interval scoring probabilities.
// Grounded on score_fitter.rs's ScoreFitter::fit.
func (s *ScoreFitter) Fit(offers map[domain.OfferKey]domain.Offer, intervals, maxTotalGoalsFull, maxTotalGoalsHalf int) (*ScoreFitResult, error) {
	ftGoals, ok := mostBalancedGoals(offers, domain.FullTime)
	if !ok {
		return nil, fmt.Errorf("%w: total goals (full time)", domain.ErrMissingOffer)
	}
	ftH2H, err := getOffer(offers, domain.OfferKey{Type: domain.HeadToHead, Period: domain.FullTime})
	if err != nil {
		return nil, err
	}
	ftOutcome, lambdas, err := FitScoregridFull(ftH2H, ftGoals, intervals, maxTotalGoalsFull)
	if err != nil {
		return nil, err
	}

	h1Goals, ok := mostBalancedGoals(offers, domain.FirstHalf)
	if !ok {
		return nil, fmt.Errorf("%w: total goals (first half)", domain.ErrMissingOffer)
	}
	h1H2H, err := getOffer(offers, domain.OfferKey{Type: domain.HeadToHead, Period: domain.FirstHalf})
	if err != nil {
		return nil, err
	}

	h2Goals, ok := mostBalancedGoals(offers, domain.SecondHalf)
	if !ok {
		return nil, fmt.Errorf("%w: total goals (second half)", domain.ErrMissingOffer)
	}
	h2H2H, err := getOffer(offers, domain.OfferKey{Type: domain.HeadToHead, Period: domain.SecondHalf})
	if err != nil {
		return nil, err
	}

	h1HomeEstimate := (lambdas[0] + lambdas[2]) * s.config.H1GoalRatio
	h1AwayEstimate := (lambdas[1] + lambdas[2]) * s.config.H1GoalRatio
	h1Outcome, err := FitScoregridHalf(h1HomeEstimate, h1AwayEstimate, []domain.Offer{h1H2H, h1Goals}, intervals, maxTotalGoalsHalf)
	if err != nil {
		return nil, err
	}

	h2HomeEstimate := (lambdas[0] + lambdas[2]) * (1 - s.config.H1GoalRatio)
	h2AwayEstimate := (lambdas[1] + lambdas[2]) * (1 - s.config.H1GoalRatio)
	h2Outcome, err := FitScoregridHalf(h2HomeEstimate, h2AwayEstimate, []domain.Offer{h2H2H, h2Goals}, intervals, maxTotalGoalsHalf)
	if err != nil {
		return nil, err
	}

	return &ScoreFitResult{FullTime: ftOutcome, Lambdas: lambdas, FirstHalf: h1Outcome, SecondHalf: h2Outcome}, nil
}

func getOffer(offers map[domain.OfferKey]domain.Offer, key domain.OfferKey) (domain.Offer, error) {
	offer, ok := offers[key]
	if !ok {
		return domain.Offer{}, fmt.Errorf("%w: %v", domain.ErrMissingOffer, key)
	}
	return offer, nil
}

// mostBalancedGoals picks, among period's total-goals offers, the one
// whose over/under probabilities are closest together — the offer least
// skewed towards one side of its line, and so the most informative anchor
// for the Poisson bootstrap. Adapted from score_fitter.rs's
// most_balanced_goals, which compares quoted prices rather than
// probabilities; domain.Offer carries only fair probabilities here; since
// price is a monotonically decreasing function of probability, comparing
// |prob[0]-prob[1]| ranks offers by the same balance criterion.
func mostBalancedGoals(offers map[domain.OfferKey]domain.Offer, period domain.Period) (domain.Offer, bool) {
	var best domain.Offer
	found := false
	bestDiff := math.MaxFloat64
	for key, offer := range offers {
		if key.Type != domain.TotalGoals || key.Period != period {
			continue
		}
		if len(offer.Probs) < 2 {
			continue
		}
		diff := math.Abs(offer.Probs[0] - offer.Probs[1])
		if diff < bestDiff {
			bestDiff = diff
			best = offer
			found = true
		}
	}
	return best, found
}
