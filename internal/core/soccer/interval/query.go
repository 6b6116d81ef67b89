package interval

import (
	"fmt"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// Requirements returns the minimal Expansions an Explore call needs to
// answer Isolate queries for offerType. Grounded on
// original_source/brumby-soccer/src/interval/query/anytime_assist.rs's
// requirements(), generalised to the other two per-player offer types
// fit.rs drives through the same isolate/requirements pair.
func Requirements(offerType domain.OfferType) (Expansions, error) {
	switch offerType {
	case domain.FirstGoalscorer:
		return Expansions{FTScore: true, FirstGoalscorer: true}, nil
	case domain.AnytimeGoalscorer:
		return Expansions{MaxPlayerGoals: 1}, nil
	case domain.AnytimeAssist:
		return Expansions{MaxPlayerAssists: 1}, nil
	default:
		return Expansions{}, fmt.Errorf("%w: no query requirements for offer type %s", domain.ErrInvalidOffer, offerType)
	}
}

// Isolate sums the probability mass of every prospect satisfying outcome
// under offerType, given the player lookup table an Exploration produced.
// Grounded on query/anytime_assist.rs's filter(), generalised across
// FirstGoalscorer/AnytimeGoalscorer/AnytimeAssist.
func Isolate(offerType domain.OfferType, outcome domain.Outcome, prospects Prospects, playerLookup []domain.Player) (float64, error) {
	switch offerType {
	case domain.FirstGoalscorer:
		target := indexOfPlayer(playerLookup, outcome.Player)
		var sum float64
		for _, e := range prospects {
			if e.Prospect.FirstScorer != nil && *e.Prospect.FirstScorer == target {
				sum += e.Prob
			}
		}
		return sum, nil
	case domain.AnytimeGoalscorer:
		target := indexOfPlayer(playerLookup, outcome.Player)
		var sum float64
		for _, e := range prospects {
			if e.Prospect.Stats[target].Goals() > 0 {
				sum += e.Prob
			}
		}
		return sum, nil
	case domain.AnytimeAssist:
		target := indexOfPlayer(playerLookup, outcome.Player)
		var sum float64
		for _, e := range prospects {
			if e.Prospect.Stats[target].Assists > 0 {
				sum += e.Prob
			}
		}
		return sum, nil
	default:
		return 0, fmt.Errorf("%w: no isolate query for offer type %s", domain.ErrInvalidOffer, offerType)
	}
}

func indexOfPlayer(lookup []domain.Player, player domain.Player) int {
	for i, p := range lookup {
		if p == player {
			return i
		}
	}
	return -1
}
