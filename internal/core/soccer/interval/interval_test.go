package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// TestExplore_TwoEvenIntervalsReachNineScoreStates exercises a match split
// into two intervals with identical home/away/common goal-event rates of
// 0.25 each and no tracked players: convolving the two intervals' four
// equally-likely (0,0)/(1,0)/(0,1)/(1,1) outcomes yields 9 reachable
// full-time scorelines whose probabilities sum to 1.
func TestExplore_TwoEvenIntervalsReachNineScoreStates(t *testing.T) {
	rates := BivariateProbs{Home: 0.25, Away: 0.25, Common: 0.25}
	config := Config{
		Intervals: 2,
		TeamProbs: TeamProbs{H1Goals: rates, H2Goals: rates},
		PruneThresholds: DefaultPruneThresholds(),
		Expansions:      Expansions{FTScore: true},
	}

	exploration, err := Explore(config, 0, config.Intervals)
	require.NoError(t, err)

	assert.Len(t, exploration.Prospects, 9)
	var total float64
	for _, e := range exploration.Prospects {
		total += e.Prob
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.0, exploration.Pruned, 1e-9)
}

// TestExplore_FirstGoalscorerIsolation exercises a single-interval match (so
// the half-selection quirk always routes through H2Goals) with one named
// home player, Alice, scoring at rate 0.25 against home/away/common
// interval rates of 0.25 each. P(first goalscorer is Alice) and P(no
// goalscorer) both follow from full branch enumeration.
func TestExplore_FirstGoalscorerIsolation(t *testing.T) {
	rates := BivariateProbs{Home: 0.25, Away: 0.25, Common: 0.25}
	alice := domain.Player{Side: domain.Home, Name: "Alice"}
	goalProb := 0.25

	config := Config{
		Intervals:       1,
		TeamProbs:       TeamProbs{H1Goals: rates, H2Goals: rates},
		Players:         []domain.Player{alice},
		PlayerProbs:     []PlayerProbs{{Goal: &goalProb}},
		PruneThresholds: DefaultPruneThresholds(),
		Expansions:      Expansions{FTScore: true, FirstGoalscorer: true},
	}

	exploration, err := Explore(config, 0, config.Intervals)
	require.NoError(t, err)

	aliceProb, err := Isolate(domain.FirstGoalscorer, domain.Outcome{Player: alice}, exploration.Prospects, exploration.PlayerLookup)
	require.NoError(t, err)
	assert.InDelta(t, 0.09375, aliceProb, 1e-9)

	var noneProb float64
	for _, e := range exploration.Prospects {
		if e.Prospect.FirstScorer == nil {
			noneProb += e.Prob
		}
	}
	assert.InDelta(t, 0.25, noneProb, 1e-9)
}

// TestExplore_AllZeroRatesYieldsSingleScorelessProspect exercises the
// boundary case where every per-interval scoring probability is zero: the
// only reachable prospect is 0:0 with no first scorer, at probability 1.
func TestExplore_AllZeroRatesYieldsSingleScorelessProspect(t *testing.T) {
	rates := BivariateProbs{}
	config := Config{
		Intervals:       1,
		TeamProbs:       TeamProbs{H1Goals: rates, H2Goals: rates},
		PruneThresholds: DefaultPruneThresholds(),
		Expansions:      Expansions{FTScore: true},
	}

	exploration, err := Explore(config, 0, config.Intervals)
	require.NoError(t, err)

	require.Len(t, exploration.Prospects, 1)
	for _, e := range exploration.Prospects {
		assert.Equal(t, domain.Score{}, e.Prospect.FTScore)
		assert.Nil(t, e.Prospect.FirstScorer)
		assert.InDelta(t, 1.0, e.Prob, 1e-9)
	}
}
