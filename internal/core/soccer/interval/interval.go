// Package interval explores the space of in-match goal-scoring prospects
// interval by interval, tracking which player scored and assisted each goal
// and pruning low-probability branches. Grounded on
// original_source/brumby-soccer/src/interval.rs.
package interval

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// PlayerStats accumulates one player's tracked contributions across the
// explored intervals.
type PlayerStats struct {
	H1Goals int
	H2Goals int
	Assists int
}

func (s PlayerStats) Goals() int { return s.H1Goals + s.H2Goals }

// Prospect is one fully-specified path through the interval state machine:
// the half-time and full-time scorelines, each tracked player's stats, and
// the index (into an Exploration's PlayerLookup) of whoever scored first.
type Prospect struct {
	HTScore     domain.Score
	FTScore     domain.Score
	Stats       []PlayerStats
	FirstScorer *int
}

func (p Prospect) clone() Prospect {
	stats := make([]PlayerStats, len(p.Stats))
	copy(stats, p.Stats)
	fs := p.FirstScorer
	if fs != nil {
		v := *fs
		fs = &v
	}
	return Prospect{HTScore: p.HTScore, FTScore: p.FTScore, Stats: stats, FirstScorer: fs}
}

// key canonicalises a Prospect into a string usable as a map key, since Go
// maps cannot key on a struct containing a slice. This stands in for the
// reference's open-addressed hash table keyed by the prospect tuple; a
// built-in map with a derived string key gives the same dedup behaviour
// without hand-rolling a hash table.
func (p Prospect) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d|%d:%d|", p.HTScore.Home, p.HTScore.Away, p.FTScore.Home, p.FTScore.Away)
	for _, s := range p.Stats {
		fmt.Fprintf(&b, "%d,%d,%d;", s.H1Goals, s.H2Goals, s.Assists)
	}
	if p.FirstScorer != nil {
		fmt.Fprintf(&b, "fs=%d", *p.FirstScorer)
	} else {
		b.WriteString("fs=-")
	}
	return b.String()
}

type prospectEntry struct {
	Prospect Prospect
	Prob     float64
}

// Prospects maps each distinct Prospect (by value) to its accumulated
// probability mass.
type Prospects map[string]*prospectEntry

func newProspects() Prospects { return make(Prospects) }

func (ps Prospects) add(p Prospect, prob float64) {
	if prob <= 0 {
		return
	}
	k := p.key()
	if e, ok := ps[k]; ok {
		e.Prob += prob
		return
	}
	ps[k] = &prospectEntry{Prospect: p, Prob: prob}
}

// Entries returns the accumulated prospects sorted by descending
// probability, for deterministic iteration by callers.
func (ps Prospects) Entries() []prospectEntry {
	out := make([]prospectEntry, 0, len(ps))
	for _, e := range ps {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prob > out[j].Prob })
	return out
}

// UnivariateProbs is a single scalar scoring-event rate per side.
type UnivariateProbs struct {
	Home, Away float64
}

// BivariateProbs is a home/away/common-cause scoring-event rate triple, the
// shape the bivariate-Poisson goal model needs for one half.
type BivariateProbs struct {
	Home, Away, Common float64
}

// TeamProbs bundles the per-half goal-event rates and the assist rate used
// throughout an exploration.
type TeamProbs struct {
	H1Goals BivariateProbs
	H2Goals BivariateProbs
	Assists UnivariateProbs
}

// PlayerProbs is one tracked player's goalscoring and assisting rate,
// either of which may be absent (nil) if that player is not modelled for
// that dimension.
type PlayerProbs struct {
	Goal   *float64
	Assist *float64
}

// Expansions controls which dimensions of state Explore tracks. Every
// dimension left false collapses its contribution to a single unlabelled
// branch, trading fidelity for a far smaller Prospects map.
type Expansions struct {
	HTScore              bool
	FTScore              bool
	MaxPlayerGoals        int
	PlayerSplitGoalStats bool
	MaxPlayerAssists      int
	FirstGoalscorer      bool
}

// Validate checks internal consistency: first-goalscorer tracking implies
// FTScore tracking (without it there is nothing to anchor "first" against).
func (e Expansions) Validate() error {
	if e.FirstGoalscorer && !e.FTScore {
		return fmt.Errorf("%w: FirstGoalscorer requires FTScore", domain.ErrInvalidConfig)
	}
	if e.MaxPlayerGoals < 0 || e.MaxPlayerAssists < 0 {
		return fmt.Errorf("%w: player stat caps must be non-negative", domain.ErrInvalidConfig)
	}
	return nil
}

// RequiresScoreProbs reports whether any goal-scoring dimension is tracked.
func (e Expansions) RequiresScoreProbs() bool {
	return e.HTScore || e.FTScore || e.MaxPlayerGoals > 0 || e.FirstGoalscorer
}

// PruneThresholds bounds the branching factor: prospects whose probability
// mass falls under MinProb are folded into the pruned-mass accumulator
// instead of being expanded further, and a scoring branch that would take
// the running goal total past MaxTotalGoals has its mass folded there too
// (the prospect's no-goal branch still carries forward).
type PruneThresholds struct {
	MaxTotalGoals int
	MinProb       float64
}

// DefaultPruneThresholds performs no pruning at all.
func DefaultPruneThresholds() PruneThresholds {
	return PruneThresholds{MaxTotalGoals: math.MaxInt32, MinProb: 0}
}

// Config parameterises one Explore call: the number of equal intervals the
// match is divided into, the team- and player-level scoring rates, pruning
// behaviour, and which state dimensions to expand.
type Config struct {
	Intervals       int
	TeamProbs       TeamProbs
	Players         []domain.Player
	PlayerProbs     []PlayerProbs // parallel to Players
	PruneThresholds PruneThresholds
	Expansions      Expansions
}

// Exploration is Explore's result: the player lookup table (named players
// plus the two residual Other slots, one per side), the surviving
// Prospects and their probabilities, and the probability mass pruned away.
type Exploration struct {
	PlayerLookup []domain.Player
	Prospects    Prospects
	Pruned       float64
}

type partial struct {
	homeScorer   *int
	awayScorer   *int
	homeAssister *int
	awayAssister *int
	firstSide    *domain.Side
	prob         float64
}

// Explore runs the interval state machine over intervals
// [includeLo, includeHi), accumulating Prospects and their probabilities.
// Grounded on interval.rs's explore: each interval branches into neither
// team scoring, the home side scoring, the away side scoring, or (when the
// interval's common-cause rate is non-zero) both simultaneously, each
// scoring branch further splitting over which named player (or the side's
// Other residual) scored and who, if anyone, assisted.
func Explore(config Config, includeLo, includeHi int) (*Exploration, error) {
	if err := config.Expansions.Validate(); err != nil {
		return nil, err
	}
	if len(config.Players) != len(config.PlayerProbs) {
		return nil, fmt.Errorf("%w: Players and PlayerProbs must be parallel", domain.ErrInvalidConfig)
	}

	numPlayers := len(config.Players)
	playerLookup := make([]domain.Player, numPlayers, numPlayers+2)
	copy(playerLookup, config.Players)
	homeOtherIndex := len(playerLookup)
	playerLookup = append(playerLookup, domain.OtherPlayer(domain.Home))
	awayOtherIndex := len(playerLookup)
	playerLookup = append(playerLookup, domain.OtherPlayer(domain.Away))

	var homeScorers, awayScorers, homeAssisters, awayAssisters []ScorerProb
	var homeGoalMass, awayGoalMass float64
	for i, player := range config.Players {
		probs := config.PlayerProbs[i]
		switch player.Side {
		case domain.Home:
			if probs.Goal != nil {
				homeGoalMass += *probs.Goal
				homeScorers = append(homeScorers, ScorerProb{Index: i, Prob: *probs.Goal})
			}
			if probs.Assist != nil {
				homeAssisters = append(homeAssisters, ScorerProb{Index: i, Prob: *probs.Assist})
			}
		case domain.Away:
			if probs.Goal != nil {
				awayGoalMass += *probs.Goal
				awayScorers = append(awayScorers, ScorerProb{Index: i, Prob: *probs.Goal})
			}
			if probs.Assist != nil {
				awayAssisters = append(awayAssisters, ScorerProb{Index: i, Prob: *probs.Assist})
			}
		}
	}
	homeScorers = append(homeScorers, ScorerProb{Index: homeOtherIndex, Prob: math.Max(0, 1-homeGoalMass)})
	awayScorers = append(awayScorers, ScorerProb{Index: awayOtherIndex, Prob: math.Max(0, 1-awayGoalMass)})
	homeAssisters = append(homeAssisters, ScorerProb{Index: homeOtherIndex, Prob: math.NaN()})
	awayAssisters = append(awayAssisters, ScorerProb{Index: awayOtherIndex, Prob: math.NaN()})

	current := newProspects()
	current.add(Prospect{Stats: make([]PlayerStats, numPlayers+2)}, 1.0)
	pruned := 0.0
	half := config.Intervals / 2

	for intervalIdx := includeLo; intervalIdx < includeHi; intervalIdx++ {
		period := domain.FirstHalf
		rates := config.TeamProbs.H1Goals
		if intervalIdx >= half {
			period = domain.SecondHalf
			rates = config.TeamProbs.H2Goals
		}
		neitherProb := 1.0 - rates.Home - rates.Away - rates.Common
		next := newProspects()

		for _, entry := range current {
			prospect, prob := entry.Prospect, entry.Prob
			if prob < config.PruneThresholds.MinProb {
				pruned += prob
				continue
			}

			merge(config.Expansions, period, prospect, prob, partial{prob: neitherProb}, next)

			if prospect.FTScore.Total() < config.PruneThresholds.MaxTotalGoals {
				for _, hs := range homeScorers {
					for _, opt := range assistOptions(config.TeamProbs.Assists.Home, homeAssisters, hs.Index) {
						side := domain.Home
						merge(config.Expansions, period, prospect, prob, partial{
							homeScorer: intPtr(hs.Index), homeAssister: opt.Assister,
							firstSide: &side, prob: rates.Home * hs.Prob * opt.Prob,
						}, next)
					}
				}
				for _, as := range awayScorers {
					for _, opt := range assistOptions(config.TeamProbs.Assists.Away, awayAssisters, as.Index) {
						side := domain.Away
						merge(config.Expansions, period, prospect, prob, partial{
							awayScorer: intPtr(as.Index), awayAssister: opt.Assister,
							firstSide: &side, prob: rates.Away * as.Prob * opt.Prob,
						}, next)
					}
				}
			} else {
				pruned += prob * (rates.Home + rates.Away)
			}

			if prospect.FTScore.Total()+1 < config.PruneThresholds.MaxTotalGoals && rates.Common > 0 {
				for _, hs := range homeScorers {
					for _, as := range awayScorers {
						for _, hOpt := range assistOptions(config.TeamProbs.Assists.Home, homeAssisters, hs.Index) {
							for _, aOpt := range assistOptions(config.TeamProbs.Assists.Away, awayAssisters, as.Index) {
								for _, firstSide := range [2]domain.Side{domain.Home, domain.Away} {
									firstSide := firstSide
									merge(config.Expansions, period, prospect, prob, partial{
										homeScorer: intPtr(hs.Index), awayScorer: intPtr(as.Index),
										homeAssister: hOpt.Assister, awayAssister: aOpt.Assister,
										firstSide: &firstSide,
										prob:      rates.Common * 0.5 * hs.Prob * as.Prob * hOpt.Prob * aOpt.Prob,
									}, next)
								}
							}
						}
					}
				}
			} else if rates.Common > 0 {
				pruned += prob * rates.Common
			}
		}
		current = next
	}

	return &Exploration{PlayerLookup: playerLookup, Prospects: current, Pruned: pruned}, nil
}

func intPtr(v int) *int { return &v }

// merge folds one partial transition into prospect and inserts the result
// (weighted by currentProb*partial.prob) into next. Grounded on
// interval.rs's Prospect::add_assign-style merge step.
func merge(expansions Expansions, period domain.Period, current Prospect, currentProb float64, part partial, next Prospects) {
	mergedProb := currentProb * part.prob
	if mergedProb <= 0 {
		return
	}
	merged := current.clone()

	applyGoal := func(scorer *int, firstSide *domain.Side, wantSide domain.Side) {
		if scorer == nil {
			return
		}
		player := *scorer
		stat := &merged.Stats[player]
		if expansions.PlayerSplitGoalStats {
			if period == domain.FirstHalf {
				if stat.H1Goals < expansions.MaxPlayerGoals {
					stat.H1Goals++
				}
			} else if stat.H2Goals < expansions.MaxPlayerGoals {
				stat.H2Goals++
			}
		} else if stat.H2Goals < expansions.MaxPlayerGoals {
			stat.H2Goals++
		}
		if wantSide == domain.Home {
			merged.FTScore.Home++
			if expansions.HTScore && period == domain.FirstHalf {
				merged.HTScore.Home++
			}
		} else {
			merged.FTScore.Away++
			if expansions.HTScore && period == domain.FirstHalf {
				merged.HTScore.Away++
			}
		}
		if expansions.FirstGoalscorer && merged.FirstScorer == nil && firstSide != nil && *firstSide == wantSide {
			merged.FirstScorer = intPtr(player)
		}
	}
	applyGoal(part.homeScorer, part.firstSide, domain.Home)
	applyGoal(part.awayScorer, part.firstSide, domain.Away)

	if part.homeAssister != nil {
		stat := &merged.Stats[*part.homeAssister]
		if stat.Assists < expansions.MaxPlayerAssists {
			stat.Assists++
		}
	}
	if part.awayAssister != nil {
		stat := &merged.Stats[*part.awayAssister]
		if stat.Assists < expansions.MaxPlayerAssists {
			stat.Assists++
		}
	}

	next.add(merged, mergedProb)
}
