// Package selection defines predicates over a simulated or enumerated
// podium: did a given runner finish exactly at a rank, or anywhere within a
// span of ranks. Grounded on original_source/src/selection.rs.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// Runner is a 0-based runner index. Display uses the 1-based "r<N>" form
// racing markets use in conversation.
type Runner int

// RunnerNumber constructs a Runner from a 1-based display number.
func RunnerNumber(number int) (Runner, error) {
	if number == 0 {
		return 0, fmt.Errorf("invalid runner number")
	}
	return Runner(number - 1), nil
}

func (r Runner) Index() int  { return int(r) }
func (r Runner) Number() int { return int(r) + 1 }
func (r Runner) String() string { return "r" + strconv.Itoa(r.Number()) }

func parseRunner(s string) (Runner, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("no characters to parse")
	}
	if s[0] != 'r' {
		return 0, fmt.Errorf("first character must be 'r'")
	}
	number, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, fmt.Errorf("invalid digit found in string")
	}
	return RunnerNumber(number)
}

// Rank is a 0-based finishing-position index. Display uses the 1-based
// "@<N>" form.
type Rank int

// RankNumber constructs a Rank from a 1-based display number.
func RankNumber(number int) (Rank, error) {
	if number == 0 {
		return 0, fmt.Errorf("invalid rank number")
	}
	return Rank(number - 1), nil
}

// FirstRank is the winning position.
const FirstRank Rank = 0

func (r Rank) Index() int  { return int(r) }
func (r Rank) Number() int { return int(r) + 1 }
func (r Rank) String() string { return "@" + strconv.Itoa(r.Number()) }

// Selection is a predicate over a podium slice (podium[rank] == runner).
type Selection struct {
	Runner    Runner
	IsSpan    bool
	RankStart Rank // inclusive, only meaningful when IsSpan
	RankEnd   Rank // inclusive, only meaningful when IsSpan
	Rank      Rank // only meaningful when !IsSpan
}

// Top returns the selection "runner finishes within [1, highestRank]".
func Top(runner Runner, highestRank Rank) Selection {
	return Selection{Runner: runner, IsSpan: true, RankStart: FirstRank, RankEnd: highestRank}
}

// Exact returns the selection "runner finishes exactly at rank".
func Exact(runner Runner, rank Rank) Selection {
	return Selection{Runner: runner, IsSpan: false, Rank: rank}
}

// Matches reports whether podium satisfies the selection.
func (s Selection) Matches(podium []int) bool {
	if s.IsSpan {
		for _, ranked := range podium[s.RankStart.Index() : s.RankEnd.Index()+1] {
			if ranked == s.Runner.Index() {
				return true
			}
		}
		return false
	}
	return podium[s.Rank.Index()] == s.Runner.Index()
}

func (s Selection) String() string {
	if s.IsSpan {
		return fmt.Sprintf("%s in %s~%s", s.Runner, s.RankStart, s.RankEnd)
	}
	return fmt.Sprintf("%s in %s", s.Runner, s.Rank)
}

// Validate checks the selection's runner index is in range, has a non-zero
// finishing probability, and that its ranks fall within allowedRanks
// [allowedLo, allowedHi] (both inclusive, 0-based).
func (s Selection) Validate(allowedLo, allowedHi int, probs []float64) error {
	if s.Runner.Index() < 0 || s.Runner.Index() > len(probs)-1 {
		return fmt.Errorf("%w: invalid runner %s", domain.ErrInvalidSelection, s.Runner)
	}
	if probs[s.Runner.Index()] == 0 {
		return fmt.Errorf("%w: %s has a zero finishing probability", domain.ErrInvalidSelection, s.Runner)
	}
	if s.IsSpan {
		if s.RankStart.Index() < allowedLo || s.RankEnd.Index() > allowedHi {
			return fmt.Errorf("%w: invalid finishing ranks %s-%s", domain.ErrInvalidSelection, s.RankStart, s.RankEnd)
		}
		return nil
	}
	if s.Rank.Index() < allowedLo || s.Rank.Index() > allowedHi {
		return fmt.Errorf("%w: invalid finishing rank %s", domain.ErrInvalidSelection, s.Rank)
	}
	return nil
}

// Selections is a conjunction of Selection predicates: a podium matches only
// if every element matches.
type Selections []Selection

// Matches reports whether podium satisfies every selection.
func (s Selections) Matches(podium []int) bool {
	for _, sel := range s {
		if !sel.Matches(podium) {
			return false
		}
	}
	return true
}

// ParseSelections parses the "/"-separated, "+"-co-ranked grammar used by
// exotic bet descriptions, e.g. "r7/r8/r9" (win/quinella-top2/trifecta-top3)
// or "r7//r8+r9" (r7 to win, r8 and r9 both to place top-3).
func ParseSelections(s string) (Selections, error) {
	frags := strings.Split(s, "/")
	var selections Selections
	for rank, frag := range frags {
		if frag == "" {
			continue
		}
		for _, runnerStr := range strings.Split(frag, "+") {
			runner, err := parseRunner(runnerStr)
			if err != nil {
				return nil, err
			}
			selections = append(selections, Top(runner, Rank(rank)))
		}
	}
	return selections, nil
}

// TopNMatrix builds a podiumPlaces x numRunners matrix of Selections, where
// cell (rank, runner) holds the single-element selection "runner finishes
// within the top (rank+1) places" — the full grid of top-N markets a racing
// field can be queried against.
func TopNMatrix(podiumPlaces, numRunners int) [][]Selections {
	scenarios := make([][]Selections, podiumPlaces)
	for rank := 0; rank < podiumPlaces; rank++ {
		scenarios[rank] = make([]Selections, numRunners)
		for runner := 0; runner < numRunners; runner++ {
			scenarios[rank][runner] = Selections{Top(Runner(runner), Rank(rank))}
		}
	}
	return scenarios
}
