package domain

import "fmt"

// Period is the portion of a match an offer or outcome applies to.
type Period int

const (
	FirstHalf Period = iota
	SecondHalf
	FullTime
)

func (p Period) String() string {
	switch p {
	case FirstHalf:
		return "first_half"
	case SecondHalf:
		return "second_half"
	case FullTime:
		return "full_time"
	default:
		return "unknown_period"
	}
}

// Side identifies which team an outcome or handicap refers to.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// HandicapKind distinguishes a draw-no-bet-style handicap from an Asian
// (win) handicap — the flip rule (home ahead k == away behind k) is
// symmetric for both.
type HandicapKind int

const (
	Ahead HandicapKind = iota
	Behind
	AheadOver
	BehindUnder
)

// Handicap adjusts a side's effective score by k goals before comparison.
type Handicap struct {
	Kind HandicapKind
	K    float64
}

func (h Handicap) String() string {
	switch h.Kind {
	case Ahead:
		return fmt.Sprintf("ahead(%g)", h.K)
	case Behind:
		return fmt.Sprintf("behind(%g)", h.K)
	case AheadOver:
		return fmt.Sprintf("ahead_over(%g)", h.K)
	case BehindUnder:
		return fmt.Sprintf("behind_under(%g)", h.K)
	default:
		return "unknown_handicap"
	}
}

// Flip returns the handicap viewed from the other side: home ahead k is
// equivalent to away behind k, and vice versa.
func (h Handicap) Flip() Handicap {
	switch h.Kind {
	case Ahead:
		return Handicap{Kind: Behind, K: h.K}
	case Behind:
		return Handicap{Kind: Ahead, K: h.K}
	case AheadOver:
		return Handicap{Kind: BehindUnder, K: h.K}
	case BehindUnder:
		return Handicap{Kind: AheadOver, K: h.K}
	default:
		return h
	}
}

// Player identifies a named attacking-side participant, or the per-side
// residual "Other" catch-all that carries the scoring mass not assigned to
// any named player.
type Player struct {
	Side   Side
	Name   string // empty when Other is true
	Other  bool
}

// OtherPlayer returns the residual-mass player for side.
func OtherPlayer(side Side) Player { return Player{Side: side, Other: true} }

func (p Player) String() string {
	if p.Other {
		return fmt.Sprintf("%s:Other", p.Side)
	}
	return fmt.Sprintf("%s:%s", p.Side, p.Name)
}

// OfferType is the closed set of markets the pipeline can price.
type OfferType int

const (
	HeadToHead OfferType = iota
	TotalGoals
	CorrectScore
	FirstGoalscorer
	AnytimeGoalscorer
	AnytimeAssist
	DrawNoBet
	PlayerShotsOnTarget
	AsianHandicap
	SplitHandicap
)

func (t OfferType) String() string {
	switch t {
	case HeadToHead:
		return "head_to_head"
	case TotalGoals:
		return "total_goals"
	case CorrectScore:
		return "correct_score"
	case FirstGoalscorer:
		return "first_goalscorer"
	case AnytimeGoalscorer:
		return "anytime_goalscorer"
	case AnytimeAssist:
		return "anytime_assist"
	case DrawNoBet:
		return "draw_no_bet"
	case PlayerShotsOnTarget:
		return "player_shots_on_target"
	case AsianHandicap:
		return "asian_handicap"
	case SplitHandicap:
		return "split_handicap"
	default:
		return "unknown_offer_type"
	}
}

// OfferKey identifies a specific offer instance: its type plus whatever
// parameters (period, line, handicaps, player) disambiguate it from
// siblings of the same type.
type OfferKey struct {
	Type            OfferType
	Period          Period
	Line            float64 // TotalGoals' Over/Under line
	DrawHandicap    Handicap
	WinHandicap     Handicap
	Player          Player
	HasPlayer       bool
}

// OutcomeKind is the closed set of outcome shapes an Offer's legs take.
type OutcomeKind int

const (
	OutcomeWin OutcomeKind = iota
	OutcomeDraw
	OutcomeSplitWin
	OutcomeOver
	OutcomeUnder
	OutcomeScore
	OutcomePlayer
	OutcomeNone
)

// Outcome is one priced leg of an Offer.
type Outcome struct {
	Kind         OutcomeKind
	Side         Side     // Win, SplitWin
	Handicap     Handicap // Win with a handicap, Draw with a draw handicap
	HasHandicap  bool
	DrawHandicap Handicap // SplitWin
	WinHandicap  Handicap // SplitWin
	Line         float64  // Over, Under
	HomeGoals    uint8    // Score
	AwayGoals    uint8    // Score
	Player       Player   // Player
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeWin:
		if o.HasHandicap {
			return fmt.Sprintf("win(%s, %s)", o.Side, o.Handicap)
		}
		return fmt.Sprintf("win(%s)", o.Side)
	case OutcomeDraw:
		if o.HasHandicap {
			return fmt.Sprintf("draw(%s)", o.Handicap)
		}
		return "draw"
	case OutcomeSplitWin:
		return fmt.Sprintf("split_win(%s, %s, %s)", o.Side, o.DrawHandicap, o.WinHandicap)
	case OutcomeOver:
		return fmt.Sprintf("over(%g)", o.Line)
	case OutcomeUnder:
		return fmt.Sprintf("under(%g)", o.Line)
	case OutcomeScore:
		return fmt.Sprintf("score(%d:%d)", o.HomeGoals, o.AwayGoals)
	case OutcomePlayer:
		return fmt.Sprintf("player(%s)", o.Player)
	case OutcomeNone:
		return "none"
	default:
		return "unknown_outcome"
	}
}

// Offer is a priced market: a tag plus an ordered, unique sequence of
// outcomes and the quoted fair probability of each. Probs is parallel to
// Outcomes; overround/price framing of an Offer lives in the market
// package, which depends on domain rather than the reverse.
type Offer struct {
	Key      OfferKey
	Outcomes []Outcome
	Probs    []float64
}

// Score is the home and away goal tally of a match at some point in time
// (half-time, full-time, or a partial interval-exploration state).
type Score struct {
	Home, Away uint16
}

// Total returns the combined goal count.
func (s Score) Total() int { return int(s.Home) + int(s.Away) }

func (s Score) String() string { return fmt.Sprintf("%d:%d", s.Home, s.Away) }
