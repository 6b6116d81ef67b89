// Command fit runs either the racing or the soccer fitter against a sample
// of quoted offers and reports the fitted parameters alongside their
// residual error, instead of deriving final offers the way cmd/derive does.
// Grounded on the teacher's cmd/<name>/main.go one-binary-per-concern
// layout; the racing/soccer split mirrors internal/core/racing vs
// internal/core/soccer/fit.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/charleschow/exoticprice/internal/config"
	"github.com/charleschow/exoticprice/internal/core/domain"
	"github.com/charleschow/exoticprice/internal/core/fitstat"
	"github.com/charleschow/exoticprice/internal/core/market"
	"github.com/charleschow/exoticprice/internal/core/racing"
	soccerfit "github.com/charleschow/exoticprice/internal/core/soccer/fit"
	"github.com/charleschow/exoticprice/internal/core/soccer/scoregrid"
	"github.com/charleschow/exoticprice/internal/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		telemetry.Errorf("Usage: fit <racing|soccer> -input <file> [-out <file>]")
		os.Exit(2)
	}
	mode := os.Args[1]
	flagSet := flag.NewFlagSet(mode, flag.ExitOnError)
	inputPath := flagSet.String("input", "", "path to a sample JSON file")
	coeffPath := flagSet.String("coefficients", "", "path to a racing.Coefficients bundle (racing mode only)")
	outPath := flagSet.String("out", "", "write the fit report here instead of stdout")
	flagSet.Parse(os.Args[2:])

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if *inputPath == "" {
		telemetry.Errorf("-input is required")
		os.Exit(2)
	}

	var (
		report any
		err    error
	)
	switch mode {
	case "racing":
		report, err = runRacingFit(cfg, *inputPath, *coeffPath)
	case "soccer":
		report, err = runSoccerFit(cfg, *inputPath)
	default:
		telemetry.Errorf("unknown mode %q, expected racing or soccer", mode)
		os.Exit(2)
	}
	if err != nil {
		telemetry.Errorf("Fit: %v", err)
		os.Exit(1)
	}

	if err := writeJSON(*outPath, report); err != nil {
		telemetry.Errorf("Write report: %v", err)
		os.Exit(1)
	}
}

// --- racing mode ------------------------------------------------------

type racingFitRequest struct {
	WinPrices       []float64 `json:"win_prices"`
	PlacePrices     []float64 `json:"place_prices"`
	OverroundMethod string    `json:"overround_method"`
	PlacesPaying    int       `json:"places_paying"`
	Dilatives       []float64 `json:"dilatives"`
}

type racingFitReport struct {
	RunID       string  `json:"run_id"`
	Steps       int     `json:"steps"`
	OptimalMSRE float64 `json:"optimal_msre"`
	Elapsed     string  `json:"elapsed"`
	PriceRMSE   float64 `json:"price_rmse"`
	PriceRMSRE  float64 `json:"price_rmsre"`
}

func runRacingFit(cfg *config.Config, inputPath, coeffPath string) (*racingFitReport, error) {
	runID := uuid.NewString()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	var req racingFitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", inputPath, err)
	}
	if len(req.Dilatives) == 0 {
		// Matches cmd/derive's applyDefaults: fitIndividual's adjustment
		// range is hardcoded to podium ranks 1..3, so the podium always
		// has 4 rows regardless of how many places are actually paid.
		req.Dilatives = []float64{0, 0.12, 0.18, 0.22}
	}
	if req.PlacesPaying == 0 {
		req.PlacesPaying = 3
	}
	if coeffPath == "" {
		engineCfg, err := config.LoadEngineConfig(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("engine config: %w", err)
		}
		coeffPath = engineCfg.CoefficientsPath
	}
	coeffData, err := os.ReadFile(coeffPath)
	if err != nil {
		return nil, fmt.Errorf("read coefficients %s: %w", coeffPath, err)
	}
	var coeffs racing.Coefficients
	if err := json.Unmarshal(coeffData, &coeffs); err != nil {
		return nil, fmt.Errorf("parse coefficients %s: %w", coeffPath, err)
	}

	var method market.Method
	switch req.OverroundMethod {
	case "", "multiplicative":
		method = market.Multiplicative
	case "power":
		method = market.Power
	case "odds_ratio":
		method = market.OddsRatio
	default:
		return nil, fmt.Errorf("unknown overround method %q", req.OverroundMethod)
	}

	winMarket, err := market.Fit(method, req.WinPrices, 1.0)
	if err != nil {
		return nil, fmt.Errorf("win market: %w", err)
	}
	placeMarket, err := market.Fit(method, req.PlacePrices, float64(req.PlacesPaying))
	if err != nil {
		return nil, fmt.Errorf("place market: %w", err)
	}

	options := racing.FitOptions{MCIterations: cfg.Trials, IndividualTargetMSRE: 1e-6, Seed: cfg.Seed}
	placeRank := req.PlacesPaying - 1
	outcome, err := racing.FitPlace(options, winMarket, placeMarket, req.Dilatives, placeRank, coeffs)
	if err != nil {
		return nil, fmt.Errorf("fit place: %w", err)
	}
	telemetry.Infof("[%s] racing fit converged  steps=%d  msre=%g", runID, outcome.Stats.Steps, outcome.Stats.OptimalMSRE)

	fittedProbs := outcome.FittedProbs.Row(placeRank)
	fittedMarket, err := market.Frame(placeMarket.Overround, fittedProbs, 1.01, 1000)
	if err != nil {
		return nil, fmt.Errorf("frame fitted market: %w", err)
	}
	priceErrors, err := fitstat.ComputePriceErrors(placeMarket.Prices, fittedMarket.Prices)
	if err != nil {
		return nil, fmt.Errorf("price errors: %w", err)
	}

	return &racingFitReport{
		RunID:       runID,
		Steps:       outcome.Stats.Steps,
		OptimalMSRE: outcome.Stats.OptimalMSRE,
		Elapsed:     outcome.Stats.Elapsed.String(),
		PriceRMSE:   priceErrors.RMSE,
		PriceRMSRE:  priceErrors.RMSRE,
	}, nil
}

// --- soccer mode --------------------------------------------------------

type soccerOfferEntry struct {
	Type     string           `json:"type"`
	Period   string           `json:"period"`
	Line     float64          `json:"line"`
	Outcomes []string         `json:"outcomes"`
	Probs    []float64        `json:"probs"`
}

type soccerFitRequest struct {
	Intervals         int                `json:"intervals"`
	MaxTotalGoalsFull int                `json:"max_total_goals_full"`
	MaxTotalGoalsHalf int                `json:"max_total_goals_half"`
	H1GoalRatio       float64            `json:"h1_goal_ratio"`
	Offers            []soccerOfferEntry `json:"offers"`
}

type soccerFitReport struct {
	RunID       string    `json:"run_id"`
	Lambdas     []float64 `json:"lambdas"` // [home, away, common]
	FullTimeMSRE float64  `json:"full_time_msre"`
	H2HRMSE     float64   `json:"h2h_rmse"`
	H2HRMSRE    float64   `json:"h2h_rmsre"`
}

func runSoccerFit(cfg *config.Config, inputPath string) (*soccerFitReport, error) {
	runID := uuid.NewString()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	var req soccerFitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", inputPath, err)
	}
	if req.Intervals == 0 {
		req.Intervals = 90
	}
	if req.MaxTotalGoalsFull == 0 {
		req.MaxTotalGoalsFull = 8
	}
	if req.MaxTotalGoalsHalf == 0 {
		req.MaxTotalGoalsHalf = 5
	}

	offers := make(map[domain.OfferKey]domain.Offer, len(req.Offers))
	var ftH2HProbs []float64
	for _, e := range req.Offers {
		offerType, err := parseOfferType(e.Type)
		if err != nil {
			return nil, err
		}
		period, err := parsePeriod(e.Period)
		if err != nil {
			return nil, err
		}
		outcomes := make([]domain.Outcome, len(e.Outcomes))
		for i, name := range e.Outcomes {
			outcomes[i], err = parseOutcome(name, e.Line)
			if err != nil {
				return nil, err
			}
		}
		key := domain.OfferKey{Type: offerType, Period: period, Line: e.Line}
		offers[key] = domain.Offer{Key: key, Outcomes: outcomes, Probs: e.Probs}
		if offerType == domain.HeadToHead && period == domain.FullTime {
			ftH2HProbs = e.Probs
		}
	}

	fitterConfig := racingConfigOr(req.H1GoalRatio)
	fitter, err := soccerfit.NewScoreFitter(fitterConfig)
	if err != nil {
		return nil, fmt.Errorf("score fitter config: %w", err)
	}
	result, err := fitter.Fit(offers, req.Intervals, req.MaxTotalGoalsFull, req.MaxTotalGoalsHalf)
	if err != nil {
		return nil, fmt.Errorf("score fit: %w", err)
	}
	telemetry.Infof("[%s] soccer fit converged  lambdas=%v  residual=%g", runID, result.Lambdas, result.FullTime.OptimalResidual)

	report := &soccerFitReport{
		RunID:        runID,
		Lambdas:      result.Lambdas,
		FullTimeMSRE: result.FullTime.OptimalResidual,
	}

	if len(ftH2HProbs) == 3 && len(result.Lambdas) == 3 {
		grid := scoregrid.FromBivariatePoisson(result.Lambdas[0], result.Lambdas[1], result.Lambdas[2], req.MaxTotalGoalsFull)
		home, err := scoregrid.Gather(grid, scoregrid.GatherWin, domain.Home, 0, domain.Score{})
		if err != nil {
			return nil, err
		}
		draw, err := scoregrid.Gather(grid, scoregrid.GatherDraw, domain.Home, 0, domain.Score{})
		if err != nil {
			return nil, err
		}
		away, err := scoregrid.Gather(grid, scoregrid.GatherWin, domain.Away, 0, domain.Score{})
		if err != nil {
			return nil, err
		}
		priceErrors, err := fitstat.ComputePriceErrors(ftH2HProbs, []float64{home, draw, away})
		if err != nil {
			return nil, err
		}
		report.H2HRMSE = priceErrors.RMSE
		report.H2HRMSRE = priceErrors.RMSRE
	}

	return report, nil
}

func racingConfigOr(h1GoalRatio float64) soccerfit.ScoreFitterConfig {
	if h1GoalRatio == 0 {
		return soccerfit.DefaultScoreFitterConfig()
	}
	return soccerfit.ScoreFitterConfig{H1GoalRatio: h1GoalRatio}
}

func parseOfferType(s string) (domain.OfferType, error) {
	for t := domain.HeadToHead; t <= domain.SplitHandicap; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown offer type %q", domain.ErrInvalidOffer, s)
}

func parsePeriod(s string) (domain.Period, error) {
	for p := domain.FirstHalf; p <= domain.FullTime; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown period %q", domain.ErrInvalidOffer, s)
}

func parseOutcome(name string, line float64) (domain.Outcome, error) {
	switch name {
	case "win_home":
		return domain.Outcome{Kind: domain.OutcomeWin, Side: domain.Home}, nil
	case "win_away":
		return domain.Outcome{Kind: domain.OutcomeWin, Side: domain.Away}, nil
	case "draw":
		return domain.Outcome{Kind: domain.OutcomeDraw}, nil
	case "over":
		return domain.Outcome{Kind: domain.OutcomeOver, Line: line}, nil
	case "under":
		return domain.Outcome{Kind: domain.OutcomeUnder, Line: line}, nil
	default:
		return domain.Outcome{}, fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidOffer, name)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
