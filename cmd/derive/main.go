// Command derive runs the racing derivation pipeline end to end: it loads a
// win market and a single place market from a JSON sample, seeds the
// rank-conditional probability matrix from a coefficient bundle, refines it
// against the place market's quoted prices, then simulates and reframes the
// whole podium into final per-rank markets. Grounded on the teacher's
// cmd/<name>/main.go one-binary-per-concern layout (cmd/soccer/main.go,
// cmd/hockey/main.go), repointed from a long-running event loop to a
// one-shot (or -serve, request-coalescing) derivation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/charleschow/exoticprice/internal/config"
	"github.com/charleschow/exoticprice/internal/core/market"
	"github.com/charleschow/exoticprice/internal/core/racing"
	"github.com/charleschow/exoticprice/internal/telemetry"
)

// deriveRequest is the one-shot JSON sample cmd/derive consumes: a win
// market's decimal prices, one place market's decimal prices (quoted for
// placesPaying places), the overround model both markets share, and the
// dilative exponents seeding the initial rank-conditional guess before the
// coefficient bundle's models take over ranks 1..N-1.
type deriveRequest struct {
	WinPrices      []float64 `json:"win_prices"`
	PlacePrices    []float64 `json:"place_prices"`
	OverroundMethod string   `json:"overround_method"`
	PlacesPaying   int       `json:"places_paying"`
	Dilatives      []float64 `json:"dilatives"`
	PriceLo        float64   `json:"price_lo"`
	PriceHi        float64   `json:"price_hi"`
}

type deriveReport struct {
	RunID       string      `json:"run_id"`
	Steps       int         `json:"steps"`
	OptimalMSRE float64     `json:"optimal_msre"`
	Elapsed     string      `json:"elapsed"`
	Markets     []marketDTO `json:"markets"`
}

type marketDTO struct {
	Rank      int       `json:"rank"`
	Prices    []float64 `json:"prices"`
	Overround float64   `json:"overround"`
}

func main() {
	var (
		inputPath  = flag.String("input", "", "path to a deriveRequest JSON sample")
		coeffPath  = flag.String("coefficients", "", "path to a racing.Coefficients JSON bundle (overrides the engine config default)")
		outPath    = flag.String("out", "", "write the derive report here instead of stdout")
		serveAddr  = flag.String("serve", "", "if set, serve POST /derive on this address instead of running once")
	)
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	engineCfg, err := config.LoadEngineConfig(cfg.ConfigPath)
	if err != nil {
		telemetry.Errorf("Engine config: %v", err)
		os.Exit(1)
	}
	if *coeffPath != "" {
		engineCfg.CoefficientsPath = *coeffPath
	}

	coeffs, err := loadCoefficients(engineCfg.CoefficientsPath)
	if err != nil {
		telemetry.Errorf("Coefficient bundle: %v", err)
		os.Exit(1)
	}

	if *serveAddr != "" {
		runServer(*serveAddr, cfg, engineCfg, coeffs)
		return
	}

	if *inputPath == "" {
		telemetry.Errorf("Usage: derive -input <file> [-coefficients <file>] [-out <file>]")
		os.Exit(2)
	}
	req, err := loadRequest(*inputPath)
	if err != nil {
		telemetry.Errorf("Request: %v", err)
		os.Exit(2)
	}

	report, err := runDerive(cfg, engineCfg, coeffs, req)
	if err != nil {
		telemetry.Errorf("Derive: %v", err)
		os.Exit(1)
	}

	if err := writeReport(*outPath, report); err != nil {
		telemetry.Errorf("Write report: %v", err)
		os.Exit(1)
	}
}

func loadRequest(path string) (deriveRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return deriveRequest{}, fmt.Errorf("read %s: %w", path, err)
	}
	var req deriveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return deriveRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return applyDefaults(req), nil
}

// applyDefaults fills in a deriveRequest's zero-valued fields. Dilatives
// always defaults to 4 entries: fitIndividual's adjustment range is
// hardcoded to podium ranks 1..3 (original_source/src/fit.rs's fit_place
// always works a win-plus-three-places podium regardless of how many of
// those places are actually paid out), so the podium always has 4 rows.
func applyDefaults(req deriveRequest) deriveRequest {
	if req.PriceHi == 0 {
		req.PriceHi = 1000
	}
	if req.PriceLo == 0 {
		req.PriceLo = 1.01
	}
	if req.PlacesPaying == 0 {
		req.PlacesPaying = 3
	}
	if len(req.Dilatives) == 0 {
		req.Dilatives = []float64{0, 0.12, 0.18, 0.22}
	}
	return req
}

func loadCoefficients(path string) (racing.Coefficients, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return racing.Coefficients{}, fmt.Errorf("read %s: %w", path, err)
	}
	var coeffs racing.Coefficients
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return racing.Coefficients{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return coeffs, nil
}

func parseOverroundMethod(s string) (market.Method, error) {
	switch s {
	case "", "multiplicative":
		return market.Multiplicative, nil
	case "power":
		return market.Power, nil
	case "odds_ratio":
		return market.OddsRatio, nil
	default:
		return 0, fmt.Errorf("unknown overround method %q", s)
	}
}

// runDerive fits the supplied place market against a coefficient-seeded
// initial guess, then reframes the whole podium into final per-rank
// markets. Grounded on internal/core/racing/fit.go's FitPlace+FinalOffers
// pairing.
func runDerive(cfg *config.Config, engineCfg config.EngineConfig, coeffs racing.Coefficients, req deriveRequest) (*deriveReport, error) {
	runID := uuid.NewString()
	telemetry.Infof("[%s] derive starting  runners=%d  places_paying=%d  trials=%s",
		runID, len(req.WinPrices), req.PlacesPaying, humanize.Comma(int64(cfg.Trials)))

	method, err := parseOverroundMethod(req.OverroundMethod)
	if err != nil {
		return nil, err
	}

	winMarket, err := market.Fit(method, req.WinPrices, 1.0)
	if err != nil {
		return nil, fmt.Errorf("win market: %w", err)
	}
	placeMarket, err := market.Fit(method, req.PlacePrices, float64(req.PlacesPaying))
	if err != nil {
		return nil, fmt.Errorf("place market: %w", err)
	}

	options := racing.FitOptions{
		MCIterations:         min(cfg.Trials, engineCfg.Limits.MaxTrials),
		IndividualTargetMSRE: engineCfg.Limits.TargetMSRE,
		Seed:                 cfg.Seed,
	}
	placeRank := req.PlacesPaying - 1
	outcome, err := racing.FitPlace(options, winMarket, placeMarket, req.Dilatives, placeRank, coeffs)
	if err != nil {
		return nil, fmt.Errorf("fit place: %w", err)
	}
	telemetry.Infof("[%s] fit converged  steps=%d  msre=%g  elapsed=%s",
		runID, outcome.Stats.Steps, outcome.Stats.OptimalMSRE, outcome.Stats.Elapsed)

	finalMarkets, err := racing.FinalOffers(options.MCIterations, cfg.Seed, outcome.FittedProbs,
		winMarket.Overround.Value, placeMarket.Overround.Value, req.PlacesPaying, method, req.PriceLo, req.PriceHi)
	if err != nil {
		return nil, fmt.Errorf("final offers: %w", err)
	}

	report := &deriveReport{
		RunID:       runID,
		Steps:       outcome.Stats.Steps,
		OptimalMSRE: outcome.Stats.OptimalMSRE,
		Elapsed:     outcome.Stats.Elapsed.String(),
	}
	for rank, m := range finalMarkets {
		report.Markets = append(report.Markets, marketDTO{
			Rank:      rank + 1,
			Prices:    m.Prices,
			Overround: m.Overround.Value,
		})
	}
	return report, nil
}

func writeReport(path string, report *deriveReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
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

// runServer exposes POST /derive, coalescing concurrent requests that carry
// identical bodies into a single underlying runDerive call — the derivation
// core itself stays single-threaded and synchronous; singleflight only
// dedupes at this HTTP boundary. Grounded on the teacher's
// internal/core/ticker/resolver.go, which uses singleflight the same way to
// collapse concurrent ticker lookups.
func runServer(addr string, cfg *config.Config, engineCfg config.EngineConfig, coeffs racing.Coefficients) {
	var group singleflight.Group

	mux := http.NewServeMux()
	mux.HandleFunc("/derive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		v, err, _ := group.Do(string(body), func() (any, error) {
			var req deriveRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, fmt.Errorf("parse request: %w", err)
			}
			return runDerive(cfg, engineCfg, coeffs, applyDefaults(req))
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	})

	server := &http.Server{Addr: addr, Handler: mux, ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second}
	telemetry.Infof("Derive server listening on %q", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		telemetry.Errorf("Derive server: %v", err)
		os.Exit(1)
	}
}
