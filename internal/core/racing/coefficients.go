package racing

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// Factor indexes a feature vector passed to a coefficient Model. Generalises
// the teacher's hardcoded Factor::RunnerIndex/ActiveRunners/PlacesPaying/
// Stdev/Weight0 fields (original_source/src/fit.rs's linear_sum) into the
// tagged-union regressor model spec.md section 3/9 asks for in place of
// those hardcoded cubics.
type Factor int

const (
	RaceID Factor = iota
	RunnerIndex
	ActiveRunners
	PlacesPaying
	Stdev
	Weight0
	Weight1
	Weight2
	Weight3
	factorCount
)

var factorNames = [...]string{
	RaceID:        "RaceId",
	RunnerIndex:   "RunnerIndex",
	ActiveRunners: "ActiveRunners",
	PlacesPaying:  "PlacesPaying",
	Stdev:         "Stdev",
	Weight0:       "Weight0",
	Weight1:       "Weight1",
	Weight2:       "Weight2",
	Weight3:       "Weight3",
}

func (f Factor) String() string {
	if f < 0 || int(f) >= len(factorNames) {
		return "unknown_factor"
	}
	return factorNames[f]
}

// ParseFactor resolves a factor's JSON name back to its enum value.
func ParseFactor(name string) (Factor, error) {
	for i, n := range factorNames {
		if n == name {
			return Factor(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown factor %q", domain.ErrInvalidConfig, name)
}

// Regressor resolves a scalar from a factor-indexed feature vector. The
// closed set of variants (Variable, Exp, Product, Intercept, Origin) forms a
// tagged union per spec.md section 3; resolution is a plain tree walk.
type Regressor interface {
	Resolve(features []float64) float64
}

// VariableRegressor resolves to a single factor's value.
type VariableRegressor struct{ Factor Factor }

func Variable(factor Factor) Regressor { return VariableRegressor{Factor: factor} }

func (v VariableRegressor) Resolve(features []float64) float64 { return features[v.Factor] }

// ExpRegressor raises an inner regressor's resolution to an integer power.
type ExpRegressor struct {
	Inner Regressor
	Power int
}

func Exp(inner Regressor, power int) Regressor { return ExpRegressor{Inner: inner, Power: power} }

func (e ExpRegressor) Resolve(features []float64) float64 {
	return math.Pow(e.Inner.Resolve(features), float64(e.Power))
}

// ProductRegressor resolves to the product of its elements' resolutions.
type ProductRegressor struct{ Factors []Regressor }

func Product(factors ...Regressor) Regressor { return ProductRegressor{Factors: factors} }

func (p ProductRegressor) Resolve(features []float64) float64 {
	product := 1.0
	for _, f := range p.Factors {
		product *= f.Resolve(features)
	}
	return product
}

// InterceptRegressor always resolves to 1, carrying a constant term.
type InterceptRegressor struct{}

func Intercept() Regressor { return InterceptRegressor{} }

func (InterceptRegressor) Resolve([]float64) float64 { return 1.0 }

// OriginRegressor always resolves to 0, forcing the model through the origin.
type OriginRegressor struct{}

func Origin() Regressor { return OriginRegressor{} }

func (OriginRegressor) Resolve([]float64) float64 { return 0.0 }

const predictEpsilon = 1e-6

// Model is a linear predictor over a list of regressors and a parallel
// coefficient vector, tagged with the response factor it predicts.
type Model struct {
	Response     Factor
	Regressors   []Regressor
	Coefficients []float64
}

// Predict dot-products features resolved through Regressors against
// Coefficients, capped to [epsilon, 1-epsilon].
func (m Model) Predict(features []float64) float64 {
	var sum float64
	for i, r := range m.Regressors {
		sum += r.Resolve(features) * m.Coefficients[i]
	}
	if sum < predictEpsilon {
		return predictEpsilon
	}
	if sum > 1-predictEpsilon {
		return 1 - predictEpsilon
	}
	return sum
}

// Coefficients bundles the three rank-conditional regression models the
// racing fitter predicts an initial guess from: W1/W2/W3 for podium ranks
// 2/3/4 (1-based), i.e. 0-based ranks 1/2/3.
type Coefficients struct {
	W1 Model `json:"w1"`
	W2 Model `json:"w2"`
	W3 Model `json:"w3"`
}

type regressorEnvelope struct {
	Kind    string            `json:"kind"`
	Factor  string            `json:"factor,omitempty"`
	Inner   json.RawMessage   `json:"inner,omitempty"`
	Power   int               `json:"power,omitempty"`
	Factors []json.RawMessage `json:"factors,omitempty"`
}

// UnmarshalRegressor decodes one node of the regressor tagged union per the
// "Coefficients JSON" contract (spec.md section 6).
func UnmarshalRegressor(data []byte) (Regressor, error) {
	var env regressorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	switch env.Kind {
	case "variable":
		factor, err := ParseFactor(env.Factor)
		if err != nil {
			return nil, err
		}
		return Variable(factor), nil
	case "exp":
		inner, err := UnmarshalRegressor(env.Inner)
		if err != nil {
			return nil, err
		}
		return Exp(inner, env.Power), nil
	case "product":
		factors := make([]Regressor, len(env.Factors))
		for i, raw := range env.Factors {
			f, err := UnmarshalRegressor(raw)
			if err != nil {
				return nil, err
			}
			factors[i] = f
		}
		return Product(factors...), nil
	case "intercept":
		return Intercept(), nil
	case "origin":
		return Origin(), nil
	default:
		return nil, fmt.Errorf("%w: unknown regressor kind %q", domain.ErrInvalidConfig, env.Kind)
	}
}

type modelJSON struct {
	Response     string            `json:"response"`
	Regressors   []json.RawMessage `json:"regressors"`
	Coefficients []float64         `json:"coefficients"`
}

// UnmarshalJSON implements the tagged-union regressor list decoding a plain
// struct tag can't express.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	response, err := ParseFactor(raw.Response)
	if err != nil {
		return err
	}
	regressors := make([]Regressor, len(raw.Regressors))
	for i, rm := range raw.Regressors {
		r, err := UnmarshalRegressor(rm)
		if err != nil {
			return err
		}
		regressors[i] = r
	}
	if len(regressors) != len(raw.Coefficients) {
		return fmt.Errorf("%w: model has %d regressors but %d coefficients", domain.ErrInvalidConfig, len(regressors), len(raw.Coefficients))
	}
	m.Response = response
	m.Regressors = regressors
	m.Coefficients = raw.Coefficients
	return nil
}

// newFeatures builds the feature vector spec.md section 4.3 names: win
// probability, active-runner count, places paying, win-probability stdev,
// and runner index.
func newFeatures(runner int, activeRunners, placesPaying, stdev, winProb float64) []float64 {
	f := make([]float64, factorCount)
	f[RunnerIndex] = float64(runner)
	f[ActiveRunners] = activeRunners
	f[PlacesPaying] = placesPaying
	f[Stdev] = stdev
	f[Weight0] = winProb
	return f
}
