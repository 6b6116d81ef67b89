// Package market converts between prices, implied probabilities, and an
// explicit overround (bookmaker margin) under three overround models.
// Grounded on the teacher's internal/core/odds/vig.go (RemoveVig2/RemoveVig3
// binary-search vig stripping) for the overall probability-from-price
// inversion shape, and on original_source/brumby/src/market/tests.rs for the
// exact Power/OddsRatio formulas (the Rust market.rs implementation itself
// was not retrieved, so these were reconstructed and numerically verified
// against that test file's fixtures).
package market

import (
	"fmt"
	"math"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

// Method identifies an overround model.
type Method int

const (
	Multiplicative Method = iota
	Power
	OddsRatio
)

func (m Method) String() string {
	switch m {
	case Multiplicative:
		return "multiplicative"
	case Power:
		return "power"
	case OddsRatio:
		return "odds_ratio"
	default:
		return "unknown"
	}
}

// Overround describes the bookmaker margin applied to a market.
type Overround struct {
	Method Method
	Value  float64
}

// Market is an immutable triple of implied probabilities, parallel prices,
// and the overround that relates them. prob[i] == 0 iff price[i] == +Inf.
type Market struct {
	Probs     []float64
	Prices    []float64
	Overround Overround
}

const rootSearchTolerance = 1e-9
const maxRootSearchSteps = 200

// FairBooksum returns the sum of implied (fair) probabilities.
func FairBooksum(probs []float64) float64 {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	return sum
}

// OfferedBooksum returns the sum of 1/price across a price slice, ignoring
// scratched (+Inf price) entries.
func OfferedBooksum(prices []float64) float64 {
	var sum float64
	for _, price := range prices {
		if !math.IsInf(price, 1) {
			sum += 1.0 / price
		}
	}
	return sum
}

// Fit infers a Market from a slice of decimal prices such that the derived
// probabilities sum to normal and reproduce prices under method.
func Fit(method Method, prices []float64, normal float64) (*Market, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: prices slice is empty", domain.ErrInvalidMarket)
	}
	for _, p := range prices {
		if p <= 0 {
			return nil, fmt.Errorf("%w: non-positive price %v", domain.ErrInvalidMarket, p)
		}
	}

	switch method {
	case Multiplicative:
		return fitMultiplicative(prices, normal), nil
	case Power:
		return fitPower(prices, normal)
	case OddsRatio:
		return fitOddsRatio(prices, normal)
	default:
		return nil, fmt.Errorf("%w: unknown overround method %v", domain.ErrInvalidMarket, method)
	}
}

func fitMultiplicative(prices []float64, normal float64) *Market {
	overroundSum := OfferedBooksum(prices)
	probs := make([]float64, len(prices))
	for i, price := range prices {
		if math.IsInf(price, 1) {
			probs[i] = 0
			continue
		}
		probs[i] = (1.0 / price) / overroundSum * normal
	}
	return &Market{
		Probs:  probs,
		Prices: append([]float64(nil), prices...),
		Overround: Overround{
			Method: Multiplicative,
			Value:  overroundSum / normal,
		},
	}
}

// fitPower recovers probabilities from prices under the Power overround.
// Framed (probs -> prices) as price = (prob/normal)^(-k) / normal, so the
// inverse solves for exponent e = 1/k such that, writing
// scaled = price*normal, Sum(scaled^(-e)) == 1, giving
// prob = normal * scaled^(-e).
func fitPower(prices []float64, normal float64) (*Market, error) {
	scaled := make([]float64, len(prices))
	for i, price := range prices {
		scaled[i] = price * normal
	}

	loss := func(e float64) float64 {
		var sum float64
		for _, s := range scaled {
			if math.IsInf(s, 1) {
				continue
			}
			sum += math.Pow(s, -e)
		}
		return sum - 1.0
	}

	e, err := bisect(loss, 0.01, 50.0)
	if err != nil {
		return nil, fmt.Errorf("%w: power overround root search: %v", domain.ErrInvalidMarket, err)
	}

	probs := make([]float64, len(prices))
	for i, s := range scaled {
		if math.IsInf(s, 1) {
			probs[i] = 0
			continue
		}
		probs[i] = normal * math.Pow(s, -e)
	}
	overroundValue := OfferedBooksum(prices) / normal
	return &Market{
		Probs:     probs,
		Prices:    append([]float64(nil), prices...),
		Overround: Overround{Method: Power, Value: overroundValue},
	}, nil
}

// fitOddsRatio recovers probabilities from prices under the OddsRatio
// overround: price = 1 + k(1/prob - 1), so prob = k / (price - 1 + k).
// k is solved such that Sum(prob) == normal.
func fitOddsRatio(prices []float64, normal float64) (*Market, error) {
	loss := func(k float64) float64 {
		var sum float64
		for _, price := range prices {
			if math.IsInf(price, 1) {
				continue
			}
			sum += k / (price - 1.0 + k)
		}
		return sum - normal
	}

	k, err := bisect(loss, 1e-6, 1000.0)
	if err != nil {
		return nil, fmt.Errorf("%w: odds-ratio overround root search: %v", domain.ErrInvalidMarket, err)
	}

	probs := make([]float64, len(prices))
	for i, price := range prices {
		if math.IsInf(price, 1) {
			probs[i] = 0
			continue
		}
		probs[i] = k / (price - 1.0 + k)
	}
	overroundValue := OfferedBooksum(prices) / normal
	return &Market{
		Probs:     probs,
		Prices:    append([]float64(nil), prices...),
		Overround: Overround{Method: OddsRatio, Value: overroundValue},
	}, nil
}

// Frame computes a Market's prices from probabilities under the supplied
// overround, clipping each price to [lo, hi]. A zero probability yields a
// +Inf price regardless of bounds.
//
// overround.Value is always the target offered/fair booksum ratio
// (Sum(1/price) == overround.Value * Sum(probs)), for all three methods.
// Power and OddsRatio each need an internal shape parameter, solved by
// bisection, to distribute that fixed aggregate margin across outcomes.
func Frame(overround Overround, probs []float64, lo, hi float64) (*Market, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("%w: probs slice is empty", domain.ErrInvalidMarket)
	}
	for _, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative probability %v", domain.ErrInvalidMarket, p)
		}
	}

	var prices []float64
	var err error
	switch overround.Method {
	case Multiplicative:
		prices = framePrices(probs, func(p float64) float64 {
			return 1.0 / (p * overround.Value)
		})
	case Power:
		prices, err = framePower(overround, probs)
	case OddsRatio:
		prices, err = frameOddsRatio(overround, probs)
	default:
		return nil, fmt.Errorf("%w: unknown overround method %v", domain.ErrInvalidMarket, overround.Method)
	}
	if err != nil {
		return nil, err
	}

	for i, price := range prices {
		if math.IsInf(price, 1) {
			continue
		}
		if price < lo {
			price = lo
		}
		if price > hi {
			price = hi
		}
		prices[i] = price
	}

	return &Market{
		Probs:     append([]float64(nil), probs...),
		Prices:    prices,
		Overround: overround,
	}, nil
}

// framePrices applies a per-outcome pricing function to every non-zero
// probability, leaving zero-probability outcomes at +Inf.
func framePrices(probs []float64, price func(float64) float64) []float64 {
	prices := make([]float64, len(probs))
	for i, p := range probs {
		if p == 0 {
			prices[i] = math.Inf(1)
			continue
		}
		prices[i] = price(p)
	}
	return prices
}

// framePower solves k such that Sum(q^k) == overround.Value, where
// q = prob/normal, then prices each outcome as q^(-k)/normal. This
// normalisation makes the exponent k invariant to the market's booksum
// (e.g. a top-2 market with probs summing to 2), matching the reference
// fit/frame fixtures exactly.
func framePower(overround Overround, probs []float64) ([]float64, error) {
	normal := FairBooksum(probs)
	loss := func(k float64) float64 {
		var sum float64
		for _, p := range probs {
			if p == 0 {
				continue
			}
			sum += math.Pow(p/normal, k)
		}
		return sum - overround.Value
	}
	k, err := bisect(loss, 0.01, 50.0)
	if err != nil {
		return nil, fmt.Errorf("%w: power overround root search: %v", domain.ErrInvalidMarket, err)
	}
	return framePrices(probs, func(p float64) float64 {
		return math.Pow(p/normal, -k) / normal
	}), nil
}

// frameOddsRatio solves k such that Sum(1/price) == overround.Value*normal,
// with price = 1 + k(1/prob - 1).
func frameOddsRatio(overround Overround, probs []float64) ([]float64, error) {
	normal := FairBooksum(probs)
	target := overround.Value * normal
	loss := func(k float64) float64 {
		var sum float64
		for _, p := range probs {
			if p == 0 {
				continue
			}
			sum += 1.0 / (1.0 + k*(1.0/p-1.0))
		}
		return sum - target
	}
	k, err := bisect(loss, 1e-6, 1000.0)
	if err != nil {
		return nil, fmt.Errorf("%w: odds-ratio overround root search: %v", domain.ErrInvalidMarket, err)
	}
	return framePrices(probs, func(p float64) float64 {
		return 1.0 + k*(1.0/p-1.0)
	}), nil
}

// bisect finds a root of f within [lo, hi], assuming f changes sign across
// the interval. Used for the Power and OddsRatio root searches, in the same
// spirit as the teacher's InferG0FromOU25 binary search
// (internal/core/odds/vig.go).
func bisect(f func(float64) float64, lo, hi float64) (float64, error) {
	fLo, fHi := f(lo), f(hi)
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, fmt.Errorf("root not bracketed in [%v, %v]", lo, hi)
	}
	for i := 0; i < maxRootSearchSteps; i++ {
		mid := (lo + hi) / 2
		fMid := f(mid)
		if math.Abs(fMid) <= rootSearchTolerance {
			return mid, nil
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
