package primitives

import "math"

// Sum returns the sum of a probability slice.
func Sum(p []float64) float64 {
	var total float64
	for _, v := range p {
		total += v
	}
	return total
}

// Normalise scales p in place so it sums to target, returning the
// pre-normalisation sum.
func Normalise(p []float64, target float64) float64 {
	sum := Sum(p)
	Scale(p, target/sum)
	return sum
}

// Invert returns a new slice with each element replaced by its reciprocal.
func Invert(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = 1.0 / v
	}
	return out
}

// GeometricMean returns the geometric mean of p.
func GeometricMean(p []float64) float64 {
	product := 1.0
	for _, v := range p {
		product *= v
	}
	return math.Pow(product, 1.0/float64(len(p)))
}

// DilateAdditive applies additive probability dilation in place, grounded on
// brumby's probs.rs: a positive factor redistributes an equal share to every
// element before renormalising by (1+factor); a negative factor subtracts an
// equal share, floors at zero, then renormalises the raw sum back to 1.
func DilateAdditive(p []float64, factor float64) {
	n := float64(len(p))
	share := factor / n
	if factor >= 0 {
		for i := range p {
			p[i] = (p[i] + share) / (1.0 + factor)
		}
		return
	}
	var sum float64
	for i := range p {
		p[i] = math.Max(0.0, p[i]+share)
		sum += p[i]
	}
	Scale(p, 1.0/sum)
}

// DilatePower applies power-law dilation in place: each element is raised to
// (1 - factor) then the slice is renormalised to sum to 1.
func DilatePower(p []float64, factor float64) {
	var sum float64
	for i := range p {
		p[i] = math.Pow(p[i], 1.0-factor)
		sum += p[i]
	}
	Scale(p, 1.0/sum)
}

// Scale multiplies every element of p by factor, in place.
func Scale(p []float64, factor float64) {
	for i := range p {
		p[i] *= factor
	}
}

// ScaleRows scales each row of target by the matching factor in factors.
func ScaleRows(factors []float64, target *Matrix) {
	if len(factors) != target.Rows() {
		panic("number of factors must match number of matrix rows")
	}
	for row, factor := range factors {
		Scale(target.Row(row), factor)
	}
}

// DilateRowsAdditive applies DilateAdditive to each row of m using the
// matching factor.
func DilateRowsAdditive(factors []float64, m *Matrix) {
	if len(factors) != m.Rows() {
		panic("number of dilation factors must match the number of matrix rows")
	}
	for row, factor := range factors {
		DilateAdditive(m.Row(row), factor)
	}
}

// DilateRowsPower applies DilatePower to each row of m using the matching
// factor.
func DilateRowsPower(factors []float64, m *Matrix) {
	if len(factors) != m.Rows() {
		panic("number of dilation factors must match the number of matrix rows")
	}
	for row, factor := range factors {
		DilatePower(m.Row(row), factor)
	}
}

// Mean returns the arithmetic mean of p.
func Mean(p []float64) float64 { return Sum(p) / float64(len(p)) }

// Variance returns the sample (n-1) variance of p.
func Variance(p []float64) float64 {
	mean := Mean(p)
	var sumSq float64
	for _, v := range p {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(p)-1)
}

// Stdev returns the sample standard deviation of p.
func Stdev(p []float64) float64 { return math.Sqrt(Variance(p)) }

// SST returns the total sum of squares of p about its mean.
func SST(p []float64) float64 {
	mean := Mean(p)
	var total float64
	for _, v := range p {
		d := mean - v
		total += d * d
	}
	return total
}

// Fraction is an exact numerator/denominator pair, used to report
// Monte-Carlo hit ratios without premature float division.
type Fraction struct {
	Numerator   uint64
	Denominator uint64
}

// Quotient returns the fraction as a float64.
func (f Fraction) Quotient() float64 {
	return float64(f.Numerator) / float64(f.Denominator)
}

func (f Fraction) String() string {
	return itoa(f.Numerator) + "/" + itoa(f.Denominator)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
