package primitives

import "math"

// Binomial returns P(R = r) for R successes in n independent Bernoulli(p)
// trials. Grounded on original_source/src/multinomial.rs's `binomial`.
func Binomial(n, r int, p float64) float64 {
	if n < r {
		panic("n < r")
	}
	return Combinations(n, r) * math.Pow(p, float64(r)) * math.Pow(1-p, float64(n-r))
}

// Quadranomial returns the probability of observing exactly (r1, r2, r3,
// n-r1-r2-r3) outcomes across four mutually exclusive per-trial categories
// with probabilities (p1, p2, p3, 1-p1-p2-p3), across n trials. Grounded on
// original_source/src/multinomial.rs's `quadranomial`.
func Quadranomial(n, r1, r2, r3 int, p1, p2, p3 float64) float64 {
	if r1+r2+r3 > n {
		panic("r1 + r2 + r3 > n")
	}
	p4 := 1 - p1 - p2 - p3
	r4 := n - r1 - r2 - r3
	coeff := math.Round(math.Exp(LogFactorial(n) - LogFactorial(r1) - LogFactorial(r2) - LogFactorial(r3) - LogFactorial(r4)))
	return coeff * math.Pow(p1, float64(r1)) * math.Pow(p2, float64(r2)) * math.Pow(p3, float64(r3)) * math.Pow(p4, float64(r4))
}

// BivariateBinomial returns the probability of observing r1 "category 1"
// successes and r2 "category 2" successes across n trials, where each
// trial independently lands in category 1 (prob p1), category 2 (prob p2),
// both (prob p3), or neither — the discrete analogue of BivariatePoisson,
// used by the interval explorer's bivariate-binomial scoregrid fit.
// Grounded on original_source/src/multinomial.rs's `bivariate_binomial`.
func BivariateBinomial(n, r1, r2 int, p1, p2, p3 float64) float64 {
	if r1 > n || r2 > n {
		panic("r1 or r2 exceeds n")
	}
	rewind := r1
	if r2 < rewind {
		rewind = r2
	}
	excess := 0
	if r1+r2 > n {
		excess = r1 + r2 - n
	}
	var prob float64
	for i := excess; i <= rewind; i++ {
		k1, k2 := r1-i, r2-i
		prob += Quadranomial(n, k1, k2, i, p1, p2, p3)
	}
	return prob
}
