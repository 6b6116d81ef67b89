package primitives

import "math"

// PoissonPMF returns P(X = k) for X ~ Poisson(rate), via the log-factorial
// table for numerical stability at larger k. Grounded on the teacher's
// internal/core/strategy/soccer/projected_odds.go poissonPMF.
func PoissonPMF(k int, rate float64) float64 {
	if rate <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logP := float64(k)*math.Log(rate) - rate - LogFactorial(k)
	return math.Exp(logP)
}

// PoissonCDF returns P(X <= k) for X ~ Poisson(rate).
func PoissonCDF(k int, rate float64) float64 {
	var sum float64
	for i := 0; i <= k; i++ {
		sum += PoissonPMF(i, rate)
	}
	return sum
}

// BivariatePoisson returns P(X = home, Y = away) for the Karlis-Ntzoufras
// bivariate Poisson with independent rates homeRate/awayRate and a shared
// common-shock rate, via the usual convolution sum over the shared term.
// Grounded on brumby-soccer's poisson::bivariate (scoregrid.rs) and on the
// independent cross-check in other_examples'
// jhw-go-outrights/matrix.go (dixonColesAdjustment companion).
func BivariatePoisson(home, away int, homeRate, awayRate, commonRate float64) float64 {
	maxShared := home
	if away < maxShared {
		maxShared = away
	}
	var sum float64
	for i := 0; i <= maxShared; i++ {
		term := PoissonPMF(home-i, homeRate) * PoissonPMF(away-i, awayRate) * PoissonPMF(i, commonRate)
		sum += term
	}
	return sum
}

// DixonColesTau applies the low-score Dixon-Coles correction factor to a
// bivariate-independent scoreline probability. Grounded on the teacher's
// dixonColesCorrection (internal/core/strategy/soccer/projected_odds.go).
func DixonColesTau(home, away int, lambda, mu, rho float64) float64 {
	switch {
	case home == 0 && away == 0:
		return 1 - lambda*mu*rho
	case home == 0 && away == 1:
		return 1 + lambda*rho
	case home == 1 && away == 0:
		return 1 + mu*rho
	case home == 1 && away == 1:
		return 1 - rho
	default:
		return 1
	}
}
