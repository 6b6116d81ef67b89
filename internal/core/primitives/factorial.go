package primitives

import "math"

// maxFactorial bounds the precomputed log-factorial table. Soccer/racing
// goal and rank counts never approach this, so a fixed table avoids
// repeated log-gamma evaluation in the hot scoring loops.
const maxFactorial = 170

var logFactorialTable [maxFactorial + 1]float64

func init() {
	logFactorialTable[0] = 0
	for n := 1; n <= maxFactorial; n++ {
		logFactorialTable[n] = logFactorialTable[n-1] + math.Log(float64(n))
	}
}

// LogFactorial returns ln(n!), from a precomputed table grounded on the
// same init()-time log-factorial cache the reference hockey model builds.
func LogFactorial(n int) float64 {
	if n < 0 {
		panic("factorial of a negative number")
	}
	if n <= maxFactorial {
		return logFactorialTable[n]
	}
	// lgamma is only reached for n beyond any realistic goal/rank count.
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}

// Factorial returns n! as a float64.
func Factorial(n int) float64 { return math.Exp(LogFactorial(n)) }

// Combinations returns the binomial coefficient C(n, r).
func Combinations(n, r int) float64 {
	if n < r {
		panic("n < r")
	}
	return math.Round(math.Exp(LogFactorial(n) - LogFactorial(r) - LogFactorial(n-r)))
}
