package liga

import "math"

// PoissonPMF calculates P(X = k) where X ~ Poisson(lambda).
// Evaluated in log space for numerical stability.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || math.IsNaN(lambda) || lambda < 0 {
		return math.NaN()
	}
	if lambda == 0 {
		if k == 0 {
			return 1.0
		}
		return 0
	}

	logProb := float64(k)*math.Log(lambda) - lambda - logFactorial(k)
	return math.Exp(logProb)
}

// logFactorial computes log(n!) for Poisson calculations
func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	result := 0.0
	for i := 2; i <= n; i++ {
		result += math.Log(float64(i))
	}
	return result
}

// goalDistribution returns the Poisson PMF evaluated at 0..maxGoals.
// The tail beyond maxGoals is deliberately truncated; for realistic
// expected-goals values (< 4) the lost mass is negligible.
func goalDistribution(lambda float64, maxGoals int) []float64 {
	probs := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		probs[k] = PoissonPMF(k, lambda)
	}
	return probs
}
