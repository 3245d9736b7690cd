package liga

import "math"

// DefaultMaxGoals bounds the scoreline grid of the outcome model. It is a
// cutoff of the Poisson support, not a hard limit: the cumulative mass beyond
// ten goals per side is below 1e-4 for any realistic expected-goals value.
const DefaultMaxGoals = 10

// MatchOutcome holds the modelled result of one match: expected points and
// win/draw/loss probabilities for both sides. All fields carry full float64
// precision; use Rounded before writing them anywhere.
type MatchOutcome struct {
	HomeXP      float64
	AwayXP      float64
	HomeWinProb float64
	DrawProb    float64
	AwayWinProb float64
}

// ComputeMatchOutcome turns a pair of expected-goals values into expected
// points and match outcome probabilities under an independent bivariate
// Poisson scoreline model with the standard 3-1-0 points scheme.
//
// Unknown inputs (NaN) and any numerical failure propagate as an all-NaN
// result rather than an error; the caller decides what to do with the gap.
func ComputeMatchOutcome(homeXG, awayXG float64, maxGoals int) MatchOutcome {
	if maxGoals <= 0 {
		maxGoals = DefaultMaxGoals
	}
	if !isUsableXG(homeXG) || !isUsableXG(awayXG) {
		return unknownOutcome()
	}

	homeProbs := goalDistribution(homeXG, maxGoals)
	awayProbs := goalDistribution(awayXG, maxGoals)

	var homeWin, draw, awayWin float64

	// Diagonal of the scoreline matrix: equal scores
	for g := 0; g <= maxGoals; g++ {
		draw += homeProbs[g] * awayProbs[g]
	}
	// Off-diagonal pairs accumulated together so that identical inputs
	// produce bit-identical home and away buckets
	for low := 0; low <= maxGoals; low++ {
		for high := low + 1; high <= maxGoals; high++ {
			awayWin += homeProbs[low] * awayProbs[high]
			homeWin += homeProbs[high] * awayProbs[low]
		}
	}

	total := homeWin + draw + awayWin
	if math.IsNaN(total) || math.IsInf(total, 0) || total == 0 {
		return unknownOutcome()
	}

	return MatchOutcome{
		HomeXP:      3*homeWin + draw,
		AwayXP:      3*awayWin + draw,
		HomeWinProb: homeWin,
		DrawProb:    draw,
		AwayWinProb: awayWin,
	}
}

// Rounded returns a copy with every field rounded to three decimal places,
// the precision used for storage and reporting
func (o MatchOutcome) Rounded() MatchOutcome {
	return MatchOutcome{
		HomeXP:      RoundTo(o.HomeXP, 3),
		AwayXP:      RoundTo(o.AwayXP, 3),
		HomeWinProb: RoundTo(o.HomeWinProb, 3),
		DrawProb:    RoundTo(o.DrawProb, 3),
		AwayWinProb: RoundTo(o.AwayWinProb, 3),
	}
}

// IsUnknown reports whether the outcome is the NaN sentinel produced for
// unusable inputs
func (o MatchOutcome) IsUnknown() bool {
	return math.IsNaN(o.HomeXP)
}

func unknownOutcome() MatchOutcome {
	nan := math.NaN()
	return MatchOutcome{
		HomeXP:      nan,
		AwayXP:      nan,
		HomeWinProb: nan,
		DrawProb:    nan,
		AwayWinProb: nan,
	}
}

func isUsableXG(xg float64) bool {
	return !math.IsNaN(xg) && !math.IsInf(xg, 0) && xg >= 0
}

// RoundTo rounds a value to the given number of decimal places.
// NaN passes through unchanged.
func RoundTo(value float64, places int) float64 {
	if math.IsNaN(value) {
		return value
	}
	shift := math.Pow(10, float64(places))
	return math.Round(value*shift) / shift
}
