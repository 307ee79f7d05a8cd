// Package oddsmath converts between American odds, decimal odds, and
// implied probability, the three representations the evaluation
// pipeline moves between when pricing a parlay.
package oddsmath

// AmericanToDecimal converts American odds to decimal (European) odds.
// A decimal odds of 2.0 means a $1 stake returns $2 total (even money).
func AmericanToDecimal(odds int) float64 {
	if odds > 0 {
		return 1 + float64(odds)/100
	}
	return 1 + 100/float64(-odds)
}

// DecimalToAmerican converts decimal odds back to American odds,
// rounding to the nearest integer the way sportsbooks quote lines.
func DecimalToAmerican(decimal float64) int {
	if decimal >= 2.0 {
		return int(round((decimal - 1) * 100))
	}
	return int(round(-100 / (decimal - 1)))
}

// AmericanToImpliedProbability returns the probability implied by
// American odds under a fair (no-vig) book.
func AmericanToImpliedProbability(odds int) float64 {
	if odds > 0 {
		return 100 / (float64(odds) + 100)
	}
	return float64(-odds) / (float64(-odds) + 100)
}

// ProbabilityToAmerican converts a probability to the American odds
// whose implied probability equals it — used to compute fair odds
// from a model's true_prob.
func ProbabilityToAmerican(prob float64) int {
	if prob <= 0 {
		return 100000
	}
	if prob >= 1 {
		return -100000
	}
	decimal := 1 / prob
	return DecimalToAmerican(decimal)
}

func round(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}
