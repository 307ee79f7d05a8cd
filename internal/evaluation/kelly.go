package evaluation

import "github.com/shopspring/decimal"

// KellyCapFraction is the quarter-Kelly maximum stake fraction.
const KellyCapFraction = 0.25

// KellyFraction computes the growth-optimal stake fraction for a
// parlay with win probability p and net-payout-per-unit-stake b
// (b = payout_multiple - 1), clipped to the quarter-Kelly cap.
func KellyFraction(p, b float64) float64 {
	if b <= 0 {
		return 0
	}
	f := (p*b - (1 - p)) / b
	if f < 0 {
		f = 0
	}
	if f > KellyCapFraction {
		f = KellyCapFraction
	}
	return f
}

// KellyStakeUSD converts a Kelly fraction into a recommended stake
// against a bankroll, rounded to the cent. Money math runs through
// decimal rather than float64: a fraction like 0.0833... must not
// silently drift a cent on repeated rounding.
func KellyStakeUSD(kellyFraction float64, bankroll decimal.Decimal) decimal.Decimal {
	f := decimal.NewFromFloat(kellyFraction)
	return bankroll.Mul(f).Round(2)
}
