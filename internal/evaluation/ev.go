// Package evaluation turns a raw copula simulation result into the
// priced, recommendation-bearing ParlayEvaluation: independence
// baseline, correlation multiplier, Wilson confidence interval,
// implied probability, EV%, fair odds, and Kelly fraction.
package evaluation

import (
	"math"

	"github.com/yourusername/parlay-evaluator/internal/models"
	"github.com/yourusername/parlay-evaluator/internal/oddsmath"
)

const (
	sentimentLo        = 0.01
	sentimentHi        = 0.99
	recommendTolerance = 0.02
)

// Price computes the full pricing block of a ParlayEvaluation from a
// copula run's raw outputs and each leg's American odds. The
// Explanation field is left zero-valued;
// the orchestrator fills it in from the XAI attributor.
func Price(legs []models.Leg, perLegHitRate []float64, jointHits, nSims int, nu, sentimentShift float64) models.ParlayEvaluation {
	trueProbRaw := float64(jointHits) / float64(nSims)

	independenceBaseline := 1.0
	for _, r := range perLegHitRate {
		independenceBaseline *= r
	}
	var corrMultiplier float64
	if independenceBaseline > 0 {
		corrMultiplier = trueProbRaw / independenceBaseline
	}

	p := clampSentiment(trueProbRaw + sentimentShift)

	ciLow, ciHigh := WilsonInterval(jointHits, nSims)

	parlayImplied := 1.0
	payoutMultiple := 1.0
	for _, leg := range legs {
		parlayImplied *= oddsmath.AmericanToImpliedProbability(leg.OddsAmerican)
		payoutMultiple *= oddsmath.AmericanToDecimal(leg.OddsAmerican)
	}

	evPct := (p*payoutMultiple - 1) * 100
	fairOdds := oddsmath.ProbabilityToAmerican(p)
	sportsbookOdds := oddsmath.ProbabilityToAmerican(parlayImplied)

	b := payoutMultiple - 1
	kelly := KellyFraction(p, b)

	recommended := evPct > 0 && ciLow*payoutMultiple > 1-recommendTolerance

	return models.ParlayEvaluation{
		SimulationResult: models.SimulationResult{
			TrueProb:       p,
			CILow:          ciLow,
			CIHigh:         ciHigh,
			CorrMultiplier: corrMultiplier,
			TailRisk:       1 / nu,
			PerLegHitRate:  perLegHitRate,
		},
		ImpliedProb:            parlayImplied,
		EVPct:                  evPct,
		FairOddsAmerican:       fairOdds,
		SportsbookOddsAmerican: sportsbookOdds,
		KellyFraction:          kelly,
		Recommended:            recommended,
	}
}

func clampSentiment(p float64) float64 {
	return math.Max(sentimentLo, math.Min(sentimentHi, p))
}
