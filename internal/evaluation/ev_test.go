package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

func twoLegOver110() []models.Leg {
	return []models.Leg{
		{SubjectID: "qb1", StatKind: "pass_yards", Direction: models.DirectionOver, OddsAmerican: -110},
		{SubjectID: "rb1", StatKind: "rec_yards", Direction: models.DirectionOver, OddsAmerican: -110},
	}
}

func TestPriceIndependentPositiveEV(t *testing.T) {
	legs := twoLegOver110()
	perLeg := []float64{0.497, 0.573}
	jointHits, nSims := 2850, 10000

	eval := Price(legs, perLeg, jointHits, nSims, 5.0, 0)

	assert.InDelta(t, 0.285, eval.TrueProb, 0.01)
	assert.Greater(t, eval.EVPct, 0.0)
	assert.True(t, eval.Recommended)
	assert.InDelta(t, eval.TrueProb, eval.CorrMultiplier*eval.PerLegHitRate[0]*eval.PerLegHitRate[1], 1e-9)
}

func TestKellyFractionBounded(t *testing.T) {
	for _, tc := range []struct {
		p, b float64
	}{
		{0.9, 3.0}, {0.1, 0.5}, {0.99, 10}, {0.01, 0.01}, {0.5, 0},
	} {
		f := KellyFraction(tc.p, tc.b)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, KellyCapFraction)
	}
}

func TestEVSignImpliesRecommendation(t *testing.T) {
	legs := twoLegOver110()
	// A clearly unprofitable edge: low hit rate against short odds.
	eval := Price(legs, []float64{0.3, 0.3}, 900, 10000, 5.0, 0)
	if eval.Recommended {
		assert.Greater(t, eval.EVPct, 0.0)
	}
}

func TestSentimentShiftMovesTrueProbWithinBand(t *testing.T) {
	legs := twoLegOver110()
	base := Price(legs, []float64{0.5, 0.5}, 2500, 10000, 5.0, 0)
	shifted := Price(legs, []float64{0.5, 0.5}, 2500, 10000, 5.0, 0.10)
	assert.InDelta(t, base.TrueProb+0.10, shifted.TrueProb, 1e-9)
}
