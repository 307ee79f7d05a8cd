package orchestrator

// End-to-end pipeline tests. Each exercises the full Evaluate path
// rather than a single component.

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

func scenarioMarginals() []models.Marginal {
	return []models.Marginal{
		{SubjectID: "qb1", StatKind: "pass_yards", DistFamily: models.DistFamilyNormal, Mean: 265, Stddev: 45},
		{SubjectID: "wr1", StatKind: "rec_yards", DistFamily: models.DistFamilyNormal, Mean: 75, Stddev: 22},
	}
}

func scenarioLegs(secondDirection models.Direction) []models.Leg {
	return []models.Leg{
		{Kind: models.LegKindPlayerProp, SubjectID: "qb1", StatKind: "pass_yards", Line: 265.5, Direction: models.DirectionOver, OddsAmerican: -110},
		{Kind: models.LegKindPlayerProp, SubjectID: "wr1", StatKind: "rec_yards", Line: 70.5, Direction: secondDirection, OddsAmerican: -110},
	}
}

// fixedPairCorrelation reports a single constant rho for the one
// (qb1,pass_yards)-(wr1,rec_yards) pair and 0 for everything else.
type fixedPairCorrelation struct {
	rho float64
}

func (f fixedPairCorrelation) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	if (a.SubjectID == "qb1" && b.SubjectID == "wr1") || (a.SubjectID == "wr1" && b.SubjectID == "qb1") {
		return f.rho, true, nil
	}
	return 0, false, nil
}

func ptrF(v float64) *float64 { return &v }

func TestEvaluateIndependentTwoLegPositiveEV(t *testing.T) {
	o := New(stubMarginals{marginals: scenarioMarginals()}, stubCorrelations{}, logrus.New())
	req := Request{
		GameID:      "scenario-a",
		Legs:        scenarioLegs(models.DirectionOver),
		Seed:        42,
		SampleCount: 10000,
	}
	eval, err := o.Evaluate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, eval.PerLegHitRate, 2)
	assert.InDelta(t, 0.497, eval.PerLegHitRate[0], 0.03)
	assert.InDelta(t, 0.573, eval.PerLegHitRate[1], 0.03)
	assert.InDelta(t, 0.285, eval.TrueProb, 0.05)
	assert.Greater(t, eval.EVPct, 0.0)
}

// Positively correlated same-team QB/WR under a BLOWOUT regime
// (rho=0.65, corr_boost=1.25, effective 0.8125).
func TestEvaluateCorrelatedBlowoutLift(t *testing.T) {
	o := New(stubMarginals{marginals: scenarioMarginals()}, fixedPairCorrelation{rho: 0.65}, logrus.New())
	req := Request{
		GameID:      "scenario-b",
		Context:     models.GameContext{Spread: ptrF(-14)},
		Legs:        scenarioLegs(models.DirectionOver),
		Seed:        42,
		SampleCount: 10000,
	}
	eval, err := o.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.RegimeBlowout, eval.Explanation.Regime)
	assert.InDelta(t, 0.38, eval.TrueProb, 0.05)
	assert.Greater(t, eval.CorrMultiplier, 1.0)
}

// Flipping the second leg to "under" inverts the sign of its
// correlation column, pulling true_prob below the independence
// baseline.
func TestEvaluateUnderLegFlipsCorrelationSign(t *testing.T) {
	o := New(stubMarginals{marginals: scenarioMarginals()}, fixedPairCorrelation{rho: 0.65}, logrus.New())
	req := Request{
		GameID:      "scenario-c",
		Context:     models.GameContext{Spread: ptrF(-14)},
		Legs:        scenarioLegs(models.DirectionUnder),
		Seed:        42,
		SampleCount: 10000,
	}
	eval, err := o.Evaluate(context.Background(), req)
	require.NoError(t, err)

	independence := eval.PerLegHitRate[0] * eval.PerLegHitRate[1]
	assert.Less(t, eval.TrueProb, independence*0.85)
}

// A 3-leg indefinite correlation matrix repairs via eigenvalue
// clipping and still produces a valid probability.
func TestEvaluateIndefiniteCorrelationRepaired(t *testing.T) {
	rhos := map[[2]string]float64{
		{"a", "b"}: 0.9,
		{"a", "c"}: 0.9,
		{"b", "c"}: -0.9,
	}
	lookup := pairLookupFunc(func(a, b models.LegKey) (float64, bool, error) {
		if rho, ok := rhos[[2]string{a.SubjectID, b.SubjectID}]; ok {
			return rho, true, nil
		}
		if rho, ok := rhos[[2]string{b.SubjectID, a.SubjectID}]; ok {
			return rho, true, nil
		}
		return 0, false, nil
	})
	o := New(stubMarginals{marginals: []models.Marginal{
		{SubjectID: "a", StatKind: "stat", DistFamily: models.DistFamilyNormal, Mean: 0, Stddev: 1},
		{SubjectID: "b", StatKind: "stat", DistFamily: models.DistFamilyNormal, Mean: 0, Stddev: 1},
		{SubjectID: "c", StatKind: "stat", DistFamily: models.DistFamilyNormal, Mean: 0, Stddev: 1},
	}}, lookup, logrus.New())

	req := Request{
		GameID: "scenario-d",
		Legs: []models.Leg{
			{Kind: models.LegKindPlayerProp, SubjectID: "a", StatKind: "stat", Line: 0, Direction: models.DirectionOver, OddsAmerican: -110},
			{Kind: models.LegKindPlayerProp, SubjectID: "b", StatKind: "stat", Line: 0, Direction: models.DirectionOver, OddsAmerican: -110},
			{Kind: models.LegKindPlayerProp, SubjectID: "c", StatKind: "stat", Line: 0, Direction: models.DirectionOver, OddsAmerican: -110},
		},
		Seed:        7,
		SampleCount: 10000,
	}
	eval, err := o.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, eval.TrueProb, 0.0)
	assert.Less(t, eval.TrueProb, 1.0)
	assert.Empty(t, eval.Explanation.ImputedPairs)
}

// pairLookupFunc adapts a plain function to snapshotprovider.PairCorrelationProvider.
type pairLookupFunc func(a, b models.LegKey) (float64, bool, error)

func (f pairLookupFunc) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	return f(a, b)
}
