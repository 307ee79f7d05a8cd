// Package marginal builds the standardized threshold each leg presents
// to the copula sampler, and constructs synthetic marginals for legs
// that aren't backed by a player projection.
package marginal

import "github.com/yourusername/parlay-evaluator/internal/models"

// Canonical NFL standard deviations for synthetic game-level
// marginals.
const (
	SpreadStddev = 13.86
	TotalStddev  = 10.66
)

// Standardized is a leg's standardized threshold, ready for the
// copula sampler: z = sign * (line - mean) / stddev, with "win"
// defined as standardized_sample > z. An over leg projected above its
// line gets a negative z (better than a coin flip); the under case is
// the mirror image once the correlation assembler's sign-flip is
// accounted for.
type Standardized struct {
	Key    models.LegKey
	Z      float64
	Mean   float64
	Stddev float64
	Sign   float64
}

// Build computes the standardized threshold for a single leg against
// its marginal. A moneyline leg is a spread leg at line 0, so any
// stray Line value on a moneyline request is ignored.
func Build(leg models.Leg, m models.Marginal) Standardized {
	sign := leg.Direction.Sign()
	line := leg.Line
	if leg.Kind == models.LegKindMoneyline {
		line = 0
	}
	z := sign * (line - m.Mean) / m.Stddev
	return Standardized{
		Key:    leg.Key(),
		Z:      z,
		Mean:   m.Mean,
		Stddev: m.Stddev,
		Sign:   sign,
	}
}

// BuildSpreadMarginal constructs a synthetic marginal for a spread
// leg from the game-level projected margin.
func BuildSpreadMarginal(subjectID string, projectedMargin float64) models.Marginal {
	return models.Marginal{
		SubjectID:  subjectID,
		StatKind:   "spread",
		DistFamily: models.DistFamilyNormal,
		Mean:       projectedMargin,
		Stddev:     SpreadStddev,
	}
}

// BuildTotalMarginal constructs a synthetic marginal for a total
// (over/under) leg from the game-level projected total.
func BuildTotalMarginal(subjectID string, projectedTotal float64) models.Marginal {
	return models.Marginal{
		SubjectID:  subjectID,
		StatKind:   "total",
		DistFamily: models.DistFamilyNormal,
		Mean:       projectedTotal,
		Stddev:     TotalStddev,
	}
}

// BuildMoneylineMarginal constructs a synthetic marginal for a
// moneyline leg, reusing the spread projection and its canonical
// stddev: a moneyline leg wins iff the projected margin clears 0 in
// the bet's favored direction, which is exactly a spread leg with
// line=0.
func BuildMoneylineMarginal(subjectID string, projectedMargin float64) models.Marginal {
	return models.Marginal{
		SubjectID:  subjectID,
		StatKind:   "moneyline",
		DistFamily: models.DistFamilyNormal,
		Mean:       projectedMargin,
		Stddev:     SpreadStddev,
	}
}
