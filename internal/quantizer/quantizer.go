// Package quantizer converts weather, injury, and sentiment context
// into numeric adjustments applied to marginals and into named
// multipliers the XAI attributor later explains.
package quantizer

import (
	"math"
	"strings"

	"github.com/yourusername/parlay-evaluator/internal/models"
)

// Injury severity weights by pregame designation.
const (
	severityOut          = 1.0
	severityDoubtful     = 0.75
	severityQuestionable = 0.4
	severityProbable     = 0.1
)

const (
	windFreeThreshold   = 12.0
	windLinearCeiling   = 18.0
	windLinearPctPerMPH = 0.02
	windSteepBase       = 0.12
	windSteepPctPerMPH  = 0.03
	windPenaltyCap      = 0.40

	rushingBoostFactor     = 0.5
	fieldGoalPenaltyFactor = 0.8

	coldThresholdF    = 25.0
	coldPenaltyFactor = 0.03

	precipPenaltyFactor = 0.05

	sentimentMaxShift = 0.10
	sentimentLo       = 0.01
	sentimentHi       = 0.99
)

// CorrelationLookup resolves the correlation between an injured
// player and a given marginal's (subject, stat), used to propagate
// injury impact onto correlated teammates. It returns ok=false when
// no stored correlation exists, in which case the quantizer treats
// the pair as uncorrelated (contributes 0).
type CorrelationLookup func(injuredPlayerID, subjectID, statKind string) (rho float64, ok bool)

// Multipliers carries the named context adjustments computed for a
// request, kept alongside the adjusted marginals so the XAI
// attributor can explain each one without recomputing it.
type Multipliers struct {
	WindPassingPenalty   float64
	WindRushingBoost     float64
	FieldGoalPenalty     float64
	TemperaturePenalty   float64
	PrecipitationPenalty float64
	InjuryDeltas         map[models.LegKey]float64
	SentimentShift       float64
}

func isPassingOrReceiving(statKind string) bool {
	s := strings.ToLower(statKind)
	return strings.Contains(s, "pass") || strings.Contains(s, "rec")
}

func isRushing(statKind string) bool {
	return strings.Contains(strings.ToLower(statKind), "rush")
}

// windPassingPenalty implements the piecewise wind penalty on
// passing/receiving means.
func windPassingPenalty(windMPH float64) float64 {
	if windMPH < windFreeThreshold {
		return 0
	}
	var penalty float64
	if windMPH <= windLinearCeiling {
		penalty = (windMPH - windFreeThreshold) * windLinearPctPerMPH
	} else {
		penalty = windSteepBase + (windMPH-windLinearCeiling)*windSteepPctPerMPH
	}
	if penalty > windPenaltyCap {
		penalty = windPenaltyCap
	}
	return penalty
}

// Quantize applies the deterministic weather/injury/sentiment rules to
// a snapshot of marginals, returning the adjusted marginals and the
// named multipliers used later for explanation. lookup may be nil if
// no injury correlations are available (all injury deltas are then 0).
func Quantize(ctx models.GameContext, marginals []models.Marginal, lookup CorrelationLookup) ([]models.Marginal, Multipliers) {
	mult := Multipliers{InjuryDeltas: make(map[models.LegKey]float64)}

	if ctx.WindMPH != nil {
		mult.WindPassingPenalty = windPassingPenalty(*ctx.WindMPH)
		mult.WindRushingBoost = rushingBoostFactor * mult.WindPassingPenalty
		mult.FieldGoalPenalty = fieldGoalPenaltyFactor * mult.WindPassingPenalty
	}
	if ctx.TempF != nil && *ctx.TempF < coldThresholdF {
		mult.TemperaturePenalty = coldPenaltyFactor * mult.WindPassingPenalty
	}
	if ctx.PrecipProb != nil {
		mult.PrecipitationPenalty = *ctx.PrecipProb * precipPenaltyFactor
	}
	totalPassingPenalty := mult.WindPassingPenalty + mult.TemperaturePenalty + mult.PrecipitationPenalty

	adjusted := make([]models.Marginal, len(marginals))
	for i, m := range marginals {
		adjusted[i] = m
		switch {
		case isPassingOrReceiving(m.StatKind):
			adjusted[i].Mean = m.Mean * (1 - totalPassingPenalty)
		case isRushing(m.StatKind):
			adjusted[i].Mean = m.Mean * (1 + mult.WindRushingBoost)
		}
	}

	for _, injury := range ctx.Injuries {
		severity := injurySeverity(injury.Status)
		for i, m := range adjusted {
			var rho float64
			if lookup != nil {
				if r, ok := lookup(injury.PlayerID, m.SubjectID, m.StatKind); ok {
					rho = r
				}
			}
			delta := severity * injury.Impact * rho
			if delta == 0 {
				continue
			}
			adjusted[i].Mean -= delta
			mult.InjuryDeltas[m.Key()] += delta
		}
	}

	if ctx.Sentiment != nil {
		shift := (*ctx.Sentiment - 0.5) * 2 * sentimentMaxShift
		mult.SentimentShift = clamp(shift, -sentimentMaxShift, sentimentMaxShift)
	}

	return adjusted, mult
}

func injurySeverity(status models.InjuryStatus) float64 {
	switch status {
	case models.InjuryStatusOut:
		return severityOut
	case models.InjuryStatusDoubtful:
		return severityDoubtful
	case models.InjuryStatusQuestionable:
		return severityQuestionable
	case models.InjuryStatusProbable:
		return severityProbable
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampSentimentPrior clamps a posterior probability after a
// sentiment shift has been applied, keeping it inside [0.01, 0.99].
func ClampSentimentPrior(p float64) float64 {
	return clamp(p, sentimentLo, sentimentHi)
}
