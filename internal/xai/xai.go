// Package xai produces a ranked, signed explanation of which context
// effects moved a parlay's true probability, without re-running the
// Monte Carlo kernel for every counterfactual.
package xai

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/parlay-evaluator/internal/models"
	"github.com/yourusername/parlay-evaluator/internal/quantizer"
)

// topN caps the ranked factor list.
const topN = 8

// LegContext carries the per-leg state the attributor needs to turn a
// mean/threshold shift into an estimated true_prob impact, without
// access to the marginals or the Monte Carlo sampler.
type LegContext struct {
	Key                  models.LegKey
	Sign                 float64 // leg direction sign, ±1
	Stddev               float64 // marginal stddev used to standardize the threshold
	OriginalMean         float64 // pre-quantizer mean, before weather/injury adjustment
	Z                    float64 // standardized threshold actually used by the sampler
	HitRate              float64 // copula per-leg hit rate
	IsPassingOrReceiving bool
}

// Input bundles everything the attributor needs: the regime, the
// quantizer's named multipliers, per-leg sensitivities, the
// simulation's aggregate statistics, and context for steam/matchup
// factors.
type Input struct {
	Regime         models.Regime
	Multipliers    quantizer.Multipliers
	Legs           []LegContext
	TrueProb       float64
	CorrMultiplier float64
	ImputedPairs   []models.ImputedPair
	Ctx            models.GameContext
	InjuryLookup   quantizer.CorrelationLookup
}

// Attribute produces the ranked factor list plus the regime reasoning
// passthrough. Each factor's magnitude is a one-at-a-time
// counterfactual — how much true_prob would change if the effect were
// removed — estimated via a linearized sensitivity rather than a full
// rerun. Sign follows the helps/hurts convention: negative impact
// means the effect works against the parlay.
func Attribute(in Input) models.Explanation {
	var factors []models.Factor

	if f, ok := weatherFactor("Weather: Wind", in.Multipliers.WindPassingPenalty, in); ok {
		factors = append(factors, f)
	}
	if f, ok := weatherFactor("Weather: Temperature", in.Multipliers.TemperaturePenalty, in); ok {
		factors = append(factors, f)
	}
	if f, ok := weatherFactor("Weather: Precipitation", in.Multipliers.PrecipitationPenalty, in); ok {
		factors = append(factors, f)
	}

	for _, injury := range in.Ctx.Injuries {
		factors = append(factors, injuryFactor(injury, in))
	}

	if in.Ctx.SteamMove != nil {
		factors = append(factors, steamFactor(*in.Ctx.SteamMove))
	}

	if f, ok := matchupFactor(in.Ctx); ok {
		factors = append(factors, f)
	}

	factors = append(factors, regimeBoostFactor(in.Regime, in.TrueProb, in.CorrMultiplier))

	if len(in.ImputedPairs) > 0 {
		factors = append(factors, imputedPairsFactor(in.ImputedPairs))
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Impact) > math.Abs(factors[j].Impact)
	})
	if len(factors) > topN {
		factors = factors[:topN]
	}

	return models.Explanation{
		Regime:          in.Regime.Label,
		RegimeReasoning: in.Regime.Reasoning,
		Factors:         factors,
		ImputedPairs:    in.ImputedPairs,
	}
}

// weatherFactor sums the true_prob contribution of a single weather
// penalty component (wind, temperature, or precipitation) across every
// affected (passing/receiving) leg. The magnitude is the one-at-a-time
// removal counterfactual; the sign follows the helps/hurts convention
// (negative = the effect hurts the parlay).
func weatherFactor(name string, penaltyFraction float64, in Input) (models.Factor, bool) {
	if penaltyFraction == 0 {
		return models.Factor{}, false
	}
	var impact float64
	for _, leg := range in.Legs {
		if !leg.IsPassingOrReceiving {
			continue
		}
		deltaMean := leg.OriginalMean * penaltyFraction
		deltaZ := leg.Sign / leg.Stddev * deltaMean
		impact -= legImpact(in.TrueProb, leg.HitRate, leg.Z, deltaZ)
	}
	return models.Factor{
		Name:       name,
		Impact:     impact,
		Direction:  direction(impact),
		Detail:     fmt.Sprintf("penalty fraction %.3f removed from affected legs' means", penaltyFraction),
		Confidence: clip(math.Abs(penaltyFraction)/0.40, 0, 1),
	}, true
}

// injuryFactor estimates the true_prob contribution of a single
// injury, summing its correlated effect across every leg. Negative
// impact means the injury hurts the parlay.
func injuryFactor(injury models.Injury, in Input) models.Factor {
	severity := injurySeverity(injury.Status)
	var impact float64
	for _, leg := range in.Legs {
		var rho float64
		if in.InjuryLookup != nil {
			if r, ok := in.InjuryLookup(injury.PlayerID, leg.Key.SubjectID, leg.Key.StatKind); ok {
				rho = r
			}
		}
		deltaMean := severity * injury.Impact * rho
		deltaZ := leg.Sign / leg.Stddev * deltaMean
		impact -= legImpact(in.TrueProb, leg.HitRate, leg.Z, deltaZ)
	}
	return models.Factor{
		Name:       fmt.Sprintf("Injury: %s (%s)", injury.PlayerID, injury.Status),
		Impact:     impact,
		Direction:  direction(impact),
		Detail:     fmt.Sprintf("severity %.2f, impact %.2f", severity, injury.Impact),
		Confidence: clip(severity*injury.Impact, 0, 1),
	}
}

// steamFactor surfaces sharp-money line movement as a factor. It is
// sourced purely from the optional GameContext.SteamMove field — it
// never affects marginals or the simulation, only the explanation.
func steamFactor(move models.SteamMove) models.Factor {
	sign := 1.0
	if move.Direction == models.SteamDirectionUnfavorable {
		sign = -1.0
	}
	impact := sign * (move.MagnitudeCents / 100) * 0.01
	return models.Factor{
		Name:       "Sharp money / steam",
		Impact:     impact,
		Direction:  direction(impact),
		Detail:     fmt.Sprintf("%s move, %.0f cents", move.Direction, move.MagnitudeCents),
		Confidence: clip(move.Confidence, 0, 1),
	}
}

// matchupFactor attributes a mismatch factor from the same
// offense/defense efficiency fields the regime classifier already
// consumes: no new model field is needed.
func matchupFactor(ctx models.GameContext) (models.Factor, bool) {
	if ctx.HomeOffEff == nil && ctx.AwayOffEff == nil && ctx.HomeDefEff == nil && ctx.AwayDefEff == nil {
		return models.Factor{}, false
	}
	mismatch := ctx.AvgOffEff() + ctx.AvgDefEff()
	if mismatch == 0 {
		return models.Factor{}, false
	}
	return models.Factor{
		Name:       "Matchup: efficiency mismatch",
		Impact:     mismatch * 0.05,
		Direction:  direction(mismatch),
		Detail:     fmt.Sprintf("avg_off_eff=%.3f, avg_def_eff=%.3f", ctx.AvgOffEff(), ctx.AvgDefEff()),
		Confidence: clip(math.Abs(mismatch)/0.25, 0, 1),
	}, true
}

// regimeBoostFactor attributes the correlation lift the regime's
// corr_boost contributed, approximated as the gap between the
// observed correlation multiplier and independence (1.0).
func regimeBoostFactor(r models.Regime, trueProb, corrMultiplier float64) models.Factor {
	impact := trueProb * (corrMultiplier - 1) / math.Max(corrMultiplier, 1e-6)
	return models.Factor{
		Name:       fmt.Sprintf("Regime: %s", r.Label),
		Impact:     impact,
		Direction:  direction(impact),
		Detail:     r.Reasoning,
		Confidence: r.Confidence,
	}
}

// imputedPairsFactor flags that one or more pair correlations were
// missing from the snapshot and defaulted to 0, a conservative choice
// that may understate true correlation lift.
func imputedPairsFactor(pairs []models.ImputedPair) models.Factor {
	return models.Factor{
		Name:       "Correlation: imputed pairs",
		Impact:     0,
		Direction:  "negative",
		Detail:     fmt.Sprintf("%d pair(s) defaulted to rho=0", len(pairs)),
		Confidence: 0.5,
	}
}

// legImpact linearizes d(true_prob)/dz_i via a standard-normal density
// proxy for the per-leg win-rate curve, then scales by the threshold
// shift the named effect caused. This avoids re-running the Monte
// Carlo kernel per factor, at the cost of a first-order approximation.
func legImpact(trueProb, hitRate, z, deltaZ float64) float64 {
	if hitRate <= 0 {
		hitRate = 1e-6
	}
	phi := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	return (trueProb / hitRate) * phi * deltaZ
}

func direction(impact float64) string {
	if impact < 0 {
		return "negative"
	}
	return "positive"
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func injurySeverity(status models.InjuryStatus) float64 {
	return status.Severity()
}
