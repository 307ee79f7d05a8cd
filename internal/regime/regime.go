// Package regime classifies a game's expected script from pregame
// context and selects the Student-t degrees of freedom and
// correlation boost the copula sampler should use.
package regime

import (
	"fmt"
	"math"

	"github.com/yourusername/parlay-evaluator/internal/models"
)

// thresholds mirror the decision ladder's literal constants. Named
// here so the classify function reads as the ladder rather than a
// wall of magic numbers.
const (
	blowoutSpread       = 10.0
	shootoutTotal       = 52.0
	shootoutOffEff      = 0.10
	defensiveTotal      = 40.0
	defensiveDefEff     = -0.10
	overtimeSpreadLimit = 3.0
	overtimeTotalLow    = 44.0
	overtimeTotalHigh   = 49.0

	normalConfidence = 0.6
	minConfidence    = 0.5
	maxConfidence    = 0.95
)

// Classify applies the regime decision ladder: the first matching
// rule wins.
func Classify(ctx models.GameContext) models.Regime {
	spread := deref(ctx.Spread)
	total := deref(ctx.Total)
	avgOffEff := ctx.AvgOffEff()
	avgDefEff := ctx.AvgDefEff()

	if math.Abs(spread) >= blowoutSpread {
		strength := clip(math.Abs(spread)/blowoutSpread, minConfidence, maxConfidence)
		return models.Regime{
			Label:      models.RegimeBlowout,
			Nu:         3.0,
			CorrBoost:  1.25,
			Confidence: strength,
			Reasoning:  fmt.Sprintf("|spread|=%.1f >= %.1f triggers BLOWOUT", math.Abs(spread), blowoutSpread),
		}
	}

	if total >= shootoutTotal && avgOffEff >= shootoutOffEff {
		strength := clip(math.Min(total/shootoutTotal, avgOffEff/shootoutOffEff), minConfidence, maxConfidence)
		return models.Regime{
			Label:      models.RegimeShootout,
			Nu:         4.0,
			CorrBoost:  1.15,
			Confidence: strength,
			Reasoning:  fmt.Sprintf("total=%.1f >= %.1f and avg_off_eff=%.3f >= %.2f triggers SHOOTOUT", total, shootoutTotal, avgOffEff, shootoutOffEff),
		}
	}

	if total <= defensiveTotal && avgDefEff <= defensiveDefEff {
		strength := clip(math.Min(defensiveTotal/math.Max(total, 1), avgDefEff/defensiveDefEff), minConfidence, maxConfidence)
		return models.Regime{
			Label:      models.RegimeDefensive,
			Nu:         6.0,
			CorrBoost:  1.05,
			Confidence: strength,
			Reasoning:  fmt.Sprintf("total=%.1f <= %.1f and avg_def_eff=%.3f <= %.2f triggers DEFENSIVE", total, defensiveTotal, avgDefEff, defensiveDefEff),
		}
	}

	if math.Abs(spread) <= overtimeSpreadLimit && total >= overtimeTotalLow && total <= overtimeTotalHigh {
		closeness := (overtimeSpreadLimit - math.Abs(spread)) / overtimeSpreadLimit
		strength := clip(0.5+closeness/2, minConfidence, maxConfidence)
		return models.Regime{
			Label:      models.RegimeOvertimeRisk,
			Nu:         3.5,
			CorrBoost:  1.20,
			Confidence: strength,
			Reasoning:  fmt.Sprintf("|spread|=%.1f <= %.1f and total=%.1f in [%.0f,%.0f] triggers OVERTIME_RISK", math.Abs(spread), overtimeSpreadLimit, total, overtimeTotalLow, overtimeTotalHigh),
		}
	}

	return models.Regime{
		Label:      models.RegimeNormal,
		Nu:         5.0,
		CorrBoost:  1.00,
		Confidence: normalConfidence,
		Reasoning:  "no regime rule triggered, defaulting to NORMAL",
	}
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

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
