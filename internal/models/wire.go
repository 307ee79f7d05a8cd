package models

// WireFactor is the stable wire shape for a single explanation factor.
type WireFactor struct {
	Name       string  `json:"name"`
	Impact     float64 `json:"impact"`
	Direction  string  `json:"direction"`
	Detail     string  `json:"detail"`
	Confidence float64 `json:"confidence"`
}

// WireImputedPair is the stable wire shape for an imputed correlation
// pair: [subject, stat, subject, stat].
type WireImputedPair [4]string

// WireExplanation is the stable wire shape of the explanation block.
type WireExplanation struct {
	Regime          string            `json:"regime"`
	RegimeReasoning string            `json:"regime_reasoning"`
	Factors         []WireFactor      `json:"factors"`
	ImputedPairs    []WireImputedPair `json:"imputed_pairs"`
}

// WireMeta is the stable wire shape of simulation_meta.
type WireMeta struct {
	EvaluationID string  `json:"evaluation_id"`
	Ms           float64 `json:"ms"`
	NSamples     int     `json:"n_samples"`
	Nu           float64 `json:"nu"`
	WarmedUp     bool    `json:"warmed_up"`
	Seed         uint64  `json:"seed"`
}

// WireResult is the stable, external result schema. It is produced
// once, at response emission, from a ParlayEvaluation;
// every other stage operates on the richer internal struct.
type WireResult struct {
	Recommended            bool            `json:"recommended"`
	TrueProbability        float64         `json:"true_probability"`
	ImpliedProbability     float64         `json:"implied_probability"`
	ConfidenceInterval     [2]float64      `json:"confidence_interval"`
	FairOddsAmerican       int             `json:"fair_odds_american"`
	SportsbookOddsAmerican int             `json:"sportsbook_odds_american"`
	EVPct                  float64         `json:"ev_pct"`
	CorrelationMultiplier  float64         `json:"correlation_multiplier"`
	TailRiskFactor         float64         `json:"tail_risk_factor"`
	KellyFraction          float64         `json:"kelly_fraction"`
	Explanation            WireExplanation `json:"explanation"`
	SimulationMeta         WireMeta        `json:"simulation_meta"`
}

// ToWire converts a ParlayEvaluation into the stable external schema.
func (p ParlayEvaluation) ToWire() WireResult {
	factors := make([]WireFactor, len(p.Explanation.Factors))
	for i, f := range p.Explanation.Factors {
		factors[i] = WireFactor{
			Name:       f.Name,
			Impact:     f.Impact,
			Direction:  f.Direction,
			Detail:     f.Detail,
			Confidence: f.Confidence,
		}
	}

	pairs := make([]WireImputedPair, len(p.Explanation.ImputedPairs))
	for i, ip := range p.Explanation.ImputedPairs {
		pairs[i] = WireImputedPair{ip.A.SubjectID, ip.A.StatKind, ip.B.SubjectID, ip.B.StatKind}
	}

	return WireResult{
		Recommended:            p.Recommended,
		TrueProbability:        p.TrueProb,
		ImpliedProbability:     p.ImpliedProb,
		ConfidenceInterval:     [2]float64{p.CILow, p.CIHigh},
		FairOddsAmerican:       p.FairOddsAmerican,
		SportsbookOddsAmerican: p.SportsbookOddsAmerican,
		EVPct:                  p.EVPct,
		CorrelationMultiplier:  p.CorrMultiplier,
		TailRiskFactor:         p.TailRisk,
		KellyFraction:          p.KellyFraction,
		Explanation: WireExplanation{
			Regime:          string(p.Explanation.Regime),
			RegimeReasoning: p.Explanation.RegimeReasoning,
			Factors:         factors,
			ImputedPairs:    pairs,
		},
		SimulationMeta: WireMeta{
			EvaluationID: p.Meta.EvaluationID,
			Ms:           p.Meta.Milliseconds,
			NSamples:     p.Meta.NSamples,
			Nu:           p.Meta.Nu,
			WarmedUp:     p.Meta.WarmedUp,
			Seed:         p.Meta.Seed,
		},
	}
}
