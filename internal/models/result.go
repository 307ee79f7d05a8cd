package models

// SimulationResult is the raw output of the copula sampler before
// EV/CI/odds processing.
type SimulationResult struct {
	TrueProb       float64   `json:"true_prob"`
	CILow          float64   `json:"ci_low"`
	CIHigh         float64   `json:"ci_high"`
	CorrMultiplier float64   `json:"corr_multiplier"`
	TailRisk       float64   `json:"tail_risk"`
	PerLegHitRate  []float64 `json:"per_leg_hit_rate"`
}

// Factor is a single named, signed contribution to the explanation.
type Factor struct {
	Name       string  `json:"name"`
	Impact     float64 `json:"impact"`
	Direction  string  `json:"direction"`
	Detail     string  `json:"detail"`
	Confidence float64 `json:"confidence"`
}

// ImputedPair records a leg pair whose correlation was not found in
// the snapshot and was defaulted to 0.
type ImputedPair struct {
	A LegKey
	B LegKey
}

// Explanation is the XAI attributor's output: ranked factors plus the
// regime rationale and a record of which correlations were imputed.
type Explanation struct {
	Regime          RegimeLabel   `json:"regime"`
	RegimeReasoning string        `json:"regime_reasoning"`
	Factors         []Factor      `json:"factors"`
	ImputedPairs    []ImputedPair `json:"imputed_pairs"`
}

// SimulationMeta records the operating parameters and timing of a run,
// used both for the wire response and for observability.
type SimulationMeta struct {
	EvaluationID string  `json:"evaluation_id"`
	Milliseconds float64 `json:"ms"`
	NSamples     int     `json:"n_samples"`
	Nu           float64 `json:"nu"`
	WarmedUp     bool    `json:"warmed_up"`
	Seed         uint64  `json:"seed"`
}

// ParlayEvaluation is SimulationResult extended with the pricing and
// explanation fields the evaluate operation returns.
type ParlayEvaluation struct {
	SimulationResult
	ImpliedProb            float64        `json:"implied_prob"`
	EVPct                  float64        `json:"ev_pct"`
	FairOddsAmerican       int            `json:"fair_odds_american"`
	SportsbookOddsAmerican int            `json:"sportsbook_odds_american"`
	KellyFraction          float64        `json:"kelly_fraction" validate:"gte=0,lte=0.25"`
	Recommended            bool           `json:"recommended"`
	Explanation            Explanation    `json:"explanation"`
	Meta                   SimulationMeta `json:"simulation_meta"`
}
