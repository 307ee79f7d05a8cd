package models

// RegimeLabel is the classifier's assigned game-script label.
type RegimeLabel string

const (
	RegimeBlowout      RegimeLabel = "BLOWOUT"
	RegimeShootout     RegimeLabel = "SHOOTOUT"
	RegimeDefensive    RegimeLabel = "DEFENSIVE"
	RegimeOvertimeRisk RegimeLabel = "OVERTIME_RISK"
	RegimeNormal       RegimeLabel = "NORMAL"
)

// Regime is the output of the regime classifier: a label plus the
// distributional parameters it implies for the copula sampler.
type Regime struct {
	Label      RegimeLabel `json:"label"`
	Nu         float64     `json:"nu" validate:"gte=2.5,lte=30"`
	CorrBoost  float64     `json:"corr_boost" validate:"gte=0.8,lte=1.5"`
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence" validate:"gte=0,lte=1"`
}
