package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

func f(v float64) *float64 { return &v }

func TestClassifyBlowout(t *testing.T) {
	r := Classify(models.GameContext{Spread: f(-14)})
	assert.Equal(t, models.RegimeBlowout, r.Label)
	assert.Equal(t, 3.0, r.Nu)
	assert.Equal(t, 1.25, r.CorrBoost)
	assert.GreaterOrEqual(t, r.Confidence, 0.5)
	assert.LessOrEqual(t, r.Confidence, 0.95)
}

func TestClassifyShootout(t *testing.T) {
	r := Classify(models.GameContext{Spread: f(2), Total: f(55), HomeOffEff: f(0.12), AwayOffEff: f(0.10)})
	assert.Equal(t, models.RegimeShootout, r.Label)
	assert.Equal(t, 4.0, r.Nu)
}

func TestClassifyDefensive(t *testing.T) {
	r := Classify(models.GameContext{Spread: f(2), Total: f(36), HomeDefEff: f(-0.15), AwayDefEff: f(-0.12)})
	assert.Equal(t, models.RegimeDefensive, r.Label)
	assert.Equal(t, 6.0, r.Nu)
}

func TestClassifyOvertimeRisk(t *testing.T) {
	r := Classify(models.GameContext{Spread: f(1), Total: f(46)})
	assert.Equal(t, models.RegimeOvertimeRisk, r.Label)
	assert.Equal(t, 3.5, r.Nu)
}

func TestClassifyNormal(t *testing.T) {
	r := Classify(models.GameContext{Spread: f(4), Total: f(42)})
	assert.Equal(t, models.RegimeNormal, r.Label)
	assert.Equal(t, 5.0, r.Nu)
	assert.Equal(t, 0.6, r.Confidence)
}

func TestClassifyRuleOrderBlowoutWins(t *testing.T) {
	// spread qualifies for BLOWOUT even though total also satisfies SHOOTOUT
	r := Classify(models.GameContext{Spread: f(11), Total: f(55), HomeOffEff: f(0.2), AwayOffEff: f(0.2)})
	assert.Equal(t, models.RegimeBlowout, r.Label)
}
