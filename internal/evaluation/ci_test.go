package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWilsonIntervalWithinNormalApprox(t *testing.T) {
	// In the well-behaved regime (p away from 0/1, large n) Wilson and
	// the normal approximation should nearly coincide.
	hits, n := 2850, 10000
	wLow, wHigh := WilsonInterval(hits, n)
	nLow, nHigh := normalApproxInterval(hits, n)
	assert.InDelta(t, nLow, wLow, 0.01)
	assert.InDelta(t, nHigh, wHigh, 0.01)
}

func TestWilsonIntervalBounded(t *testing.T) {
	low, high := WilsonInterval(1, 10000)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 1.0)
	assert.True(t, low <= high)
}

func TestWilsonIntervalZeroHits(t *testing.T) {
	low, high := WilsonInterval(0, 1000)
	assert.Equal(t, 0.0, math.Max(0, low))
	assert.Greater(t, high, 0.0)
}
