package evaluation

import "math"

// wilsonZ95 is the z-score for a 95% confidence interval.
const wilsonZ95 = 1.959963984540054

// WilsonInterval computes the Wilson score interval for a Bernoulli
// proportion hits/n at the 95% level. Wilson stays well-behaved near
// 0 and 1 where the plain normal approximation does not;
// normalApproxInterval below is kept as a sanity check.
func WilsonInterval(hits, n int) (low, high float64) {
	if n <= 0 {
		return 0, 0
	}
	p := float64(hits) / float64(n)
	z2 := wilsonZ95 * wilsonZ95
	denom := 1 + z2/float64(n)
	center := p + z2/(2*float64(n))
	margin := wilsonZ95 * math.Sqrt(p*(1-p)/float64(n)+z2/(4*float64(n)*float64(n)))

	low = (center - margin) / denom
	high = (center + margin) / denom
	if low < 0 {
		low = 0
	}
	if high > 1 {
		high = 1
	}
	return low, high
}

// normalApproxInterval is the simpler p ± 1.96*sqrt(p(1-p)/n)
// approximation. Kept only to validate that the Wilson bounds stay
// close to it in the well-behaved (not-near-0-or-1) regime tests
// exercise.
func normalApproxInterval(hits, n int) (low, high float64) {
	if n <= 0 {
		return 0, 0
	}
	p := float64(hits) / float64(n)
	stderr := math.Sqrt(p * (1 - p) / float64(n))
	low = p - wilsonZ95*stderr
	high = p + wilsonZ95*stderr
	if low < 0 {
		low = 0
	}
	if high > 1 {
		high = 1
	}
	return low, high
}
