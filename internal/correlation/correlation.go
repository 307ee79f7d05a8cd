// Package correlation assembles the symmetric correlation matrix
// across a parlay's legs, applying direction sign-flips and the
// regime's correlation boost.
package correlation

import "github.com/yourusername/parlay-evaluator/internal/models"

// clipBound is the matrix-wide off-diagonal clip applied after the
// regime boost, keeping the assembled matrix numerically safe.
const clipBound = 0.98

// Lookup resolves a stored pair correlation. ok=false means no
// correlation was recorded for the pair, which the assembler defaults
// to 0 and records as imputed.
type Lookup func(a, b models.LegKey) (rho float64, ok bool)

// Matrix is the assembled n x n correlation matrix plus the set of
// pairs that had no stored correlation and were defaulted to 0.
type Matrix struct {
	R            [][]float64
	ImputedPairs []models.ImputedPair
}

// Assemble builds the correlation matrix for a slice of legs.
func Assemble(legs []models.Leg, lookup Lookup, corrBoost float64) Matrix {
	n := len(legs)
	r := make([][]float64, n)
	for i := range r {
		r[i] = make([]float64, n)
		r[i][i] = 1
	}

	var imputed []models.ImputedPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			keyA, keyB := legs[i].Key(), legs[j].Key()
			rho, ok := 0.0, false
			if lookup != nil {
				rho, ok = lookup(keyA, keyB)
			}
			if !ok {
				imputed = append(imputed, models.ImputedPair{A: keyA, B: keyB})
				rho = 0
			}

			if legs[i].Direction == models.DirectionUnder {
				rho *= -1
			}
			if legs[j].Direction == models.DirectionUnder {
				rho *= -1
			}

			rho *= corrBoost
			rho = clip(rho, -clipBound, clipBound)

			r[i][j] = rho
			r[j][i] = rho
		}
	}

	return Matrix{R: r, ImputedPairs: imputed}
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
