// Package psdrepair restores positive-semi-definiteness to a
// correlation matrix and computes its Cholesky factor, which the
// copula sampler uses to correlate independent normal draws.
package psdrepair

import (
	"math"

	"github.com/yourusername/parlay-evaluator/internal/models"
)

const (
	minEigenvalue   = 1e-6
	ridgeStart      = 1e-4
	ridgeCap        = 1e-1
	jacobiSweeps    = 100
	jacobiTolerance = 1e-12
)

// Cholesky attempts the Cholesky factorization of a symmetric matrix
// R, returning its lower-triangular factor L such that L*L^T ≈ R. It
// fails if R is not positive-definite (a negative value would appear
// under a square root).
func Cholesky(r [][]float64) ([][]float64, bool) {
	n := len(r)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := r[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, false
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, true
}

// Repair restores positive-semi-definiteness to R and returns its
// Cholesky factor: attempt Cholesky directly, then eigenvalue
// clipping, then ridge escalation with epsilon doubling up to a cap.
func Repair(r [][]float64) ([][]float64, error) {
	if l, ok := Cholesky(r); ok {
		return l, nil
	}

	clipped := eigenClipAndRescale(r)
	if l, ok := Cholesky(clipped); ok {
		return l, nil
	}

	n := len(r)
	eps := ridgeStart
	for eps <= ridgeCap {
		ridged := applyRidge(r, eps, n)
		if l, ok := Cholesky(ridged); ok {
			return l, nil
		}
		eps *= 2
	}

	return nil, models.ErrNonRepairableCorrelation
}

func applyRidge(r [][]float64, eps float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			v := (1 - eps) * r[i][j]
			if i == j {
				v += eps
			}
			out[i][j] = v
		}
	}
	return out
}

// eigenClipAndRescale computes the symmetric eigendecomposition of R
// via the cyclic Jacobi method, clips eigenvalues to max(λ, 1e-6),
// reconstructs R' = Q·diag(λ')·Qᵀ, then rescales so the diagonal is 1
// again (a correlation matrix is unit-diagonal by definition).
func eigenClipAndRescale(r [][]float64) [][]float64 {
	n := len(r)
	eigenvalues, eigenvectors := jacobiEigen(r)

	for i := range eigenvalues {
		if eigenvalues[i] < minEigenvalue {
			eigenvalues[i] = minEigenvalue
		}
	}

	reconstructed := make([][]float64, n)
	for i := range reconstructed {
		reconstructed[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += eigenvectors[i][k] * eigenvalues[k] * eigenvectors[j][k]
			}
			reconstructed[i][j] = sum
		}
	}

	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		diag[i] = math.Sqrt(reconstructed[i][i])
		if diag[i] <= 0 {
			diag[i] = 1
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			reconstructed[i][j] /= diag[i] * diag[j]
		}
	}
	for i := 0; i < n; i++ {
		reconstructed[i][i] = 1
	}

	return reconstructed
}

// jacobiEigen computes the eigenvalues and eigenvectors of a
// symmetric matrix via the classical cyclic Jacobi rotation method.
// This is ample for the n≤6 matrices the evaluator ever builds.
func jacobiEigen(a [][]float64) ([]float64, [][]float64) {
	n := len(a)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
	}
	v := identity(n)

	for sweep := 0; sweep < jacobiSweeps; sweep++ {
		off := offDiagonalNorm(m)
		if off < jacobiTolerance {
			break
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < 1e-15 {
					continue
				}
				theta := (m[q][q] - m[p][p]) / (2 * m[p][q])
				t := sign(theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				mpp, mqq, mpq := m[p][p], m[q][q], m[p][q]
				m[p][p] = c*c*mpp - 2*s*c*mpq + s*s*mqq
				m[q][q] = s*s*mpp + 2*s*c*mpq + c*c*mqq
				m[p][q] = 0
				m[q][p] = 0

				for i := 0; i < n; i++ {
					if i != p && i != q {
						mip, miq := m[i][p], m[i][q]
						m[i][p] = c*mip - s*miq
						m[p][i] = m[i][p]
						m[i][q] = s*mip + c*miq
						m[q][i] = m[i][q]
					}
				}
				for i := 0; i < n; i++ {
					vip, viq := v[i][p], v[i][q]
					v[i][p] = c*vip - s*viq
					v[i][q] = s*vip + c*viq
				}
			}
		}
	}

	eigenvalues := make([]float64, n)
	for i := 0; i < n; i++ {
		eigenvalues[i] = m[i][i]
	}
	return eigenvalues, v
}

func offDiagonalNorm(m [][]float64) float64 {
	n := len(m)
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m[i][j] * m[i][j]
		}
	}
	return sum
}

func identity(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}
	return out
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
