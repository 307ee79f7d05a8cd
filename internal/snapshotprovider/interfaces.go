// Package snapshotprovider defines the read-only external collaborator
// interfaces the orchestrator pulls marginals and pair correlations
// from, plus concrete Postgres, cached, and rate-limited adapters.
package snapshotprovider

import (
	"context"

	"github.com/yourusername/parlay-evaluator/internal/models"
)

// MarginalProvider resolves the per-subject-stat marginals for a game.
type MarginalProvider interface {
	GetMarginals(ctx context.Context, gameID string) ([]models.Marginal, error)
}

// PairCorrelationProvider resolves a stored pairwise correlation.
// ok is false when no stored
// correlation exists for the pair, which the correlation assembler
// treats as a value (imputed to 0) rather than an error.
type PairCorrelationProvider interface {
	GetPairCorrelation(ctx context.Context, a, b models.LegKey) (rho float64, ok bool, err error)
}
