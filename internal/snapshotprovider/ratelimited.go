package snapshotprovider

import (
	"context"

	"github.com/yourusername/parlay-evaluator/internal/models"
	"golang.org/x/time/rate"
)

// RateLimited wraps a MarginalProvider/PairCorrelationProvider pair
// that calls out to an external collaborator, bounding its outbound
// call rate. The limiter itself is in-repo plumbing; the provider it
// wraps is the external concern.
type RateLimited struct {
	marginals    MarginalProvider
	correlations PairCorrelationProvider
	limiter      *rate.Limiter
}

// NewRateLimited builds a rate-limited wrapper allowing rps requests
// per second with the given burst.
func NewRateLimited(marginals MarginalProvider, correlations PairCorrelationProvider, rps float64, burst int) *RateLimited {
	return &RateLimited{
		marginals:    marginals,
		correlations: correlations,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// GetMarginals waits for rate-limiter permission before delegating.
func (r *RateLimited) GetMarginals(ctx context.Context, gameID string) ([]models.Marginal, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.marginals.GetMarginals(ctx, gameID)
}

// GetPairCorrelation waits for rate-limiter permission before delegating.
func (r *RateLimited) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, false, err
	}
	return r.correlations.GetPairCorrelation(ctx, a, b)
}
