package snapshotprovider

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/parlay-evaluator/internal/metrics"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

// Cached wraps a MarginalProvider and PairCorrelationProvider pair
// with an in-memory TTL cache: a cache-miss falls through to the
// wrapped provider and the result is stored before returning.
type Cached struct {
	marginals    MarginalProvider
	correlations PairCorrelationProvider
	cache        *cache.Cache
	ttl          time.Duration
	logger       *logrus.Logger
}

// NewCached builds a cached snapshot provider pair with the given TTL.
func NewCached(marginals MarginalProvider, correlations PairCorrelationProvider, ttl time.Duration, logger *logrus.Logger) *Cached {
	return &Cached{
		marginals:    marginals,
		correlations: correlations,
		cache:        cache.New(ttl, ttl*2),
		ttl:          ttl,
		logger:       logger,
	}
}

// GetMarginals returns the cached marginal list for a game, falling
// through to the wrapped provider on a miss.
func (c *Cached) GetMarginals(ctx context.Context, gameID string) ([]models.Marginal, error) {
	key := "marginals:" + gameID
	if cached, found := c.cache.Get(key); found {
		if m, ok := cached.([]models.Marginal); ok {
			c.logger.WithField("game_id", gameID).Debug("snapshot cache hit for marginals")
			metrics.RecordSnapshotCacheResult("hit")
			return m, nil
		}
	}

	metrics.RecordSnapshotCacheResult("miss")
	m, err := c.marginals.GetMarginals(ctx, gameID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, m, c.ttl)
	return m, nil
}

// GetPairCorrelation returns the cached pairwise correlation for a
// leg pair, falling through to the wrapped provider on a miss. A
// cached "not found" is stored too, so repeated lookups for an
// imputed pair don't keep re-querying the snapshot source.
func (c *Cached) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	key := models.CorrelationKey{A: a, B: b}.Normalized()
	cacheKey := "corr:" + key.A.SubjectID + ":" + key.A.StatKind + ":" + key.B.SubjectID + ":" + key.B.StatKind

	if cached, found := c.cache.Get(cacheKey); found {
		if entry, ok := cached.(correlationCacheEntry); ok {
			return entry.rho, entry.ok, nil
		}
	}

	rho, ok, err := c.correlations.GetPairCorrelation(ctx, a, b)
	if err != nil {
		return 0, false, err
	}
	c.cache.Set(cacheKey, correlationCacheEntry{rho: rho, ok: ok}, c.ttl)
	return rho, ok, nil
}

// InvalidateGame evicts every cached entry for a game's marginals,
// used by internal/warmup after a snapshot refresh.
func (c *Cached) InvalidateGame(gameID string) {
	c.cache.Delete("marginals:" + gameID)
}

type correlationCacheEntry struct {
	rho float64
	ok  bool
}
