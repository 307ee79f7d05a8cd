package snapshotprovider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/parlay-evaluator/internal/models"
)

type fakeProvider struct {
	marginalsCalls    int
	correlationsCalls int
	marginals         []models.Marginal
	rho               float64
	rhoOK             bool
	err               error
}

func (f *fakeProvider) GetMarginals(ctx context.Context, gameID string) ([]models.Marginal, error) {
	f.marginalsCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.marginals, nil
}

func (f *fakeProvider) GetPairCorrelation(ctx context.Context, a, b models.LegKey) (float64, bool, error) {
	f.correlationsCalls++
	if f.err != nil {
		return 0, false, f.err
	}
	return f.rho, f.rhoOK, nil
}

func TestCachedGetMarginalsHitsProviderOnceThenCaches(t *testing.T) {
	fake := &fakeProvider{marginals: []models.Marginal{{SubjectID: "qb1", StatKind: "pass_yards", Stddev: 45}}}
	c := NewCached(fake, fake, time.Minute, logrus.New())

	first, err := c.GetMarginals(context.Background(), "game1")
	require.NoError(t, err)
	second, err := c.GetMarginals(context.Background(), "game1")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.marginalsCalls)
	assert.Equal(t, first, second)
}

func TestCachedGetPairCorrelationCachesMissToo(t *testing.T) {
	fake := &fakeProvider{rho: 0, rhoOK: false}
	c := NewCached(fake, fake, time.Minute, logrus.New())

	a := models.LegKey{SubjectID: "qb1", StatKind: "pass_yards"}
	b := models.LegKey{SubjectID: "rb1", StatKind: "rush_yards"}

	_, ok1, err := c.GetPairCorrelation(context.Background(), a, b)
	require.NoError(t, err)
	_, ok2, err := c.GetPairCorrelation(context.Background(), a, b)
	require.NoError(t, err)

	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, 1, fake.correlationsCalls)
}

func TestCachedInvalidateGameForcesRefetch(t *testing.T) {
	fake := &fakeProvider{marginals: []models.Marginal{{SubjectID: "qb1", StatKind: "pass_yards", Stddev: 45}}}
	c := NewCached(fake, fake, time.Minute, logrus.New())

	_, err := c.GetMarginals(context.Background(), "game1")
	require.NoError(t, err)
	c.InvalidateGame("game1")
	_, err = c.GetMarginals(context.Background(), "game1")
	require.NoError(t, err)

	assert.Equal(t, 2, fake.marginalsCalls)
}

func TestRateLimitedRespectsContextCancellation(t *testing.T) {
	fake := &fakeProvider{}
	r := NewRateLimited(fake, fake, 0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetMarginals(ctx, "game1")
	assert.True(t, errors.Is(err, context.Canceled))
}
