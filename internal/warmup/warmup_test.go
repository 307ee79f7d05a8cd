package warmup

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/parlay-evaluator/internal/copula"
)

type fakeEvictor struct {
	invalidated []string
}

func (f *fakeEvictor) InvalidateGame(gameID string) {
	f.invalidated = append(f.invalidated, gameID)
}

func TestScheduleRewarmThenStart(t *testing.T) {
	s := New(&copula.Warmer{}, nil, logrus.New())
	require.NoError(t, s.ScheduleRewarm("@every 1h"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
}

func TestScheduleRewarmRejectedOnceRunning(t *testing.T) {
	s := New(&copula.Warmer{}, nil, logrus.New())
	require.NoError(t, s.ScheduleRewarm("@every 1h"))
	require.NoError(t, s.Start())
	defer s.Stop()

	err := s.ScheduleRewarm("@every 1h")
	assert.Error(t, err)
}

func TestScheduleCacheEvictionRequiresEvictor(t *testing.T) {
	s := New(&copula.Warmer{}, nil, logrus.New())
	err := s.ScheduleCacheEviction("@every 1h", "game1")
	assert.Error(t, err)
}

func TestScheduleCacheEvictionWithEvictor(t *testing.T) {
	evictor := &fakeEvictor{}
	s := New(&copula.Warmer{}, evictor, logrus.New())
	require.NoError(t, s.ScheduleCacheEviction("@every 1h", "game1"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
}

func TestStopIsIdempotentWhenNeverStarted(t *testing.T) {
	s := New(&copula.Warmer{}, nil, logrus.New())
	assert.NotPanics(t, func() { s.Stop() })
	assert.False(t, s.IsRunning())
}
