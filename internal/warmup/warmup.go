// Package warmup schedules periodic re-warming of the copula kernel
// and eviction of the snapshot cache, so a long-lived process doesn't
// silently drift onto a cold kernel or a stale snapshot after a
// deploy-time refresh.
package warmup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlay-evaluator/internal/copula"
)

// CacheEvictor is implemented by internal/snapshotprovider.Cached; kept
// as a narrow interface here so warmup doesn't import snapshotprovider
// just for this one method.
type CacheEvictor interface {
	InvalidateGame(gameID string)
}

// Scheduler re-warms the copula kernel and evicts stale per-game cache
// entries on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	warmer    *copula.Warmer
	evictor   CacheEvictor
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// New builds a warmup scheduler bound to the given kernel warmer and
// (optional) cache evictor.
func New(warmer *copula.Warmer, evictor CacheEvictor, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		warmer:  warmer,
		evictor: evictor,
		logger:  logger,
		jobIDs:  make([]cron.EntryID, 0),
	}
}

// ScheduleRewarm re-runs the kernel warmup on the given cron
// expression, e.g. "@every 15m".
func (s *Scheduler) ScheduleRewarm(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while warmup scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.warmer.Warm(ctx)
		// s.warmer only runs its pass once, so each tick uses a fresh Warmer.
		pass := &copula.Warmer{}
		pass.Warm(ctx)
		s.logger.WithField("elapsed_ms", pass.WarmupElapsedMs()).Info("scheduled kernel re-warm completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add rewarm job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, entryID)
	return nil
}

// ScheduleCacheEviction evicts the named game's snapshot cache entry on
// the given cron expression, forcing a refetch on the next evaluate
// call for that game.
func (s *Scheduler) ScheduleCacheEviction(cronExpression, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while warmup scheduler is running")
	}
	if s.evictor == nil {
		return fmt.Errorf("no cache evictor configured")
	}

	jobFunc := func() {
		s.evictor.InvalidateGame(gameID)
		s.logger.WithField("game_id", gameID).Debug("evicted snapshot cache entry")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add cache eviction job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, entryID)
	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("warmup scheduler is already running")
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("job_count", len(s.jobIDs)).Info("warmup scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("warmup scheduler stopped")
}

// IsRunning reports whether the scheduler is currently active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
