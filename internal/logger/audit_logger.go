// Package logger provides evaluation audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// EvaluationLogger provides dedicated audit trail logging for the
// evaluate pipeline, separate from the orchestrator's own request
// logging so evaluation outcomes can be filtered on the "audit"
// component alone.
type EvaluationLogger struct {
	*logrus.Entry
}

// NewEvaluationLogger creates a new evaluation audit logger.
func NewEvaluationLogger(baseLogger *logrus.Logger) *EvaluationLogger {
	return &EvaluationLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEvaluationCompleted logs a completed parlay evaluation.
func (el *EvaluationLogger) LogEvaluationCompleted(gameID string, legCount int, recommended bool, trueProb, evPercent float64, elapsedMs int64, timestamp time.Time) {
	el.WithFields(logrus.Fields{
		"game_id":     gameID,
		"leg_count":   legCount,
		"recommended": recommended,
		"true_prob":   trueProb,
		"ev_percent":  evPercent,
		"elapsed_ms":  elapsedMs,
		"timestamp":   timestamp.Unix(),
	}).Info("Parlay evaluation completed")
}

// LogDeadlineExceeded logs a 500ms deadline breach, recording which
// pipeline stage was in flight when the context was cancelled.
func (el *EvaluationLogger) LogDeadlineExceeded(gameID, stage string, legCount int) {
	el.WithFields(logrus.Fields{
		"game_id":   gameID,
		"stage":     stage,
		"leg_count": legCount,
	}).Warn("Evaluation deadline exceeded, returning degraded response")
}

// LogPSDRepairFallback logs when a correlation matrix required more
// than a straightforward eigenvalue clip to become positive
// semi-definite.
func (el *EvaluationLogger) LogPSDRepairFallback(gameID, method string, minEigenvalue float64, attempts int) {
	el.WithFields(logrus.Fields{
		"game_id":        gameID,
		"method":         method,
		"min_eigenvalue": minEigenvalue,
		"attempts":       attempts,
	}).Warn("Correlation matrix required PSD repair")
}

// LogSnapshotCacheEviction logs a scheduled snapshot cache eviction.
func (el *EvaluationLogger) LogSnapshotCacheEviction(gameID, reason string) {
	el.WithFields(logrus.Fields{
		"game_id": gameID,
		"reason":  reason,
	}).Debug("Snapshot cache entry evicted")
}

// LogKernelWarmupCompleted logs a completed copula kernel warmup run.
func (el *EvaluationLogger) LogKernelWarmupCompleted(elapsedMs int64, scheduled bool) {
	el.WithFields(logrus.Fields{
		"elapsed_ms": elapsedMs,
		"scheduled":  scheduled,
	}).Info("Copula kernel warmup completed")
}
