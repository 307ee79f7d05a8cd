package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerDefaultsToInfoOnInvalidLevel(t *testing.T) {
	log := NewLogger("not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesValidLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerProductionUsesJSONFormatter(t *testing.T) {
	log := NewLogger("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	dev := NewLogger("info", "staging")
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
}

func TestEvaluationLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogEvaluationCompleted(
		"game_123",
		3,
		true,
		0.2744,
		3.9,
		187,
		time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "game_123", logEntry["game_id"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, true, logEntry["recommended"])
}

func TestEvaluationLoggerDeadlineExceeded(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogDeadlineExceeded("game_123", "copula_sample", 4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "copula_sample", logEntry["stage"])
}

func TestEvaluationLoggerPSDRepairFallback(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogPSDRepairFallback("game_123", "ridge", -0.012, 2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ridge", logEntry["method"])
	assert.Equal(t, float64(2), logEntry["attempts"])
}

func TestEvaluationLoggerSnapshotCacheEviction(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogSnapshotCacheEviction("game_123", "scheduled_rewarm")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "scheduled_rewarm", logEntry["reason"])
}

func TestEvaluationLoggerKernelWarmupCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogKernelWarmupCompleted(42, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["scheduled"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogEvaluationCompleted("game_123", 3, false, 0.18, -2.1, 210, time.Now())

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkEvaluationLoggerCompleted(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	evalLogger := NewEvaluationLogger(log)

	for i := 0; i < b.N; i++ {
		evalLogger.LogEvaluationCompleted("game_123", 3, true, 0.2744, 3.9, 187, time.Now())
	}
}
