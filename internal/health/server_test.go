package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// stubKernel reports a fixed warmup state.
type stubKernel struct {
	warmed bool
}

func (s stubKernel) IsWarmedUp() bool { return s.warmed }

func TestHandleHealthAlwaysOK(t *testing.T) {
	s := NewServer(Config{ServiceName: "parlay-evaluator", Logger: testLogger()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleReadyNotReadyOnColdKernel(t *testing.T) {
	s := NewServer(Config{ServiceName: "parlay-evaluator", Logger: testLogger(), Kernel: stubKernel{warmed: false}})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.handleReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "cold", resp.Checks["kernel"])
}

func TestHandleReadyReadyAfterKernelWarmup(t *testing.T) {
	s := NewServer(Config{ServiceName: "parlay-evaluator", Logger: testLogger(), Kernel: stubKernel{warmed: true}})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.handleReady(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "warmed", resp.Checks["kernel"])
}

func TestHandleLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "parlay-evaluator", Logger: testLogger()})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	s.handleLive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartAndShutdown(t *testing.T) {
	s := NewServer(Config{ServiceName: "parlay-evaluator", Port: "0", Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	require.NoError(t, s.Shutdown())
}
