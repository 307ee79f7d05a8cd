// Package metrics provides a centralized Prometheus metrics registry
// for the parlay evaluator service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlay_evaluator",
		Name:      "evaluations_total",
		Help:      "Total number of parlay evaluations by outcome",
	}, []string{"outcome"})

	DeadlineExceededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlay_evaluator",
		Name:      "deadline_exceeded_total",
		Help:      "Total number of evaluations that breached the 500ms deadline",
	})

	PSDRepairsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlay_evaluator",
		Name:      "psd_repairs_total",
		Help:      "Total number of correlation matrix PSD repairs by method",
	}, []string{"method"})

	SnapshotCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlay_evaluator",
		Name:      "snapshot_cache_total",
		Help:      "Total number of snapshot cache lookups by result",
	}, []string{"result"})

	ImputedPairsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlay_evaluator",
		Name:      "imputed_pairs_total",
		Help:      "Total number of pair correlations imputed as zero because no stored correlation existed",
	})
)

// Gauge metrics
var (
	KernelWarmedUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parlay_evaluator",
		Name:      "kernel_warmed_up",
		Help:      "1 if the copula kernel has completed its warmup run, 0 otherwise",
	})

	LastWarmupElapsedMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parlay_evaluator",
		Name:      "last_warmup_elapsed_ms",
		Help:      "Elapsed milliseconds of the most recent kernel warmup run",
	})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlay_evaluator",
		Name:      "evaluation_duration_seconds",
		Help:      "End-to-end duration of the evaluate pipeline",
		Buckets:   []float64{.01, .025, .05, .075, .1, .15, .2, .3, .4, .5},
	})

	KernelLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlay_evaluator",
		Name:      "kernel_latency_seconds",
		Help:      "Duration of the copula Monte Carlo kernel alone, excluding snapshot I/O",
		Buckets:   []float64{.01, .025, .05, .075, .1, .125, .15, .2, .3},
	})

	LegCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlay_evaluator",
		Name:      "leg_count",
		Help:      "Number of legs per evaluated parlay",
		Buckets:   []float64{1, 2, 3, 4, 5, 6},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(DeadlineExceededTotal)
		registry.MustRegister(PSDRepairsTotal)
		registry.MustRegister(SnapshotCacheTotal)
		registry.MustRegister(ImputedPairsTotal)

		registry.MustRegister(KernelWarmedUp)
		registry.MustRegister(LastWarmupElapsedMs)

		registry.MustRegister(EvaluationDuration)
		registry.MustRegister(KernelLatency)
		registry.MustRegister(LegCount)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluation records a completed evaluation and its duration.
// outcome should be one of: "recommended", "not_recommended".
func RecordEvaluation(outcome string, durationSeconds float64, legCount int) {
	EvaluationsTotal.WithLabelValues(outcome).Inc()
	EvaluationDuration.Observe(durationSeconds)
	LegCount.Observe(float64(legCount))
}

// RecordDeadlineExceeded records a 500ms deadline breach.
func RecordDeadlineExceeded() {
	DeadlineExceededTotal.Inc()
}

// RecordKernelLatency records the copula kernel's own runtime.
func RecordKernelLatency(durationSeconds float64) {
	KernelLatency.Observe(durationSeconds)
}

// RecordPSDRepair records which repair method resolved a non-PSD
// correlation matrix. method should be one of: "none", "eigenvalue_clip",
// "ridge".
func RecordPSDRepair(method string) {
	PSDRepairsTotal.WithLabelValues(method).Inc()
}

// RecordSnapshotCacheResult records a snapshot cache lookup.
// result should be one of: "hit", "miss".
func RecordSnapshotCacheResult(result string) {
	SnapshotCacheTotal.WithLabelValues(result).Inc()
}

// RecordImputedPair records a pair correlation that defaulted to 0
// because no stored correlation existed.
func RecordImputedPair() {
	ImputedPairsTotal.Inc()
}

// SetKernelWarmedUp updates the kernel warmup gauge.
func SetKernelWarmedUp(warmed bool) {
	if warmed {
		KernelWarmedUp.Set(1)
	} else {
		KernelWarmedUp.Set(0)
	}
}

// SetLastWarmupElapsedMs records the most recent warmup run's duration.
func SetLastWarmupElapsedMs(ms float64) {
	LastWarmupElapsedMs.Set(ms)
}
