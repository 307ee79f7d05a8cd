// Package main provides the entry point for the evaluate service: a
// long-lived process that warms the copula kernel, serves health and
// metrics endpoints, runs the periodic re-warm/cache-eviction
// schedule, and answers one evaluate request per invocation, printing
// the stable wire JSON result to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlay-evaluator/internal/config"
	"github.com/yourusername/parlay-evaluator/internal/database"
	"github.com/yourusername/parlay-evaluator/internal/evaluation"
	"github.com/yourusername/parlay-evaluator/internal/health"
	evlogger "github.com/yourusername/parlay-evaluator/internal/logger"
	"github.com/yourusername/parlay-evaluator/internal/metrics"
	"github.com/yourusername/parlay-evaluator/internal/models"
	"github.com/yourusername/parlay-evaluator/internal/orchestrator"
	"github.com/yourusername/parlay-evaluator/internal/snapshotprovider"
	"github.com/yourusername/parlay-evaluator/internal/warmup"
)

// evaluateRequest is the on-disk/stdin shape of one evaluate call,
// matching orchestrator.Request field-for-field.
type evaluateRequest struct {
	GameID      string             `json:"game_id"`
	Context     models.GameContext `json:"game_context"`
	Legs        []models.Leg       `json:"legs"`
	Seed        uint64             `json:"seed,omitempty"`
	SampleCount int                `json:"sample_count,omitempty"`
}

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		requestPath = flag.String("request", "", "Path to an evaluate request JSON file (default: stdin)")
		serve       = flag.Bool("serve", false, "Keep serving health/metrics after the evaluation instead of exiting")
	)
	flag.Parse()

	bootLogger := logrus.New()
	cfg := loadConfigWithSecrets(*configPath, bootLogger)
	baseLogger := evlogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	evalLogger := evlogger.NewEvaluationLogger(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := readRequest(*requestPath)
	if err != nil {
		baseLogger.Fatalf("failed to read evaluate request: %v", err)
	}

	db, err := database.NewDB(ctx, &cfg.Snapshot.Database)
	if err != nil {
		baseLogger.Fatalf("failed to connect to snapshot database: %v", err)
	}
	defer db.Close()

	cached := snapshotprovider.NewCached(
		snapshotprovider.NewPostgres(db.GetPool()),
		snapshotprovider.NewPostgres(db.GetPool()),
		time.Duration(cfg.Snapshot.CacheTTLSeconds)*time.Second,
		baseLogger,
	)
	limited := snapshotprovider.NewRateLimited(cached, cached, cfg.Snapshot.RateLimitRPS, cfg.Snapshot.RateLimitBurst)

	orch := orchestrator.New(limited, limited, baseLogger)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go serveMetrics(cfg, baseLogger)
	}

	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        fmt.Sprintf("%d", cfg.Metrics.HealthPort),
		Logger:      baseLogger,
		DB:          db,
		Kernel:      orch.Warmer(),
	})
	if err := healthSrv.Start(ctx); err != nil {
		baseLogger.Fatalf("failed to start health server: %v", err)
	}

	warmStart := time.Now()
	orch.Warmup(ctx)
	evalLogger.LogKernelWarmupCompleted(time.Since(warmStart).Milliseconds(), false)
	metrics.SetKernelWarmedUp(true)
	metrics.SetLastWarmupElapsedMs(float64(time.Since(warmStart).Milliseconds()))

	scheduler := warmup.New(orch.Warmer(), cached, baseLogger)
	if cfg.Warmup.RewarmCron != "" {
		if err := scheduler.ScheduleRewarm(cfg.Warmup.RewarmCron); err != nil {
			baseLogger.WithError(err).Warn("failed to schedule kernel re-warm")
		}
	}
	if cfg.Warmup.CacheEvictionCron != "" {
		if err := scheduler.ScheduleCacheEviction(cfg.Warmup.CacheEvictionCron, req.GameID); err != nil {
			baseLogger.WithError(err).Warn("failed to schedule cache eviction")
		}
	}
	if err := scheduler.Start(); err != nil {
		baseLogger.WithError(err).Warn("failed to start warmup scheduler")
	}
	defer scheduler.Stop()

	start := time.Now()
	result, err := orch.Evaluate(ctx, orchestrator.Request{
		GameID:      req.GameID,
		Context:     req.Context,
		Legs:        req.Legs,
		Seed:        req.Seed,
		SampleCount: req.SampleCount,
	})
	elapsed := time.Since(start)

	if err != nil {
		code := models.ToErrorCode(err)
		if code == models.ErrorCodeDeadlineExceeded {
			metrics.RecordDeadlineExceeded()
			evalLogger.LogDeadlineExceeded(req.GameID, "evaluate", len(req.Legs))
		}
		printWireError(code, err)
		if code != models.ErrorCodeDeadlineExceeded {
			os.Exit(1)
		}
	} else {
		outcome := "not_recommended"
		if result.Recommended {
			outcome = "recommended"
		}
		metrics.RecordEvaluation(outcome, elapsed.Seconds(), len(req.Legs))
		metrics.RecordKernelLatency(result.Meta.Milliseconds / 1000)
		for range result.Explanation.ImputedPairs {
			metrics.RecordImputedPair()
		}
		evalLogger.LogEvaluationCompleted(req.GameID, len(req.Legs), result.Recommended, result.TrueProb, result.EVPct, elapsed.Milliseconds(), time.Now())
		if result.Recommended {
			bankroll, parseErr := decimal.NewFromString(cfg.Staking.DefaultBankrollUSD)
			if parseErr == nil {
				stake := evaluation.KellyStakeUSD(result.KellyFraction, bankroll)
				baseLogger.WithFields(logrus.Fields{
					"game_id":         req.GameID,
					"kelly_fraction":  result.KellyFraction,
					"bankroll_usd":    bankroll.String(),
					"recommended_usd": stake.String(),
				}).Info("recommended stake")
			}
		}
		printWireResult(result)
	}

	if !*serve {
		return
	}

	<-ctx.Done()
	baseLogger.Info("shutting down")
	_ = healthSrv.Shutdown()
}

func loadConfigWithSecrets(path string, logger *logrus.Logger) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logger.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logger.Fatalf("failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func serveMetrics(cfg *config.Config, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	logger.WithField("addr", addr).Info("metrics server starting")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("metrics server error")
	}
}

func readRequest(path string) (evaluateRequest, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return evaluateRequest{}, fmt.Errorf("failed to open request file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req evaluateRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return evaluateRequest{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

func printWireResult(result models.ParlayEvaluation) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.ToWire()); err != nil {
		log.Fatalf("failed to encode wire result: %v", err)
	}
}

func printWireError(code models.ErrorCode, err error) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]string{
		"error_code": string(code),
		"error":      err.Error(),
	})
}
