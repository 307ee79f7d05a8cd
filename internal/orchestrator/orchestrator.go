// Package orchestrator composes the quantizer, regime classifier,
// marginal builder, correlation assembler, PSD repair, copula sampler,
// EV/CI estimator, and XAI attributor into the single synchronous
// evaluate operation, enforcing the 500ms deadline and memoizing
// per-game quantization/classification work.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlay-evaluator/internal/copula"
	"github.com/yourusername/parlay-evaluator/internal/correlation"
	"github.com/yourusername/parlay-evaluator/internal/marginal"
	"github.com/yourusername/parlay-evaluator/internal/models"
	"github.com/yourusername/parlay-evaluator/internal/psdrepair"
	"github.com/yourusername/parlay-evaluator/internal/quantizer"
	"github.com/yourusername/parlay-evaluator/internal/regime"
	"github.com/yourusername/parlay-evaluator/internal/snapshotprovider"
	"github.com/yourusername/parlay-evaluator/internal/xai"

	"github.com/yourusername/parlay-evaluator/internal/evaluation"
)

// Deadline is the hard per-request wall-clock limit; a breach returns
// a degraded evaluation rather than a partial one.
const Deadline = 500 * time.Millisecond

// gameCacheTTL bounds how long a per-game quantization/classification
// result is reused before the snapshot is refetched.
const gameCacheTTL = 5 * time.Minute

// Request is the evaluate operation's input.
type Request struct {
	GameID      string
	Context     models.GameContext
	Legs        []models.Leg
	Seed        uint64
	SampleCount int
}

// gameState is the memoized per-game work: quantized marginals,
// applied multipliers, and the classified regime. It depends on the
// game context but not on which legs a particular evaluate call asks
// about, so it is safe to share across repeated calls against the
// same snapshot and context.
type gameState struct {
	adjusted    []models.Marginal
	multipliers quantizer.Multipliers
	regime      models.Regime
}

// Orchestrator composes the evaluation pipeline and owns the
// per-game memoization cache and kernel warmer.
type Orchestrator struct {
	marginals    snapshotprovider.MarginalProvider
	correlations snapshotprovider.PairCorrelationProvider
	cache        *cache.Cache
	warmer       *copula.Warmer
	logger       *logrus.Logger
}

// New builds an Orchestrator. Call Warmup once at process start before
// serving evaluate requests.
func New(marginals snapshotprovider.MarginalProvider, correlations snapshotprovider.PairCorrelationProvider, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		marginals:    marginals,
		correlations: correlations,
		cache:        cache.New(gameCacheTTL, gameCacheTTL*2),
		warmer:       &copula.Warmer{},
		logger:       logger,
	}
}

// Warmup runs a dummy simulation so the kernel's first, slower pass
// happens before the process starts serving requests.
func (o *Orchestrator) Warmup(ctx context.Context) {
	o.warmer.Warm(ctx)
	o.logger.WithField("elapsed_ms", o.warmer.WarmupElapsedMs()).Info("copula kernel warmed")
}

// Warmer exposes the orchestrator's kernel warmer so internal/warmup's
// scheduler can drive the same instance Evaluate reports IsWarmedUp
// from, rather than warming an instance nobody reads.
func (o *Orchestrator) Warmer() *copula.Warmer {
	return o.warmer
}

// Evaluate runs the full pipeline for one request. On a deadline
// breach it returns a degraded ParlayEvaluation (recommended=false,
// empty factor list) alongside models.ErrDeadlineExceeded.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request) (models.ParlayEvaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, Deadline)
	defer cancel()

	if len(req.Legs) == 0 {
		return models.ParlayEvaluation{}, models.ErrInvalidLeg
	}
	if len(req.Legs) > models.MaxLegs {
		return models.ParlayEvaluation{}, models.ErrTooManyLegs
	}
	for _, leg := range req.Legs {
		if err := leg.Validate(); err != nil {
			return models.ParlayEvaluation{}, err
		}
	}

	state, err := o.gameState(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return degraded(), models.ErrDeadlineExceeded
		}
		return models.ParlayEvaluation{}, err
	}
	if ctx.Err() != nil {
		return degraded(), models.ErrDeadlineExceeded
	}

	legMarginals := make([]models.Marginal, len(req.Legs))
	for i, leg := range req.Legs {
		m, ok := resolveMarginal(leg, req.Context, state.adjusted)
		if !ok {
			return models.ParlayEvaluation{}, models.ErrMarginalMissing
		}
		legMarginals[i] = m
	}

	standardized := make([]marginal.Standardized, len(req.Legs))
	z := make([]float64, len(req.Legs))
	for i, leg := range req.Legs {
		s := marginal.Build(leg, legMarginals[i])
		standardized[i] = s
		z[i] = s.Z
	}
	if ctx.Err() != nil {
		return degraded(), models.ErrDeadlineExceeded
	}

	legKeys := make([]models.LegKey, len(req.Legs))
	for i, leg := range req.Legs {
		legKeys[i] = leg.Key()
	}
	lookup := func(a, b models.LegKey) (float64, bool) {
		rho, ok, lookupErr := o.correlations.GetPairCorrelation(ctx, a, b)
		if lookupErr != nil {
			return 0, false
		}
		return rho, ok
	}
	matrix := correlation.Assemble(req.Legs, lookup, state.regime.CorrBoost)
	if ctx.Err() != nil {
		return degraded(), models.ErrDeadlineExceeded
	}

	l, err := psdrepair.Repair(matrix.R)
	if err != nil {
		return models.ParlayEvaluation{}, err
	}
	if ctx.Err() != nil {
		return degraded(), models.ErrDeadlineExceeded
	}

	sampleCount := req.SampleCount
	if sampleCount <= 0 {
		sampleCount = copula.DefaultSampleCount
	}
	result, err := copula.Run(ctx, copula.Request{
		L:     l,
		Z:     z,
		Nu:    state.regime.Nu,
		NSims: sampleCount,
		Seed:  req.Seed,
	})
	if err != nil {
		if errors.Is(err, models.ErrDeadlineExceeded) {
			return degraded(), err
		}
		return models.ParlayEvaluation{}, err
	}

	eval := evaluation.Price(req.Legs, result.PerLegHitRate, result.JointHits, result.NSims, state.regime.Nu, state.multipliers.SentimentShift)

	legContexts := make([]xai.LegContext, len(req.Legs))
	for i, leg := range req.Legs {
		legContexts[i] = xai.LegContext{
			Key:                  legKeys[i],
			Sign:                 leg.Direction.Sign(),
			Stddev:               legMarginals[i].Stddev,
			OriginalMean:         legMarginals[i].Mean,
			Z:                    standardized[i].Z,
			HitRate:              result.PerLegHitRate[i],
			IsPassingOrReceiving: isPassingOrReceiving(leg.StatKind),
		}
	}
	explanation := xai.Attribute(xai.Input{
		Regime:         state.regime,
		Multipliers:    state.multipliers,
		Legs:           legContexts,
		TrueProb:       eval.TrueProb,
		CorrMultiplier: eval.CorrMultiplier,
		ImputedPairs:   matrix.ImputedPairs,
		Ctx:            req.Context,
		InjuryLookup: func(injuredPlayerID, subjectID, statKind string) (float64, bool) {
			return lookup(models.LegKey{SubjectID: injuredPlayerID}, models.LegKey{SubjectID: subjectID, StatKind: statKind})
		},
	})
	eval.Explanation = explanation
	eval.Meta = models.SimulationMeta{
		EvaluationID: uuid.NewString(),
		Milliseconds: result.ElapsedMs,
		NSamples:     result.NSims,
		Nu:           state.regime.Nu,
		WarmedUp:     o.warmer.IsWarmedUp(),
		Seed:         req.Seed,
	}

	return eval, nil
}

// cacheKey folds the context fields that feed quantization and regime
// classification into the per-game memoization key. The context is
// per-request, so two calls for the same game with a refreshed
// context (new injury report, updated weather, a moved line) must not
// reuse each other's quantized marginals or regime.
func cacheKey(req Request) string {
	h := fnv.New64a()
	c := req.Context
	for _, p := range []*float64{
		c.Spread, c.Total,
		c.HomeOffEff, c.AwayOffEff, c.HomeDefEff, c.AwayDefEff,
		c.WindMPH, c.TempF, c.PrecipProb, c.Sentiment,
	} {
		if p == nil {
			fmt.Fprint(h, "|-")
		} else {
			fmt.Fprintf(h, "|%g", *p)
		}
	}
	for _, inj := range c.Injuries {
		fmt.Fprintf(h, "|%s:%s:%g", inj.PlayerID, inj.Status, inj.Impact)
	}
	return fmt.Sprintf("%s:%x", req.GameID, h.Sum64())
}

// gameState returns the cached quantized marginals and regime for a
// (game, context) pair, fetching and computing them on a miss.
func (o *Orchestrator) gameState(ctx context.Context, req Request) (gameState, error) {
	key := cacheKey(req)
	if cached, found := o.cache.Get(key); found {
		if gs, ok := cached.(gameState); ok {
			return gs, nil
		}
	}

	raw, err := o.marginals.GetMarginals(ctx, req.GameID)
	if err != nil {
		return gameState{}, err
	}

	lookup := func(injuredPlayerID, subjectID, statKind string) (float64, bool) {
		rho, ok, lookupErr := o.correlations.GetPairCorrelation(ctx, models.LegKey{SubjectID: injuredPlayerID}, models.LegKey{SubjectID: subjectID, StatKind: statKind})
		if lookupErr != nil {
			return 0, false
		}
		return rho, ok
	}
	adjusted, mult := quantizer.Quantize(req.Context, raw, lookup)
	r := regime.Classify(req.Context)

	gs := gameState{adjusted: adjusted, multipliers: mult, regime: r}
	o.cache.Set(key, gs, gameCacheTTL)
	return gs, nil
}

// resolveMarginal finds a player_prop leg's marginal from the
// quantized snapshot, or synthesizes one from the game context for
// spread/total/moneyline legs.
func resolveMarginal(leg models.Leg, ctx models.GameContext, adjusted []models.Marginal) (models.Marginal, bool) {
	switch leg.Kind {
	case models.LegKindSpread:
		if ctx.Spread == nil {
			return models.Marginal{}, false
		}
		return marginal.BuildSpreadMarginal(leg.SubjectID, *ctx.Spread), true
	case models.LegKindTotal:
		if ctx.Total == nil {
			return models.Marginal{}, false
		}
		return marginal.BuildTotalMarginal(leg.SubjectID, *ctx.Total), true
	case models.LegKindMoneyline:
		if ctx.Spread == nil {
			return models.Marginal{}, false
		}
		return marginal.BuildMoneylineMarginal(leg.SubjectID, *ctx.Spread), true
	default:
		key := leg.Key()
		for _, m := range adjusted {
			if m.Key() == key {
				return m, true
			}
		}
		return models.Marginal{}, false
	}
}

func isPassingOrReceiving(statKind string) bool {
	s := strings.ToLower(statKind)
	return strings.Contains(s, "pass") || strings.Contains(s, "rec")
}

// degraded builds the timeout response shape: not recommended, empty
// factor list, reasoning set to "timeout".
func degraded() models.ParlayEvaluation {
	return models.ParlayEvaluation{
		Recommended: false,
		Explanation: models.Explanation{
			RegimeReasoning: "timeout",
			Factors:         []models.Factor{},
		},
	}
}
