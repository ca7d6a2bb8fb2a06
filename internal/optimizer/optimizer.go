package optimizer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/logger"
)

// Config controls the optimizer's search bounds and effort.
type Config struct {
	MinChunkSize         int
	MaxChunkSize         int
	ConvergenceThreshold float64
	MaxIterations        int
	ParallelEvaluations  int
}

// Option configures an Optimizer at construction time. Grounded on
// pkg/chunking/semantic.go's functional-options pattern, used throughout
// this module for constructor configuration.
type Option func(*Config)

func WithChunkSizeRange(min, max int) Option {
	return func(c *Config) { c.MinChunkSize, c.MaxChunkSize = min, max }
}
func WithConvergenceThreshold(t float64) Option { return func(c *Config) { c.ConvergenceThreshold = t } }
func WithMaxIterations(n int) Option            { return func(c *Config) { c.MaxIterations = n } }
func WithParallelEvaluations(n int) Option      { return func(c *Config) { c.ParallelEvaluations = n } }

func defaultConfig() Config {
	return Config{
		MinChunkSize:         150,
		MaxChunkSize:         600,
		ConvergenceThreshold: 0.02,
		MaxIterations:        8,
		ParallelEvaluations:  3,
	}
}

// Optimizer searches for the chunk size that yields the best translation
// quality for a text, within a deadline.
type Optimizer struct {
	config Config
	logger *zap.Logger
}

// New builds an Optimizer.
func New(opts ...Option) *Optimizer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Optimizer{config: cfg, logger: logger.Get()}
}

// Optimize runs the three-phase search described in the package doc.
// evaluate performs the actual chunk+translate+score work for one candidate
// chunk size; baselineTranslation/baselineQuality are the result obtained
// without optimization, used both as the comparison point and as the
// fallback when the search fails or times out.
func (o *Optimizer) Optimize(ctx context.Context, evaluate EvaluateFunc, strategy Strategy, baselineTranslation string, baselineQuality float64, timeout time.Duration) Result {
	start := time.Now()

	phase1Ctx, cancelPhase1 := context.WithTimeout(ctx, time.Duration(float64(timeout)*0.6))
	defer cancelPhase1()

	samplePoints := sampleQualityCurve(phase1Ctx, evaluate, strategy, o.config.MinChunkSize, o.config.MaxChunkSize, o.config.ParallelEvaluations)
	if phase1Ctx.Err() != nil {
		o.logger.Warn("optimization phase 1 timed out", zap.Duration("timeout", timeout))
	}
	if len(samplePoints) == 0 {
		return o.failedResult(baselineTranslation, baselineQuality)
	}

	optimalRegion, found := identifyOptimalRegion(samplePoints, baselineQuality, o.config.MinChunkSize, o.config.MaxChunkSize)
	if !found {
		return o.failedResult(baselineTranslation, baselineQuality)
	}

	remaining := timeout - time.Since(start)
	var best Point
	if remaining > time.Second {
		phase3Ctx, cancelPhase3 := context.WithTimeout(ctx, remaining)
		best = fineTuneInRegion(phase3Ctx, evaluate, optimalRegion, samplePoints, o.config.MaxIterations)
		cancelPhase3()
	} else {
		best = samplePoints[0]
		for _, p := range samplePoints[1:] {
			if p.QualityScore > best.QualityScore {
				best = p
			}
		}
	}

	optConfidence := optimizationConfidence(samplePoints, best)
	low, high := confidenceInterval(samplePoints)
	improvement := best.QualityScore - baselineQuality
	totalTime := time.Since(start)

	return Result{
		OptimalChunkSize:       best.ChunkSize,
		OptimalTranslation:     best.Translation,
		OptimalQualityScore:    best.QualityScore,
		QualityImprovement:     improvement,
		ConfidenceIntervalLow:  low,
		ConfidenceIntervalHigh: high,
		OptimizationConfidence: optConfidence,
		SearchPoints:           samplePoints,
		ConvergenceIterations:  len(samplePoints),
		RegionIdentified:       true,
		TimeoutReached:         totalTime >= time.Duration(float64(timeout)*0.9),
	}
}

func (o *Optimizer) failedResult(baselineTranslation string, baselineQuality float64) Result {
	return Result{
		OptimalChunkSize:       300,
		OptimalTranslation:     baselineTranslation,
		OptimalQualityScore:    baselineQuality,
		ConfidenceIntervalLow:  0.0,
		ConfidenceIntervalHigh: 1.0,
		Failed:                 true,
	}
}
