package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/hsn0918/adaptive-translate/internal/cache"
	"github.com/hsn0918/adaptive-translate/internal/chunking"
	"github.com/hsn0918/adaptive-translate/internal/logger"
	"github.com/hsn0918/adaptive-translate/internal/optimizer"
	"github.com/hsn0918/adaptive-translate/internal/quality"
	"github.com/hsn0918/adaptive-translate/internal/translate"
	"github.com/hsn0918/adaptive-translate/internal/utils"
)

// Config controls the controller's thresholds and concurrency bound.
type Config struct {
	QualityThreshold            float64
	MaxConcurrentTranslations   int
	DefaultOptimizationDeadline time.Duration
	ChunkingMinSize             int
	ChunkingMaxSize             int
}

// Option configures a Controller at construction time.
type Option func(*Config)

func WithQualityThreshold(t float64) Option { return func(c *Config) { c.QualityThreshold = t } }
func WithMaxConcurrentTranslations(n int) Option {
	return func(c *Config) { c.MaxConcurrentTranslations = n }
}
func WithDefaultOptimizationDeadline(d time.Duration) Option {
	return func(c *Config) { c.DefaultOptimizationDeadline = d }
}
func WithChunkingSizeRange(min, max int) Option {
	return func(c *Config) { c.ChunkingMinSize, c.ChunkingMaxSize = min, max }
}

func defaultConfig() Config {
	return Config{
		QualityThreshold:            0.75,
		MaxConcurrentTranslations:   5,
		DefaultOptimizationDeadline: 10 * time.Second,
		ChunkingMinSize:             150,
		ChunkingMaxSize:             600,
	}
}

// Controller is the top-level orchestrator: cache lookup, semantic
// chunk-and-translate, quality scoring, optional optimization, cache write.
type Controller struct {
	config Config

	chunker       chunking.Chunker
	translator    translate.Translator
	embedder      translate.Embedder // optional; nil disables similarity-aware features
	qualityEngine *quality.Engine
	optimizer     *optimizer.Optimizer
	cacheManager  *cache.Manager

	semaphore chan struct{}
	logger    *zap.Logger
}

// New builds a Controller from its already-constructed dependencies.
// embedder may be nil.
func New(
	translator translate.Translator,
	embedder translate.Embedder,
	qualityEngine *quality.Engine,
	opt *optimizer.Optimizer,
	cacheManager *cache.Manager,
	opts ...Option,
) *Controller {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	chunker, err := chunking.NewSemanticChunker(embedder,
		chunking.WithMinChunkSize(cfg.ChunkingMinSize),
		chunking.WithMaxChunkSize(cfg.ChunkingMaxSize),
	)
	if err != nil {
		// cfg carries the controller's own validated defaults merged with
		// caller options; a failure here is a programming error, not a
		// runtime condition callers should handle.
		panic(fmt.Sprintf("controller: invalid chunking configuration: %v", err))
	}

	return &Controller{
		config:        cfg,
		chunker:       chunker,
		translator:    translator,
		embedder:      embedder,
		qualityEngine: qualityEngine,
		optimizer:     opt,
		cacheManager:  cacheManager,
		semaphore:     make(chan struct{}, cfg.MaxConcurrentTranslations),
		logger:        logger.Get(),
	}
}

// Translate runs the full pipeline once and returns its final result.
func (c *Controller) Translate(ctx context.Context, req Request) (Result, error) {
	result, err := c.run(ctx, req, nil)
	return result, err
}

// ProgressiveTranslate runs the same pipeline as Translate but emits an
// ordered Update to sink after every stage. A panic inside sink is recovered
// and logged; sink failures are never surfaced to the caller.
func (c *Controller) ProgressiveTranslate(ctx context.Context, req Request, sink Sink) (Result, error) {
	return c.run(ctx, req, sink)
}

func (c *Controller) run(ctx context.Context, req Request, sink Sink) (Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	stageTimes := make(map[Stage]time.Duration)

	text := strings.TrimSpace(utils.SanitizeUTF8(req.Text))
	if text == "" {
		return Result{}, fmt.Errorf("%w: request %s", ErrEmptyText, requestID)
	}

	sourceLang, err := canonicalLanguage(req.SourceLang)
	if err != nil {
		return Result{}, fmt.Errorf("%w: source_lang %q: %v", ErrInvalidLanguage, req.SourceLang, err)
	}
	targetLang, err := canonicalLanguage(req.TargetLang)
	if err != nil {
		return Result{}, fmt.Errorf("%w: target_lang %q: %v", ErrInvalidLanguage, req.TargetLang, err)
	}
	req.SourceLang, req.TargetLang = sourceLang, targetLang

	level := cache.LevelSemantic
	if req.Preference == PreferenceQuality {
		level = cache.LevelOptimized
	}

	if c.cacheManager != nil {
		if entry, hit, _ := c.cacheManager.GetTranslation(ctx, text, req.SourceLang, req.TargetLang, level, 0, ""); hit {
			return Result{
				RequestID:      requestID,
				Translation:    entry.Translation,
				OriginalText:   text,
				ProcessingTime: time.Since(start),
				CacheHit:       true,
				StageTimes:     stageTimes,
				Metadata:       map[string]any{"quality_score": entry.QualityScore},
			}, nil
		}
	}

	emit(sink, Update{RequestID: requestID, Stage: StageSemantic, ElapsedTime: time.Since(start)})

	stageStart := time.Now()
	chunkResult, translation, err := c.chunkAndTranslate(ctx, c.chunker, text, req.SourceLang, req.TargetLang)
	stageTimes[StageSemantic] = time.Since(stageStart)
	if err != nil {
		emit(sink, Update{RequestID: requestID, Stage: StageError, Error: err, ElapsedTime: time.Since(start)})
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	emit(sink, Update{RequestID: requestID, Stage: StageSemantic, Translation: translation, Chunking: &chunkResult, ElapsedTime: time.Since(start)})

	stageStart = time.Now()
	emit(sink, Update{RequestID: requestID, Stage: StageAnalyzing, ElapsedTime: time.Since(start)})
	semanticMetrics := c.qualityEngine.Assess(ctx, quality.Pair{
		Original:       text,
		Translation:    translation,
		ChunksOriginal: chunkTexts(chunkResult),
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
	})
	stageTimes[StageAnalyzing] = time.Since(stageStart)
	emit(sink, Update{RequestID: requestID, Stage: StageAnalyzing, Quality: &semanticMetrics, ElapsedTime: time.Since(start)})

	finalTranslation := translation
	finalMetrics := semanticMetrics
	finalChunking := chunkResult
	optimizationApplied := false

	if c.shouldOptimize(req, semanticMetrics.OverallScore) {
		deadline := req.OptimizationDeadline
		if deadline <= 0 {
			deadline = c.config.DefaultOptimizationDeadline
		}

		stageStart = time.Now()
		emit(sink, Update{RequestID: requestID, Stage: StageOptimizing, ElapsedTime: time.Since(start)})

		optResult := c.optimizer.Optimize(
			ctx,
			c.evaluatorFor(ctx, text, req.SourceLang, req.TargetLang),
			strategyFor(req.Preference),
			translation,
			semanticMetrics.OverallScore,
			deadline,
		)
		stageTimes[StageOptimizing] = time.Since(stageStart)

		if !optResult.Failed && optResult.OptimalQualityScore > semanticMetrics.OverallScore {
			rechunked, rerr := c.chunker.ChunkText(ctx, text, req.SourceLang)
			optimizedMetrics := c.qualityEngine.Assess(ctx, quality.Pair{
				Original:       text,
				Translation:    optResult.OptimalTranslation,
				SourceLang:     req.SourceLang,
				TargetLang:     req.TargetLang,
			})
			if optimizedMetrics.OverallScore > semanticMetrics.OverallScore {
				finalTranslation = optResult.OptimalTranslation
				finalMetrics = optimizedMetrics
				optimizationApplied = true
				if rerr == nil {
					finalChunking = rechunked
				}
			}
		}
		emit(sink, Update{RequestID: requestID, Stage: StageOptimized, Translation: finalTranslation, Quality: &finalMetrics, ElapsedTime: time.Since(start)})
	}

	writeLevel := cache.LevelSemantic
	if optimizationApplied {
		writeLevel = cache.LevelOptimized
	}
	if c.cacheManager != nil {
		key := cache.NewKey(text, req.SourceLang, req.TargetLang, writeLevel, 0, "")
		_ = c.cacheManager.StoreTranslation(ctx, &cache.Entry{
			Key:          key,
			OriginalText: text,
			Translation:  finalTranslation,
			QualityScore: finalMetrics.OverallScore,
		})
	}

	result := Result{
		RequestID:           requestID,
		Translation:         finalTranslation,
		OriginalText:        text,
		QualityMetrics:      finalMetrics,
		ChunkingResult:      finalChunking,
		ProcessingTime:      time.Since(start),
		CacheHit:            false,
		OptimizationApplied: optimizationApplied,
		StageTimes:          stageTimes,
		Metadata:            map[string]any{"request_id": requestID},
	}
	return result, nil
}

// shouldOptimize implements the gate described in the controller's
// algorithm: force wins; Fast always disables; otherwise preference-scaled
// thresholds, falling back to the configured quality threshold.
func (c *Controller) shouldOptimize(req Request, score float64) bool {
	if req.Preference == PreferenceFast {
		return false
	}
	if req.ForceOptimization {
		return true
	}
	switch req.Preference {
	case PreferenceQuality:
		return score < 0.85
	case PreferenceBalanced:
		return score < 0.80
	default:
		return score < c.config.QualityThreshold
	}
}

func strategyFor(pref Preference) optimizer.Strategy {
	switch pref {
	case PreferenceQuality:
		return optimizer.QualityFocused
	case PreferenceFast:
		return optimizer.SpeedFocused
	default:
		return optimizer.Balanced
	}
}

// evaluatorFor returns an optimizer.EvaluateFunc that re-chunks text at the
// candidate chunk size, translates it, and scores the result.
func (c *Controller) evaluatorFor(_ context.Context, text, sourceLang, targetLang string) optimizer.EvaluateFunc {
	return func(ctx context.Context, chunkSize int) (optimizer.Point, error) {
		start := time.Now()
		probeMinSize := chunkSize - 50
		if probeMinSize < c.config.ChunkingMinSize {
			probeMinSize = c.config.ChunkingMinSize
		}
		probeChunker, err := chunking.NewSemanticChunker(c.embedder,
			chunking.WithMinChunkSize(probeMinSize),
			chunking.WithMaxChunkSize(chunkSize),
		)
		if err != nil {
			return optimizer.Point{}, err
		}
		chunkResult, translation, err := c.chunkAndTranslate(ctx, probeChunker, text, sourceLang, targetLang)
		if err != nil {
			return optimizer.Point{}, err
		}
		metrics := c.qualityEngine.Assess(ctx, quality.Pair{
			Original:       text,
			Translation:    translation,
			ChunksOriginal: chunkTexts(chunkResult),
			SourceLang:     sourceLang,
			TargetLang:     targetLang,
		})
		return optimizer.Point{
			ChunkSize:      chunkSize,
			QualityScore:   metrics.OverallScore,
			Translation:    translation,
			ProcessingTime: time.Since(start).Seconds(),
			Confidence:     metrics.OverallScore,
		}, nil
	}
}

// chunkAndTranslate chunks text with chunker, then translates every chunk
// under the controller's concurrency bound, joining results in input order.
func (c *Controller) chunkAndTranslate(ctx context.Context, chunker chunking.Chunker, text, sourceLang, targetLang string) (chunking.Result, string, error) {
	chunkResult, err := chunker.ChunkText(ctx, text, sourceLang)
	if err != nil {
		return chunking.Result{}, "", fmt.Errorf("chunking failed: %w", err)
	}

	if len(chunkResult.Chunks) == 1 {
		translation, err := c.translateOne(ctx, chunkResult.Chunks[0].Content, sourceLang, targetLang)
		if err != nil {
			return chunking.Result{}, "", err
		}
		return chunkResult, translation, nil
	}

	p := pool.NewWithResults[string]().WithContext(ctx).WithMaxGoroutines(c.config.MaxConcurrentTranslations)
	for _, chunk := range chunkResult.Chunks {
		chunkContent := chunk.Content
		p.Go(func(ctx context.Context) (string, error) {
			return c.translateOne(ctx, chunkContent, sourceLang, targetLang)
		})
	}
	translations, err := p.Wait()
	if err != nil {
		return chunking.Result{}, "", err
	}

	return chunkResult, strings.Join(translations, " "), nil
}

func (c *Controller) translateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	select {
	case c.semaphore <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-c.semaphore }()

	return c.translator.Translate(ctx, text, sourceLang, targetLang)
}

// CacheStats returns the current cache performance snapshot.
func (c *Controller) CacheStats() Statistics {
	if c.cacheManager == nil {
		return Statistics{}
	}
	return c.cacheManager.Statistics()
}

// Invalidate clears cached translations for a language pair, optionally
// scoped to a single content type.
func (c *Controller) Invalidate(ctx context.Context, sourceLang, targetLang, contentType string) error {
	if c.cacheManager == nil {
		return nil
	}
	return c.cacheManager.InvalidatePattern(ctx, sourceLang, targetLang, contentType)
}

// canonicalLanguage parses and canonicalizes a BCP 47 language tag (e.g.
// "en", "EN-us", "zh-Hans") so that cache keys and downstream comparisons
// are insensitive to case and region-tag formatting variance.
func canonicalLanguage(tag string) (string, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

func chunkTexts(result chunking.Result) []string {
	out := make([]string, len(result.Chunks))
	for i, chunk := range result.Chunks {
		out[i] = chunk.Content
	}
	return out
}

func emit(sink Sink, update Update) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Warn("progressive translate sink panicked", zap.Any("recover", r))
		}
	}()
	sink(update)
}
