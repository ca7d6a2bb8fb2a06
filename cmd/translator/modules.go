package main

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/cache"
	"github.com/hsn0918/adaptive-translate/internal/config"
	"github.com/hsn0918/adaptive-translate/internal/controller"
	"github.com/hsn0918/adaptive-translate/internal/kvstore"
	"github.com/hsn0918/adaptive-translate/internal/logger"
	"github.com/hsn0918/adaptive-translate/internal/optimizer"
	"github.com/hsn0918/adaptive-translate/internal/quality"
	"github.com/hsn0918/adaptive-translate/internal/translate"
)

// Module is the fx dependency graph shared by every subcommand that needs
// a live Controller: translate (one-shot) and serve (HTTP).
var Module = fx.Options(
	InfrastructureModule,
	CapabilityModule,
	CoreModule,
)

// HTTPServerModule additionally provides the HTTP surface; only the serve
// subcommand composes it on top of Module.
var HTTPServerModule = fx.Module("http_server",
	fx.Provide(
		NewHTTPHandler,
		NewHTTPServerAddr,
	),
	fx.Invoke(StartHTTPServer),
)

// InfrastructureModule provides configuration, logging, and the cache's L2
// backing store.
var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		NewAppConfig,
		NewAppLogger,
		NewKVStore,
		NewCacheManager,
	),
)

// CapabilityModule provides the HTTP-backed translation and embedding
// clients the core pipeline treats as interchangeable capabilities.
var CapabilityModule = fx.Module("capability",
	fx.Provide(
		NewTranslator,
		NewEmbedder,
	),
)

// CoreModule provides the quality engine, optimizer, and the controller
// that wires every other module together.
var CoreModule = fx.Module("core",
	fx.Provide(
		NewQualityEngine,
		NewOptimizer,
		NewController,
	),
)

// NewAppConfig loads configuration from the current directory, matching
// the teacher's convention of passing "." as the config search path.
func NewAppConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// NewAppLogger initializes the process-wide zap logger and also registers a
// hot-reload hook that logs whether a config change made while the process
// is running reloaded and validated; the reloaded config is not applied to
// any running component.
func NewAppLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	config.WatchConfig(func(_ *config.Config, err error) {
		if err != nil {
			logger.Get().Warn("config reload failed", zap.Error(err))
			return
		}
		logger.Get().Info("configuration reloaded")
	})
	return logger.Get(), nil
}

// NewKVStore connects to the Redis-compatible L2 cache backend. A
// connection failure degrades to a nil store rather than failing startup:
// the cache manager treats a nil L2 as an L1-only cache, per its own
// nil-tolerant contract.
func NewKVStore(cfg *config.Config, log *zap.Logger) kvstore.Store {
	client, err := kvstore.New(kvstore.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("L2 cache store unavailable, continuing with L1-only cache", zap.Error(err))
		return nil
	}
	return client
}

// NewTranslator builds the HTTP translation client from the services
// configuration.
func NewTranslator(cfg *config.Config) translate.Translator {
	return translate.NewHTTPTranslator(
		translate.BackendConfig{
			BaseURL: cfg.Services.Translator.BaseURL,
			APIKey:  cfg.Services.Translator.APIKey,
			Model:   cfg.Services.Translator.Model,
		},
		cfg.Services.Translator.RequestTimeout,
		cfg.Services.Translator.PromptTemplate,
	)
}

// NewEmbedder builds the HTTP embedding client used for similarity-aware
// semantic chunking and cache lookups.
func NewEmbedder(cfg *config.Config) translate.Embedder {
	return translate.NewHTTPEmbedder(
		translate.BackendConfig{
			BaseURL: cfg.Services.Embedding.BaseURL,
			APIKey:  cfg.Services.Embedding.APIKey,
			Model:   cfg.Services.Embedding.Model,
		},
		cfg.Services.Embedding.RequestTimeout,
		cfg.Services.Embedding.Dimensions,
	)
}

// NewCacheManager builds the multi-level cache from the L2 store and the
// embedder used for similarity fallback.
func NewCacheManager(store kvstore.Store, embedder translate.Embedder, cfg *config.Config) *cache.Manager {
	return cache.NewManager(store, embedder,
		cache.WithL1Capacity(cfg.Cache.L1Capacity),
		cache.WithL2TTL(cfg.Cache.L2TTL),
		cache.WithCacheSimilarityThreshold(cfg.Cache.SimilarityThreshold),
		cache.WithPatternBucketCap(cfg.Cache.PatternBucketCap),
	)
}

// NewQualityEngine builds the quality-assessment engine.
func NewQualityEngine(embedder translate.Embedder, cfg *config.Config) *quality.Engine {
	return quality.NewEngine(embedder, cfg.Quality.AcceptanceThreshold)
}

// NewOptimizer builds the binary-search chunk-size optimizer.
func NewOptimizer(cfg *config.Config) *optimizer.Optimizer {
	return optimizer.New(
		optimizer.WithChunkSizeRange(cfg.Optimizer.MinChunkSize, cfg.Optimizer.MaxChunkSize),
		optimizer.WithConvergenceThreshold(cfg.Optimizer.ConvergenceThreshold),
		optimizer.WithMaxIterations(cfg.Optimizer.MaxIterations),
		optimizer.WithParallelEvaluations(cfg.Optimizer.ParallelEvaluations),
	)
}

// NewController wires every capability and processing stage into the
// single adaptive-translation entry point.
func NewController(
	translator translate.Translator,
	embedder translate.Embedder,
	qualityEngine *quality.Engine,
	opt *optimizer.Optimizer,
	cacheManager *cache.Manager,
	cfg *config.Config,
) *controller.Controller {
	return controller.New(translator, embedder, qualityEngine, opt, cacheManager,
		controller.WithQualityThreshold(cfg.Quality.AcceptanceThreshold),
		controller.WithChunkingSizeRange(cfg.Chunking.MinChunkSize, cfg.Chunking.MaxChunkSize),
		controller.WithDefaultOptimizationDeadline(cfg.Optimizer.Timeout),
		controller.WithMaxConcurrentTranslations(cfg.Controller.MaxConcurrentTranslations),
	)
}
