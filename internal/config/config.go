// Package config provides configuration management for the adaptive
// translation core. It follows Uber Go Style Guide conventions for struct
// organization and error handling.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Common configuration errors
var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServiceConfig holds common configuration for external service clients.
// Fields are organized by logical grouping and include validation tags.
type ServiceConfig struct {
	// Connection settings
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key" validate:"required"`

	// Service settings
	Model string `mapstructure:"model" validate:"required"`
}

// ChunkingConfig defines semantic chunking parameters.
type ChunkingConfig struct {
	// Size constraints (required)
	MaxChunkSize int `mapstructure:"max_chunk_size" validate:"required,min=100,max=10000"`
	MinChunkSize int `mapstructure:"min_chunk_size" validate:"required,min=50"`

	// Semantic processing (optional)
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" validate:"min=0.0,max=1.0"`
	EmbeddingCacheSize  int     `mapstructure:"embedding_cache_size" validate:"min=0"`
}

// Validate checks the chunking configuration and sets defaults.
func (c *ChunkingConfig) Validate() error {
	if c.MaxChunkSize == 0 {
		c.MaxChunkSize = 600
	}
	if c.MinChunkSize == 0 {
		c.MinChunkSize = 150
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.7
	}
	if c.EmbeddingCacheSize == 0 {
		c.EmbeddingCacheSize = 1000
	}

	if c.MinChunkSize >= c.MaxChunkSize {
		return fmt.Errorf("%w: min chunk size must be less than max chunk size", ErrInvalidConfig)
	}

	return nil
}

// OptimizerConfig defines binary-search chunk-size optimizer parameters.
type OptimizerConfig struct {
	MinChunkSize         int           `mapstructure:"min_chunk_size" validate:"min=50"`
	MaxChunkSize         int           `mapstructure:"max_chunk_size" validate:"min=100"`
	ConvergenceThreshold float64       `mapstructure:"convergence_threshold" validate:"min=0"`
	MaxIterations        int           `mapstructure:"max_iterations" validate:"min=1"`
	ParallelEvaluations  int           `mapstructure:"parallel_evaluations" validate:"min=1"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

// Validate checks the optimizer configuration and sets defaults.
func (o *OptimizerConfig) Validate() error {
	if o.MinChunkSize == 0 {
		o.MinChunkSize = 150
	}
	if o.MaxChunkSize == 0 {
		o.MaxChunkSize = 600
	}
	if o.ConvergenceThreshold == 0 {
		o.ConvergenceThreshold = 0.02
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 8
	}
	if o.ParallelEvaluations == 0 {
		o.ParallelEvaluations = 3
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}

	if o.MinChunkSize >= o.MaxChunkSize {
		return fmt.Errorf("%w: optimizer min chunk size must be less than max chunk size", ErrInvalidConfig)
	}

	return nil
}

// QualityConfig defines quality-assessment gating parameters.
type QualityConfig struct {
	AcceptanceThreshold float64 `mapstructure:"acceptance_threshold" validate:"min=0,max=1"`
}

// Validate checks the quality configuration and sets defaults.
func (q *QualityConfig) Validate() error {
	if q.AcceptanceThreshold == 0 {
		q.AcceptanceThreshold = 0.75
	}
	return nil
}

// ControllerConfig defines parameters for the adaptive controller that sit
// outside chunking, optimization, and quality scoring proper.
type ControllerConfig struct {
	MaxConcurrentTranslations int `mapstructure:"max_concurrent_translations" validate:"min=1"`
}

// Validate checks the controller configuration and sets defaults.
func (c *ControllerConfig) Validate() error {
	if c.MaxConcurrentTranslations == 0 {
		c.MaxConcurrentTranslations = 5
	}
	return nil
}

// CacheConfig defines multi-level cache parameters.
type CacheConfig struct {
	L1Capacity          int           `mapstructure:"l1_capacity" validate:"min=0"`
	L2TTL               time.Duration `mapstructure:"l2_ttl"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold" validate:"min=0,max=1"`
	PatternBucketCap    int           `mapstructure:"pattern_bucket_cap" validate:"min=0"`
}

// Validate checks the cache configuration and sets defaults.
func (c *CacheConfig) Validate() error {
	if c.L1Capacity == 0 {
		c.L1Capacity = 1000
	}
	if c.L2TTL == 0 {
		c.L2TTL = 24 * time.Hour
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.85
	}
	if c.PatternBucketCap == 0 {
		c.PatternBucketCap = 100
	}
	return nil
}

// Config represents the complete application configuration.
// Structs are organized by functional domain with clear separation.
type Config struct {
	// Server configuration
	Server struct {
		Host string `mapstructure:"host" validate:"required"`
		Port string `mapstructure:"port" validate:"required,numeric"`
	} `mapstructure:"server"`

	// Cache configuration, backed by Redis for the L2 tier
	Redis struct {
		Host     string `mapstructure:"host" validate:"required,hostname"`
		Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db" validate:"min=0,max=15"`
	} `mapstructure:"redis"`

	// Processing configuration
	Chunking   ChunkingConfig   `mapstructure:"chunking"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer"`
	Quality    QualityConfig    `mapstructure:"quality"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Controller ControllerConfig `mapstructure:"controller"`

	// External services configuration
	Services struct {
		Translator struct {
			ServiceConfig  `mapstructure:",squash"`
			PromptTemplate string        `mapstructure:"prompt_template"`
			RequestTimeout time.Duration `mapstructure:"request_timeout"`
		} `mapstructure:"translator"`
		Embedding struct {
			ServiceConfig  `mapstructure:",squash"`
			Dimensions     int           `mapstructure:"dimensions" validate:"min=0"`
			RequestTimeout time.Duration `mapstructure:"request_timeout"`
		} `mapstructure:"embedding"`
	} `mapstructure:"services"`
}

// Validate performs configuration validation and sets defaults.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("chunking config: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer config: %w", err)
	}
	if err := c.Quality.Validate(); err != nil {
		return fmt.Errorf("quality config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	if err := c.Controller.Validate(); err != nil {
		return fmt.Errorf("controller config: %w", err)
	}
	if c.Services.Translator.RequestTimeout == 0 {
		c.Services.Translator.RequestTimeout = 30 * time.Second
	}
	if c.Services.Embedding.RequestTimeout == 0 {
		c.Services.Embedding.RequestTimeout = 15 * time.Second
	}

	return nil
}

// LoadConfig loads configuration from file and environment variables.
// It follows Uber Go Style Guide error handling patterns.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.UnmarshalExact(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults configures sensible default values.
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")

	viper.SetDefault("chunking.max_chunk_size", 600)
	viper.SetDefault("chunking.min_chunk_size", 150)
	viper.SetDefault("chunking.similarity_threshold", 0.7)
	viper.SetDefault("chunking.embedding_cache_size", 1000)

	viper.SetDefault("optimizer.min_chunk_size", 150)
	viper.SetDefault("optimizer.max_chunk_size", 600)
	viper.SetDefault("optimizer.convergence_threshold", 0.02)
	viper.SetDefault("optimizer.max_iterations", 8)
	viper.SetDefault("optimizer.parallel_evaluations", 3)
	viper.SetDefault("optimizer.timeout", "30s")

	viper.SetDefault("quality.acceptance_threshold", 0.75)

	viper.SetDefault("cache.l1_capacity", 1000)
	viper.SetDefault("cache.l2_ttl", "24h")
	viper.SetDefault("cache.similarity_threshold", 0.85)
	viper.SetDefault("cache.pattern_bucket_cap", 100)

	viper.SetDefault("controller.max_concurrent_translations", 5)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("services.translator.request_timeout", "30s")
	viper.SetDefault("services.embedding.request_timeout", "15s")
}

// MustLoadConfig loads configuration and panics on failure.
// Use this only in main() or init() functions where failure should be fatal.
func MustLoadConfig(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return config
}

// WatchConfig re-invokes onChange with the freshly reloaded and validated
// configuration whenever the underlying config file changes on disk. It
// must be called after a successful LoadConfig, since viper.WatchConfig
// attaches to the file viper already resolved. Errors from a reload
// (including validation failures) are logged by the caller-supplied
// onChange rather than by this function, keeping it free of a logger
// dependency.
func WatchConfig(onChange func(*Config, error)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		var config Config
		if err := viper.UnmarshalExact(&config); err != nil {
			onChange(nil, fmt.Errorf("failed to unmarshal reloaded config: %w", err))
			return
		}
		if err := config.Validate(); err != nil {
			onChange(nil, fmt.Errorf("reloaded config validation failed: %w", err))
			return
		}
		onChange(&config, nil)
	})
	viper.WatchConfig()
}
