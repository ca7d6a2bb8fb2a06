package chunking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/logger"
	"github.com/hsn0918/adaptive-translate/internal/translate"
)

// Config controls SemanticChunker's size bounds and similarity behavior.
type Config struct {
	MinChunkSize        int
	MaxChunkSize        int
	SimilarityThreshold float64
	EmbeddingCacheSize  int
}

// Option configures a SemanticChunker at construction time. Grounded on
// pkg/chunking/semantic.go's functional-options pattern.
type Option func(*Config)

func WithMinChunkSize(n int) Option        { return func(c *Config) { c.MinChunkSize = n } }
func WithMaxChunkSize(n int) Option        { return func(c *Config) { c.MaxChunkSize = n } }
func WithSimilarityThreshold(t float64) Option {
	return func(c *Config) { c.SimilarityThreshold = t }
}
func WithEmbeddingCacheSize(n int) Option { return func(c *Config) { c.EmbeddingCacheSize = n } }

func defaultConfig() Config {
	return Config{
		MinChunkSize:        150,
		MaxChunkSize:        600,
		SimilarityThreshold: 0.7,
		EmbeddingCacheSize:  1000,
	}
}

// SemanticChunker implements Chunker. embedder may be nil: every strategy
// degrades to a size-based fallback when no embedder is configured, per the
// capability contract documented on translate.Embedder.
type SemanticChunker struct {
	config     Config
	embedder   translate.Embedder
	embedCache *embeddingCache
	logger     *zap.SugaredLogger
}

var _ Chunker = (*SemanticChunker)(nil)

// NewSemanticChunker builds a chunker. embedder may be nil.
func NewSemanticChunker(embedder translate.Embedder, opts ...Option) (*SemanticChunker, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MinChunkSize <= 0 || cfg.MaxChunkSize <= 0 || cfg.MinChunkSize > cfg.MaxChunkSize {
		return nil, errors.New("chunking: invalid chunk size configuration")
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return nil, errors.New("chunking: similarity threshold must be in (0, 1]")
	}

	return &SemanticChunker{
		config:     cfg,
		embedder:   embedder,
		embedCache: newEmbeddingCache(cfg.EmbeddingCacheSize),
		logger:     logger.Sugar(),
	}, nil
}

// ChunkText implements Chunker. sourceLang is used only to pick the
// discourse word lists (e.g. "en", "ru"); "" and "auto" both select the
// language-neutral default lists.
func (c *SemanticChunker) ChunkText(ctx context.Context, text, sourceLang string) (Result, error) {
	if len(text) == 0 {
		return Result{ContentType: Conversational, CoherenceScore: 0}, nil
	}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	features := analyzeDiscourse(text, sourceLang)
	contentType := classifyContentType(text, features)

	var chunks []Chunk
	switch contentType {
	case Emotional:
		chunks = chunkEmotional(text, c.config.MaxChunkSize)
	case Technical:
		chunks = chunkTechnical(text, c.config.MaxChunkSize)
	case Conversational:
		chunks = c.chunkConversational(ctx, text, c.config.MaxChunkSize)
	default: // Formal, Narrative
		chunks = c.chunkSemanticSimilarity(ctx, text, c.config.MaxChunkSize, contentType)
	}

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	coherence := c.coherenceScore(ctx, chunks)
	optimalSize := estimateOptimalSize(text, contentType, features, c.config.MinChunkSize, c.config.MaxChunkSize)

	return Result{
		Chunks:            chunks,
		ContentType:       contentType,
		CoherenceScore:    coherence,
		OptimalSizeHint:   optimalSize,
		DiscourseFeatures: features,
	}, nil
}

// coherenceScore measures how semantically connected adjacent chunks are,
// as the mean cosine similarity between consecutive chunk embeddings.
// Grounded on the reference implementation's _calculate_coherence_score: no
// embedder or a single chunk both score as "can't/needn't measure"
// (0.5 neutral, 1.0 trivially coherent respectively).
func (c *SemanticChunker) coherenceScore(ctx context.Context, chunks []Chunk) float64 {
	if len(chunks) == 0 || c.embedder == nil {
		return 0.5
	}
	if len(chunks) == 1 {
		return 1.0
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vectors, err := embedWithCache(ctx, c.embedder, c.embedCache, texts)
	if err != nil {
		c.logger.Warnw("coherence scoring fell back to neutral", "error", err)
		return 0.5
	}

	var sum float64
	for i := 0; i < len(vectors)-1; i++ {
		sum += cosineSimilarity(vectors[i], vectors[i+1])
	}
	return sum / float64(len(vectors)-1)
}
