package cache

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/kvstore"
	"github.com/hsn0918/adaptive-translate/internal/logger"
	"github.com/hsn0918/adaptive-translate/internal/translate"
)

// Config controls Manager's size, TTL, and similarity-fallback behavior.
type Config struct {
	L1Capacity          int
	L2TTL               time.Duration
	SimilarityThreshold float64
	PatternBucketCap    int
}

// Option configures a Manager at construction time.
type Option func(*Config)

func WithL1Capacity(n int) Option             { return func(c *Config) { c.L1Capacity = n } }
func WithL2TTL(d time.Duration) Option        { return func(c *Config) { c.L2TTL = d } }
func WithCacheSimilarityThreshold(t float64) Option {
	return func(c *Config) { c.SimilarityThreshold = t }
}
func WithPatternBucketCap(n int) Option { return func(c *Config) { c.PatternBucketCap = n } }

func defaultConfig() Config {
	return Config{
		L1Capacity:          1000,
		L2TTL:               24 * time.Hour,
		SimilarityThreshold: 0.85,
		PatternBucketCap:    100,
	}
}

// Manager is the multi-level cache. l2 and embedder may both be nil: a nil
// l2 degrades to an L1-only cache; a nil embedder disables the similarity
// fallback (exact-key lookup still works), per translate.Embedder's
// documented nil contract.
type Manager struct {
	config Config

	l1 *lru
	l2 kvstore.Store

	embedder translate.Embedder

	patternMu    sync.Mutex
	patternCache map[string][]Key

	statsMu sync.Mutex
	stats   Statistics

	logger *zap.Logger
}

// NewManager builds a Manager. l2 and embedder may be nil.
func NewManager(l2 kvstore.Store, embedder translate.Embedder, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		config:       cfg,
		l1:           newLRU(cfg.L1Capacity),
		l2:           l2,
		embedder:     embedder,
		patternCache: make(map[string][]Key),
		logger:       logger.Get(),
	}
}

// GetTranslation looks up text's translation, trying L1, then L2, then a
// similarity fallback over L1 entries for the same language pair and
// level. Grounded on the reference implementation's get_translation,
// including its behavior of re-storing a similarity hit under the new
// exact key so future exact lookups hit immediately.
func (m *Manager) GetTranslation(ctx context.Context, text, sourceLang, targetLang string, level Level, chunkSize int, contentType string) (*Entry, bool, error) {
	m.statsMu.Lock()
	m.stats.TotalRequests++
	m.statsMu.Unlock()

	key := NewKey(text, sourceLang, targetLang, level, chunkSize, contentType)
	keyString := key.String()

	if entry, ok := m.l1.get(keyString); ok {
		m.recordHit()
		return entry, true, nil
	}

	if m.l2 != nil {
		if entry, ok, err := m.getFromL2(ctx, keyString); err != nil {
			m.logger.Warn("cache L2 lookup failed", zap.String("key", keyString), zap.Error(err))
		} else if ok {
			m.l1.put(keyString, entry)
			m.recordHit()
			return entry, true, nil
		}
	}

	if similar := m.findSimilar(ctx, text, sourceLang, targetLang, level); similar != nil {
		clone := *similar
		clone.Key = key
		m.store(ctx, &clone)
		m.recordHit()
		return &clone, true, nil
	}

	m.statsMu.Lock()
	m.stats.CacheMisses++
	m.statsMu.Unlock()
	return nil, false, nil
}

func (m *Manager) recordHit() {
	m.statsMu.Lock()
	m.stats.CacheHits++
	m.statsMu.Unlock()
}

func (m *Manager) getFromL2(ctx context.Context, keyString string) (*Entry, bool, error) {
	raw, found, err := m.l2.Get(ctx, keyString)
	if err != nil || !found || raw == "" {
		return nil, false, err
	}
	var entry Entry
	if err := sonic.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

// StoreTranslation stores entry (whose Key should already be populated, via
// NewKey) into every cache level and updates the pattern-bucket bookkeeping
// counted in Statistics. InvalidatePattern does not read the buckets; it
// matches L1 keys and L2 key patterns directly.
func (m *Manager) StoreTranslation(ctx context.Context, entry *Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return m.store(ctx, entry)
}

func (m *Manager) store(ctx context.Context, entry *Entry) error {
	keyString := entry.Key.String()
	m.l1.put(keyString, entry)

	var l2Err error
	if m.l2 != nil {
		data, err := sonic.Marshal(entry)
		if err != nil {
			l2Err = err
		} else if err := m.l2.Set(ctx, keyString, string(data), m.config.L2TTL); err != nil {
			l2Err = err
			m.logger.Warn("cache L2 store failed", zap.String("key", keyString), zap.Error(err))
		}
	}

	m.updatePatternCache(entry.Key)
	return l2Err
}

func (m *Manager) updatePatternCache(key Key) {
	contentType := key.ContentType
	if contentType == "" {
		contentType = "default"
	}
	patternKey := key.SourceLang + "_" + key.TargetLang + "_" + contentType

	m.patternMu.Lock()
	defer m.patternMu.Unlock()
	bucket := append(m.patternCache[patternKey], key)
	if len(bucket) > m.config.PatternBucketCap {
		bucket = bucket[len(bucket)-m.config.PatternBucketCap:]
	}
	m.patternCache[patternKey] = bucket
}

// findSimilar scans L1 for an entry with the same language pair and level
// whose original text embeds close enough to text. Returns nil when no
// embedder is configured, matching the reference implementation's
// behavior of skipping similarity search entirely without one.
func (m *Manager) findSimilar(ctx context.Context, text, sourceLang, targetLang string, level Level) *Entry {
	if m.embedder == nil {
		return nil
	}

	vectors, err := m.embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) != 1 {
		return nil
	}
	textVector := vectors[0]

	for _, candidate := range m.l1.all() {
		if candidate.Key.SourceLang != sourceLang || candidate.Key.TargetLang != targetLang || candidate.Key.Level != level {
			continue
		}
		candidateVectors, err := m.embedder.Embed(ctx, []string{candidate.OriginalText})
		if err != nil || len(candidateVectors) != 1 {
			continue
		}
		if cosineSimilarity(textVector, candidateVectors[0]) >= m.config.SimilarityThreshold {
			return candidate
		}
	}
	return nil
}

// InvalidatePattern removes every cached entry for the given language pair
// (and, optionally, content type) from both cache levels.
func (m *Manager) InvalidatePattern(ctx context.Context, sourceLang, targetLang, contentType string) error {
	for _, keyString := range m.l1.keys() {
		if keyMatchesPattern(keyString, sourceLang, targetLang, contentType) {
			m.l1.remove(keyString)
		}
	}

	if m.l2 == nil {
		return nil
	}
	pattern := "tr:*:" + sourceLang + ":" + targetLang + ":*"
	if contentType != "" {
		pattern = "tr:*:" + sourceLang + ":" + targetLang + ":*:type_" + contentType
	}
	keys, err := m.l2.Keys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return m.l2.Delete(ctx, keys...)
}

func keyMatchesPattern(keyString, sourceLang, targetLang, contentType string) bool {
	parts := strings.Split(keyString, ":")
	if len(parts) < 4 {
		return false
	}
	if parts[2] != sourceLang || parts[3] != targetLang {
		return false
	}
	if contentType == "" {
		return true
	}
	for _, p := range parts {
		if p == "type_"+contentType {
			return true
		}
	}
	return false
}

// Statistics returns a snapshot of current cache performance.
func (m *Manager) Statistics() Statistics {
	m.statsMu.Lock()
	stats := m.stats
	m.statsMu.Unlock()

	if stats.TotalRequests > 0 {
		stats.HitRate = float64(stats.CacheHits) / float64(stats.TotalRequests)
	}
	stats.L1Entries = m.l1.len()

	m.patternMu.Lock()
	patternEntries := 0
	for _, bucket := range m.patternCache {
		patternEntries += len(bucket)
	}
	m.patternMu.Unlock()
	stats.PatternEntries = patternEntries

	return stats
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
