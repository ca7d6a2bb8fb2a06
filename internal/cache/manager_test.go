package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory kvstore.Store for tests, avoiding any real
// Redis dependency.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{data: make(map[string]string)} }

func (f *fakeStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) Keys(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }
func (f *fakeStore) Close()                       {}

// stubEmbedder returns a fixed vector for every input, so any two texts
// compare as identical; enough to exercise the similarity-fallback code
// path deterministically without a real model.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3, 4}
	}
	return out, nil
}

func TestManager_StoreThenGet_ExactKeyHit(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	key := NewKey("hello world", "en", "ru", LevelOptimized, 300, "formal")
	entry := &Entry{Key: key, OriginalText: "hello world", Translation: "привет мир", QualityScore: 0.9}

	require.NoError(t, m.StoreTranslation(context.Background(), entry))

	got, ok, err := m.GetTranslation(context.Background(), "hello world", "en", "ru", LevelOptimized, 300, "formal")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "привет мир", got.Translation)
}

func TestManager_GetTranslation_MissWithoutEmbedder(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	_, ok, err := m.GetTranslation(context.Background(), "never stored", "en", "ru", LevelSemantic, 0, "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManager_GetTranslation_FallsBackToL2AfterL1Eviction(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, nil, WithL1Capacity(1))

	first := NewKey("first text", "en", "ru", LevelOptimized, 300, "")
	second := NewKey("second text", "en", "ru", LevelOptimized, 300, "")
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{Key: first, OriginalText: "first text", Translation: "первый"}))
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{Key: second, OriginalText: "second text", Translation: "второй"}))

	got, ok, err := m.GetTranslation(context.Background(), "first text", "en", "ru", LevelOptimized, 300, "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "первый", got.Translation)
}

func TestManager_GetTranslation_SimilarityFallback(t *testing.T) {
	m := NewManager(newFakeStore(), stubEmbedder{})
	key := NewKey("the quick brown fox", "en", "ru", LevelSemantic, 0, "")
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{
		Key:          key,
		OriginalText: "the quick brown fox",
		Translation:  "быстрая рыжая лиса",
		QualityScore: 0.88,
	}))

	// Different text, same language pair and level: no exact key match, so
	// this must resolve through the similarity fallback.
	got, ok, err := m.GetTranslation(context.Background(), "a quick brown fox", "en", "ru", LevelSemantic, 0, "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "быстрая рыжая лиса", got.Translation)
}

func TestManager_InvalidatePattern_RemovesMatchingEntries(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	enKey := NewKey("hello", "en", "ru", LevelOptimized, 300, "")
	frKey := NewKey("bonjour", "fr", "ru", LevelOptimized, 300, "")
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{Key: enKey, OriginalText: "hello", Translation: "привет"}))
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{Key: frKey, OriginalText: "bonjour", Translation: "привет"}))

	require.NoError(t, m.InvalidatePattern(context.Background(), "en", "ru", ""))

	_, ok, _ := m.GetTranslation(context.Background(), "hello", "en", "ru", LevelOptimized, 300, "")
	require.False(t, ok)

	_, ok, _ = m.GetTranslation(context.Background(), "bonjour", "fr", "ru", LevelOptimized, 300, "")
	require.True(t, ok)
}

func TestManager_Statistics_TracksHitRate(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	key := NewKey("hi", "en", "ru", LevelOptimized, 300, "")
	require.NoError(t, m.StoreTranslation(context.Background(), &Entry{Key: key, OriginalText: "hi", Translation: "привет"}))

	_, _, _ = m.GetTranslation(context.Background(), "hi", "en", "ru", LevelOptimized, 300, "")
	_, _, _ = m.GetTranslation(context.Background(), "missing", "en", "ru", LevelOptimized, 300, "")

	stats := m.Statistics()
	require.Equal(t, 2, stats.TotalRequests)
	require.Equal(t, 1, stats.CacheHits)
	require.Equal(t, 1, stats.CacheMisses)
	require.InDelta(t, 0.5, stats.HitRate, 0.001)
}
