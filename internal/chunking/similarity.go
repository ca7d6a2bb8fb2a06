package chunking

import (
	"context"
	"math"
	"sync"

	"github.com/hsn0918/adaptive-translate/internal/translate"
)

// cosineSimilarity returns the cosine similarity of a and b, or 0 if either
// is empty or they differ in length.
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

// embeddingCache is a small bounded cache of text -> vector, evicted FIFO
// once capacity is reached. Grounded on pkg/chunking/semantic.go's
// embeddingCache, which uses the same map-plus-order-slice shape.
type embeddingCache struct {
	mu       sync.RWMutex
	vectors  map[string][]float32
	order    []string
	capacity int
}

func newEmbeddingCache(capacity int) *embeddingCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &embeddingCache{vectors: make(map[string][]float32), capacity: capacity}
}

func (c *embeddingCache) get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[text]
	return v, ok
}

func (c *embeddingCache) put(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.vectors[text]; exists {
		c.vectors[text] = vector
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.vectors, oldest)
	}
	c.vectors[text] = vector
	c.order = append(c.order, text)
}

// embedWithCache returns embeddings for texts in order, fetching only the
// ones not already cached.
func embedWithCache(ctx context.Context, embedder translate.Embedder, cache *embeddingCache, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missingTexts []string
	var missingIdx []int

	for i, t := range texts {
		if v, ok := cache.get(t); ok {
			result[i] = v
			continue
		}
		missingTexts = append(missingTexts, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missingTexts) == 0 {
		return result, nil
	}

	vectors, err := embedder.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	for i, v := range vectors {
		idx := missingIdx[i]
		result[idx] = v
		cache.put(missingTexts[i], v)
	}
	return result, nil
}

// groupBySimilarity greedily groups sentences whose embeddings are mutually
// similar to the group's seed sentence, skipping any candidate that would
// bring the group's length to maxChunkSize or beyond and continuing with
// the later sentences. Grounded on the reference implementation's
// _chunk_by_similarity, adapted from a full similarity matrix to an
// incremental comparison against the seed (equivalent for the seed-vs-rest
// comparisons the reference actually performs).
func groupBySimilarity(sentences []string, vectors [][]float32, similarityThreshold float64, maxChunkSize int) [][]int {
	used := make([]bool, len(sentences))
	var groups [][]int

	for i := range sentences {
		if used[i] {
			continue
		}
		group := []int{i}
		used[i] = true
		length := len(sentences[i])

		for j := i + 1; j < len(sentences); j++ {
			if used[j] {
				continue
			}
			if length+len(sentences[j]) >= maxChunkSize {
				continue
			}
			if cosineSimilarity(vectors[i], vectors[j]) > similarityThreshold {
				group = append(group, j)
				used[j] = true
				length += len(sentences[j])
			}
		}
		groups = append(groups, group)
	}
	return groups
}
