package chunking

import (
	"context"
	"sort"
	"strings"
)

// chunkBySize is the fallback strategy: greedily accumulate sentences until
// the next one would exceed maxChunkSize. Used directly for size-focused
// fallback and as the base case when similarity grouping has no embedder.
func chunkBySize(sentences []string, maxChunkSize int) []Chunk {
	var chunks []Chunk
	var current strings.Builder
	start := 0
	pos := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, StartIndex: start, EndIndex: pos})
		}
		current.Reset()
	}

	for _, s := range sentences {
		if current.Len()+len(s) > maxChunkSize && current.Len() > 0 {
			flush()
			start = pos
		}
		current.WriteString(s)
		current.WriteString(" ")
		pos += len(s) + 1
	}
	flush()
	return chunks
}

// chunkEmotional preserves emotional flow by never splitting mid-sentence,
// packing sentences greedily up to maxChunkSize. Grounded verbatim on the
// reference implementation's _chunk_emotional_content.
func chunkEmotional(text string, maxChunkSize int) []Chunk {
	sentences := splitSentences(text)
	chunks := chunkBySize(sentences, maxChunkSize)
	for i := range chunks {
		chunks[i].ContentType = Emotional
	}
	return chunks
}

// chunkTechnical splits on block boundaries first (so code fences, lists,
// and headings stay intact), falling back to sentence packing only for
// blocks that individually exceed maxChunkSize. Grounded on the reference
// implementation's _chunk_technical_content, with the naive "\n\n" split
// replaced by a markdown-aware block split (see blocks.go).
func chunkTechnical(text string, maxChunkSize int) []Chunk {
	blocks := splitBlocks(text)
	var chunks []Chunk
	var current strings.Builder
	start := 0
	pos := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, StartIndex: start, EndIndex: pos, ContentType: Technical})
		}
		current.Reset()
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if len(block) > maxChunkSize {
			for _, sub := range chunkBySize(splitSentences(block), maxChunkSize) {
				if current.Len()+len(sub.Content) > maxChunkSize && current.Len() > 0 {
					flush()
					start = pos
				}
				current.WriteString(sub.Content)
				current.WriteString(" ")
				pos += len(sub.Content) + 1
			}
			continue
		}

		if current.Len()+len(block) > maxChunkSize && current.Len() > 0 {
			flush()
			start = pos
		}
		current.WriteString(block)
		current.WriteString("\n\n")
		pos += len(block) + 2
	}
	flush()
	return chunks
}

// chunkConversational returns the whole text as one chunk when it already
// fits, otherwise falls back to similarity-based (or size-based) sentence
// grouping. Grounded on the reference implementation's
// _chunk_conversational_content.
func (c *SemanticChunker) chunkConversational(ctx context.Context, text string, maxChunkSize int) []Chunk {
	if len(text) <= maxChunkSize {
		return []Chunk{{Content: text, StartIndex: 0, EndIndex: len(text), ContentType: Conversational}}
	}
	sentences := splitSentences(text)
	chunks := c.chunkBySimilarityOrSize(ctx, sentences, maxChunkSize)
	for i := range chunks {
		chunks[i].ContentType = Conversational
	}
	return chunks
}

// chunkSemanticSimilarity is used for Formal and Narrative content: group
// sentences by embedding similarity when an embedder is configured and
// there's more than two sentences to work with, otherwise fall back to
// size-based packing. Grounded on the reference implementation's
// _chunk_semantic_similarity.
func (c *SemanticChunker) chunkSemanticSimilarity(ctx context.Context, text string, maxChunkSize int, contentType ContentType) []Chunk {
	sentences := splitSentences(text)
	chunks := c.chunkBySimilarityOrSize(ctx, sentences, maxChunkSize)
	for i := range chunks {
		chunks[i].ContentType = contentType
	}
	return chunks
}

func (c *SemanticChunker) chunkBySimilarityOrSize(ctx context.Context, sentences []string, maxChunkSize int) []Chunk {
	if c.embedder == nil || len(sentences) <= 2 {
		return chunkBySize(sentences, maxChunkSize)
	}

	vectors, err := embedWithCache(ctx, c.embedder, c.embedCache, sentences)
	if err != nil {
		c.logger.Warnw("similarity chunking fell back to size-based", "error", err)
		return chunkBySize(sentences, maxChunkSize)
	}

	groups := groupBySimilarity(sentences, vectors, c.config.SimilarityThreshold, maxChunkSize)

	var chunks []Chunk
	pos := 0
	for _, group := range groups {
		sort.Ints(group)
		var parts []string
		for _, idx := range group {
			parts = append(parts, sentences[idx])
		}
		content := strings.Join(parts, " ")
		chunks = append(chunks, Chunk{Content: content, StartIndex: pos, EndIndex: pos + len(content)})
		pos += len(content) + 1
	}
	return chunks
}
