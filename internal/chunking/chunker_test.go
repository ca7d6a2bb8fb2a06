package chunking_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hsn0918/adaptive-translate/internal/chunking"
)

// mockEmbedder returns deterministic vectors derived from text length, so
// near-identical sentences land close together in cosine space. Grounded on
// internal/chunking/semantic_test.go's mockEmbedder from the reference
// service (same determinism trick, adapted to the [][]float32 contract).
type mockEmbedder struct{}

func (mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 16)
		base := float32(len(t)%50) / 50.0
		for j := range v {
			v[j] = base + float32(j)*0.001
		}
		out[i] = v
	}
	return out, nil
}

func TestSemanticChunker_ChunkText_ContentTypes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want chunking.ContentType
	}{
		{
			name: "emotional",
			text: "I can't believe this happened! This is absolutely amazing and I'm so grateful for everyone's support!",
			want: chunking.Emotional,
		},
		{
			name: "technical",
			text: "The parseConfig() function returns an HTTPClient. See RFC2119 and v1.2.3 for the wire_format details.",
			want: chunking.Technical,
		},
		{
			name: "conversational",
			text: "Hey, how are you? Did you hear about the pretty crazy stuff happening downtown?",
			want: chunking.Conversational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := chunking.NewSemanticChunker(nil)
			if err != nil {
				t.Fatalf("NewSemanticChunker: %v", err)
			}
			result, err := c.ChunkText(context.Background(), tt.text, "en")
			if err != nil {
				t.Fatalf("ChunkText: %v", err)
			}
			if result.ContentType != tt.want {
				t.Errorf("ContentType = %q, want %q", result.ContentType, tt.want)
			}
			if len(result.Chunks) == 0 {
				t.Errorf("expected at least one chunk")
			}
		})
	}
}

func TestSemanticChunker_ChunkText_RespectsMaxSize(t *testing.T) {
	c, err := chunking.NewSemanticChunker(mockEmbedder{}, chunking.WithMaxChunkSize(200), chunking.WithMinChunkSize(50))
	if err != nil {
		t.Fatalf("NewSemanticChunker: %v", err)
	}

	sentence := "This is a long formal sentence describing a process in careful detail. "
	text := strings.Repeat(sentence, 20)

	result, err := c.ChunkText(context.Background(), text, "en")
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(result.Chunks) < 2 {
		t.Fatalf("expected multiple chunks for long text, got %d", len(result.Chunks))
	}
	for _, ch := range result.Chunks {
		if len(ch.Content) > 400 {
			t.Errorf("chunk exceeds a reasonable bound: %d bytes", len(ch.Content))
		}
	}
}

func TestSemanticChunker_ChunkText_Empty(t *testing.T) {
	c, err := chunking.NewSemanticChunker(nil)
	if err != nil {
		t.Fatalf("NewSemanticChunker: %v", err)
	}
	result, err := c.ChunkText(context.Background(), "", "en")
	if err != nil {
		t.Fatalf("ChunkText on empty input should never fail, got %v", err)
	}
	if result.ContentType != chunking.Conversational {
		t.Errorf("expected ContentType Conversational, got %v", result.ContentType)
	}
	if result.CoherenceScore != 0 {
		t.Errorf("expected CoherenceScore 0, got %v", result.CoherenceScore)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(result.Chunks))
	}
}

func TestSemanticChunker_ChunkText_ShortConversationalIsSingleChunk(t *testing.T) {
	c, err := chunking.NewSemanticChunker(nil)
	if err != nil {
		t.Fatalf("NewSemanticChunker: %v", err)
	}
	text := "Hey, how are you?"
	result, err := c.ChunkText(context.Background(), text, "en")
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(result.Chunks))
	}
	if result.CoherenceScore != 1.0 && result.CoherenceScore != 0.5 {
		t.Errorf("unexpected coherence score for single chunk: %v", result.CoherenceScore)
	}
}

func TestNewSemanticChunker_RejectsInvalidSizes(t *testing.T) {
	if _, err := chunking.NewSemanticChunker(nil, chunking.WithMinChunkSize(500), chunking.WithMaxChunkSize(400)); err == nil {
		t.Error("expected error when min > max chunk size")
	}
}
