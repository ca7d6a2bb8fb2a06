package translate

import (
	"context"
	"fmt"
	"time"
)

// HTTPTranslator calls an OpenAI-compatible chat/translation endpoint. It is
// the default Translator used outside of tests.
type HTTPTranslator struct {
	client *httpClient
	model  string
	prompt string
}

// NewHTTPTranslator builds a Translator against the given backend. promptTemplate,
// if empty, defaults to a minimal instruction wrapping the source/target language
// pair; it must contain the three verbs %s (source lang), %s (target lang) and
// %s (text) in that order when overridden.
func NewHTTPTranslator(cfg BackendConfig, timeout time.Duration, promptTemplate string) *HTTPTranslator {
	if promptTemplate == "" {
		promptTemplate = "Translate the following text from %s to %s. Return only the translation, no commentary.\n\n%s"
	}
	return &HTTPTranslator{
		client: newHTTPClient("translator", cfg, timeout),
		model:  cfg.Model,
		prompt: promptTemplate,
	}
}

var _ Translator = (*HTTPTranslator)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Translate implements Translator.
func (t *HTTPTranslator) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	req := chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(t.prompt, srcLang, tgtLang, text)},
		},
	}

	var resp chatResponse
	if err := t.client.post(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", newClientError("translator", "chat completion", fmt.Errorf("empty choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint. It is the
// default Embedder used outside of tests; a nil *HTTPEmbedder is not a valid
// Embedder value — callers that want "no embedder" pass a nil Embedder
// interface value instead, per the capability contract.
type HTTPEmbedder struct {
	client     *httpClient
	model      string
	dimensions int
}

// NewHTTPEmbedder builds an Embedder against the given backend. dimensions,
// if zero, omits the request field and accepts whatever the backend returns.
func NewHTTPEmbedder(cfg BackendConfig, timeout time.Duration, dimensions int) *HTTPEmbedder {
	return &HTTPEmbedder{
		client:     newHTTPClient("embedder", cfg, timeout),
		model:      cfg.Model,
		dimensions: dimensions,
	}
}

var _ Embedder = (*HTTPEmbedder)(nil)

type embeddingRequest struct {
	Model      string      `json:"model"`
	Input      interface{} `json:"input"`
	Dimensions int         `json:"dimensions,omitempty"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// Embed implements Embedder. Results are returned in request order,
// regardless of the order the backend places them in its response payload.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embeddingRequest{
		Model:      e.model,
		Input:      texts,
		Dimensions: e.dimensions,
	}

	var resp embeddingResponse
	if err := e.client.post(ctx, "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, newClientError("embedder", "batch embed", fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, newClientError("embedder", "batch embed", fmt.Errorf("embedding index %d out of range", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
