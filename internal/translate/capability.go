// Package translate defines the two external capabilities the adaptive core
// consumes — a translator and an embedder — plus HTTP-backed default
// implementations of each.
package translate

import "context"

// Translator performs a single text translation. Implementations must be
// safe for concurrent use up to whatever bound the caller configures; the
// core itself enforces the concurrency bound, not the Translator.
type Translator interface {
	Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error)
}

// Embedder produces a dense vector for each input text, in order. Output
// dimensionality is implementation-defined but constant for a given
// Embedder. A nil Embedder is a valid value throughout this module: callers
// fall back to the neutral scores and strategies documented per component
// when no embedder is configured.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
