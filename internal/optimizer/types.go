// Package optimizer searches for the chunk size that yields the best
// translation quality for a given text, using a three-phase strategy:
// sample a handful of candidate sizes, narrow to the region that beats the
// baseline, then binary-search within that region under a deadline.
package optimizer

import "context"

// Strategy selects which candidate chunk sizes are sampled in phase one.
type Strategy string

const (
	QualityFocused Strategy = "quality"
	Balanced       Strategy = "balanced"
	SpeedFocused   Strategy = "speed"
)

// candidateSizes returns the strategy's sample points, carried verbatim
// from the reference implementation's _sample_quality_curve.
func candidateSizes(strategy Strategy) []int {
	switch strategy {
	case QualityFocused:
		return []int{150, 250, 350, 450, 550, 650}
	case SpeedFocused:
		return []int{200, 400, 600}
	default: // Balanced
		return []int{150, 300, 450, 600}
	}
}

// Point is one (chunk size, resulting quality) sample.
type Point struct {
	ChunkSize       int
	QualityScore    float64
	Translation     string
	ProcessingTime  float64
	Confidence      float64
}

// EvaluateFunc translates text at the given chunk size and scores the
// result; the optimizer knows nothing about chunking, translation, or
// scoring beyond this callback. Supplied by internal/controller, which
// closes over the actual chunker, translator, and quality engine.
type EvaluateFunc func(ctx context.Context, chunkSize int) (Point, error)

// Result is the outcome of one optimization run.
type Result struct {
	OptimalChunkSize       int
	OptimalTranslation     string
	OptimalQualityScore    float64
	QualityImprovement     float64
	ConfidenceIntervalLow  float64
	ConfidenceIntervalHigh float64
	OptimizationConfidence float64
	SearchPoints           []Point
	ConvergenceIterations  int
	RegionIdentified       bool
	TimeoutReached         bool
	Failed                 bool
}
