package quality

import (
	"context"
	"math"
	"strings"

	"github.com/hsn0918/adaptive-translate/internal/translate"
)

// Engine assesses translation quality. embedder may be nil, in which case
// the two embedding-based dimensions (semantic similarity, boundary
// coherence) fall back to their neutral scores, per translate.Embedder's
// documented nil contract.
type Engine struct {
	embedder  translate.Embedder
	threshold float64
}

// NewEngine builds an Engine. threshold is the overall score below which
// Assess sets Metrics.OptimizationNeeded.
func NewEngine(embedder translate.Embedder, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = 0.75
	}
	return &Engine{embedder: embedder, threshold: threshold}
}

// Assess scores p across all eight dimensions and combines them into a
// single Metrics result. Grounded on the reference implementation's
// QualityMetricsEngine.assess_quality.
func (e *Engine) Assess(ctx context.Context, p Pair) Metrics {
	if strings.TrimSpace(p.Translation) == "" {
		scores := make(map[Dimension]float64, len(allDimensions))
		for _, d := range allDimensions {
			scores[d] = 0.0
		}
		return Metrics{
			OverallScore:           0.0,
			DimensionScores:        scores,
			Grade:                  "F",
			OptimizationNeeded:     true,
			ImprovementSuggestions: []string{"Translation is empty"},
		}
	}

	scores := map[Dimension]float64{
		Confidence:              assessConfidence(p),
		LengthRatio:             assessLengthRatio(p),
		StructureIntegrity:      assessStructureIntegrity(p),
		NamedEntityPreservation: assessEntityPreservation(p),
		BoundaryCoherence:       assessBoundaryCoherence(ctx, p, e.embedder),
		SemanticSimilarity:      assessSemanticSimilarity(ctx, p, e.embedder),
		Fluency:                 assessFluency(p),
		Consistency:             assessConsistency(p),
	}

	overall := overallScore(scores)
	low, high := confidenceInterval(scores)

	return Metrics{
		OverallScore:           overall,
		DimensionScores:        scores,
		ConfidenceIntervalLow:  low,
		ConfidenceIntervalHigh: high,
		Grade:                  assignGrade(overall),
		OptimizationNeeded:     overall < e.threshold,
		ImprovementSuggestions: improvementSuggestions(scores),
	}
}

func overallScore(scores map[Dimension]float64) float64 {
	var weightedSum, totalWeight float64
	for dim, score := range scores {
		weight := dimensionWeights[dim]
		if weight == 0 {
			weight = 0.1
		}
		weightedSum += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// confidenceInterval computes an approximate 95% interval around the mean
// dimension score. Grounded on the reference implementation's use of a
// normal-approximation margin (1.96 * stddev / sqrt(n)); fewer than two
// scores returns the maximally uninformative (0, 1) interval, matching it.
func confidenceInterval(scores map[Dimension]float64) (float64, float64) {
	values := make([]float64, 0, len(scores))
	for _, v := range scores {
		values = append(values, v)
	}
	if len(values) < 2 {
		return 0.0, 1.0
	}

	avg := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - avg
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(len(values)-1))
	margin := 1.96 * stddev / math.Sqrt(float64(len(values)))

	return clamp01(avg - margin), clamp01(avg + margin)
}

func assignGrade(overall float64) string {
	switch {
	case overall >= 0.9:
		return "A"
	case overall >= 0.8:
		return "B"
	case overall >= 0.7:
		return "C"
	case overall >= 0.6:
		return "D"
	default:
		return "F"
	}
}

var dimensionSuggestions = map[Dimension]string{
	Confidence:              "Consider using a different chunking strategy for better model confidence",
	LengthRatio:             "Translation length ratio suggests potential over/under-translation",
	StructureIntegrity:      "Text structure not well preserved - adjust chunking boundaries",
	NamedEntityPreservation: "Named entities not properly preserved - use entity-aware chunking",
	BoundaryCoherence:       "Chunk boundaries create semantic discontinuity",
	SemanticSimilarity:      "Semantic meaning not well preserved - try larger chunks",
	Fluency:                 "Target language fluency could be improved",
}

// improvementSuggestions lists one suggestion per dimension scoring below
// 0.6 that has an entry in dimensionSuggestions; Consistency has no entry,
// so a low Consistency score adds no suggestion. Output is in a fixed
// dimension order so output is deterministic across calls
// (the reference implementation iterates a Python dict whose insertion
// order happens to be stable; map iteration in Go is not, so this sorts
// explicitly over allDimensions instead).
func improvementSuggestions(scores map[Dimension]float64) []string {
	var suggestions []string
	for _, dim := range allDimensions {
		if scores[dim] < 0.6 {
			if s, ok := dimensionSuggestions[dim]; ok {
				suggestions = append(suggestions, s)
			}
		}
	}
	if len(suggestions) == 0 {
		suggestions = []string{"Quality is acceptable - minor optimizations possible"}
	}
	return suggestions
}

// RankByScore returns the indices of metrics sorted by descending overall
// score, for selecting the best of several candidate translations.
//
// This uses a simple bubble sort, which is acceptable here since callers
// never rank more than a handful of optimizer candidates at once. Grounded
// on internal/search/scoring.go's sortByAdvancedScore.
func RankByScore(metrics []Metrics) []int {
	idx := make([]int, len(metrics))
	for i := range idx {
		idx[i] = i
	}
	n := len(idx)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if metrics[idx[j]].OverallScore < metrics[idx[j+1]].OverallScore {
				idx[j], idx[j+1] = idx[j+1], idx[j]
			}
		}
	}
	return idx
}
