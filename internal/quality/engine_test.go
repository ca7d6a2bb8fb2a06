package quality_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsn0918/adaptive-translate/internal/quality"
)

func TestEngine_Assess_EmptyTranslation(t *testing.T) {
	engine := quality.NewEngine(nil, 0.75)
	metrics := engine.Assess(context.Background(), quality.Pair{
		Original:    "Hello world.",
		Translation: "   ",
	})

	require.Equal(t, 0.0, metrics.OverallScore)
	require.Equal(t, "F", metrics.Grade)
	require.True(t, metrics.OptimizationNeeded)
	require.Contains(t, metrics.ImprovementSuggestions, "Translation is empty")
}

func TestEngine_Assess_ReasonableTranslationScoresWell(t *testing.T) {
	engine := quality.NewEngine(nil, 0.75)
	metrics := engine.Assess(context.Background(), quality.Pair{
		Original:    "The system processes requests quickly. It handles errors gracefully.",
		Translation: "El sistema procesa las solicitudes rapidamente. Maneja los errores con gracia.",
		SourceLang:  "en",
		TargetLang:  "es",
	})

	require.Greater(t, metrics.OverallScore, 0.0)
	require.Len(t, metrics.DimensionScores, 8)
	require.Contains(t, []string{"A", "B", "C", "D", "F"}, metrics.Grade)
}

func TestEngine_Assess_SingleChunkBoundaryCoherenceIsPerfect(t *testing.T) {
	engine := quality.NewEngine(nil, 0.75)
	metrics := engine.Assess(context.Background(), quality.Pair{
		Original:         "Single chunk text.",
		Translation:      "Texto de un solo fragmento.",
		ChunksTranslated: []string{"Texto de un solo fragmento."},
	})
	require.Equal(t, 1.0, metrics.DimensionScores[quality.BoundaryCoherence])
}

func TestEngine_Assess_ExplicitModelConfidenceIsClamped(t *testing.T) {
	engine := quality.NewEngine(nil, 0.75)
	conf := 1.5
	metrics := engine.Assess(context.Background(), quality.Pair{
		Original:        "Text.",
		Translation:     "Texto.",
		ModelConfidence: &conf,
	})
	require.Equal(t, 1.0, metrics.DimensionScores[quality.Confidence])
}

func TestRankByScore_OrdersDescending(t *testing.T) {
	metrics := []quality.Metrics{
		{OverallScore: 0.5},
		{OverallScore: 0.9},
		{OverallScore: 0.3},
	}
	ranked := quality.RankByScore(metrics)
	require.Equal(t, []int{1, 0, 2}, ranked)
}
