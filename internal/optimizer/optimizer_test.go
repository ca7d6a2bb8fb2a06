package optimizer_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hsn0918/adaptive-translate/internal/optimizer"
)

// peakEvaluator simulates a quality curve that peaks near a target chunk
// size, so fine-tuning has something real to converge toward.
func peakEvaluator(peak int) optimizer.EvaluateFunc {
	return func(ctx context.Context, chunkSize int) (optimizer.Point, error) {
		distance := chunkSize - peak
		if distance < 0 {
			distance = -distance
		}
		score := 0.9 - float64(distance)/1000.0
		return optimizer.Point{
			ChunkSize:    chunkSize,
			QualityScore: score,
			Translation:  fmt.Sprintf("translation at size %d", chunkSize),
		}, nil
	}
}

func TestOptimizer_Optimize_FindsBetterThanBaseline(t *testing.T) {
	opt := optimizer.New(optimizer.WithChunkSizeRange(150, 600))
	result := opt.Optimize(context.Background(), peakEvaluator(450), optimizer.Balanced, "baseline translation", 0.5, 5*time.Second)

	require.False(t, result.Failed)
	require.Greater(t, result.OptimalQualityScore, 0.5)
	require.NotEmpty(t, result.SearchPoints)
}

func TestOptimizer_Optimize_EvaluatorAlwaysFailsReturnsFailedResult(t *testing.T) {
	opt := optimizer.New(optimizer.WithChunkSizeRange(150, 600))
	alwaysFails := func(ctx context.Context, chunkSize int) (optimizer.Point, error) {
		return optimizer.Point{}, fmt.Errorf("backend unavailable")
	}

	result := opt.Optimize(context.Background(), alwaysFails, optimizer.Balanced, "baseline", 0.6, time.Second)

	require.True(t, result.Failed)
	require.Equal(t, "baseline", result.OptimalTranslation)
	require.Equal(t, 0.6, result.OptimalQualityScore)
	require.Equal(t, 300, result.OptimalChunkSize)
}

func TestOptimizer_Optimize_DeadlineExceededFallsBackToBaseline(t *testing.T) {
	opt := optimizer.New(optimizer.WithChunkSizeRange(150, 600))
	slow := func(ctx context.Context, chunkSize int) (optimizer.Point, error) {
		select {
		case <-time.After(200 * time.Millisecond):
			return optimizer.Point{ChunkSize: chunkSize, QualityScore: 0.9}, nil
		case <-ctx.Done():
			return optimizer.Point{}, ctx.Err()
		}
	}

	result := opt.Optimize(context.Background(), slow, optimizer.Balanced, "baseline translation", 0.6, 10*time.Millisecond)

	require.True(t, result.Failed)
	require.Equal(t, "baseline translation", result.OptimalTranslation)
	require.Equal(t, 0.6, result.OptimalQualityScore)
	require.Empty(t, result.SearchPoints)
}

func TestOptimizer_Optimize_SpeedFocusedUsesFewerCandidates(t *testing.T) {
	var mu sync.Mutex
	var evaluated []int
	counting := func(ctx context.Context, chunkSize int) (optimizer.Point, error) {
		mu.Lock()
		evaluated = append(evaluated, chunkSize)
		mu.Unlock()
		return optimizer.Point{ChunkSize: chunkSize, QualityScore: 0.8}, nil
	}

	opt := optimizer.New(optimizer.WithChunkSizeRange(150, 600))
	result := opt.Optimize(context.Background(), counting, optimizer.SpeedFocused, "baseline", 0.5, 5*time.Second)

	require.False(t, result.Failed)
	require.LessOrEqual(t, len(result.SearchPoints), 3)
}
