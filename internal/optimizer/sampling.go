package optimizer

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/logger"
)

// sampleQualityCurve evaluates every candidate size for strategy in
// parallel, bounded by parallelEvaluations concurrent evaluations, and
// returns the ones that succeeded. Grounded on the reference
// implementation's _sample_quality_curve (asyncio.gather with
// return_exceptions=True); the conc/pool result pool is the Go idiom for
// "run N tasks concurrently, keep the ones that didn't error."
func sampleQualityCurve(ctx context.Context, evaluate EvaluateFunc, strategy Strategy, minSize, maxSize, parallelEvaluations int) []Point {
	var sizes []int
	for _, size := range candidateSizes(strategy) {
		if size >= minSize && size <= maxSize {
			sizes = append(sizes, size)
		}
	}
	if len(sizes) == 0 {
		return nil
	}

	p := pool.NewWithResults[*Point]().WithContext(ctx).WithMaxGoroutines(parallelEvaluations)
	for _, size := range sizes {
		size := size
		p.Go(func(ctx context.Context) (*Point, error) {
			point, err := evaluate(ctx, size)
			if err != nil {
				logger.Get().Warn("chunk size evaluation failed",
					zap.Int("chunk_size", size), zap.Error(err))
				return nil, nil
			}
			return &point, nil
		})
	}

	results, _ := p.Wait()

	var points []Point
	for _, r := range results {
		if r != nil {
			points = append(points, *r)
		}
	}
	return points
}
