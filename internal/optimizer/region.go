package optimizer

import "context"

// region is an inclusive [start, end] chunk-size range to fine-tune within.
type region struct {
	start, end int
}

// identifyOptimalRegion finds the chunk-size range most likely to contain
// the best quality, from phase-one samples. Grounded verbatim on the
// reference implementation's _identify_optimal_region: points that beat the
// baseline define the region (with a small margin for fine-tuning); if none
// do, fall back to a fixed-width window around the single best point.
func identifyOptimalRegion(points []Point, baselineQuality float64, minSize, maxSize int) (region, bool) {
	if len(points) < 2 {
		return region{}, false
	}

	var improving []Point
	for _, p := range points {
		if p.QualityScore > baselineQuality {
			improving = append(improving, p)
		}
	}

	if len(improving) == 0 {
		best := points[0]
		for _, p := range points[1:] {
			if p.QualityScore > best.QualityScore {
				best = p
			}
		}
		const margin = 100
		return region{
			start: maxInt(best.ChunkSize-margin, minSize),
			end:   minInt(best.ChunkSize+margin, maxSize),
		}, true
	}

	bestStart, bestEnd := improving[0].ChunkSize, improving[0].ChunkSize
	for _, p := range improving[1:] {
		if p.ChunkSize < bestStart {
			bestStart = p.ChunkSize
		}
		if p.ChunkSize > bestEnd {
			bestEnd = p.ChunkSize
		}
	}

	const margin = 50
	return region{
		start: maxInt(bestStart-margin, minSize),
		end:   minInt(bestEnd+margin, maxSize),
	}, true
}

// fineTuneInRegion binary-searches within r for the best chunk size, up to
// 3 probes. Grounded verbatim on the reference implementation's
// _fine_tune_in_region, including its "narrow around a high-quality
// midpoint, otherwise alternate search direction" heuristic.
func fineTuneInRegion(ctx context.Context, evaluate EvaluateFunc, r region, existingPoints []Point, maxIterations int) Point {
	var regionPoints []Point
	for _, p := range existingPoints {
		if p.ChunkSize >= r.start && p.ChunkSize <= r.end {
			regionPoints = append(regionPoints, p)
		}
	}
	if len(regionPoints) > 0 {
		best := regionPoints[0]
		for _, p := range regionPoints[1:] {
			if p.QualityScore > best.QualityScore {
				best = p
			}
		}
		return best
	}

	left, right := r.start, r.end
	var best *Point
	iterations := minInt(3, maxIterations)

	for i := 0; i < iterations; i++ {
		if right-left < 50 {
			break
		}

		midSize := (left + right) / 2
		midPoint, err := evaluate(ctx, midSize)
		if err != nil {
			break
		}

		if best == nil || midPoint.QualityScore > best.QualityScore {
			best = &midPoint
		}

		if midPoint.QualityScore > 0.8 {
			margin := (right - left) / 4
			left = maxInt(left, midSize-margin)
			right = minInt(right, midSize+margin)
		} else if i%2 == 0 {
			left = midSize
		} else {
			right = midSize
		}
	}

	if best != nil {
		return *best
	}
	if len(existingPoints) > 0 {
		return existingPoints[0]
	}
	return Point{ChunkSize: r.start}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
