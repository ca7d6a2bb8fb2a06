package optimizer

import "math"

// optimizationConfidence blends three signals into one [0,1] confidence
// score for the chosen optimum: how many samples informed the decision, how
// consistent their quality scores were, and how clearly the optimum beats
// the sample average. Grounded verbatim on the reference implementation's
// _calculate_optimization_confidence.
func optimizationConfidence(points []Point, optimal Point) float64 {
	if len(points) < 2 {
		return 0.5
	}

	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.QualityScore
	}

	diversityScore := math.Min(1.0, float64(len(points))/5.0)

	avg := meanFloat(scores)
	consistencyScore := 0.5
	if len(scores) > 1 {
		variance := varianceFloat(scores, avg)
		consistencyScore = math.Max(0.0, 1.0-variance*4)
	}

	clarityScore := 0.5
	if avg > 0 {
		clarityScore = math.Min(1.0, (optimal.QualityScore-avg)/avg*2)
	}

	confidence := diversityScore*0.3 + consistencyScore*0.4 + clarityScore*0.3
	return math.Max(0.0, math.Min(1.0, confidence))
}

// confidenceInterval computes an approximate 95% interval around the mean
// sample quality score. Grounded on the reference implementation's
// _calculate_confidence_interval, including its smaller fixed margin for
// exactly-two-sample runs (not enough data for a stddev-based margin).
func confidenceInterval(points []Point) (low, high float64) {
	if len(points) < 2 {
		return 0.0, 1.0
	}

	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.QualityScore
	}
	mean := meanFloat(scores)

	margin := 0.1
	if len(scores) > 2 {
		stddev := math.Sqrt(varianceSample(scores, mean))
		margin = 1.96 * stddev / math.Sqrt(float64(len(scores)))
	}

	return math.Max(0.0, mean-margin), math.Min(1.0, mean+margin)
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceFloat(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// varianceSample is the sample variance (n-1 denominator), matching
// Python's statistics.variance/stdev used for the interval margin.
func varianceSample(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}
