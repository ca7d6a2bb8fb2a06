package chunking

import "strings"

// classifyContentType picks a ContentType from the text and its discourse
// features. Thresholds and scoring weights are carried verbatim from the
// reference adaptive chunker; emotional detection takes priority over the
// other categories, matching its intent-preservation requirements.
func classifyContentType(text string, features DiscourseFeatures) ContentType {
	emotionalScore := float64(features.EmotionIndicators)*2 + features.PunctuationDensity*10
	technicalScore := float64(features.TechnicalTerms) * 3
	if features.AvgSentenceLength > 25 {
		technicalScore += 1
	}

	textLower := strings.ToLower(text)

	emotionalWordCount := 0
	for _, w := range emotionalWords {
		if strings.Contains(textLower, w) {
			emotionalWordCount++
		}
	}
	emotionalPhraseCount := 0
	for _, p := range emotionalPhrases {
		if strings.Contains(textLower, p) {
			emotionalPhraseCount++
		}
	}
	if emotionalWordCount >= 2 || emotionalPhraseCount >= 1 {
		emotionalScore += 5
	}

	conversationalIndicators := 0
	if features.AvgSentenceLength < 20 {
		conversationalIndicators++
	}
	if len(text) < 500 {
		conversationalIndicators++
	}
	for _, w := range conversationalWords {
		if strings.Contains(textLower, w) {
			conversationalIndicators += 2
			break
		}
	}

	switch {
	case emotionalScore > 3:
		return Emotional
	case technicalScore > 2:
		return Technical
	case conversationalIndicators >= 2:
		return Conversational
	case features.SentenceCount > 5 && features.AvgSentenceLength > 20:
		return Narrative
	default:
		return Formal
	}
}

// estimateOptimalSize derives a content-aware target chunk size, clamped to
// [minSize, maxSize]. Base sizes per content type and the sentence-length
// adjustment are carried verbatim from the reference implementation.
func estimateOptimalSize(text string, contentType ContentType, features DiscourseFeatures, minSize, maxSize int) int {
	baseSize := 300
	switch contentType {
	case Emotional:
		baseSize = 400
	case Technical:
		baseSize = 250
	case Conversational:
		baseSize = 200
	}

	switch {
	case features.AvgSentenceLength > 30:
		baseSize += 100
	case features.AvgSentenceLength < 10:
		baseSize -= 50
	}

	if baseSize < minSize {
		baseSize = minSize
	}
	if baseSize > maxSize {
		baseSize = maxSize
	}
	return baseSize
}
