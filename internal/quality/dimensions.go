package quality

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/hsn0918/adaptive-translate/internal/translate"
)

var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),                                 // person names
	regexp.MustCompile(`\b[A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*\s+(?:Inc|Corp|LLC|Ltd)\b`), // company names
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),                           // dates
	regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?\b`),                   // times
	regexp.MustCompile(`\b[A-Z]{2,}\b`),                                               // acronyms
	regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?\b`),                              // currency
}

var sentenceBoundaryRegex = regexp.MustCompile(`[.!?]+`)
var punctuationRegex = regexp.MustCompile(`[,.;:!?()-]`)

// fluencyPatterns covers English only; per the English-only decision
// recorded in SPEC_FULL.md §9, an unlisted target language always takes the
// neutral 0.7 fallback rather than an approximate pattern set.
var fluencyPatterns = map[string]struct {
	good []*regexp.Regexp
	bad  []*regexp.Regexp
}{
	"en": {
		good: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:the|a|an)\s+\w+`),
			regexp.MustCompile(`(?i)\b\w+\s+(?:is|are|was|were)\s+`),
			regexp.MustCompile(`(?i)\b\w+ly\b`),
		},
		bad: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\w+\s+\w+\s+\w+\s+of\s+\w+\s+of\b`),
			regexp.MustCompile(`(?i)\bof\s+the\s+of\b`),
		},
	},
}

// expectedLengthRatios carries the same small fixed table as the reference
// implementation; any language pair not listed falls back to (0.7, 1.4).
var expectedLengthRatios = map[[2]string][2]float64{
	{"en", "ru"}: {1.1, 1.4},
	{"ru", "en"}: {0.7, 0.9},
	{"en", "es"}: {1.0, 1.2},
	{"es", "en"}: {0.8, 1.0},
}

func assessConfidence(p Pair) float64 {
	if p.ModelConfidence != nil {
		return clamp01(*p.ModelConfidence)
	}
	originalLen := float64(len(p.Original))
	translationLen := float64(len(p.Translation))
	if originalLen > 0 && (translationLen < originalLen*0.3 || translationLen > originalLen*3.0) {
		return 0.4
	}
	return 0.6
}

func assessLengthRatio(p Pair) float64 {
	originalLen := len(strings.TrimSpace(p.Original))
	translationLen := len(strings.TrimSpace(p.Translation))
	if originalLen == 0 {
		return 0.0
	}

	ratio := float64(translationLen) / float64(originalLen)
	expectedMin, expectedMax := 0.7, 1.4
	if r, ok := expectedLengthRatios[[2]string{p.SourceLang, p.TargetLang}]; ok {
		expectedMin, expectedMax = r[0], r[1]
	}

	switch {
	case ratio >= expectedMin && ratio <= expectedMax:
		return 1.0
	case ratio < expectedMin*0.5 || ratio > expectedMax*2.0:
		return 0.2
	case ratio < expectedMin:
		return 0.2 + 0.8*(ratio/expectedMin)
	default:
		return 1.0 - 0.8*((ratio-expectedMax)/expectedMax)
	}
}

func assessStructureIntegrity(p Pair) float64 {
	origParagraphs := len(strings.Split(p.Original, "\n\n"))
	transParagraphs := len(strings.Split(p.Translation, "\n\n"))
	paragraphScore := clamp01(1.0 - absInt(origParagraphs-transParagraphs)/maxFloat(float64(origParagraphs), 1))

	origSentences := len(sentenceBoundaryRegex.FindAllString(p.Original, -1))
	transSentences := len(sentenceBoundaryRegex.FindAllString(p.Translation, -1))
	sentenceScore := 1.0 - absInt(origSentences-transSentences)/maxFloat(float64(origSentences), 1)
	sentenceScore = clamp01(sentenceScore)

	origPunct := len(punctuationRegex.FindAllString(p.Original, -1))
	transPunct := len(punctuationRegex.FindAllString(p.Translation, -1))
	punctScore := 1.0 - absInt(origPunct-transPunct)/maxFloat(float64(origPunct), 1)
	punctScore = clamp01(punctScore)

	return (paragraphScore + sentenceScore + punctScore) / 3.0
}

func assessEntityPreservation(p Pair) float64 {
	entities := make(map[string]struct{})
	for _, pattern := range entityPatterns {
		for _, m := range pattern.FindAllString(p.Original, -1) {
			entities[m] = struct{}{}
		}
	}
	if len(entities) == 0 {
		return 1.0
	}

	translationLower := strings.ToLower(p.Translation)
	var preserved float64
	for entity := range entities {
		switch {
		case strings.Contains(translationLower, strings.ToLower(entity)):
			preserved += 1.0
		default:
			for _, word := range strings.Fields(entity) {
				if len(word) > 2 && strings.Contains(translationLower, strings.ToLower(word)) {
					preserved += 0.5
					break
				}
			}
		}
	}
	return preserved / float64(len(entities))
}

// assessBoundaryCoherence scores semantic continuity across chunk
// boundaries. A single chunk (or no chunking at all) is trivially coherent;
// no embedder configured scores neutral rather than undefined.
func assessBoundaryCoherence(ctx context.Context, p Pair, embedder translate.Embedder) float64 {
	if len(p.ChunksTranslated) <= 1 {
		return 1.0
	}
	if embedder == nil {
		return 0.7
	}
	vectors, err := embedder.Embed(ctx, p.ChunksTranslated)
	if err != nil || len(vectors) < 2 {
		return 0.7
	}
	var sum float64
	for i := 0; i < len(vectors)-1; i++ {
		sum += cosineSimilarity(vectors[i], vectors[i+1])
	}
	return sum / float64(len(vectors)-1)
}

// assessSemanticSimilarity scores how well the translation preserves the
// original's meaning, via embedding cosine similarity.
func assessSemanticSimilarity(ctx context.Context, p Pair, embedder translate.Embedder) float64 {
	if embedder == nil {
		return 0.7
	}
	vectors, err := embedder.Embed(ctx, []string{p.Original, p.Translation})
	if err != nil || len(vectors) != 2 {
		return 0.7
	}
	return math.Max(0.0, cosineSimilarity(vectors[0], vectors[1]))
}

func assessFluency(p Pair) float64 {
	target := p.TargetLang
	if target == "" {
		target = "en"
	}
	patterns, ok := fluencyPatterns[target]
	if !ok {
		return 0.7
	}

	wordCount := len(strings.Fields(p.Translation))
	if wordCount == 0 {
		return 0.0
	}

	goodCount := 0
	for _, pat := range patterns.good {
		goodCount += len(pat.FindAllString(p.Translation, -1))
	}
	badCount := 0
	for _, pat := range patterns.bad {
		badCount += len(pat.FindAllString(p.Translation, -1))
	}

	goodRatio := float64(goodCount) / float64(wordCount)
	badRatio := float64(badCount) / float64(wordCount)

	score := math.Min(1.0, goodRatio*2) - math.Min(0.5, badRatio*5)
	return math.Max(0.0, score)
}

var contradictionPairs = [][2]string{
	{"yes", "no"}, {"true", "false"}, {"on", "off"}, {"always", "never"}, {"all", "none"},
}

func assessConsistency(p Pair) float64 {
	if strings.TrimSpace(p.Translation) == "" {
		return 0.0
	}
	score := 1.0

	words := strings.Fields(strings.ToLower(p.Translation))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(words))/float64(len(unique)) > 2.0 {
			score -= 0.2
		}
	}

	lowerTranslation := strings.ToLower(p.Translation)
	for _, pair := range contradictionPairs {
		if strings.Contains(lowerTranslation, pair[0]) && strings.Contains(lowerTranslation, pair[1]) {
			score -= 0.1
		}
	}

	sentences := strings.Split(p.Translation, ".")
	if len(sentences) > 1 {
		var lengths []float64
		for _, s := range sentences {
			if strings.TrimSpace(s) != "" {
				lengths = append(lengths, float64(len(strings.Fields(s))))
			}
		}
		if len(lengths) > 0 {
			avg := mean(lengths)
			if variance(lengths, avg) > avg*0.5 {
				score -= 0.1
			}
		}
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return sum / float64(len(values))
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
