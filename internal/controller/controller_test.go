package controller

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsn0918/adaptive-translate/internal/cache"
	"github.com/hsn0918/adaptive-translate/internal/optimizer"
	"github.com/hsn0918/adaptive-translate/internal/quality"
)

// fakeTranslator upper-cases each word and tags the source/target
// languages, so the test can assert on a recognizable output without a
// real translation backend.
type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, srcLang, tgtLang string) (string, error) {
	return fmt.Sprintf("[%s->%s] %s", srcLang, tgtLang, strings.ToUpper(text)), nil
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, string, string) (string, error) {
	return "", fmt.Errorf("backend unreachable")
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	qualityEngine := quality.NewEngine(nil, 0.75)
	opt := optimizer.New()
	cacheManager := cache.NewManager(nil, nil)
	return New(fakeTranslator{}, nil, qualityEngine, opt, cacheManager)
}

func TestController_Translate_RejectsEmptyText(t *testing.T) {
	c := newTestController(t)
	_, err := c.Translate(context.Background(), Request{Text: "   ", SourceLang: "en", TargetLang: "ru"})
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestController_Translate_SanitizesInvalidUTF8(t *testing.T) {
	c := newTestController(t)
	result, err := c.Translate(context.Background(), Request{
		Text:       "hello\xffworld",
		SourceLang: "en",
		TargetLang: "ru",
		Preference: PreferenceFast,
	})
	require.NoError(t, err)
	require.NotContains(t, result.OriginalText, "\xff")
}

func TestController_Translate_RejectsInvalidLanguageTag(t *testing.T) {
	c := newTestController(t)
	_, err := c.Translate(context.Background(), Request{Text: "hello", SourceLang: "not a tag!!", TargetLang: "ru"})
	require.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestController_Translate_CanonicalizesLanguageTags(t *testing.T) {
	c := newTestController(t)
	result, err := c.Translate(context.Background(), Request{
		Text:       "Hello there. How are you doing today?",
		SourceLang: "EN-us",
		TargetLang: "RU",
		Preference: PreferenceFast,
	})
	require.NoError(t, err)
	require.Contains(t, result.Translation, "en-US->ru")
}

func TestController_Translate_FastPreferenceNeverOptimizes(t *testing.T) {
	c := newTestController(t)
	result, err := c.Translate(context.Background(), Request{
		Text:       "Hello there. How are you doing today?",
		SourceLang: "en",
		TargetLang: "ru",
		Preference: PreferenceFast,
	})
	require.NoError(t, err)
	require.False(t, result.OptimizationApplied)
	require.NotEmpty(t, result.Translation)
	require.False(t, result.CacheHit)
}

func TestController_Translate_UpstreamFailureIsWrapped(t *testing.T) {
	qualityEngine := quality.NewEngine(nil, 0.75)
	opt := optimizer.New()
	cacheManager := cache.NewManager(nil, nil)
	c := New(failingTranslator{}, nil, qualityEngine, opt, cacheManager)

	_, err := c.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "ru"})
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestController_Translate_SecondCallHitsCache(t *testing.T) {
	c := newTestController(t)
	req := Request{Text: "hello world", SourceLang: "en", TargetLang: "ru", Preference: PreferenceFast}

	first, err := c.Translate(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := c.Translate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Translation, second.Translation)
}

func TestController_ProgressiveTranslate_EmitsStagesInOrder(t *testing.T) {
	c := newTestController(t)
	var stages []Stage
	sink := func(u Update) { stages = append(stages, u.Stage) }

	_, err := c.ProgressiveTranslate(context.Background(), Request{
		Text:       "A short sentence for progressive translation.",
		SourceLang: "en",
		TargetLang: "ru",
		Preference: PreferenceFast,
	}, sink)
	require.NoError(t, err)
	require.Contains(t, stages, StageSemantic)
	require.Contains(t, stages, StageAnalyzing)
	require.NotContains(t, stages, StageOptimizing)
}

func TestController_ProgressiveTranslate_SinkPanicDoesNotAbort(t *testing.T) {
	c := newTestController(t)
	sink := func(Update) { panic("boom") }

	result, err := c.ProgressiveTranslate(context.Background(), Request{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "ru",
		Preference: PreferenceFast,
	}, sink)
	require.NoError(t, err)
	require.NotEmpty(t, result.Translation)
}

func TestController_ShouldOptimize_ForceOverridesHighQualityScore(t *testing.T) {
	c := newTestController(t)
	req := Request{Preference: PreferenceQuality, ForceOptimization: true}
	require.True(t, c.shouldOptimize(req, 0.99))
}

func TestController_ShouldOptimize_FastPreferenceIgnoresForce(t *testing.T) {
	c := newTestController(t)
	req := Request{Preference: PreferenceFast, ForceOptimization: true}
	require.False(t, c.shouldOptimize(req, 0.1))
}

func TestController_CacheStatsAndInvalidate(t *testing.T) {
	c := newTestController(t)
	_, err := c.Translate(context.Background(), Request{Text: "hi", SourceLang: "en", TargetLang: "ru", Preference: PreferenceFast})
	require.NoError(t, err)

	stats := c.CacheStats()
	require.GreaterOrEqual(t, stats.TotalRequests, 1)

	require.NoError(t, c.Invalidate(context.Background(), "en", "ru", ""))
}
