// Package controller wires the chunker, quality engine, optimizer, and
// cache into the single entry point a caller actually uses: translate a
// piece of text, optionally watching its progress stage by stage.
package controller

import (
	"errors"
	"time"

	"github.com/hsn0918/adaptive-translate/internal/cache"
	"github.com/hsn0918/adaptive-translate/internal/chunking"
	"github.com/hsn0918/adaptive-translate/internal/quality"
)

// Preference trades speed for translation quality.
type Preference string

const (
	PreferenceFast     Preference = "fast"
	PreferenceBalanced Preference = "balanced"
	PreferenceQuality  Preference = "quality"
)

// Stage names one step of the translation pipeline, used both for stage
// timings and for progressive update events.
type Stage string

const (
	StageSemantic   Stage = "semantic"
	StageAnalyzing  Stage = "analyzing"
	StageOptimizing Stage = "optimizing"
	StageOptimized  Stage = "optimized"
	StageError      Stage = "error"
)

// ErrEmptyText is returned when a request's text is empty after trimming.
var ErrEmptyText = errors.New("controller: text must not be empty")

// ErrInvalidLanguage is returned when a request's source or target language
// tag cannot be parsed as a BCP 47 language tag.
var ErrInvalidLanguage = errors.New("controller: invalid language tag")

// ErrUpstreamUnavailable wraps a translator failure on the semantic path,
// which aborts the request rather than degrading.
var ErrUpstreamUnavailable = errors.New("controller: upstream translator unavailable")

// Request is the controller's input.
type Request struct {
	Text                 string
	SourceLang           string
	TargetLang           string
	Preference           Preference
	ForceOptimization    bool
	OptimizationDeadline time.Duration
}

// Result is the controller's output.
type Result struct {
	RequestID           string
	Translation         string
	OriginalText        string
	QualityMetrics      quality.Metrics
	ChunkingResult      chunking.Result
	ProcessingTime      time.Duration
	CacheHit            bool
	OptimizationApplied bool
	StageTimes          map[Stage]time.Duration
	Metadata            map[string]any
}

// Update is one event in a progressive translation's event stream.
type Update struct {
	RequestID   string
	Stage       Stage
	Translation string
	Chunking    *chunking.Result
	Quality     *quality.Metrics
	Error       error
	ElapsedTime time.Duration
}

// Sink receives ordered Update events. A sink failure is logged and
// ignored: it must never abort the pipeline.
type Sink func(Update)

// Statistics re-exports the cache's statistics snapshot for callers that
// only import this package.
type Statistics = cache.Statistics
