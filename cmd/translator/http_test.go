package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsn0918/adaptive-translate/internal/cache"
	"github.com/hsn0918/adaptive-translate/internal/controller"
	"github.com/hsn0918/adaptive-translate/internal/logger"
	"github.com/hsn0918/adaptive-translate/internal/optimizer"
	"github.com/hsn0918/adaptive-translate/internal/quality"
)

type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	qualityEngine := quality.NewEngine(nil, 0.75)
	opt := optimizer.New()
	cacheManager := cache.NewManager(nil, nil)
	ctrl := controller.New(upperTranslator{}, nil, qualityEngine, opt, cacheManager,
		controller.WithMaxConcurrentTranslations(2))
	return NewHTTPHandler(ctrl, logger.Get()).Handler
}

func TestHandleTranslate_ReturnsTranslation(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(
		`{"text":"hello world","source_lang":"en","target_lang":"ru","preference":"fast"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "HELLO WORLD")
}

func TestHandleTranslate_RejectsEmptyText(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(
		`{"text":"   ","source_lang":"en","target_lang":"ru"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTranslate_RejectsMalformedBody(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats_ReturnsCacheStatistics(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "TotalRequests")
}
