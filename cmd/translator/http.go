package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/config"
	"github.com/hsn0918/adaptive-translate/internal/controller"
)

// translateRequest is the wire shape of POST /translate.
type translateRequest struct {
	Text              string `json:"text"`
	SourceLang        string `json:"source_lang"`
	TargetLang        string `json:"target_lang"`
	Preference        string `json:"preference"`
	ForceOptimization bool   `json:"force_optimization"`
}

// translateResponse is the wire shape of a successful POST /translate.
type translateResponse struct {
	RequestID           string  `json:"request_id"`
	Translation         string  `json:"translation"`
	QualityScore        float64 `json:"quality_score"`
	CacheHit            bool    `json:"cache_hit"`
	OptimizationApplied bool    `json:"optimization_applied"`
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
}

// errorResponse is the wire shape of any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPHandler builds the plain JSON HTTP mux for the translation core:
// no protobuf/connect-rpc surface, per this module's scope.
func NewHTTPHandler(ctrl *controller.Controller, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /translate", handleTranslate(ctrl, log))
	mux.HandleFunc("GET /stats", handleStats(ctrl))

	return &http.Server{
		Handler: mux,
	}
}

// ServerAddr is the HTTP listen address, a distinct type so fx does not
// conflate it with any other string-typed dependency in the graph.
type ServerAddr string

// NewHTTPServerAddr derives the listen address from configuration,
// separated from NewHTTPHandler so fx can provide it independently of the
// test-friendly *http.Server.
func NewHTTPServerAddr(cfg *config.Config) ServerAddr {
	return ServerAddr(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port))
}

func handleTranslate(ctrl *controller.Controller, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		var req translateRequest
		if err := sonic.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		result, err := ctrl.Translate(r.Context(), controller.Request{
			Text:              req.Text,
			SourceLang:        req.SourceLang,
			TargetLang:        req.TargetLang,
			Preference:        controller.Preference(req.Preference),
			ForceOptimization: req.ForceOptimization,
		})
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, controller.ErrEmptyText) || errors.Is(err, controller.ErrInvalidLanguage) {
				status = http.StatusBadRequest
			}
			log.Warn("translate request failed", zap.Error(err))
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, translateResponse{
			RequestID:           result.RequestID,
			Translation:         result.Translation,
			QualityScore:        result.QualityMetrics.OverallScore,
			CacheHit:            result.CacheHit,
			OptimizationApplied: result.OptimizationApplied,
			ProcessingTimeMs:    result.ProcessingTime.Milliseconds(),
		})
	}
}

func handleStats(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.CacheStats())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// StartHTTPServer registers the HTTP server's start/stop hooks on the fx
// lifecycle, mirroring the teacher's shutdown-on-listen-failure pattern.
func StartHTTPServer(httpServer *http.Server, addr ServerAddr, lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, log *zap.Logger) {
	httpServer.Addr = string(addr)
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting HTTP server", zap.String("addr", httpServer.Addr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server failed", zap.Error(err))
					if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
						log.Error("application shutdown failed", zap.Error(shutdownErr))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	})
}
