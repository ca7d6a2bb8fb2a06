package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hsn0918/adaptive-translate/internal/controller"
	"github.com/hsn0918/adaptive-translate/internal/logger"
)

type translateFlags struct {
	sourceLang string
	targetLang string
	preference string
	force      bool
}

func newTranslateCmd() *cobra.Command {
	var flags translateFlags

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate a single piece of text and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.sourceLang, "src", "en", "source language (BCP 47)")
	cmd.Flags().StringVar(&flags.targetLang, "tgt", "fr", "target language (BCP 47)")
	cmd.Flags().StringVar(&flags.preference, "preference", "balanced", "fast, balanced, or quality")
	cmd.Flags().BoolVar(&flags.force, "force-optimize", false, "always attempt optimization regardless of initial quality")

	return cmd
}

// runTranslate builds the full fx dependency graph, runs a single
// translation through the resulting Controller, prints the result as JSON,
// and tears the graph down — mirroring the teacher's fx.New/app.Start/
// app.Stop lifecycle, but invoked once per CLI call instead of left
// running.
func runTranslate(ctx context.Context, text string, flags translateFlags) error {
	var result controller.Result
	var runErr error

	app := fx.New(
		Module,
		fx.NopLogger,
		fx.Invoke(func(ctrl *controller.Controller, shutdowner fx.Shutdowner, log *zap.Logger) {
			go func() {
				defer func() { _ = shutdowner.Shutdown() }()

				reqCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
				defer cancel()

				result, runErr = ctrl.Translate(reqCtx, controller.Request{
					Text:              text,
					SourceLang:        flags.sourceLang,
					TargetLang:        flags.targetLang,
					Preference:        controller.Preference(flags.preference),
					ForceOptimization: flags.force,
				})
				if runErr != nil {
					log.Error("translate failed", zap.Error(runErr))
				}
			}()
		}),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	<-app.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Get().Error("application shutdown failed", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}

	body, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(body))
	return nil
}
