package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/hsn0918/adaptive-translate/internal/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the translation core as a long-lived HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe starts the full fx graph, including the HTTP server module, and
// blocks until the process receives a shutdown signal (fx's default
// os.Interrupt/SIGTERM handling) or the app is told to stop.
func runServe(ctx context.Context) error {
	app := fx.New(
		Module,
		HTTPServerModule,
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.Get().Sugar().Errorw("application startup failed", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	return app.Stop(stopCtx)
}
