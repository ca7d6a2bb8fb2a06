package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the translator CLI's root command and wires in its
// subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translator",
		Short: "translator - adaptive translation optimization core",
		Long:  "translator chunks, translates, scores, and optionally re-optimizes text through the adaptive translation pipeline",
		Example: `  translator translate --src en --tgt fr "Hello, world."
  translator serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(newTranslateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
