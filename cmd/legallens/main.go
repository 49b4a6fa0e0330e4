package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"legal-lens/internal/shared/config"
	"legal-lens/internal/shared/telemetry"
)

func main() {
	// stdout carries the report.
	telemetry.SetOutput(os.Stderr)
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "legallens",
		Short:         "Analyze contracts from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(cfg), newExtractCmd(cfg))
	return root
}
