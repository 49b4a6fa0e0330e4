package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"legal-lens/internal/bootstrap"
	"legal-lens/internal/shared/config"
)

func newExtractCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a PDF or text contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}
			ext, err := bootstrap.NewPipeline(cfg).Extract(cmd.Context(), up)
			if err != nil {
				return err
			}
			for _, w := range ext.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ext.Text)
			return err
		},
	}
}
