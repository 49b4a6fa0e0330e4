package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"legal-lens/internal/analysis"
	"legal-lens/internal/bootstrap"
	"legal-lens/internal/contracts"
	"legal-lens/internal/export"
	"legal-lens/internal/llm"
	"legal-lens/internal/shared/config"
)

type analyzeOptions struct {
	provider string
	model    string
	mode     string
	format   string
	out      string
}

func newAnalyzeCmd(cfg config.Config) *cobra.Command {
	opts := analyzeOptions{provider: cfg.LLMProvider, model: cfg.LLMModel, format: contracts.FormatMarkdown}
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run every analysis stage over a PDF or text contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cfg, opts, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.provider, "provider", opts.provider, "LLM provider (openai or gemini)")
	cmd.Flags().StringVar(&opts.model, "model", opts.model, "LLM model; empty uses the provider default")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "force ai or rule_based; empty picks ai when a key is configured")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: markdown, json or xlsx")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write output to this file instead of stdout")
	return cmd
}

func runAnalyze(ctx context.Context, cfg config.Config, opts analyzeOptions, path string, stdout io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case contracts.FormatMarkdown, contracts.FormatJSON, contracts.FormatXLSX:
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if format == contracts.FormatXLSX && opts.out == "" {
		return fmt.Errorf("--out is required for xlsx output")
	}

	up, err := readUpload(path)
	if err != nil {
		return err
	}

	provider := llm.NormalizeProvider(opts.provider)
	cred := llm.Credential{Provider: provider, Model: opts.model, APIKey: cfg.APIKeyFor(provider)}
	mode, err := analysis.SelectMode(cred, opts.mode)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := bootstrap.NewPipeline(cfg).Analyze(ctx, "cli", up, cred, mode)
	if err != nil {
		return err
	}

	var payload []byte
	switch format {
	case contracts.FormatJSON:
		payload, err = json.MarshalIndent(report, "", "  ")
		payload = append(payload, '\n')
	case contracts.FormatXLSX:
		payload, err = export.ReportXLSX(report)
	default:
		payload = []byte(analysis.RenderMarkdown(report))
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if opts.out == "" {
		_, err = stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(opts.out, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s (%s mode)\n", opts.out, report.Mode)
	return nil
}

func readUpload(path string) (contracts.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contracts.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return contracts.Upload{FileName: filepath.Base(path), Data: data}, nil
}
