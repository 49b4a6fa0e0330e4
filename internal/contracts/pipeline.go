package contracts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-lens/internal/analysis"
	"legal-lens/internal/extract"
	"legal-lens/internal/llm"
	"legal-lens/internal/llm/providers"
	"legal-lens/internal/shared/metrics"
	"legal-lens/internal/shared/telemetry"
)

// ErrInvalidProvider is returned when a credential names an unknown provider.
var ErrInvalidProvider = errors.New("invalid llm provider")

// ClientFactory builds the LLM client for a credential.
type ClientFactory func(cred llm.Credential, timeout time.Duration) (llm.Client, error)

// Pipeline runs extraction and analysis for one upload. It is shared by the
// JSON API, the HTML page and the CLI.
type Pipeline struct {
	Service    *analysis.Service
	LLMTimeout time.Duration
	NewClient  ClientFactory
}

// Extract converts an upload into text.
func (p *Pipeline) Extract(ctx context.Context, up Upload) (extract.Extraction, error) {
	ext, err := extract.ExtractFromBytes(ctx, up.Data, up.MediaType, up.FileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedMediaType) {
			metrics.IncUploadRejected()
		}
		return extract.Extraction{}, err
	}
	metrics.IncExtractions()
	for _, w := range ext.Warnings {
		telemetry.Warn("extract.warning", map[string]any{
			"file_name":  up.FileName,
			"media_type": ext.MediaType,
			"warning":    w,
		})
	}
	return ext, nil
}

// Analyze extracts the upload and runs every stage in mode with cred. Stage
// failures are reported inside the returned report; only input errors are
// returned.
func (p *Pipeline) Analyze(ctx context.Context, requestID string, up Upload, cred llm.Credential, mode analysis.Mode) (analysis.Report, error) {
	cred = cred.Normalize()
	factory := p.NewClient
	if factory == nil {
		factory = providers.New
	}
	client, err := factory(cred, p.LLMTimeout)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("%w: %v", ErrInvalidProvider, err)
	}

	ext, err := p.Extract(ctx, up)
	if err != nil {
		return analysis.Report{}, err
	}

	return p.Service.Run(ctx, analysis.Request{
		RequestID:  requestID,
		FileName:   up.FileName,
		Extraction: ext,
		Client:     client,
		Mode:       mode,
		Model:      cred.Model,
	}), nil
}
