package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"legal-lens/internal/entities"
	"legal-lens/internal/extract"
	"legal-lens/internal/llm"
	"legal-lens/internal/shared/metrics"
	"legal-lens/internal/shared/telemetry"
)

// Limits are the per-stage truncation lengths, in characters.
type Limits struct {
	Summary   int
	Clauses   int
	Fields    int
	Flowchart int
	Preview   int
}

// DefaultLimits returns the stock truncation lengths.
func DefaultLimits() Limits {
	return Limits{Summary: 1500, Clauses: 2000, Fields: 2000, Flowchart: 1500, Preview: 1000}
}

func (l Limits) forStage(stage Stage) int {
	switch stage {
	case StageSummary:
		return l.Summary
	case StageClauses:
		return l.Clauses
	case StageFields:
		return l.Fields
	case StageFlowchart:
		return l.Flowchart
	default:
		return 0
	}
}

// Service runs the analysis stages over extracted contract text.
type Service struct {
	Entities    entities.Recognizer
	Limits      Limits
	Concurrency int
	Now         func() time.Time
}

// Request is one document to analyze.
type Request struct {
	RequestID  string
	FileName   string
	Extraction extract.Extraction
	Client     llm.Client
	Mode       Mode
	Model      string
}

type stageFunc func(ctx context.Context, req Request) Outcome

// Run executes every stage and returns the collected report. A failing stage
// never stops the others and never turns into an error here.
func (s *Service) Run(ctx context.Context, req Request) Report {
	start := s.now()
	if req.Client == nil {
		req.Client = llm.Unconfigured{}
	}
	if req.Mode == "" {
		req.Mode = ModeRuleBased
	}

	text := req.Extraction.Text
	preview, cut := extract.Preview(text, s.Limits.Preview)
	report := Report{
		ID:               uuid.NewString(),
		FileName:         req.FileName,
		MediaType:        req.Extraction.MediaType,
		PageCount:        req.Extraction.PageCount,
		CharCount:        utf8.RuneCountInString(text),
		Preview:          preview,
		PreviewTruncated: cut,
		Warnings:         req.Extraction.Warnings,
		Mode:             req.Mode,
		CreatedAt:        start.UTC(),
	}
	if req.Mode == ModeAI {
		report.Provider = llm.ProviderName(req.Client)
		report.Model = req.Model
	}

	stages := s.stageFuncs()
	report.Outcomes = make([]Outcome, len(stages))
	limit := s.Concurrency
	if limit <= 1 {
		for i, st := range stages {
			report.Outcomes[i] = s.runStage(ctx, st.stage, st.fn, req, report.ID)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, st := range stages {
			i, st := i, st
			g.Go(func() error {
				report.Outcomes[i] = s.runStage(gctx, st.stage, st.fn, req, report.ID)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.DurationMs = msSince(start, s.now())
	metrics.IncReports()
	telemetry.Info("analysis.complete", map[string]any{
		"request_id":  req.RequestID,
		"report_id":   report.ID,
		"mode":        report.Mode,
		"provider":    report.Provider,
		"char_count":  report.CharCount,
		"page_count":  report.PageCount,
		"duration_ms": report.DurationMs,
	})
	return report
}

type namedStage struct {
	stage Stage
	fn    stageFunc
}

func (s *Service) stageFuncs() []namedStage {
	return []namedStage{
		{StageSummary, s.textStage(StageSummary)},
		{StageClauses, s.clausesStage},
		{StageFields, s.fieldsStage},
		{StageEntities, s.entitiesStage},
		{StageFlowchart, s.flowchartStage},
	}
}

// runStage isolates one stage: panics become failed outcomes.
func (s *Service) runStage(ctx context.Context, stage Stage, fn stageFunc, req Request, reportID string) (out Outcome) {
	start := s.now()
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("analysis.stage_panic", map[string]any{
				"request_id": req.RequestID,
				"report_id":  reportID,
				"stage":      stage,
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			out = failed(stage, llm.ProviderName(req.Client), fmt.Errorf("panic: %v", rec))
		}
		out.Stage = stage
		out.DurationMs = msSince(start, s.now())
		metrics.IncStageOutcome(string(stage), string(out.Status))
		metrics.ObserveStageDurationMs(out.DurationMs)
		fields := map[string]any{
			"request_id":  req.RequestID,
			"report_id":   reportID,
			"stage":       stage,
			"status":      out.Status,
			"input_chars": out.InputChars,
			"duration_ms": out.DurationMs,
		}
		if out.Error != "" {
			fields["error"] = out.Error
			telemetry.Warn("analysis.stage", fields)
			return
		}
		telemetry.Info("analysis.stage", fields)
	}()

	if err := ctx.Err(); err != nil {
		return failed(stage, llm.ProviderName(req.Client), err)
	}
	return fn(ctx, req)
}

// complete sends the truncated text for an LLM stage. ok is false when the
// outcome is already terminal (unavailable, empty or failed).
func (s *Service) complete(ctx context.Context, stage Stage, req Request) (reply string, out Outcome, ok bool) {
	if req.Mode != ModeAI {
		return "", Outcome{Stage: stage, Status: StatusUnavailable, Message: msgUnavailable}, false
	}
	if strings.TrimSpace(req.Extraction.Text) == "" {
		return "", Outcome{Stage: stage, Status: StatusEmpty, Message: msgNoText}, false
	}
	template, found := PromptTemplate(stage)
	if !found {
		return "", failed(stage, llm.ProviderName(req.Client), fmt.Errorf("no prompt for stage %q", stage)), false
	}
	excerpt := Truncate(req.Extraction.Text, s.Limits.forStage(stage))
	inputChars := utf8.RuneCountInString(excerpt)

	reply, err := req.Client.Complete(ctx, BuildPrompt(template, excerpt))
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", Outcome{Stage: stage, Status: StatusUnavailable, Message: msgUnavailable, InputChars: inputChars}, false
		}
		out = failed(stage, llm.ProviderName(req.Client), err)
		out.InputChars = inputChars
		return "", out, false
	}
	return reply, Outcome{Stage: stage, Status: StatusOK, InputChars: inputChars}, true
}

func (s *Service) textStage(stage Stage) stageFunc {
	return func(ctx context.Context, req Request) Outcome {
		reply, out, ok := s.complete(ctx, stage, req)
		if !ok {
			return out
		}
		out.Content = reply
		return out
	}
}

func (s *Service) clausesStage(ctx context.Context, req Request) Outcome {
	if req.Mode != ModeAI {
		rows := RuleBasedClauses(req.Extraction.Text)
		out := Outcome{Stage: StageClauses, InputChars: utf8.RuneCountInString(req.Extraction.Text)}
		if len(rows) == 0 {
			out.Status = StatusEmpty
			out.Message = msgNoClauses
			return out
		}
		out.Status = StatusOK
		out.Clauses = rows
		out.Content = ClauseTableMarkdown(rows)
		out.Message = "Rule-based clause detection; add an API key for AI analysis"
		return out
	}

	reply, out, ok := s.complete(ctx, StageClauses, req)
	if !ok {
		return out
	}
	out.Content = reply
	out.Clauses = ParseClauseTable(reply)
	return out
}

func (s *Service) fieldsStage(ctx context.Context, req Request) Outcome {
	reply, out, ok := s.complete(ctx, StageFields, req)
	if !ok {
		return out
	}
	fields, err := ParseFields(reply)
	if err != nil {
		failedOut := failed(StageFields, llm.ProviderName(req.Client), err)
		failedOut.InputChars = out.InputChars
		failedOut.Content = reply
		return failedOut
	}
	if fields.Empty() {
		out.Status = StatusEmpty
		out.Message = "No key fields found"
		return out
	}
	out.Fields = &fields
	return out
}

func (s *Service) flowchartStage(ctx context.Context, req Request) Outcome {
	reply, out, ok := s.complete(ctx, StageFlowchart, req)
	if !ok {
		return out
	}
	out.Content = stripCodeFence(reply)
	out.Edges = ParseFlowEdges(reply)
	return out
}

func (s *Service) entitiesStage(ctx context.Context, req Request) Outcome {
	out := Outcome{Stage: StageEntities, InputChars: utf8.RuneCountInString(req.Extraction.Text)}
	if s.Entities == nil {
		out.Status = StatusUnavailable
		out.Message = "Entity recognition is not configured"
		return out
	}
	found, err := s.Entities.Recognize(ctx, req.Extraction.Text)
	if err != nil {
		failedOut := failed(StageEntities, "NER", err)
		failedOut.InputChars = out.InputChars
		return failedOut
	}
	if len(found) == 0 {
		out.Status = StatusEmpty
		out.Message = msgNoEntities
		return out
	}
	out.Status = StatusOK
	out.Entities = found
	return out
}

func failed(stage Stage, provider string, err error) Outcome {
	return Outcome{
		Stage:  stage,
		Status: StatusFailed,
		Error:  fmt.Sprintf("%s error (%s): %s", displayProvider(provider), stage, sanitizeError(err)),
	}
}

func displayProvider(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "OpenAI"
	case llm.ProviderGemini:
		return "Gemini"
	case "", "llm":
		return "LLM"
	default:
		return provider
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = Truncate(msg, maxLen)
	}
	return msg
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func msSince(start, end time.Time) float64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000.0
}
