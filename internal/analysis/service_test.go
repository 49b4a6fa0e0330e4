package analysis

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/entities"
	"legal-lens/internal/extract"
	"legal-lens/internal/shared/telemetry"
)

const clauseReply = `| Type | Short Text | Why Important |
|------|------------|---------------|
| Payment | Client pays $5,000 monthly. | Sets the fee. |
| Termination | Either party may end with 30 days notice. | Exit route. |`

const fieldsReply = "```json\n" + `{"parties":[{"name":"Acme Corp.","role":"Provider"},{"name":"Globex LLC","role":"Client"}],"effective_date":"January 5, 2024","termination_date":null,"governing_law":"Delaware","payment_terms":"Monthly","amounts":[{"value":"$5,000","description":"monthly fee"}]}` + "\n```"

type fakeLLM struct {
	mu      sync.Mutex
	prompts map[Stage]string
	replies map[Stage]string
	errs    map[Stage]error
	panics  map[Stage]bool
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		prompts: map[Stage]string{},
		replies: map[Stage]string{
			StageSummary:   "A services agreement between two companies.",
			StageClauses:   clauseReply,
			StageFields:    fieldsReply,
			StageFlowchart: "```\nPayment late -> Notice -> Termination\n```",
		},
		errs:   map[Stage]error{},
		panics: map[Stage]bool{},
	}
}

func (f *fakeLLM) Provider() string { return "openai" }

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	stage := stageForPrompt(prompt)
	f.mu.Lock()
	f.prompts[stage] = prompt
	reply, err, boom := f.replies[stage], f.errs[stage], f.panics[stage]
	f.mu.Unlock()
	if boom {
		panic("provider exploded")
	}
	return reply, err
}

func stageForPrompt(prompt string) Stage {
	for _, st := range []Stage{StageSummary, StageClauses, StageFields, StageFlowchart} {
		tmpl, _ := PromptTemplate(st)
		if strings.HasPrefix(prompt, tmpl) {
			return st
		}
	}
	return ""
}

type stubEntities struct {
	out []entities.Entity
	err error
}

func (s stubEntities) Recognize(context.Context, string) ([]entities.Entity, error) {
	return s.out, s.err
}

func quiet(t *testing.T) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
}

func contractText(n int) string {
	base := "The Client shall pay the Provider a monthly fee. This Agreement may be terminated by either party with notice. "
	return strings.Repeat(base, n/len(base)+1)[:n]
}

func newService(rec entities.Recognizer) *Service {
	return &Service{Entities: rec, Limits: DefaultLimits(), Concurrency: 1}
}

func TestRunAIModeProducesAllStages(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	svc := newService(stubEntities{out: []entities.Entity{{Label: "PERSON", Text: "Jane Doe"}}})

	report := svc.Run(context.Background(), Request{
		FileName:   "msa.txt",
		Extraction: extract.Extraction{Text: contractText(5000), MediaType: extract.MediaTypeText},
		Client:     client,
		Mode:       ModeAI,
		Model:      "gpt-4o-mini",
	})

	require.Len(t, report.Outcomes, len(Stages))
	for i, st := range Stages {
		assert.Equal(t, st, report.Outcomes[i].Stage)
		assert.Equal(t, StatusOK, report.Outcomes[i].Status, "stage %s: %s", st, report.Outcomes[i].Error)
	}
	assert.Equal(t, "openai", report.Provider)
	assert.Equal(t, 1000, len([]rune(report.Preview)))
	assert.True(t, report.PreviewTruncated)

	clauses, _ := report.Outcome(StageClauses)
	require.Len(t, clauses.Clauses, 2)
	assert.Equal(t, "Payment", clauses.Clauses[0].Type)
	assert.Equal(t, 2000, clauses.InputChars)

	fields, _ := report.Outcome(StageFields)
	require.NotNil(t, fields.Fields)
	assert.Equal(t, "Delaware", fields.Fields.GoverningLaw)
	assert.Len(t, fields.Fields.Parties, 2)

	flow, _ := report.Outcome(StageFlowchart)
	assert.Equal(t, "Payment late -> Notice -> Termination", flow.Content)
	assert.Len(t, flow.Edges, 2)
}

func TestRunSendsTruncatedExcerpt(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	text := contractText(4000)
	newService(stubEntities{}).Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: text},
		Client:     client,
		Mode:       ModeAI,
	})

	tmpl, _ := PromptTemplate(StageSummary)
	assert.Equal(t, tmpl+"\n\n"+text[:1500], client.prompts[StageSummary])
	tmpl, _ = PromptTemplate(StageClauses)
	assert.Equal(t, tmpl+"\n\n"+text[:2000], client.prompts[StageClauses])
}

func TestRunIsolatesSummaryFailure(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	client.errs[StageSummary] = errors.New("openai http status 429: quota exceeded")
	client.panics[StageFields] = true

	report := newService(stubEntities{}).Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: contractText(800)},
		Client:     client,
		Mode:       ModeAI,
	})

	summary, _ := report.Outcome(StageSummary)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, "OpenAI error (summary): openai http status 429: quota exceeded", summary.Error)

	fields, _ := report.Outcome(StageFields)
	assert.Equal(t, StatusFailed, fields.Status)
	assert.Contains(t, fields.Error, "(fields): panic: provider exploded")

	clauses, _ := report.Outcome(StageClauses)
	assert.Equal(t, StatusOK, clauses.Status)
	flow, _ := report.Outcome(StageFlowchart)
	assert.Equal(t, StatusOK, flow.Status)

	ents, _ := report.Outcome(StageEntities)
	assert.Equal(t, StatusEmpty, ents.Status)
	assert.Equal(t, "No entities found", ents.Message)
}

func TestRunFieldsSchemaMismatchFailsOnlyFields(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	client.replies[StageFields] = `{"parties":"Acme"}`

	report := newService(stubEntities{}).Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: contractText(300)},
		Client:     client,
		Mode:       ModeAI,
	})
	fields, _ := report.Outcome(StageFields)
	assert.Equal(t, StatusFailed, fields.Status)
	assert.Contains(t, fields.Error, "OpenAI error (fields)")
	assert.Contains(t, fields.Error, "schema")
	summary, _ := report.Outcome(StageSummary)
	assert.Equal(t, StatusOK, summary.Status)
}

func TestRunRuleBasedMode(t *testing.T) {
	quiet(t)
	svc := newService(stubEntities{out: []entities.Entity{{Label: "MONEY", Text: "$5,000"}}})
	report := svc.Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: "The Client shall pay $5,000 within 30 days of invoice. Either party may terminate this Agreement upon written notice."},
		Mode:       ModeRuleBased,
	})

	assert.Equal(t, ModeRuleBased, report.Mode)
	assert.Empty(t, report.Provider)
	for _, st := range []Stage{StageSummary, StageFields, StageFlowchart} {
		o, _ := report.Outcome(st)
		assert.Equal(t, StatusUnavailable, o.Status, st)
		assert.Equal(t, "AI features unavailable: no API key configured", o.Message)
	}
	clauses, _ := report.Outcome(StageClauses)
	require.Equal(t, StatusOK, clauses.Status)
	require.Len(t, clauses.Clauses, 2)
	assert.Equal(t, "Payment", clauses.Clauses[0].Type)
	assert.Equal(t, "Termination", clauses.Clauses[1].Type)

	ents, _ := report.Outcome(StageEntities)
	assert.Equal(t, StatusOK, ents.Status)
}

func TestRunParallelKeepsStageOrder(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	client.errs[StageClauses] = errors.New("timeout")
	svc := newService(stubEntities{})
	svc.Concurrency = 4

	report := svc.Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: contractText(500)},
		Client:     client,
		Mode:       ModeAI,
	})
	for i, st := range Stages {
		assert.Equal(t, st, report.Outcomes[i].Stage)
	}
	clauses, _ := report.Outcome(StageClauses)
	assert.Equal(t, StatusFailed, clauses.Status)
	summary, _ := report.Outcome(StageSummary)
	assert.Equal(t, StatusOK, summary.Status)
}

func TestRunEmptyTextShortCircuitsLLMStages(t *testing.T) {
	quiet(t)
	client := newFakeLLM()
	report := newService(stubEntities{}).Run(context.Background(), Request{
		Extraction: extract.Extraction{Text: "", PageCount: 2, Warnings: []string{"no extractable text found"}},
		Client:     client,
		Mode:       ModeAI,
	})
	summary, _ := report.Outcome(StageSummary)
	assert.Equal(t, StatusEmpty, summary.Status)
	assert.Empty(t, client.prompts)
	assert.Equal(t, "", report.Preview)
	assert.False(t, report.PreviewTruncated)
}

func TestRunEntitiesSeeFullText(t *testing.T) {
	quiet(t)
	var seen string
	rec := recognizerFunc(func(_ context.Context, text string) ([]entities.Entity, error) {
		seen = text
		return nil, nil
	})
	text := contractText(9000)
	newService(rec).Run(context.Background(), Request{Extraction: extract.Extraction{Text: text}, Mode: ModeRuleBased})
	assert.Equal(t, text, seen)
}

type recognizerFunc func(context.Context, string) ([]entities.Entity, error)

func (f recognizerFunc) Recognize(ctx context.Context, text string) ([]entities.Entity, error) {
	return f(ctx, text)
}
