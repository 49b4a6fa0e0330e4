package analysis

import (
	"legal-lens/internal/entities"
)

// Stage names one analysis request.
type Stage string

const (
	StageSummary   Stage = "summary"
	StageClauses   Stage = "clauses"
	StageFields    Stage = "fields"
	StageFlowchart Stage = "flowchart"
	StageEntities  Stage = "entities"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageSummary, StageClauses, StageFields, StageEntities, StageFlowchart}

// Title returns the section heading for the stage.
func (s Stage) Title() string {
	switch s {
	case StageSummary:
		return "Summary"
	case StageClauses:
		return "Key Clauses"
	case StageFields:
		return "Key Fields"
	case StageFlowchart:
		return "Flowchart"
	case StageEntities:
		return "Named Entities"
	default:
		return string(s)
	}
}

// Status is the terminal state of a stage.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFailed      Status = "failed"
	StatusUnavailable Status = "unavailable"
	StatusEmpty       Status = "empty"
)

const (
	msgUnavailable = "AI features unavailable: no API key configured"
	msgNoEntities  = "No entities found"
	msgNoClauses   = "No clauses found"
	msgNoText      = "No text could be extracted from the document"
)

// Outcome is the result or failure of a single stage. Exactly one of Content,
// Clauses, Fields, Entities or Error carries the payload, except the clause
// stage which keeps both the raw table and its parsed rows.
type Outcome struct {
	Stage      Stage             `json:"stage"`
	Status     Status            `json:"status"`
	Content    string            `json:"content,omitempty"`
	Clauses    []ClauseRow       `json:"clauses,omitempty"`
	Fields     *Fields           `json:"fields,omitempty"`
	Edges      []FlowEdge        `json:"edges,omitempty"`
	Entities   []entities.Entity `json:"entities,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	InputChars int               `json:"inputChars"`
	DurationMs float64           `json:"durationMs"`
}

// OK reports whether the stage produced a result.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}
