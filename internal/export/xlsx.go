package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"legal-lens/internal/analysis"
)

// ContentTypeXLSX is the media type of the workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetSummary   = "Summary"
	SheetClauses   = "Clauses"
	SheetFields    = "Fields"
	SheetEntities  = "Entities"
	SheetFlowchart = "Flowchart"
)

// ReportXLSX renders a report as a workbook with one sheet per section.
func ReportXLSX(r analysis.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetClauses, SheetFields, SheetEntities, SheetFlowchart} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	summary := [][]any{
		{"Report ID", r.ID},
		{"File", r.FileName},
		{"Media type", r.MediaType},
		{"Pages", r.PageCount},
		{"Characters", r.CharCount},
		{"Mode", string(r.Mode)},
		{"Provider", r.Provider},
		{"Model", r.Model},
		{"Created", r.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Preview", r.PreviewText()},
	}
	if o, ok := r.Outcome(analysis.StageSummary); ok {
		summary = append(summary, []any{"Summary", outcomeText(o, o.Content)})
	}
	if err := writeRows(f, SheetSummary, []string{"Field", "Value"}, summary); err != nil {
		return nil, err
	}

	if o, ok := r.Outcome(analysis.StageClauses); ok {
		rows := make([][]any, 0, len(o.Clauses))
		for _, c := range o.Clauses {
			rows = append(rows, []any{c.Type, c.ShortText, c.WhyImportant})
		}
		if len(rows) == 0 {
			rows = append(rows, []any{outcomeText(o, o.Content), "", ""})
		}
		if err := writeRows(f, SheetClauses, []string{"Type", "Short Text", "Why Important"}, rows); err != nil {
			return nil, err
		}
	}

	if o, ok := r.Outcome(analysis.StageFields); ok {
		var rows [][]any
		if o.Fields != nil {
			for _, kv := range o.Fields.Rows() {
				rows = append(rows, []any{kv[0], kv[1]})
			}
		} else {
			rows = append(rows, []any{"Status", outcomeText(o, "")})
		}
		if err := writeRows(f, SheetFields, []string{"Field", "Value"}, rows); err != nil {
			return nil, err
		}
	}

	if o, ok := r.Outcome(analysis.StageEntities); ok {
		rows := make([][]any, 0, len(o.Entities))
		for _, e := range o.Entities {
			rows = append(rows, []any{e.Text, e.Label})
		}
		if len(rows) == 0 {
			rows = append(rows, []any{outcomeText(o, ""), ""})
		}
		if err := writeRows(f, SheetEntities, []string{"Entity", "Type"}, rows); err != nil {
			return nil, err
		}
	}

	if o, ok := r.Outcome(analysis.StageFlowchart); ok {
		rows := make([][]any, 0, len(o.Edges))
		for _, e := range o.Edges {
			rows = append(rows, []any{e.From, e.To})
		}
		if len(rows) == 0 {
			rows = append(rows, []any{outcomeText(o, o.Content), ""})
		}
		if err := writeRows(f, SheetFlowchart, []string{"From", "To"}, rows); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func outcomeText(o analysis.Outcome, content string) string {
	switch o.Status {
	case analysis.StatusFailed:
		return o.Error
	case analysis.StatusUnavailable, analysis.StatusEmpty:
		return o.Message
	default:
		return content
	}
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, r+1, err)
			}
		}
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", last, 28); err != nil {
		return fmt.Errorf("%s widths: %w", sheet, err)
	}
	return nil
}
