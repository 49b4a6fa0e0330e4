package analysis

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"legal-lens/internal/entities"
)

// ClauseTableMarkdown renders clause rows as a |Type|Short Text|Why Important| table.
func ClauseTableMarkdown(rows []ClauseRow) string {
	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		body = append(body, []string{r.Type, r.ShortText, r.WhyImportant})
	}
	return markdownTable([]string{"Type", "Short Text", "Why Important"}, body)
}

// EntityTableMarkdown renders entities as a two-column table.
func EntityTableMarkdown(ents []entities.Entity) string {
	body := make([][]string, 0, len(ents))
	for _, e := range ents {
		body = append(body, []string{e.Text, e.Label})
	}
	return markdownTable([]string{"Entity", "Type"}, body)
}

// FieldsTableMarkdown renders key fields as a two-column table.
func FieldsTableMarkdown(f Fields) string {
	rows := f.Rows()
	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		body = append(body, []string{r[0], r[1]})
	}
	return markdownTable([]string{"Field", "Value"}, body)
}

func markdownTable(header []string, rows [][]string) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = escapeCell(c)
		}
		table.Append(cells)
	}
	table.Render()
	return buf.String()
}

func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders the full report in display order: preview, then one
// section per stage.
func RenderMarkdown(r Report) string {
	var b strings.Builder
	title := r.FileName
	if title == "" {
		title = "Contract"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Report: `%s`\n", r.ID)
	fmt.Fprintf(&b, "- Mode: %s", r.Mode)
	if r.Provider != "" {
		fmt.Fprintf(&b, " (%s", r.Provider)
		if r.Model != "" {
			fmt.Fprintf(&b, ", %s", r.Model)
		}
		b.WriteString(")")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Characters: %d", r.CharCount)
	if r.PageCount > 0 {
		fmt.Fprintf(&b, ", pages: %d", r.PageCount)
	}
	b.WriteString("\n\n")
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "> Warning: %s\n", w)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Preview\n\n```text\n")
	b.WriteString(r.PreviewText())
	b.WriteString("\n```\n\n")

	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "## %s\n\n", o.Stage.Title())
		if o.OK() && o.Message != "" {
			fmt.Fprintf(&b, "_%s_\n\n", o.Message)
		}
		b.WriteString(renderOutcome(o))
		b.WriteString("\n")
	}
	return b.String()
}

func renderOutcome(o Outcome) string {
	switch o.Status {
	case StatusFailed:
		return "**Error:** " + o.Error + "\n"
	case StatusUnavailable, StatusEmpty:
		return "_" + o.Message + "_\n"
	}

	switch o.Stage {
	case StageClauses:
		if len(o.Clauses) > 0 {
			return ClauseTableMarkdown(o.Clauses)
		}
		return o.Content + "\n"
	case StageFields:
		if o.Fields != nil {
			return FieldsTableMarkdown(*o.Fields)
		}
		return o.Content + "\n"
	case StageFlowchart:
		return "```\n" + o.Content + "\n```\n"
	case StageEntities:
		return EntityTableMarkdown(o.Entities)
	default:
		return o.Content + "\n"
	}
}
