package analysis

import (
	_ "embed"
	"strings"
	"unicode/utf8"
)

var (
	//go:embed prompts/summary.txt
	promptSummary string
	//go:embed prompts/clauses.txt
	promptClauses string
	//go:embed prompts/fields.txt
	promptFields string
	//go:embed prompts/flowchart.txt
	promptFlowchart string
)

// PromptTemplate returns the instruction text for an LLM stage.
func PromptTemplate(stage Stage) (string, bool) {
	switch stage {
	case StageSummary:
		return strings.TrimSpace(promptSummary), true
	case StageClauses:
		return strings.TrimSpace(promptClauses), true
	case StageFields:
		return strings.TrimSpace(promptFields), true
	case StageFlowchart:
		return strings.TrimSpace(promptFlowchart), true
	default:
		return "", false
	}
}

// BuildPrompt joins the stage template and the truncated contract text.
func BuildPrompt(template, excerpt string) string {
	return template + "\n\n" + excerpt
}

// Truncate returns the first limit characters of text. The result always has
// exactly min(len(text), limit) runes and may cut mid-sentence.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
