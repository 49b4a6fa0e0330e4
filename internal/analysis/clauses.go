package analysis

import (
	"regexp"
	"strings"
)

// ClauseRow is one line of the clause table.
type ClauseRow struct {
	Type         string `json:"type"`
	ShortText    string `json:"shortText"`
	WhyImportant string `json:"whyImportant"`
}

var separatorCell = regexp.MustCompile(`^:?-{2,}:?$`)

// ParseClauseTable reads the rows of a |Type|Short Text|Why Important| table
// out of a markdown reply. Lines that are not table rows are ignored, so a
// reply without a table yields no rows.
func ParseClauseTable(markdown string) []ClauseRow {
	var rows []ClauseRow
	for _, line := range strings.Split(markdown, "\n") {
		cells, ok := splitTableRow(line)
		if !ok || len(cells) < 3 {
			continue
		}
		if isSeparatorRow(cells) || isHeaderRow(cells) {
			continue
		}
		row := ClauseRow{
			Type:         cells[0],
			ShortText:    cells[1],
			WhyImportant: strings.Join(cells[2:], " | "),
		}
		if row.Type == "" && row.ShortText == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func splitTableRow(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil, false
	}
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = cleanCell(p)
	}
	return cells, true
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "<br>", " ")
	return strings.Join(strings.Fields(s), " ")
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c != "" && !separatorCell.MatchString(c) {
			return false
		}
	}
	return true
}

func isHeaderRow(cells []string) bool {
	return strings.EqualFold(cells[0], "type") && strings.EqualFold(strings.ReplaceAll(cells[1], " ", ""), "shorttext")
}

type clauseCategory struct {
	name     string
	why      string
	keywords *regexp.Regexp
}

// Order matters: the first category whose keywords match a sentence wins.
var clauseCategories = []clauseCategory{
	{"Termination", "Defines how and when the agreement can end.", regexp.MustCompile(`(?i)\b(terminat\w*|cancel\w*|expir\w*)\b`)},
	{"Payment", "Sets what must be paid, when and how.", regexp.MustCompile(`(?i)\b(pay\w*|fees?|invoic\w*|compensation|price|remunerat\w*)\b`)},
	{"Penalty", "Creates a cost for late or missed performance.", regexp.MustCompile(`(?i)\b(penalt\w*|late fee|liquidated damages|interest on late)\b`)},
	{"Confidentiality", "Restricts use and disclosure of shared information.", regexp.MustCompile(`(?i)\b(confidential\w*|non-disclosure|proprietary information)\b`)},
	{"Liability", "Caps or allocates responsibility for losses.", regexp.MustCompile(`(?i)\b(liabilit\w*|liable|consequential damages)\b`)},
	{"Indemnification", "Shifts third-party claims from one party to another.", regexp.MustCompile(`(?i)\b(indemnif\w*|hold harmless)\b`)},
	{"Governing Law", "Decides which jurisdiction's law applies.", regexp.MustCompile(`(?i)\b(governing law|governed by|laws of the state)\b`)},
	{"Dispute Resolution", "Sets the forum for resolving disagreements.", regexp.MustCompile(`(?i)\b(arbitrat\w*|dispute\w*|mediat\w*|jurisdiction)\b`)},
	{"Intellectual Property", "Determines who owns work product and IP.", regexp.MustCompile(`(?i)\b(intellectual property|copyright\w*|patent\w*|trademark\w*|work product)\b`)},
	{"Term", "Fixes how long the agreement lasts.", regexp.MustCompile(`(?i)\b(term of|effective date|renew\w*|duration)\b`)},
}

const (
	maxRuleRowsPerType = 3
	maxRuleRows        = 30
	maxShortTextRunes  = 240
)

var sentenceBreak = regexp.MustCompile(`(?:[.;!?]["')\]]?\s+)|\n\s*\n`)

// RuleBasedClauses classifies sentences of text by keyword. It produces the
// same row shape as the LLM clause table.
func RuleBasedClauses(text string) []ClauseRow {
	var rows []ClauseRow
	perType := make(map[string]int)
	for _, sentence := range splitSentences(text) {
		for _, cat := range clauseCategories {
			if !cat.keywords.MatchString(sentence) {
				continue
			}
			if perType[cat.name] < maxRuleRowsPerType {
				perType[cat.name]++
				rows = append(rows, ClauseRow{
					Type:         cat.name,
					ShortText:    Truncate(sentence, maxShortTextRunes),
					WhyImportant: cat.why,
				})
			}
			break
		}
		if len(rows) >= maxRuleRows {
			break
		}
	}
	return rows
}

func splitSentences(text string) []string {
	var out []string
	for _, raw := range sentenceBreak.Split(text, -1) {
		s := strings.Join(strings.Fields(raw), " ")
		if len(s) < 12 {
			continue
		}
		out = append(out, s)
	}
	return out
}
