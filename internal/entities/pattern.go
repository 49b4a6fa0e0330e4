package entities

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

const (
	LabelDate    = "DATE"
	LabelMoney   = "MONEY"
	LabelPercent = "PERCENT"
	LabelEmail   = "EMAIL"
	LabelOrg     = "ORG"
)

const months = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

type pattern struct {
	label string
	re    *regexp.Regexp
}

var defaultPatterns = []pattern{
	{LabelEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)},
	{LabelDate, regexp.MustCompile(`\b` + months + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)},
	{LabelDate, regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:day\s+of\s+)?` + months + `,?\s+\d{4}\b`)},
	{LabelDate, regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
	{LabelDate, regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
	{LabelMoney, regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand))?`)},
	{LabelMoney, regexp.MustCompile(`\b(?:USD|EUR|GBP|INR)\s?\d[\d,]*(?:\.\d+)?\b`)},
	{LabelMoney, regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s(?:dollars|euros|pounds|USD|EUR|GBP)\b`)},
	{LabelPercent, regexp.MustCompile(`\b\d+(?:\.\d+)?(?:\s?%|\s(?:percent|per cent)\b)`)},
	{LabelOrg, regexp.MustCompile(`\b(?:[A-Z][\w&'\-]*\s+){0,4}[A-Z][\w&'\-]*,?\s+(?:Inc\b\.?|Corp\b\.?|Corporation\b|Company\b|LLC\b|L\.L\.C\.|LLP\b|Ltd\b\.?|Limited\b|GmbH\b|PLC\b)`)},
}

// PatternRecognizer finds dates, amounts, percentages, e-mail addresses and
// company names with legal suffixes.
type PatternRecognizer struct {
	patterns []pattern
}

// NewPatternRecognizer returns a recognizer with the built-in patterns.
func NewPatternRecognizer() PatternRecognizer {
	return PatternRecognizer{patterns: defaultPatterns}
}

type match struct {
	start, end int
	label      string
}

func (p PatternRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var matches []match
	for _, pat := range p.patterns {
		for _, loc := range pat.re.FindAllStringIndex(text, -1) {
			matches = append(matches, match{start: loc[0], end: loc[1], label: pat.label})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	var out []Entity
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd {
			continue
		}
		span := normalizeSpan(text[m.start:m.end])
		if m.label == LabelOrg {
			span = strings.TrimPrefix(span, "The ")
		}
		if span == "" {
			continue
		}
		out = append(out, Entity{Label: m.label, Text: span})
		lastEnd = m.end
	}
	return out, nil
}
