package entities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal-lens/internal/shared/telemetry"
)

// Entity is one recognized (label, text) pair.
type Entity struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Recognizer finds named entities in text, in document order.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Combined runs each recognizer in turn and merges their results, dropping
// repeated (label, text) pairs. A failing recognizer is logged and skipped;
// an error is returned only when every recognizer failed.
type Combined struct {
	Recognizers []Recognizer
}

// NewDefault returns the model recognizer followed by the pattern recognizer.
func NewDefault() Combined {
	return Combined{Recognizers: []Recognizer{NewModelRecognizer(), NewPatternRecognizer()}}
}

func (c Combined) Recognize(ctx context.Context, text string) ([]Entity, error) {
	var (
		out  []Entity
		errs []error
		seen = make(map[Entity]struct{})
	)
	for _, r := range c.Recognizers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := r.Recognize(ctx, text)
		if err != nil {
			telemetry.Warn("entities.recognizer_failed", map[string]any{
				"recognizer": fmt.Sprintf("%T", r),
				"error":      err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		for _, e := range found {
			key := Entity{Label: e.Label, Text: strings.ToLower(e.Text)}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	if len(errs) > 0 && len(errs) == len(c.Recognizers) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func normalizeSpan(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
