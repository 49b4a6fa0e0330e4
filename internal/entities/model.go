package entities

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ModelRecognizer uses the averaged-perceptron NER model bundled with prose.
// It reports PERSON and GPE entities.
type ModelRecognizer struct{}

// NewModelRecognizer returns a recognizer backed by the embedded prose model.
func NewModelRecognizer() ModelRecognizer {
	return ModelRecognizer{}
}

func (ModelRecognizer) Recognize(ctx context.Context, text string) (out []Entity, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("ner model: %v", rec)
		}
	}()

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("ner model: %w", err)
	}
	for _, ent := range doc.Entities() {
		span := normalizeSpan(ent.Text)
		if span == "" {
			continue
		}
		out = append(out, Entity{Label: ent.Label, Text: span})
	}
	return out, nil
}
