package analysis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed fields.schema.json
var fieldsSchemaJSON []byte

const fieldsSchemaURL = "https://legal-lens.local/fields.schema.json"

var (
	fieldsSchemaOnce sync.Once
	fieldsSchema     *jsonschema.Schema
	fieldsSchemaErr  error
)

// ErrInvalidFields is returned when the fields reply is not usable JSON.
var ErrInvalidFields = errors.New("llm output invalid")

// Party is one contracting party.
type Party struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Amount is a monetary figure quoted in the contract.
type Amount struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Fields are the structured key terms of a contract.
type Fields struct {
	Parties         []Party  `json:"parties"`
	EffectiveDate   string   `json:"effective_date,omitempty"`
	TerminationDate string   `json:"termination_date,omitempty"`
	GoverningLaw    string   `json:"governing_law,omitempty"`
	PaymentTerms    string   `json:"payment_terms,omitempty"`
	Amounts         []Amount `json:"amounts,omitempty"`
}

// Empty reports whether no field was filled in.
func (f Fields) Empty() bool {
	return len(f.Parties) == 0 && f.EffectiveDate == "" && f.TerminationDate == "" &&
		f.GoverningLaw == "" && f.PaymentTerms == "" && len(f.Amounts) == 0
}

// Rows flattens the fields into label/value pairs for tables.
func (f Fields) Rows() [][2]string {
	var rows [][2]string
	for _, p := range f.Parties {
		label := "Party"
		if p.Role != "" {
			label = "Party (" + p.Role + ")"
		}
		rows = append(rows, [2]string{label, p.Name})
	}
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	add("Effective date", f.EffectiveDate)
	add("Termination date", f.TerminationDate)
	add("Governing law", f.GoverningLaw)
	add("Payment terms", f.PaymentTerms)
	for _, a := range f.Amounts {
		label := "Amount"
		if a.Description != "" {
			label = "Amount (" + a.Description + ")"
		}
		rows = append(rows, [2]string{label, a.Value})
	}
	return rows
}

func compiledFieldsSchema() (*jsonschema.Schema, error) {
	fieldsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(fieldsSchemaURL, bytes.NewReader(fieldsSchemaJSON)); err != nil {
			fieldsSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		fieldsSchema, fieldsSchemaErr = compiler.Compile(fieldsSchemaURL)
		if fieldsSchemaErr != nil {
			fieldsSchemaErr = fmt.Errorf("compile schema: %w", fieldsSchemaErr)
		}
	})
	return fieldsSchema, fieldsSchemaErr
}

// ParseFields decodes and validates a fields reply. Markdown code fences and
// text around the outermost JSON object are ignored.
func ParseFields(reply string) (Fields, error) {
	raw := extractJSONObject(reply)
	if raw == "" {
		return Fields{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidFields)
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Fields{}, fmt.Errorf("%w: llm output parse: %v", ErrInvalidFields, err)
	}
	schema, err := compiledFieldsSchema()
	if err != nil {
		return Fields{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return Fields{}, fmt.Errorf("%w: json does not match schema: %v", ErrInvalidFields, err)
	}
	var out Fields
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Fields{}, fmt.Errorf("%w: llm output parse: %v", ErrInvalidFields, err)
	}
	return out, nil
}

func extractJSONObject(reply string) string {
	s := stripCodeFence(reply)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// stripCodeFence removes one surrounding ``` block, keeping its body.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
