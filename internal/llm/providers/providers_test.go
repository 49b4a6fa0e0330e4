package providers

import (
	"testing"
	"time"

	"legal-lens/internal/llm"
	"legal-lens/internal/llm/gemini"
	"legal-lens/internal/llm/openai"
)

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(llm.Credential{Provider: "gemini", APIKey: "k"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*gemini.Client); !ok {
		t.Fatalf("expected gemini client, got %T", c)
	}

	c, err = New(llm.Credential{APIKey: "k"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*openai.Client); !ok {
		t.Fatalf("expected openai client, got %T", c)
	}
}

func TestNewWithoutKeyIsUnconfigured(t *testing.T) {
	c, err := New(llm.Credential{Provider: "openai"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(llm.Unconfigured); !ok {
		t.Fatalf("expected unconfigured client, got %T", c)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(llm.Credential{Provider: "claude", APIKey: "k"}, time.Second); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
