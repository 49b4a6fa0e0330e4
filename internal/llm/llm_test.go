package llm

import (
	"context"
	"errors"
	"testing"
)

func TestCredentialNormalize(t *testing.T) {
	c := Credential{Provider: " Google ", APIKey: " k "}.Normalize()
	if c.Provider != ProviderGemini {
		t.Fatalf("expected gemini, got %q", c.Provider)
	}
	if c.Model != DefaultGeminiModel {
		t.Fatalf("expected default gemini model, got %q", c.Model)
	}
	if c.APIKey != "k" || !c.Configured() {
		t.Fatalf("expected trimmed configured key, got %q", c.APIKey)
	}

	c = Credential{}.Normalize()
	if c.Provider != ProviderOpenAI || c.Model != DefaultOpenAIModel {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Configured() {
		t.Fatalf("expected empty credential to be unconfigured")
	}
	if got := NormalizeProvider("Claude"); got != "claude" {
		t.Fatalf("expected unknown provider passthrough, got %q", got)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	var c Client = Unconfigured{Name: ProviderOpenAI}
	if _, err := c.Complete(context.Background(), "hi"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if ProviderName(c) != "openai" {
		t.Fatalf("unexpected provider name %q", ProviderName(c))
	}
}
