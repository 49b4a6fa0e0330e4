package llm

import (
	"context"
	"errors"
	"strings"

	"legal-lens/internal/shared/telemetry"
	"legal-lens/internal/shared/util"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-pro"
)

// Client sends a single prompt to a text generation service and returns the
// raw reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by clients that know their provider name.
type Named interface {
	Provider() string
}

// ErrNotConfigured is returned when no API key is available for a provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// Credential identifies a provider account for one session or request.
type Credential struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"-"`
}

// Configured reports whether the credential carries an API key.
func (c Credential) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Normalize fills in the provider and model defaults.
func (c Credential) Normalize() Credential {
	c.Provider = NormalizeProvider(c.Provider)
	c.Model = strings.TrimSpace(c.Model)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	return c
}

// Fingerprint returns a loggable digest of the key.
func (c Credential) Fingerprint() string {
	return util.Fingerprint(c.APIKey)
}

// NormalizeProvider maps user input to a known provider name. Unknown names
// are returned lower-cased so the caller can reject them.
func NormalizeProvider(raw string) string {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "", ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGemini, "google":
		return ProviderGemini
	default:
		return p
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if NormalizeProvider(provider) == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// Usage captures token accounting reported by a provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LogUsage records a provider reply. usage may be nil when the provider did
// not report token counts.
func LogUsage(provider, model string, promptChars int, usage *Usage) {
	fields := map[string]any{
		"provider":     provider,
		"model":        model,
		"prompt_chars": promptChars,
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

// Unconfigured is the client used when no credential is present.
type Unconfigured struct {
	Name string
}

// Complete returns ErrNotConfigured.
func (u Unconfigured) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

// Provider returns the provider the client stands in for.
func (u Unconfigured) Provider() string {
	return u.Name
}

// ProviderName returns the provider of c, or "llm" when it does not say.
func ProviderName(c Client) string {
	if n, ok := c.(Named); ok && n.Provider() != "" {
		return n.Provider()
	}
	return "llm"
}
