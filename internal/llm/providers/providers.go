package providers

import (
	"fmt"
	"time"

	"legal-lens/internal/llm"
	"legal-lens/internal/llm/gemini"
	"legal-lens/internal/llm/openai"
)

// New returns a client for cred. A credential without a key yields an
// llm.Unconfigured client rather than an error; an unknown provider is an
// error.
func New(cred llm.Credential, timeout time.Duration) (llm.Client, error) {
	cred = cred.Normalize()
	switch cred.Provider {
	case llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cred.Provider)
	}
	if !cred.Configured() {
		return llm.Unconfigured{Name: cred.Provider}, nil
	}
	if cred.Provider == llm.ProviderGemini {
		return gemini.NewClient(cred.APIKey, cred.Model, timeout)
	}
	return openai.NewClient(cred.APIKey, cred.Model, timeout)
}
