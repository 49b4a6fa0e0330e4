package analysis

import (
	"errors"
	"strings"

	"legal-lens/internal/llm"
)

// Mode selects which stages call out to an LLM.
type Mode string

const (
	ModeAI        Mode = "ai"
	ModeRuleBased Mode = "rule_based"
)

// ResolveMode picks the mode for a credential. It is decided once per session
// or request and never re-checked per stage.
func ResolveMode(cred llm.Credential) Mode {
	if cred.Configured() {
		return ModeAI
	}
	return ModeRuleBased
}

var (
	ErrInvalidMode   = errors.New("mode must be ai or rule_based")
	ErrAIUnavailable = errors.New("ai mode requires an api key")
)

// ParseMode normalizes and validates a mode string.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ai", "llm":
		return ModeAI, nil
	case "rule_based", "rule-based", "rules":
		return ModeRuleBased, nil
	default:
		return "", ErrInvalidMode
	}
}

// SelectMode applies an explicit mode request on top of ResolveMode. An empty
// request keeps the automatic choice. Rule-based can always be forced; ai
// cannot be forced without a key.
func SelectMode(cred llm.Credential, requested string) (Mode, error) {
	if strings.TrimSpace(requested) == "" {
		return ResolveMode(cred), nil
	}
	m, err := ParseMode(requested)
	if err != nil {
		return "", err
	}
	if m == ModeAI && !cred.Configured() {
		return "", ErrAIUnavailable
	}
	return m, nil
}
