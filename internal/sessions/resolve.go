package sessions

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/llm"
)

const (
	CookieName = "ll_session"

	headerAPIKey   = "X-LLM-Api-Key"
	headerProvider = "X-LLM-Provider"
	headerModel    = "X-LLM-Model"
)

// Source says where a resolved credential came from.
type Source string

const (
	SourceRequest Source = "request"
	SourceSession Source = "session"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Resolver picks the credential for a request: an explicit request key wins,
// then the caller's session, then the pre-configured secret.
type Resolver struct {
	Store           *Store
	DefaultProvider string
	DefaultModel    string
	ConfiguredKeys  map[string]string
}

// Resolution is the credential chosen for one request.
type Resolution struct {
	Credential llm.Credential
	Source     Source
	SessionID  string
}

// Resolve inspects headers, multipart fields and the session cookie.
func (r *Resolver) Resolve(c *gin.Context) Resolution {
	provider := firstNonEmpty(c.GetHeader(headerProvider), c.PostForm("provider"))
	model := firstNonEmpty(c.GetHeader(headerModel), c.PostForm("model"))
	apiKey := firstNonEmpty(c.GetHeader(headerAPIKey), c.PostForm("apiKey"))

	if apiKey != "" {
		return Resolution{
			Credential: r.credential(provider, model, apiKey),
			Source:     SourceRequest,
		}
	}

	if sess, err := r.session(c); err == nil {
		cred := sess.Credential
		if provider != "" && llm.NormalizeProvider(provider) != cred.Provider {
			// A different provider was asked for explicitly; the session key does not apply.
			return r.fromConfig(provider, model)
		}
		if !cred.Configured() {
			// A session opened without a key only carries provider and model choices.
			res := r.fromConfig(cred.Provider, firstNonEmpty(model, cred.Model))
			res.SessionID = sess.ID
			return res
		}
		if model != "" {
			cred.Model = model
		}
		return Resolution{Credential: cred, Source: SourceSession, SessionID: sess.ID}
	}

	return r.fromConfig(provider, model)
}

func (r *Resolver) fromConfig(provider, model string) Resolution {
	cred := r.credential(provider, model, "")
	cred.APIKey = strings.TrimSpace(r.ConfiguredKeys[cred.Provider])
	if cred.Configured() {
		return Resolution{Credential: cred, Source: SourceEnv}
	}
	return Resolution{Credential: cred, Source: SourceNone}
}

func (r *Resolver) credential(provider, model, apiKey string) llm.Credential {
	if provider == "" {
		provider = r.DefaultProvider
	}
	p := llm.NormalizeProvider(provider)
	if model == "" && p == llm.NormalizeProvider(r.DefaultProvider) {
		model = r.DefaultModel
	}
	return llm.Credential{Provider: p, Model: model, APIKey: apiKey}.Normalize()
}

func (r *Resolver) session(c *gin.Context) (Session, error) {
	if r.Store == nil {
		return Session{}, ErrNotFound
	}
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return Session{}, ErrNotFound
	}
	return r.Store.Get(requestContext(c), id)
}

func requestContext(c *gin.Context) context.Context {
	if c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
