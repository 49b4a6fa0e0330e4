package sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/analysis"
	"legal-lens/internal/llm"
	"legal-lens/internal/shared/server/middleware"
	"legal-lens/internal/shared/server/respond"
	"legal-lens/internal/shared/telemetry"
)

// ErrUnknownProvider is returned by Open for providers other than openai and gemini.
var ErrUnknownProvider = errors.New("provider must be openai or gemini")

// Handler exposes session routes.
type Handler struct {
	Store        *Store
	SecureCookie bool
}

// NewHandler constructs a Handler.
func NewHandler(store *Store, secureCookie bool) *Handler {
	return &Handler{Store: store, SecureCookie: secureCookie}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/session", h.create)
	rg.GET("/session", h.current)
	rg.DELETE("/session", h.delete)
}

type createRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
}

type sessionResponse struct {
	SessionID string        `json:"sessionId"`
	Mode      analysis.Mode `json:"mode"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	HasAPIKey bool          `json:"hasApiKey"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func toResponse(s Session) sessionResponse {
	return sessionResponse{
		SessionID: s.ID,
		Mode:      s.Mode,
		Provider:  s.Credential.Provider,
		Model:     s.Credential.Model,
		HasAPIKey: s.Credential.Configured(),
		ExpiresAt: s.ExpiresAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sess, err := h.Open(c, llm.Credential{Provider: req.Provider, Model: req.Model, APIKey: req.APIKey})
	if errors.Is(err, ErrUnknownProvider) {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"provider": req.Provider})
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to create session", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(sess))
}

// Open replaces the caller's session with a new one holding cred and sets
// the session cookie on the response.
func (h *Handler) Open(c *gin.Context, cred llm.Credential) (Session, error) {
	cred = cred.Normalize()
	if cred.Provider != llm.ProviderOpenAI && cred.Provider != llm.ProviderGemini {
		return Session{}, ErrUnknownProvider
	}

	if old, err := c.Cookie(CookieName); err == nil && old != "" {
		_ = h.Store.Delete(c.Request.Context(), old)
	}

	sess, err := h.Store.Create(c.Request.Context(), cred)
	if err != nil {
		return Session{}, err
	}
	c.Set(middleware.SessionIDKey, sess.ID)
	h.setCookie(c, sess.ID, int(h.Store.TTL().Seconds()))
	telemetry.Info("session.created", map[string]any{
		"session_id":      sess.ID,
		"provider":        cred.Provider,
		"model":           cred.Model,
		"mode":            sess.Mode,
		"key_fingerprint": cred.Fingerprint(),
	})
	return sess, nil
}

func (h *Handler) current(c *gin.Context) {
	sess, err := h.fromCookie(c)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no active session", nil)
		return
	}
	c.Set(middleware.SessionIDKey, sess.ID)
	respond.OK(c, toResponse(sess))
}

func (h *Handler) delete(c *gin.Context) {
	id, _ := c.Cookie(CookieName)
	if id != "" {
		if err := h.Store.Delete(c.Request.Context(), id); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to end session", nil)
			return
		}
		c.Set(middleware.SessionIDKey, id)
		telemetry.Info("session.deleted", map[string]any{"session_id": id})
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *Handler) fromCookie(c *gin.Context) (Session, error) {
	id, err := c.Cookie(CookieName)
	if err != nil {
		return Session{}, ErrNotFound
	}
	return h.Store.Get(c.Request.Context(), id)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", h.SecureCookie, true)
}
