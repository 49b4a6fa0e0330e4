package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"legal-lens/internal/analysis"
	"legal-lens/internal/contracts"
	"legal-lens/internal/extract"
	"legal-lens/internal/sessions"
	"legal-lens/internal/shared/server/middleware"
	"legal-lens/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

const msgGetStarted = "Upload a PDF or TXT contract to get started!"

// Handler serves the single-page upload form and renders reports as HTML.
// A key typed into the form opens a session so later visits reuse it.
type Handler struct {
	Pipeline       *contracts.Pipeline
	Resolver       *sessions.Resolver
	Sessions       *sessions.Handler
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(p *contracts.Pipeline, resolver *sessions.Resolver, sess *sessions.Handler, maxUploadBytes int64) *Handler {
	return &Handler{Pipeline: p, Resolver: resolver, Sessions: sess, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the page routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.index)
	r.POST("/", h.submit)
}

type page struct {
	Info          string
	Error         string
	Provider      string
	Mode          string
	HasCredential bool
	Report        *analysis.Report
}

func (h *Handler) index(c *gin.Context) {
	res := h.resolve(c)
	h.render(c, http.StatusOK, page{
		Info:          msgGetStarted,
		Provider:      res.Credential.Provider,
		HasCredential: res.Credential.Configured(),
	})
}

func (h *Handler) submit(c *gin.Context) {
	up, err := contracts.ReadUpload(c, h.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, contracts.ErrMissingFile) {
			h.render(c, http.StatusOK, page{Info: msgGetStarted, Provider: c.PostForm("provider")})
			return
		}
		status, msg := uploadFailure(err)
		h.render(c, status, page{Error: msg})
		return
	}
	c.Set(middleware.FileNameKey, up.FileName)

	res := h.resolve(c)
	if res.SessionID != "" {
		c.Set(middleware.SessionIDKey, res.SessionID)
	}
	requested := contracts.RequestedMode(c)
	mode, err := analysis.SelectMode(res.Credential, requested)
	if err != nil {
		h.render(c, http.StatusBadRequest, page{Error: modeFailure(err), Provider: res.Credential.Provider})
		return
	}
	report, err := h.Pipeline.Analyze(c.Request.Context(), middleware.RequestIDFromContext(c), up, res.Credential, mode)
	if err != nil {
		status, msg := uploadFailure(err)
		h.render(c, status, page{Error: msg, Provider: res.Credential.Provider})
		return
	}
	c.Set(middleware.ReportIDKey, report.ID)
	c.Set(middleware.ModeKey, string(report.Mode))

	if res.Source == sessions.SourceRequest && h.Sessions != nil {
		if _, err := h.Sessions.Open(c, res.Credential); err != nil {
			telemetry.Warn("web.session_open_failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"provider":   res.Credential.Provider,
				"error":      err.Error(),
			})
		}
	}

	h.render(c, http.StatusOK, page{
		Provider:      res.Credential.Provider,
		Mode:          requested,
		HasCredential: res.Credential.Configured(),
		Report:        &report,
	})
}

func (h *Handler) resolve(c *gin.Context) sessions.Resolution {
	if h.Resolver == nil {
		return (&sessions.Resolver{}).Resolve(c)
	}
	return h.Resolver.Resolve(c)
}

func (h *Handler) render(c *gin.Context, status int, p page) {
	if p.Provider == "" {
		p.Provider = "openai"
	}
	c.Render(status, render.HTML{Template: pageTemplate, Name: "index.html", Data: p})
}

func modeFailure(err error) string {
	if errors.Is(err, analysis.ErrAIUnavailable) {
		return "AI mode needs an API key."
	}
	return "Unknown analysis mode."
}

func uploadFailure(err error) (int, string) {
	switch {
	case errors.Is(err, contracts.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "The file is too large."
	case errors.Is(err, extract.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, "Only PDF and plain text contracts are supported."
	case errors.Is(err, contracts.ErrInvalidProvider):
		return http.StatusBadRequest, "Unknown provider; choose OpenAI or Gemini."
	case errors.Is(err, contracts.ErrUnreadable):
		return http.StatusBadRequest, "The file could not be read."
	default:
		return http.StatusInternalServerError, "Something went wrong while processing the file."
	}
}
