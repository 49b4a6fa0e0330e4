package contracts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/analysis"
	"legal-lens/internal/export"
	"legal-lens/internal/extract"
	"legal-lens/internal/sessions"
	"legal-lens/internal/shared/server/middleware"
	"legal-lens/internal/shared/server/respond"
	"legal-lens/internal/shared/telemetry"
	"legal-lens/internal/shared/util"
)

const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatXLSX     = "xlsx"
)

// Handler wires HTTP handlers to the pipeline.
type Handler struct {
	Pipeline       *Pipeline
	Resolver       *sessions.Resolver
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(p *Pipeline, resolver *sessions.Resolver, maxUploadBytes int64) *Handler {
	return &Handler{Pipeline: p, Resolver: resolver, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches contract routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts/analyze", h.analyze)
	rg.POST("/contracts/extract", h.extract)
}

type extractResponse struct {
	FileName         string   `json:"fileName"`
	MediaType        string   `json:"mediaType"`
	PageCount        int      `json:"pageCount"`
	CharCount        int      `json:"charCount"`
	Preview          string   `json:"preview"`
	PreviewTruncated bool     `json:"previewTruncated"`
	Warnings         []string `json:"warnings"`
}

func (h *Handler) analyze(c *gin.Context) {
	format, ok := parseFormat(c.Query("format"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be json, markdown or xlsx", gin.H{"format": c.Query("format")})
		return
	}

	up, err := ReadUpload(c, h.MaxUploadBytes)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	c.Set(middleware.FileNameKey, up.FileName)

	res := h.resolve(c)
	if res.SessionID != "" {
		c.Set(middleware.SessionIDKey, res.SessionID)
	}
	mode, err := analysis.SelectMode(res.Credential, RequestedMode(c))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"mode": RequestedMode(c)})
		return
	}
	telemetry.Info("contracts.analyze", map[string]any{
		"request_id":        middleware.RequestIDFromContext(c),
		"file_name":         up.FileName,
		"size_bytes":        len(up.Data),
		"content_hash":      util.ContentHash(up.Data),
		"mode":              mode,
		"provider":          res.Credential.Provider,
		"credential_source": res.Source,
		"key_fingerprint":   res.Credential.Fingerprint(),
	})

	report, err := h.Pipeline.Analyze(c.Request.Context(), middleware.RequestIDFromContext(c), up, res.Credential, mode)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	c.Set(middleware.ReportIDKey, report.ID)
	c.Set(middleware.ModeKey, string(report.Mode))

	switch format {
	case FormatMarkdown:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(analysis.RenderMarkdown(report)))
	case FormatXLSX:
		data, err := export.ReportXLSX(report)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build workbook", nil)
			return
		}
		respond.Attachment(c, export.ContentTypeXLSX, util.SwapExtension(up.FileName, ".xlsx"), data)
	default:
		respond.OK(c, report)
	}
}

func (h *Handler) extract(c *gin.Context) {
	up, err := ReadUpload(c, h.MaxUploadBytes)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	c.Set(middleware.FileNameKey, up.FileName)

	ext, err := h.Pipeline.Extract(c.Request.Context(), up)
	if err != nil {
		writeUploadError(c, err)
		return
	}

	limit := analysis.DefaultLimits().Preview
	if h.Pipeline.Service != nil && h.Pipeline.Service.Limits.Preview > 0 {
		limit = h.Pipeline.Service.Limits.Preview
	}
	preview, cut := extract.Preview(ext.Text, limit)
	warnings := ext.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	respond.OK(c, extractResponse{
		FileName:         up.FileName,
		MediaType:        ext.MediaType,
		PageCount:        ext.PageCount,
		CharCount:        len([]rune(ext.Text)),
		Preview:          preview,
		PreviewTruncated: cut,
		Warnings:         warnings,
	})
}

func (h *Handler) resolve(c *gin.Context) sessions.Resolution {
	if h.Resolver == nil {
		return (&sessions.Resolver{}).Resolve(c)
	}
	return h.Resolver.Resolve(c)
}

// RequestedMode returns the explicit mode override from the query string or
// the multipart form, or "" for automatic.
func RequestedMode(c *gin.Context) string {
	if m := strings.TrimSpace(c.Query("mode")); m != "" {
		return m
	}
	return strings.TrimSpace(c.PostForm("mode"))
}

func parseFormat(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatMarkdown, "md":
		return FormatMarkdown, true
	case FormatXLSX:
		return FormatXLSX, true
	default:
		return "", false
	}
}

func writeUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), nil)
	case errors.Is(err, ErrMissingFile):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUnreadable):
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrUnreadable.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedMediaType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "only PDF and plain text contracts are supported", gin.H{"reason": err.Error()})
	case errors.Is(err, ErrInvalidProvider):
		respond.Error(c, http.StatusBadRequest, "validation_error", "provider must be openai or gemini", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
	}
}
