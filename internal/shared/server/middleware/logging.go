package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	ReportIDKey  = "reportId"
	SessionIDKey = "sessionId"
	FileNameKey  = "fileName"
	ModeKey      = "analysisMode"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"report_id":   c.GetString(ReportIDKey),
			"session_id":  c.GetString(SessionIDKey),
			"file_name":   c.GetString(FileNameKey),
			"mode":        c.GetString(ModeKey),
			"bytes_out":   c.Writer.Size(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
