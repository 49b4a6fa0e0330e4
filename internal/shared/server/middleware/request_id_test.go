package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/x", func(c *gin.Context) {
		seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	if seen == "" || resp.Header().Get("X-Request-Id") != seen {
		t.Fatalf("expected generated id to be echoed, got ctx=%q header=%q", seen, resp.Header().Get("X-Request-Id"))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if seen != "abc-123" {
		t.Fatalf("expected client id reused, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("a", 200))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if len(seen) > maxRequestIDLen {
		t.Fatalf("expected oversized id to be replaced")
	}
}
