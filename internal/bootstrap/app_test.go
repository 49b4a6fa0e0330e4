package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legal-lens/internal/shared/config"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "dev",
		CORSAllowOrigin:     []string{"http://localhost:5173"},
		LLMProvider:         "openai",
		LLMTimeout:          time.Second,
		SummaryCharLimit:    1500,
		ClausesCharLimit:    2000,
		FieldsCharLimit:     2000,
		FlowchartCharLimit:  1500,
		PreviewCharLimit:    1000,
		AnalysisConcurrency: 1,
		SessionTTL:          time.Minute,
		MaxUploadBytes:      1 << 20,
	}
}

func TestBuildRegistersRoutes(t *testing.T) {
	app, err := Build(testConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		app.Router.ServeHTTP(resp, req)
		if resp.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, resp.Code)
		}
	}
}

func TestMetricsExposition(t *testing.T) {
	app, err := Build(testConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if !strings.Contains(resp.Body.String(), "legallens_reports_total") {
		t.Fatalf("metrics output missing counters: %s", resp.Body.String())
	}
}

func TestResolverUsesConfiguredKeys(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = "g-key"
	r := NewResolver(cfg, nil)
	if r.ConfiguredKeys["gemini"] != "g-key" {
		t.Fatalf("expected gemini key to be wired")
	}
	if r.DefaultProvider != "openai" {
		t.Fatalf("unexpected default provider %q", r.DefaultProvider)
	}
}
