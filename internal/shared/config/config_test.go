package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_PROVIDER", "SUMMARY_CHAR_LIMIT", "CLAUSES_CHAR_LIMIT", "PREVIEW_CHAR_LIMIT", "ANALYSIS_CONCURRENCY", "SESSION_TTL", "MAX_UPLOAD_BYTES", "LLM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai default, got %q", cfg.LLMProvider)
	}
	if cfg.SummaryCharLimit != 1500 || cfg.ClausesCharLimit != 2000 || cfg.PreviewCharLimit != 1000 {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if cfg.AnalysisConcurrency != 1 {
		t.Fatalf("expected sequential default, got %d", cfg.AnalysisConcurrency)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected max upload %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.LLMTimeout)
	}
}

func TestLoadOverridesAndInvalidValues(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Google")
	t.Setenv("SUMMARY_CHAR_LIMIT", "500")
	t.Setenv("CLAUSES_CHAR_LIMIT", "nope")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("GEMINI_API_KEY", " g-key ")

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini, got %q", cfg.LLMProvider)
	}
	if cfg.SummaryCharLimit != 500 {
		t.Fatalf("expected 500, got %d", cfg.SummaryCharLimit)
	}
	if cfg.ClausesCharLimit != 2000 {
		t.Fatalf("expected fallback 2000, got %d", cfg.ClausesCharLimit)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", cfg.SessionTTL)
	}
	if got := cfg.APIKeyFor("gemini"); got != "g-key" {
		t.Fatalf("expected trimmed gemini key, got %q", got)
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("LL_TEST_A=from-file\nLL_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LL_TEST_A", "from-env")
	t.Setenv("LL_TEST_B", "")
	os.Unsetenv("LL_TEST_B")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("LL_TEST_A"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("LL_TEST_B"); got != "quoted" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
