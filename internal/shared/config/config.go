package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	LLMProvider    string
	LLMModel       string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	LLMTimeout     time.Duration

	SummaryCharLimit   int
	ClausesCharLimit   int
	FieldsCharLimit    int
	FlowchartCharLimit int
	PreviewCharLimit   int

	AnalysisConcurrency int
	SessionTTL          time.Duration
	MaxUploadBytes      int64
}

const (
	defaultSummaryLimit   = 1500
	defaultClausesLimit   = 2000
	defaultFieldsLimit    = 2000
	defaultFlowchartLimit = 1500
	defaultPreviewLimit   = 1000
	defaultMaxUpload      = 10 << 20
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		LLMProvider:  normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:     getEnv("LLM_MODEL", ""),
		OpenAIAPIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		LLMTimeout:   time.Duration(getInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,

		SummaryCharLimit:   getInt("SUMMARY_CHAR_LIMIT", defaultSummaryLimit),
		ClausesCharLimit:   getInt("CLAUSES_CHAR_LIMIT", defaultClausesLimit),
		FieldsCharLimit:    getInt("FIELDS_CHAR_LIMIT", defaultFieldsLimit),
		FlowchartCharLimit: getInt("FLOWCHART_CHAR_LIMIT", defaultFlowchartLimit),
		PreviewCharLimit:   getInt("PREVIEW_CHAR_LIMIT", defaultPreviewLimit),

		AnalysisConcurrency: getInt("ANALYSIS_CONCURRENCY", 1),
		SessionTTL:          getDuration("SESSION_TTL", 30*time.Minute),
		MaxUploadBytes:      int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUpload)),
	}
}

// APIKeyFor returns the pre-configured secret for provider, if any.
func (c Config) APIKeyFor(provider string) string {
	switch normalizeProvider(provider) {
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getInt falls back to def for unparsable or non-positive values.
func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	default:
		return "openai"
	}
}
