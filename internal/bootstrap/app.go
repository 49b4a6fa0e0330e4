package bootstrap

import (
	"strings"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/analysis"
	"legal-lens/internal/contracts"
	"legal-lens/internal/entities"
	"legal-lens/internal/llm"
	"legal-lens/internal/llm/providers"
	"legal-lens/internal/services/health"
	"legal-lens/internal/sessions"
	"legal-lens/internal/shared/config"
	"legal-lens/internal/shared/server"
	"legal-lens/internal/shared/telemetry"
	"legal-lens/internal/web"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Sessions        *sessions.Store
	Resolver        *sessions.Resolver
	Pipeline        *contracts.Pipeline
	ContractHandler *contracts.Handler
	SessionHandler  *sessions.Handler
	WebHandler      *web.Handler
	Health          *health.Service
}

// Build wires every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if cfg.LogLevel != "" {
		telemetry.SetLevel(cfg.LogLevel)
	}

	store := sessions.NewStore(cfg.SessionTTL)
	resolver := NewResolver(cfg, store)
	pipeline := NewPipeline(cfg)
	sessionHandler := sessions.NewHandler(store, cfg.Env == "production" || cfg.Env == "staging")

	app := &App{
		Config:          cfg,
		Sessions:        store,
		Resolver:        resolver,
		Pipeline:        pipeline,
		ContractHandler: contracts.NewHandler(pipeline, resolver, cfg.MaxUploadBytes),
		SessionHandler:  sessionHandler,
		WebHandler:      web.NewHandler(pipeline, resolver, sessionHandler, cfg.MaxUploadBytes),
		Health:          health.NewService(store, defaultCredential(cfg)),
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		ContractHandler: app.ContractHandler,
		SessionHandler:  app.SessionHandler,
		WebHandler:      app.WebHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"provider":         cfg.LLMProvider,
		"model":            cfg.LLMModel,
		"configured_key":   cfg.APIKeyFor(cfg.LLMProvider) != "",
		"concurrency":      cfg.AnalysisConcurrency,
		"session_ttl":      cfg.SessionTTL.String(),
		"max_upload_bytes": cfg.MaxUploadBytes,
	})
	return app, nil
}

// NewPipeline builds the extraction and analysis pipeline from configuration.
func NewPipeline(cfg config.Config) *contracts.Pipeline {
	svc := &analysis.Service{
		Entities: entities.NewDefault(),
		Limits: analysis.Limits{
			Summary:   cfg.SummaryCharLimit,
			Clauses:   cfg.ClausesCharLimit,
			Fields:    cfg.FieldsCharLimit,
			Flowchart: cfg.FlowchartCharLimit,
			Preview:   cfg.PreviewCharLimit,
		},
		Concurrency: cfg.AnalysisConcurrency,
	}
	return &contracts.Pipeline{
		Service:    svc,
		LLMTimeout: cfg.LLMTimeout,
		NewClient:  providers.New,
	}
}

func defaultCredential(cfg config.Config) llm.Credential {
	return llm.Credential{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.APIKeyFor(cfg.LLMProvider),
	}
}

// NewResolver builds the credential resolver over the session store and the
// configured secrets.
func NewResolver(cfg config.Config, store *sessions.Store) *sessions.Resolver {
	return &sessions.Resolver{
		Store:           store,
		DefaultProvider: cfg.LLMProvider,
		DefaultModel:    cfg.LLMModel,
		ConfiguredKeys: map[string]string{
			llm.ProviderOpenAI: cfg.OpenAIAPIKey,
			llm.ProviderGemini: cfg.GeminiAPIKey,
		},
	}
}
