package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/contracts"
	"legal-lens/internal/services/health"
	"legal-lens/internal/sessions"
	"legal-lens/internal/shared/config"
	"legal-lens/internal/shared/metrics"
	"legal-lens/internal/shared/server/middleware"
	"legal-lens/internal/shared/server/respond"
	"legal-lens/internal/web"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	ContractHandler *contracts.Handler
	SessionHandler  *sessions.Handler
	WebHandler      *web.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if deps.Config.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = deps.Config.MaxUploadBytes
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}
	if deps.ContractHandler != nil {
		deps.ContractHandler.RegisterRoutes(api)
	}
	if deps.WebHandler != nil {
		deps.WebHandler.RegisterRoutes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
