package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "credentials-backend/internal/auth"
	"credentials-backend/internal/credentials"
	"credentials-backend/internal/dashboard"
	"credentials-backend/internal/profiles"
	"credentials-backend/internal/shared/config"
	"credentials-backend/internal/shared/metrics"
	"credentials-backend/internal/shared/server/middleware"
	"credentials-backend/internal/shared/server/respond"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config            config.Config
	ProfileHandler    *profiles.Handler
	CredentialHandler *credentials.Handler
	DashboardHandler  *dashboard.Handler
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterRoutes(api)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}
	if deps.CredentialHandler != nil {
		uploads := api.Group("")
		uploads.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"UPLOAD": {Rate: 0.5, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return "UPLOAD"
				}
				return ""
			},
			DefaultGroup: "NONE",
		}))
		deps.CredentialHandler.RegisterRoutes(uploads)
	}

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
