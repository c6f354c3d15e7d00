package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zhengbin-app/sociallink/internal/logger"
)

// NewRouter creates a gin engine with all routes registered.
func NewRouter(handlers *Handlers, jwtSecret string, debug bool, log logger.Logger) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")

	// The browser returns from the provider without our Authorization
	// header in some flows; a missing owner is handled inside the
	// callback rather than rejected at the transport.
	v1.GET("/link/:platform/callback", OptionalAuth(jwtSecret), handlers.OAuthCallback)

	authed := v1.Group("")
	authed.Use(RequireAuth(jwtSecret))
	{
		link := authed.Group("/link/:platform")
		{
			link.POST("/search", handlers.SearchUser)
			link.POST("/confirm", handlers.ConfirmUser)
			link.POST("/back", handlers.GoBack)
			link.POST("/connect", handlers.ConnectManual)
			link.POST("/oauth", handlers.StartOAuth)
			link.DELETE("", handlers.CancelFlow)
		}

		authed.GET("/accounts", handlers.ListAccounts)
		authed.DELETE("/accounts/:id", handlers.DisconnectAccount)
		authed.GET("/accounts/:id/posts", handlers.ListPosts)

		authed.POST("/publish", handlers.PublishPost)
		authed.GET("/stats", handlers.GetStats)
	}

	return router
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}
