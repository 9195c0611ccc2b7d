package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traininginparks/trainbot/internal/container"
	"github.com/traininginparks/trainbot/internal/middleware"
)

// SetupRoutes configures the ops HTTP surface. The bot itself talks over
// the chat bus; this server only answers platform probes.
func SetupRoutes(app *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(app.Logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"service": "trainbot",
		})
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := app.MongoDBClient.Ping(ctx, nil); err != nil {
			c.JSON(503, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	return r
}
