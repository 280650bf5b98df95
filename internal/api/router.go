package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/offplan-catalog-api/internal/catalog"
	"github.com/offplan-catalog-api/internal/config"
	"github.com/offplan-catalog-api/internal/query"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps holds everything the handlers operate on.
type Deps struct {
	Store     *catalog.Store
	Loader    *catalog.Loader
	Selection *query.Coordinator
}

// NewRouter creates and configures the Gin router
func NewRouter(deps *Deps, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	listings := NewListingsHandler(deps, cfg, log)
	catalogH := NewCatalogHandler(deps, log)
	mapH := NewMapHandler(deps, cfg, log)
	selection := NewSelectionHandler(deps, log)

	// Health and metrics
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		v1.GET("/listings", listings.List)
		v1.GET("/listings/:id", listings.Get)
		v1.GET("/facets", catalogH.Facets)
		v1.GET("/stats", catalogH.Stats)
		v1.POST("/refresh", catalogH.Refresh)

		v1.GET("/view", listings.View)
		v1.PUT("/view", listings.SetView)

		v1.GET("/map/pins", mapH.Pins)

		v1.POST("/selection", selection.Select)
		v1.DELETE("/selection", selection.Reset)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "offplan-catalog-api",
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
